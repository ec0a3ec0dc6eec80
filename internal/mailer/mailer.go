// Package mailer builds and delivers the directory's notification emails.
// Delivery is best-effort: callers receive an Outcome instead of an error so
// the primary operation never fails because of mail.
package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"parenthelper/internal/store"
)

// Outcome describes what happened to a notification attempt.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// Mailer composes the application's notification emails on top of a Sender.
type Mailer struct {
	sender     Sender
	reviewAddr string
	signupBase string
}

// New assembles a Mailer. reviewAddr receives internal claim notifications.
func New(sender Sender, reviewAddr, signupBase string) *Mailer {
	return &Mailer{
		sender:     sender,
		reviewAddr: reviewAddr,
		signupBase: signupBase,
	}
}

func (m *Mailer) deliver(ctx context.Context, email Email) Outcome {
	if !m.sender.Configured() {
		log.Info().Str("subject", email.Subject).Msg("mail sender not configured, skipping notification")
		return OutcomeSkipped
	}
	if err := m.sender.Send(ctx, email); err != nil {
		log.Error().Err(err).Str("to", email.To).Str("subject", email.Subject).Msg("notification delivery failed")
		return OutcomeFailed
	}
	return OutcomeDelivered
}

// ClaimNotification carries everything the claim emails need.
type ClaimNotification struct {
	Provider      store.Provider
	Claim         store.ProviderClaim
	AutoApproved  bool
	FranchiseName string
}

// SendClaimAdminNotification alerts internal reviewers about a new claim.
func (m *Mailer) SendClaimAdminNotification(ctx context.Context, n ClaimNotification) Outcome {
	status := "Pending review"
	if n.AutoApproved {
		status = "Auto-approved"
	}

	franchiseLine := ""
	if n.FranchiseName != "" {
		franchiseLine = fmt.Sprintf("- Franchise: %s\n", n.FranchiseName)
	}

	text := fmt.Sprintf(`Provider Claim Submitted

- Name: %s
%s- Town: %s
- Postcode: %s

Claimant:
- Name: %s
- Email: %s
- Phone: %s
- Relationship: %s
- Website: %s
- Proof: %s

Notes:
%s

Status: %s
`,
		n.Provider.Name, franchiseLine,
		orUnknown(n.Provider.Town), orUnknown(n.Provider.Postcode),
		n.Claim.ClaimantName, n.Claim.ClaimantEmail,
		orNotProvided(n.Claim.ClaimantPhone), n.Claim.Relationship,
		orNotProvided(n.Claim.Website), orNotProvided(n.Claim.ProofURL),
		messageOrDefault(n.Claim.Message), status)

	franchiseHTML := ""
	if n.FranchiseName != "" {
		franchiseHTML = fmt.Sprintf("<p><strong>Franchise:</strong> %s</p>", n.FranchiseName)
	}

	html := fmt.Sprintf(`
		<h2>Provider Claim Submitted</h2>

		<h3>Provider</h3>
		<p><strong>Name:</strong> %s</p>
		%s
		<p><strong>Town:</strong> %s</p>
		<p><strong>Postcode:</strong> %s</p>

		<h3>Claimant</h3>
		<p><strong>Name:</strong> %s</p>
		<p><strong>Email:</strong> %s</p>
		<p><strong>Phone:</strong> %s</p>
		<p><strong>Relationship:</strong> %s</p>
		<p><strong>Website:</strong> %s</p>
		<p><strong>Proof:</strong> %s</p>

		<h3>Notes</h3>
		<p>%s</p>

		<hr />
		<p><strong>Status:</strong> %s</p>`,
		n.Provider.Name, franchiseHTML,
		orUnknown(n.Provider.Town), orUnknown(n.Provider.Postcode),
		n.Claim.ClaimantName, n.Claim.ClaimantEmail,
		orNotProvided(n.Claim.ClaimantPhone), n.Claim.Relationship,
		orNotProvided(n.Claim.Website), orNotProvided(n.Claim.ProofURL),
		messageOrDefault(n.Claim.Message), status)

	return m.deliver(ctx, Email{
		To:      m.reviewAddr,
		ReplyTo: n.Claim.ClaimantEmail,
		Subject: fmt.Sprintf("Provider Claim: %s", n.Provider.Name),
		Text:    text,
		HTML:    html,
	})
}

// SendClaimantConfirmation acknowledges the claim to the person who made it.
func (m *Mailer) SendClaimantConfirmation(ctx context.Context, n ClaimNotification) Outcome {
	franchiseSuffix := ""
	if n.FranchiseName != "" {
		franchiseSuffix = fmt.Sprintf(" (franchise: %s)", n.FranchiseName)
	}

	text := fmt.Sprintf(`Hi %s,

We have received your request to claim the listing for %s%s.
Our team will review your submission and get back to you within 2 business days.

Thanks!
Parent Helper Team
`, n.Claim.ClaimantName, n.Provider.Name, franchiseSuffix)

	html := fmt.Sprintf(`
		<h2>Thanks for claiming %s</h2>
		<p>Hi %s,</p>
		<p>We have received your request to claim the listing for <strong>%s</strong>%s.</p>
		<p>Our team will review your submission and get back to you within 2 business days.</p>
		<p>If you submitted this request in error, simply ignore this message.</p>
		<p>Thanks!<br/>Parent Helper Team</p>`,
		n.Provider.Name, n.Claim.ClaimantName, n.Provider.Name, franchiseSuffix)

	return m.deliver(ctx, Email{
		To:      n.Claim.ClaimantEmail,
		Subject: fmt.Sprintf("We've received your claim for %s", n.Provider.Name),
		Text:    text,
		HTML:    html,
	})
}

// ListingClaimNotification carries the class-listing claim email fields.
type ListingClaimNotification struct {
	ClassID           int64
	ClassName         string
	FullName          string
	Email             string
	Role              string
	Phone             string
	Website           string
	ProofURL          string
	Message           string
	ContactPreference string
}

// SendListingClaimNotification alerts internal reviewers about a class
// listing claim submitted from the public site.
func (m *Mailer) SendListingClaimNotification(ctx context.Context, n ListingClaimNotification) Outcome {
	text := fmt.Sprintf(`New Listing Claim Request

Class ID: %d
Class Name: %s

Claimant Details:
- Name: %s
- Email: %s
- Role: %s
- Preferred Contact: %s
- Phone: %s
- Website: %s
- Proof URL: %s

Message:
%s
`, n.ClassID, n.ClassName, n.FullName, n.Email, n.Role, n.ContactPreference,
		emptyOrNotProvided(n.Phone), emptyOrNotProvided(n.Website),
		emptyOrNotProvided(n.ProofURL), n.Message)

	html := fmt.Sprintf(`
		<h2>New Listing Claim Request</h2>

		<p><strong>Class ID:</strong> %d</p>
		<p><strong>Class Name:</strong> %s</p>

		<h3>Claimant Details</h3>
		<p><strong>Name:</strong> %s</p>
		<p><strong>Email:</strong> %s</p>
		<p><strong>Role:</strong> %s</p>
		<p><strong>Preferred Contact:</strong> %s</p>
		<p><strong>Phone:</strong> %s</p>
		<p><strong>Website:</strong> %s</p>
		<p><strong>Proof URL:</strong> %s</p>

		<h3>Message</h3>
		<p>%s</p>`,
		n.ClassID, n.ClassName, n.FullName, n.Email, n.Role, n.ContactPreference,
		emptyOrNotProvided(n.Phone), emptyOrNotProvided(n.Website),
		emptyOrNotProvided(n.ProofURL), n.Message)

	return m.deliver(ctx, Email{
		To:      m.reviewAddr,
		ReplyTo: n.Email,
		Subject: fmt.Sprintf("Listing Claim: %s (#%d)", n.ClassName, n.ClassID),
		Text:    text,
		HTML:    html,
	})
}

// SendFranchiseInvite emails a signup invitation carrying the invite code.
func (m *Mailer) SendFranchiseInvite(ctx context.Context, to, inviteCode string) Outcome {
	signupURL := fmt.Sprintf("%s?code=%s", m.signupBase, inviteCode)

	text := fmt.Sprintf("Your head office has invited you to Parent Helper. Open this link to get started: %s", signupURL)

	html := fmt.Sprintf(`
		<h2>Join Parent Helper</h2>
		<p>Hello!</p>
		<p>Your head office has invited you to manage your classes on Parent Helper.</p>
		<p>Use the link below to sign up and unlock your franchise discount.</p>
		<p><a href="%s">Complete your signup</a></p>
		<p>If you weren't expecting this, you can ignore the email.</p>`, signupURL)

	return m.deliver(ctx, Email{
		To:      to,
		Subject: "You're invited to Parent Helper",
		Text:    text,
		HTML:    html,
	})
}

func orUnknown(v *string) string {
	if v == nil || *v == "" {
		return "Unknown"
	}
	return *v
}

func orNotProvided(v *string) string {
	if v == nil || *v == "" {
		return "Not provided"
	}
	return *v
}

func emptyOrNotProvided(v string) string {
	if v == "" {
		return "Not provided"
	}
	return v
}

func messageOrDefault(v *string) string {
	if v == nil || *v == "" {
		return "No message provided."
	}
	return *v
}
