package providers

import (
	"context"
	"errors"
	"testing"

	"parenthelper/internal/mailer"
	"parenthelper/internal/store"
	"parenthelper/shared/go/models"
)

type stubStore struct {
	provider    store.Provider
	providerErr error

	hasClaim    bool
	hasClaimErr error

	createdClaim store.ProviderClaim
	createErr    error

	approveErr    error
	approvedID    int64
	approveCalled bool

	franchise    models.Franchise
	franchiseErr error
}

func (s *stubStore) ProviderByID(ctx context.Context, id int64) (store.Provider, error) {
	if s.providerErr != nil {
		return store.Provider{}, s.providerErr
	}
	return s.provider, nil
}

func (s *stubStore) SearchProviders(ctx context.Context, search string, limit int) ([]store.ProviderSummary, error) {
	return nil, nil
}

func (s *stubStore) HasActiveClaim(ctx context.Context, providerID int64) (bool, error) {
	return s.hasClaim, s.hasClaimErr
}

func (s *stubStore) CreateProviderClaim(ctx context.Context, claim store.ProviderClaim) (store.ProviderClaim, error) {
	if s.createErr != nil {
		return store.ProviderClaim{}, s.createErr
	}
	claim.ID = 77
	claim.Status = store.ClaimStatusPending
	s.createdClaim = claim
	return claim, nil
}

func (s *stubStore) ApproveProvider(ctx context.Context, providerID int64) error {
	s.approveCalled = true
	s.approvedID = providerID
	return s.approveErr
}

func (s *stubStore) FranchiseByID(ctx context.Context, id int64) (models.Franchise, error) {
	if s.franchiseErr != nil {
		return models.Franchise{}, s.franchiseErr
	}
	return s.franchise, nil
}

type stubNotifier struct {
	adminOutcome    mailer.Outcome
	claimantOutcome mailer.Outcome

	lastNotification mailer.ClaimNotification
}

func (n *stubNotifier) SendClaimAdminNotification(ctx context.Context, notification mailer.ClaimNotification) mailer.Outcome {
	n.lastNotification = notification
	return n.adminOutcome
}

func (n *stubNotifier) SendClaimantConfirmation(ctx context.Context, notification mailer.ClaimNotification) mailer.Outcome {
	return n.claimantOutcome
}

func validClaimRequest() ClaimRequest {
	return ClaimRequest{
		FullName:     "Jo Smith",
		Email:        "jo@example.com",
		Relationship: "owner",
	}
}

func TestClaimProviderNotFound(t *testing.T) {
	svc := New(&stubStore{providerErr: store.ErrProviderNotFound}, &stubNotifier{}, false)

	_, err := svc.Claim(context.Background(), 404, validClaimRequest())
	if !errors.Is(err, store.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestClaimAlreadyClaimed(t *testing.T) {
	st := &stubStore{provider: store.Provider{ID: 1, IsClaimed: true}}
	svc := New(st, &stubNotifier{}, false)

	_, err := svc.Claim(context.Background(), 1, validClaimRequest())
	if !errors.Is(err, store.ErrProviderAlreadyClaimed) {
		t.Fatalf("expected ErrProviderAlreadyClaimed, got %v", err)
	}
	if st.createdClaim.ID != 0 {
		t.Fatal("claim row must not be created for a claimed provider")
	}
}

func TestClaimPendingConflict(t *testing.T) {
	st := &stubStore{provider: store.Provider{ID: 1}, hasClaim: true}
	svc := New(st, &stubNotifier{}, false)

	_, err := svc.Claim(context.Background(), 1, validClaimRequest())
	if !errors.Is(err, store.ErrClaimPending) {
		t.Fatalf("expected ErrClaimPending, got %v", err)
	}
}

func TestClaimSuccess(t *testing.T) {
	st := &stubStore{provider: store.Provider{ID: 1, Name: "Little Kickers"}}
	notifier := &stubNotifier{adminOutcome: mailer.OutcomeDelivered, claimantOutcome: mailer.OutcomeDelivered}
	svc := New(st, notifier, false)

	result, err := svc.Claim(context.Background(), 1, validClaimRequest())
	if err != nil {
		t.Fatalf("Claim error: %v", err)
	}

	if result.Claim.ID != 77 {
		t.Fatalf("expected created claim id 77, got %d", result.Claim.ID)
	}
	if result.Claim.Status != store.ClaimStatusPending {
		t.Fatalf("expected pending claim, got %q", result.Claim.Status)
	}
	if result.AutoApproved {
		t.Fatal("auto-approve disabled, result must not report approval")
	}
	if st.approveCalled {
		t.Fatal("provider must not be approved without the flag")
	}
	if st.createdClaim.VerificationToken == "" {
		t.Fatal("expected a generated verification token")
	}
	if st.createdClaim.ExpiresAt.IsZero() {
		t.Fatal("expected an expiry on the claim")
	}
	if result.AdminEmail != mailer.OutcomeDelivered || result.ClaimantEmail != mailer.OutcomeDelivered {
		t.Fatalf("unexpected email outcomes: %+v", result)
	}
}

func TestClaimAutoApproveFlipsProvider(t *testing.T) {
	st := &stubStore{provider: store.Provider{ID: 9, Name: "Swim Stars"}}
	notifier := &stubNotifier{adminOutcome: mailer.OutcomeSkipped, claimantOutcome: mailer.OutcomeSkipped}
	svc := New(st, notifier, true)

	result, err := svc.Claim(context.Background(), 9, validClaimRequest())
	if err != nil {
		t.Fatalf("Claim error: %v", err)
	}

	if !result.AutoApproved {
		t.Fatal("expected auto-approved result")
	}
	if !st.approveCalled || st.approvedID != 9 {
		t.Fatalf("expected provider 9 approved, got called=%v id=%d", st.approveCalled, st.approvedID)
	}
	if !notifier.lastNotification.AutoApproved {
		t.Fatal("notification must carry the auto-approve outcome")
	}
}

func TestClaimAutoApproveFailureFailsRequest(t *testing.T) {
	st := &stubStore{provider: store.Provider{ID: 9}, approveErr: errors.New("db down")}
	svc := New(st, &stubNotifier{}, true)

	_, err := svc.Claim(context.Background(), 9, validClaimRequest())
	if err == nil {
		t.Fatal("expected error when auto-approve fails")
	}
}

func TestClaimEmailFailureDoesNotFailRequest(t *testing.T) {
	st := &stubStore{provider: store.Provider{ID: 1}}
	notifier := &stubNotifier{adminOutcome: mailer.OutcomeFailed, claimantOutcome: mailer.OutcomeFailed}
	svc := New(st, notifier, false)

	result, err := svc.Claim(context.Background(), 1, validClaimRequest())
	if err != nil {
		t.Fatalf("Claim error: %v", err)
	}
	if result.AdminEmail != mailer.OutcomeFailed || result.ClaimantEmail != mailer.OutcomeFailed {
		t.Fatalf("expected failed outcomes, got %+v", result)
	}
}

func TestClaimFranchiseLookupFailureIsNonFatal(t *testing.T) {
	franchiseID := int64(12)
	st := &stubStore{
		provider:     store.Provider{ID: 1},
		franchiseErr: store.ErrFranchiseNotFound,
	}
	notifier := &stubNotifier{adminOutcome: mailer.OutcomeSkipped, claimantOutcome: mailer.OutcomeSkipped}
	svc := New(st, notifier, false)

	req := validClaimRequest()
	req.FranchiseID = &franchiseID

	if _, err := svc.Claim(context.Background(), 1, req); err != nil {
		t.Fatalf("Claim error: %v", err)
	}
	if notifier.lastNotification.FranchiseName != "" {
		t.Fatalf("expected empty franchise name, got %q", notifier.lastNotification.FranchiseName)
	}
}
