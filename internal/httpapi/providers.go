package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"parenthelper/internal/app/providers"
	"parenthelper/internal/mailer"
	"parenthelper/internal/store"
)

func (s *Server) handleProviderSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "search query is required")
		return
	}

	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	results, err := s.providers.Search(r.Context(), term, intOrZero(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "provider search failed")
		return
	}
	if results == nil {
		results = []store.ProviderSummary{}
	}
	writeList(w, listResponse{Data: results, Count: len(results)})
}

type providerClaimRequest struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
	Website      string `json:"website"`
	ProofURL     string `json:"proofUrl"`
	Message      string `json:"message"`
	FranchiseID  *int64 `json:"franchiseId"`
}

type providerClaimResponse struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	ClaimID      int64               `json:"claimId"`
	AutoApproved bool                `json:"autoApproved"`
	EmailSent    bool                `json:"emailSent"`
	Claim        store.ProviderClaim `json:"claim"`
}

func (s *Server) handleProviderClaim(w http.ResponseWriter, r *http.Request) {
	providerID, ok := pathID(r, "providerId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid provider id")
		return
	}

	var req providerClaimRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.FullName) == "" {
		fields["fullName"] = "Full name is required"
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "Email is required"
	}
	if strings.TrimSpace(req.Relationship) == "" {
		fields["relationship"] = "Relationship to the business is required"
	}
	if len(fields) > 0 {
		writeValidationErrors(w, fields)
		return
	}

	result, err := s.providers.Claim(r.Context(), providerID, providers.ClaimRequest{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Relationship: req.Relationship,
		Website:      req.Website,
		ProofURL:     req.ProofURL,
		Message:      req.Message,
		FranchiseID:  req.FranchiseID,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProviderNotFound):
			writeError(w, http.StatusNotFound, "Provider not found")
		case errors.Is(err, store.ErrProviderAlreadyClaimed):
			writeError(w, http.StatusConflict, "This provider has already been claimed")
		case errors.Is(err, store.ErrClaimPending):
			writeError(w, http.StatusConflict, "A claim for this provider is already under review")
		default:
			writeError(w, http.StatusInternalServerError, "failed to submit claim")
		}
		return
	}

	message := "Claim submitted. Our team will review it within 2 business days."
	if result.AutoApproved {
		message = "Claim approved. You can now manage this listing."
	}

	writeJSON(w, http.StatusOK, providerClaimResponse{
		Success:      true,
		Message:      message,
		ClaimID:      result.Claim.ID,
		AutoApproved: result.AutoApproved,
		EmailSent:    result.ClaimantEmail == mailer.OutcomeDelivered,
		Claim:        result.Claim,
	})
}
