package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"parenthelper/internal/app/franchises"
	"parenthelper/internal/store"
	"parenthelper/shared/go/models"
)

func (s *Server) handleListFranchises(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	results, err := s.franchises.List(r.Context(), r.URL.Query().Get("q"), intOrZero(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch franchises")
		return
	}
	if results == nil {
		results = []models.Franchise{}
	}
	writeList(w, listResponse{Data: results, Count: len(results)})
}

type createFranchiseRequest struct {
	Name                   string  `json:"name"`
	Slug                   string  `json:"slug"`
	LogoURL                *string `json:"logoUrl"`
	DefaultDiscountPercent float64 `json:"defaultDiscountPercent"`
	SignupLinkSlug         *string `json:"signupLinkSlug"`
	Notes                  *string `json:"notes"`
}

func (s *Server) handleCreateFranchise(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req createFranchiseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeValidationErrors(w, map[string]string{"name": "Franchise name is required"})
		return
	}

	created, err := s.franchises.Create(r.Context(), models.Franchise{
		Name:                   req.Name,
		Slug:                   req.Slug,
		LogoURL:                req.LogoURL,
		DefaultDiscountPercent: req.DefaultDiscountPercent,
		SignupLinkSlug:         req.SignupLinkSlug,
		Notes:                  req.Notes,
	})
	if err != nil {
		if errors.Is(err, store.ErrFranchiseExists) {
			writeError(w, http.StatusConflict, "A franchise with that slug already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create franchise")
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateFranchise(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid franchise id")
		return
	}

	var update models.FranchiseUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	updated, err := s.franchises.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, store.ErrFranchiseNotFound) {
			writeError(w, http.StatusNotFound, "Franchise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update franchise")
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleFranchiseProviders(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid franchise id")
		return
	}

	results, err := s.franchises.Providers(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrFranchiseNotFound) {
			writeError(w, http.StatusNotFound, "Franchise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch franchise providers")
		return
	}
	if results == nil {
		results = []models.FranchiseProvider{}
	}
	writeList(w, listResponse{Data: results, Count: len(results)})
}

type attachProviderRequest struct {
	ProviderID int64 `json:"providerId"`
}

func (s *Server) handleAttachProvider(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid franchise id")
		return
	}

	var req attachProviderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProviderID <= 0 {
		writeValidationErrors(w, map[string]string{"providerId": "Provider id is required"})
		return
	}

	if err := s.franchises.AttachProvider(r.Context(), id, req.ProviderID); err != nil {
		switch {
		case errors.Is(err, store.ErrFranchiseNotFound):
			writeError(w, http.StatusNotFound, "Franchise not found")
		case errors.Is(err, store.ErrProviderNotFound):
			writeError(w, http.StatusNotFound, "Provider not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to link provider")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDetachProvider(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid franchise id")
		return
	}
	providerID, ok := pathID(r, "providerId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid provider id")
		return
	}

	if err := s.franchises.DetachProvider(r.Context(), id, providerID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to unlink provider")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDiscountCodes(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid franchise id")
		return
	}

	results, err := s.franchises.DiscountCodes(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrFranchiseNotFound) {
			writeError(w, http.StatusNotFound, "Franchise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch discount codes")
		return
	}
	if results == nil {
		results = []models.FranchiseDiscountCode{}
	}
	writeList(w, listResponse{Data: results, Count: len(results)})
}

type createDiscountCodeRequest struct {
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	DiscountPercent float64 `json:"discountPercent"`
	MaxRedemptions  *int    `json:"maxRedemptions"`
	ExpiresAt       string  `json:"expiresAt"`
}

func (s *Server) handleCreateDiscountCode(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid franchise id")
		return
	}

	var req createDiscountCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DiscountPercent <= 0 || req.DiscountPercent > 100 {
		writeValidationErrors(w, map[string]string{"discountPercent": "Discount percent must be between 1 and 100"})
		return
	}
	expiresAt, ok := parseTimePtr(req.ExpiresAt)
	if !ok {
		writeValidationErrors(w, map[string]string{"expiresAt": "Expiry must be an RFC 3339 timestamp"})
		return
	}

	result, err := s.franchises.IssueDiscountCode(r.Context(), id, franchises.IssueCodeRequest{
		Code:            req.Code,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		MaxRedemptions:  req.MaxRedemptions,
		ExpiresAt:       expiresAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrFranchiseNotFound):
			writeError(w, http.StatusNotFound, "Franchise not found")
		case errors.Is(err, store.ErrDiscountCodeExists):
			writeError(w, http.StatusConflict, "That discount code already exists")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create discount code")
		}
		return
	}
	writeData(w, http.StatusCreated, result.Code)
}

type franchiseInviteRequest struct {
	Emails         []string `json:"emails"`
	InviteType     string   `json:"inviteType"`
	Code           string   `json:"code"`
	SourceCampaign string   `json:"sourceCampaign"`
}

func (s *Server) handleFranchiseInvites(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid franchise id")
		return
	}

	var req franchiseInviteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Emails) == 0 {
		writeValidationErrors(w, map[string]string{"emails": "At least one email is required"})
		return
	}

	results, err := s.franchises.Invite(r.Context(), id, franchises.InviteRequest{
		Emails:         req.Emails,
		InviteType:     req.InviteType,
		Code:           req.Code,
		SourceCampaign: req.SourceCampaign,
	})
	if err != nil {
		if errors.Is(err, store.ErrFranchiseNotFound) {
			writeError(w, http.StatusNotFound, "Franchise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to send invites")
		return
	}
	writeList(w, listResponse{Data: results, Count: len(results)})
}
