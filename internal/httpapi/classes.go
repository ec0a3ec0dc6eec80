package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"parenthelper/internal/app/classes"
	"parenthelper/internal/mailer"
	"parenthelper/internal/store"
)

// ageGroup shorthands accepted by the list endpoint, expressed in months.
var ageGroups = map[string]struct{ min, max int }{
	"baby":      {0, 12},
	"toddler":   {13, 36},
	"preschool": {37, 60},
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := store.ClassFilter{
		Town:     query.Get("town"),
		Category: query.Get("category"),
	}

	if group := strings.ToLower(strings.TrimSpace(query.Get("ageGroup"))); group != "" {
		rng, ok := ageGroups[group]
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid ageGroup parameter")
			return
		}
		filter.AgeMin = &rng.min
		filter.AgeMax = &rng.max
	}
	if raw := query.Get("ageMin"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid ageMin parameter")
			return
		}
		filter.AgeMin = &v
	}
	if raw := query.Get("ageMax"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid ageMax parameter")
			return
		}
		filter.AgeMax = &v
	}
	if raw := query.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid featured parameter")
			return
		}
		filter.Featured = &featured
	}

	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}
	if limit != nil {
		filter.Limit = *limit
	}
	offset, ok := queryInt(r, "offset")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid offset parameter")
		return
	}
	if offset != nil {
		filter.Offset = *offset
	}

	results, err := s.classes.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch classes")
		return
	}
	writeList(w, listResponse{Data: emptyIfNil(results), Count: len(results)})
}

func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid class id")
		return
	}

	class, err := s.classes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrClassNotFound) {
			writeError(w, http.StatusNotFound, "Class not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch class")
		return
	}
	writeData(w, http.StatusOK, class)
}

func (s *Server) handleFeaturedClasses(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	results, err := s.classes.Featured(r.Context(), intOrZero(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch featured classes")
		return
	}
	writeList(w, listResponse{Data: emptyIfNil(results), Count: len(results)})
}

func (s *Server) handleClassesByTown(w http.ResponseWriter, r *http.Request) {
	town := r.PathValue("town")

	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	results, err := s.classes.ByTown(r.Context(), town, intOrZero(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch classes")
		return
	}
	writeList(w, listResponse{Data: emptyIfNil(results), Count: len(results), Town: town})
}

func (s *Server) handleClassesByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	results, err := s.classes.ByCategory(r.Context(), category, intOrZero(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch classes")
		return
	}
	writeList(w, listResponse{Data: emptyIfNil(results), Count: len(results), Category: category})
}

func (s *Server) handleSearchClasses(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")

	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	results, err := s.classes.Search(r.Context(), term, intOrZero(limit))
	if err != nil {
		if errors.Is(err, classes.ErrEmptySearchTerm) {
			writeError(w, http.StatusBadRequest, "search term is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeList(w, listResponse{Data: emptyIfNil(results), Count: len(results), SearchTerm: term})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.classes.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}
	writeList(w, listResponse{Data: emptyIfNilStrings(categories), Count: len(categories)})
}

func (s *Server) handleTowns(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	towns, err := s.classes.Towns(r.Context(), r.URL.Query().Get("q"), intOrZero(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch towns")
		return
	}
	writeList(w, listResponse{Data: emptyIfNilStrings(towns), Count: len(towns)})
}

type listingClaimRequest struct {
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	Phone             string `json:"phone"`
	Website           string `json:"website"`
	ProofURL          string `json:"proofUrl"`
	Message           string `json:"message"`
	ContactPreference string `json:"contactPreference"`
	ConsentToEmail    bool   `json:"consentToEmail"`
}

type listingClaimResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	EmailSent bool   `json:"emailSent"`
}

func (s *Server) handleListingClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid class id")
		return
	}

	var req listingClaimRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.FullName) == "" {
		fields["fullName"] = "Full name is required"
	}
	if email := strings.TrimSpace(req.Email); email == "" {
		fields["email"] = "Email is required"
	} else if !strings.Contains(email, "@") {
		fields["email"] = "Email address is invalid"
	}
	if strings.TrimSpace(req.Role) == "" {
		fields["role"] = "Role is required"
	}
	if len(strings.TrimSpace(req.Message)) < 10 {
		fields["message"] = "Message must be at least 10 characters"
	}
	if !req.ConsentToEmail {
		fields["consentToEmail"] = "Consent to email contact is required"
	}
	if len(fields) > 0 {
		writeValidationErrors(w, fields)
		return
	}

	class, err := s.classes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrClassNotFound) {
			writeError(w, http.StatusNotFound, "Class not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch class")
		return
	}

	outcome := s.claimMailer.SendListingClaimNotification(r.Context(), mailer.ListingClaimNotification{
		ClassID:           class.ID,
		ClassName:         class.Name,
		FullName:          req.FullName,
		Email:             req.Email,
		Role:              req.Role,
		Phone:             req.Phone,
		Website:           req.Website,
		ProofURL:          req.ProofURL,
		Message:           req.Message,
		ContactPreference: req.ContactPreference,
	})

	writeJSON(w, http.StatusOK, listingClaimResponse{
		Success:   true,
		Message:   "Claim request received. Our team will be in touch shortly.",
		EmailSent: outcome == mailer.OutcomeDelivered,
	})
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func emptyIfNil(v []store.Class) []store.Class {
	if v == nil {
		return []store.Class{}
	}
	return v
}

func emptyIfNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
