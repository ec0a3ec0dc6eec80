package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"parenthelper/internal/app/bookings"
	"parenthelper/internal/app/franchises"
	"parenthelper/internal/app/localcontext"
	"parenthelper/internal/app/providers"
	"parenthelper/internal/mailer"
	"parenthelper/internal/store"
	"parenthelper/shared/go/models"
)

// ClassService exposes class listing queries.
type ClassService interface {
	List(ctx context.Context, filter store.ClassFilter) ([]store.Class, error)
	Get(ctx context.Context, id int64) (store.Class, error)
	Featured(ctx context.Context, limit int) ([]store.Class, error)
	ByTown(ctx context.Context, town string, limit int) ([]store.Class, error)
	ByCategory(ctx context.Context, category string, limit int) ([]store.Class, error)
	Search(ctx context.Context, term string, limit int) ([]store.Class, error)
	Categories(ctx context.Context) ([]string, error)
	Towns(ctx context.Context, search string, limit int) ([]string, error)
}

// ProviderService exposes provider search and the claim workflow.
type ProviderService interface {
	Search(ctx context.Context, search string, limit int) ([]store.ProviderSummary, error)
	Claim(ctx context.Context, providerID int64, req providers.ClaimRequest) (providers.ClaimResult, error)
}

// FranchiseService exposes franchise administration.
type FranchiseService interface {
	List(ctx context.Context, search string, limit int) ([]models.Franchise, error)
	Create(ctx context.Context, f models.Franchise) (models.Franchise, error)
	Update(ctx context.Context, id int64, update models.FranchiseUpdate) (models.Franchise, error)
	Providers(ctx context.Context, franchiseID int64) ([]models.FranchiseProvider, error)
	AttachProvider(ctx context.Context, franchiseID, providerID int64) error
	DetachProvider(ctx context.Context, franchiseID, providerID int64) error
	DiscountCodes(ctx context.Context, franchiseID int64) ([]models.FranchiseDiscountCode, error)
	IssueDiscountCode(ctx context.Context, franchiseID int64, req franchises.IssueCodeRequest) (franchises.IssueCodeResult, error)
	Invite(ctx context.Context, franchiseID int64, req franchises.InviteRequest) ([]franchises.InviteResult, error)
}

// LocalContextService computes per-town enrichment.
type LocalContextService interface {
	ForTown(ctx context.Context, town string) (localcontext.Context, error)
}

// BookingService creates booking requests for bookable classes.
type BookingService interface {
	Create(ctx context.Context, classID int64, req bookings.Request) (store.BookingRequest, error)
}

// ContentService exposes newsletter signup and blog reads.
type ContentService interface {
	Subscribe(ctx context.Context, email, postcode string) error
	Posts(ctx context.Context, limit int) ([]store.BlogPost, error)
	Post(ctx context.Context, slug string) (store.BlogPost, error)
}

// AccountService exposes provider account signup, login and session checks.
type AccountService interface {
	Signup(ctx context.Context, email, password, name string) error
	Login(ctx context.Context, email, password string) (string, error)
	Verify(ctx context.Context, token string) (int64, error)
}

// ClaimMailer sends the class-listing claim notification.
type ClaimMailer interface {
	SendListingClaimNotification(ctx context.Context, n mailer.ListingClaimNotification) mailer.Outcome
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	classes      ClassService
	providers    ProviderService
	franchises   FranchiseService
	localContext LocalContextService
	bookings     BookingService
	content      ContentService
	accounts     AccountService
	claimMailer  ClaimMailer
	adminKey     string
}

// New configures a Server with the given services. An empty adminKey leaves
// the franchise admin routes open; production deployments must set one.
func New(
	classes ClassService,
	providers ProviderService,
	franchises FranchiseService,
	localContext LocalContextService,
	bookings BookingService,
	content ContentService,
	accounts AccountService,
	claimMailer ClaimMailer,
	adminKey string,
) *Server {
	return &Server{
		classes:      classes,
		providers:    providers,
		franchises:   franchises,
		localContext: localContext,
		bookings:     bookings,
		content:      content,
		accounts:     accounts,
		claimMailer:  claimMailer,
		adminKey:     adminKey,
	}
}

// Routes exposes the HTTP handlers for the class directory API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Class directory routes
	mux.HandleFunc("GET /api/classes", s.handleListClasses)
	mux.HandleFunc("GET /api/classes/featured", s.handleFeaturedClasses)
	mux.HandleFunc("GET /api/classes/town/{town}", s.handleClassesByTown)
	mux.HandleFunc("GET /api/classes/category/{category}", s.handleClassesByCategory)
	mux.HandleFunc("GET /api/classes/search/{term}", s.handleSearchClasses)
	mux.HandleFunc("GET /api/classes/{id}", s.handleGetClass)
	mux.HandleFunc("POST /api/classes/{id}/claim", s.handleListingClaim)
	mux.HandleFunc("POST /api/classes/{id}/booking-requests", s.handleCreateBookingRequest)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/towns", s.handleTowns)

	// Provider routes
	mux.HandleFunc("GET /api/providers/search", s.handleProviderSearch)
	mux.HandleFunc("POST /api/providers/{providerId}/claim", s.handleProviderClaim)

	// Franchise administration (gated by x-admin-key except the list)
	mux.HandleFunc("GET /api/franchises", s.handleListFranchises)
	mux.HandleFunc("POST /api/franchises", s.handleCreateFranchise)
	mux.HandleFunc("PATCH /api/franchises/{id}", s.handleUpdateFranchise)
	mux.HandleFunc("GET /api/franchises/{id}/providers", s.handleFranchiseProviders)
	mux.HandleFunc("POST /api/franchises/{id}/providers", s.handleAttachProvider)
	mux.HandleFunc("DELETE /api/franchises/{id}/providers/{providerId}", s.handleDetachProvider)
	mux.HandleFunc("GET /api/franchises/{id}/discount-codes", s.handleListDiscountCodes)
	mux.HandleFunc("POST /api/franchises/{id}/discount-codes", s.handleCreateDiscountCode)
	mux.HandleFunc("POST /api/franchises/{id}/invites", s.handleFranchiseInvites)

	// Local context
	mux.HandleFunc("GET /api/local-context/{town}", s.handleLocalContext)

	// Newsletter and blog
	mux.HandleFunc("POST /api/newsletter", s.handleNewsletterSubscribe)
	mux.HandleFunc("GET /api/blog", s.handleListPosts)
	mux.HandleFunc("GET /api/blog/{slug}", s.handleGetPost)

	// Provider accounts
	mux.HandleFunc("POST /api/accounts/signup", s.handleSignup)
	mux.HandleFunc("POST /api/accounts/login", s.handleLogin)
	mux.HandleFunc("GET /api/accounts/me", s.handleCurrentAccount)

	return mux
}

type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// listResponse wraps collection payloads. The optional echo fields repeat the
// route parameter that scoped the query.
type listResponse struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data"`
	Count      int    `json:"count"`
	Town       string `json:"town,omitempty"`
	Category   string `json:"category,omitempty"`
	SearchTerm string `json:"searchTerm,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeValidationErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Errors: fields})
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataResponse{Success: true, Data: data})
}

func writeList(w http.ResponseWriter, resp listResponse) {
	resp.Success = true
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// requireAdmin enforces the x-admin-key header. With no key configured the
// gate stays open so local development works without secrets.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.adminKey == "" {
		return true
	}
	if r.Header.Get("x-admin-key") != s.adminKey {
		writeError(w, http.StatusForbidden, "Admin key required")
		return false
	}
	return true
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, false
	}
	return &v, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func parseTimePtr(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
