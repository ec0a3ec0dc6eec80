package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"parenthelper/internal/app/bookings"
	"parenthelper/internal/app/classes"
	"parenthelper/internal/app/franchises"
	"parenthelper/internal/app/localcontext"
	"parenthelper/internal/app/providers"
	"parenthelper/internal/mailer"
	"parenthelper/internal/store"
	"parenthelper/shared/go/models"
)

type stubClassService struct {
	listResponse []store.Class
	listErr      error
	lastFilter   store.ClassFilter

	single    store.Class
	singleErr error

	searchResponse []store.Class
	searchErr      error

	categories []string
	towns      []string
}

func (s *stubClassService) List(ctx context.Context, filter store.ClassFilter) ([]store.Class, error) {
	s.lastFilter = filter
	return s.listResponse, s.listErr
}

func (s *stubClassService) Get(ctx context.Context, id int64) (store.Class, error) {
	return s.single, s.singleErr
}

func (s *stubClassService) Featured(ctx context.Context, limit int) ([]store.Class, error) {
	return s.listResponse, s.listErr
}

func (s *stubClassService) ByTown(ctx context.Context, town string, limit int) ([]store.Class, error) {
	return s.listResponse, s.listErr
}

func (s *stubClassService) ByCategory(ctx context.Context, category string, limit int) ([]store.Class, error) {
	return s.listResponse, s.listErr
}

func (s *stubClassService) Search(ctx context.Context, term string, limit int) ([]store.Class, error) {
	return s.searchResponse, s.searchErr
}

func (s *stubClassService) Categories(ctx context.Context) ([]string, error) {
	return s.categories, nil
}

func (s *stubClassService) Towns(ctx context.Context, search string, limit int) ([]string, error) {
	return s.towns, nil
}

type stubProviderService struct {
	searchResponse []store.ProviderSummary

	claimResult providers.ClaimResult
	claimErr    error
	lastClaim   providers.ClaimRequest
}

func (s *stubProviderService) Search(ctx context.Context, search string, limit int) ([]store.ProviderSummary, error) {
	return s.searchResponse, nil
}

func (s *stubProviderService) Claim(ctx context.Context, providerID int64, req providers.ClaimRequest) (providers.ClaimResult, error) {
	s.lastClaim = req
	return s.claimResult, s.claimErr
}

type stubFranchiseService struct {
	listResponse []models.Franchise
	created      models.Franchise
	createErr    error
}

func (s *stubFranchiseService) List(ctx context.Context, search string, limit int) ([]models.Franchise, error) {
	return s.listResponse, nil
}

func (s *stubFranchiseService) Create(ctx context.Context, f models.Franchise) (models.Franchise, error) {
	return s.created, s.createErr
}

func (s *stubFranchiseService) Update(ctx context.Context, id int64, update models.FranchiseUpdate) (models.Franchise, error) {
	return models.Franchise{}, nil
}

func (s *stubFranchiseService) Providers(ctx context.Context, franchiseID int64) ([]models.FranchiseProvider, error) {
	return nil, nil
}

func (s *stubFranchiseService) AttachProvider(ctx context.Context, franchiseID, providerID int64) error {
	return nil
}

func (s *stubFranchiseService) DetachProvider(ctx context.Context, franchiseID, providerID int64) error {
	return nil
}

func (s *stubFranchiseService) DiscountCodes(ctx context.Context, franchiseID int64) ([]models.FranchiseDiscountCode, error) {
	return nil, nil
}

func (s *stubFranchiseService) IssueDiscountCode(ctx context.Context, franchiseID int64, req franchises.IssueCodeRequest) (franchises.IssueCodeResult, error) {
	return franchises.IssueCodeResult{}, nil
}

func (s *stubFranchiseService) Invite(ctx context.Context, franchiseID int64, req franchises.InviteRequest) ([]franchises.InviteResult, error) {
	return nil, nil
}

type stubLocalContextService struct {
	response localcontext.Context
}

func (s *stubLocalContextService) ForTown(ctx context.Context, town string) (localcontext.Context, error) {
	return s.response, nil
}

type stubBookingService struct {
	created store.BookingRequest
	err     error
}

func (s *stubBookingService) Create(ctx context.Context, classID int64, req bookings.Request) (store.BookingRequest, error) {
	return s.created, s.err
}

type stubContentService struct {
	subscribeErr error
	posts        []store.BlogPost
	post         store.BlogPost
	postErr      error
}

func (s *stubContentService) Subscribe(ctx context.Context, email, postcode string) error {
	return s.subscribeErr
}

func (s *stubContentService) Posts(ctx context.Context, limit int) ([]store.BlogPost, error) {
	return s.posts, nil
}

func (s *stubContentService) Post(ctx context.Context, slug string) (store.BlogPost, error) {
	return s.post, s.postErr
}

type stubAccountService struct {
	signupErr error
	token     string
	loginErr  error
	userID    int64
	verifyErr error
}

func (s *stubAccountService) Signup(ctx context.Context, email, password, name string) error {
	return s.signupErr
}

func (s *stubAccountService) Login(ctx context.Context, email, password string) (string, error) {
	return s.token, s.loginErr
}

func (s *stubAccountService) Verify(ctx context.Context, token string) (int64, error) {
	return s.userID, s.verifyErr
}

type stubClaimMailer struct {
	outcome mailer.Outcome
	sent    []mailer.ListingClaimNotification
}

func (s *stubClaimMailer) SendListingClaimNotification(ctx context.Context, n mailer.ListingClaimNotification) mailer.Outcome {
	s.sent = append(s.sent, n)
	return s.outcome
}

type serverStubs struct {
	classes      *stubClassService
	providers    *stubProviderService
	franchises   *stubFranchiseService
	localContext *stubLocalContextService
	bookings     *stubBookingService
	content      *stubContentService
	accounts     *stubAccountService
	claimMailer  *stubClaimMailer
}

func newTestServer(adminKey string) (*Server, *serverStubs) {
	stubs := &serverStubs{
		classes:      &stubClassService{},
		providers:    &stubProviderService{},
		franchises:   &stubFranchiseService{},
		localContext: &stubLocalContextService{},
		bookings:     &stubBookingService{},
		content:      &stubContentService{},
		accounts:     &stubAccountService{},
		claimMailer:  &stubClaimMailer{outcome: mailer.OutcomeDelivered},
	}
	srv := New(
		stubs.classes, stubs.providers, stubs.franchises, stubs.localContext,
		stubs.bookings, stubs.content, stubs.accounts, stubs.claimMailer,
		adminKey,
	)
	return srv, stubs
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestListClassesParsesFilters(t *testing.T) {
	srv, stubs := newTestServer("")
	stubs.classes.listResponse = []store.Class{{ID: 1, Name: "Baby Music"}}

	rec := doJSON(t, srv.Routes(), http.MethodGet,
		"/api/classes?town=Winchester&category=music&ageGroup=toddler&featured=true&limit=5&offset=10", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	f := stubs.classes.lastFilter
	if f.Town != "Winchester" || f.Category != "music" {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if f.AgeMin == nil || *f.AgeMin != 13 || f.AgeMax == nil || *f.AgeMax != 36 {
		t.Fatalf("toddler age range not applied: %+v", f)
	}
	if f.Featured == nil || !*f.Featured {
		t.Fatalf("featured flag not applied: %+v", f)
	}
	if f.Limit != 5 || f.Offset != 10 {
		t.Fatalf("pagination not applied: %+v", f)
	}

	var resp struct {
		Success bool          `json:"success"`
		Data    []store.Class `json:"data"`
		Count   int           `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Count != 1 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestListClassesRejectsBadAgeGroup(t *testing.T) {
	srv, _ := newTestServer("")

	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/classes?ageGroup=teen", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetClassNotFound(t *testing.T) {
	srv, stubs := newTestServer("")
	stubs.classes.singleErr = store.ErrClassNotFound

	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/classes/99", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatal("error envelope must have success=false")
	}
}

func TestSearchClassesRejectsEmptyTerm(t *testing.T) {
	srv, stubs := newTestServer("")
	stubs.classes.searchErr = classes.ErrEmptySearchTerm

	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/classes/search/%20", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListingClaimRequiresConsent(t *testing.T) {
	srv, stubs := newTestServer("")

	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/classes/1/claim", map[string]any{
		"fullName":       "Jo Smith",
		"email":          "jo@example.com",
		"role":           "owner",
		"message":        "I run these sessions and would like to manage the listing.",
		"consentToEmail": false,
	}, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := resp.Errors["consentToEmail"]; !ok {
		t.Fatalf("expected consent field error, got %+v", resp.Errors)
	}
	if len(stubs.claimMailer.sent) != 0 {
		t.Fatal("validation failure must not reach the mailer")
	}
}

func TestListingClaimSuccessReportsEmailSent(t *testing.T) {
	srv, stubs := newTestServer("")
	stubs.classes.single = store.Class{ID: 1, Name: "Baby Music"}

	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/classes/1/claim", map[string]any{
		"fullName":       "Jo Smith",
		"email":          "jo@example.com",
		"role":           "owner",
		"message":        "I run these sessions and would like to manage the listing.",
		"consentToEmail": true,
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp listingClaimResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || !resp.EmailSent {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(stubs.claimMailer.sent) != 1 || stubs.claimMailer.sent[0].ClassName != "Baby Music" {
		t.Fatalf("unexpected notification: %+v", stubs.claimMailer.sent)
	}
}

func TestProviderClaimNotFound(t *testing.T) {
	srv, stubs := newTestServer("")
	stubs.providers.claimErr = store.ErrProviderNotFound

	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/providers/404/claim", map[string]any{
		"fullName":     "Jo Smith",
		"email":        "jo@example.com",
		"relationship": "owner",
	}, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProviderClaimConflict(t *testing.T) {
	srv, stubs := newTestServer("")
	stubs.providers.claimErr = store.ErrProviderAlreadyClaimed

	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/providers/1/claim", map[string]any{
		"fullName":     "Jo Smith",
		"email":        "jo@example.com",
		"relationship": "owner",
	}, nil)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestProviderSearchRequiresQuery(t *testing.T) {
	srv, _ := newTestServer("")

	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/providers/search", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFranchiseAdminGate(t *testing.T) {
	srv, _ := newTestServer("secret")

	body := map[string]any{"name": "Little Kickers"}

	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/franchises", body, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without key, got %d", rec.Code)
	}

	rec = doJSON(t, srv.Routes(), http.MethodPost, "/api/franchises", body,
		map[string]string{"x-admin-key": "wrong"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", rec.Code)
	}

	rec = doJSON(t, srv.Routes(), http.MethodPost, "/api/franchises", body,
		map[string]string{"x-admin-key": "secret"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with key, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestFranchiseAdminGateOpenWithoutKey(t *testing.T) {
	srv, _ := newTestServer("")

	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/franchises",
		map[string]any{"name": "Little Kickers"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 when gate disabled, got %d", rec.Code)
	}
}

func TestFranchiseListIsPublic(t *testing.T) {
	srv, _ := newTestServer("secret")

	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/franchises", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("franchise list must not require the admin key, got %d", rec.Code)
	}
}

func TestBookingRequestUnavailableClass(t *testing.T) {
	srv, stubs := newTestServer("")
	stubs.bookings.err = bookings.ErrBookingUnavailable

	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/classes/1/booking-requests", map[string]any{
		"parentName":  "Jo Smith",
		"parentEmail": "jo@example.com",
		"childName":   "Sam",
		"childAge":    2,
	}, nil)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestNewsletterDuplicateEmail(t *testing.T) {
	srv, stubs := newTestServer("")
	stubs.content.subscribeErr = store.ErrEmailSubscribed

	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/newsletter",
		map[string]any{"email": "jo@example.com"}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv, stubs := newTestServer("")
	stubs.accounts.loginErr = store.ErrInvalidCredentials

	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/accounts/login",
		map[string]any{"email": "jo@example.com", "password": "nope"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCurrentAccountRequiresBearerToken(t *testing.T) {
	srv, stubs := newTestServer("")
	stubs.accounts.userID = 7

	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/accounts/me", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, srv.Routes(), http.MethodGet, "/api/accounts/me", nil,
		map[string]string{"Authorization": "Bearer session-token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	stubs.accounts.verifyErr = store.ErrUnauthorized
	rec = doJSON(t, srv.Routes(), http.MethodGet, "/api/accounts/me", nil,
		map[string]string{"Authorization": "Bearer stale-token"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for stale session, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer("")

	rec := doJSON(t, srv.Routes(), http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
