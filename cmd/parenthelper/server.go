package main

import (
	"net/http"
	"strings"

	"parenthelper/internal/app/accounts"
	"parenthelper/internal/app/bookings"
	"parenthelper/internal/app/classes"
	"parenthelper/internal/app/content"
	"parenthelper/internal/app/franchises"
	"parenthelper/internal/app/localcontext"
	"parenthelper/internal/app/providers"
	"parenthelper/internal/httpapi"
	"parenthelper/internal/mailer"
	"parenthelper/internal/payments"
	"parenthelper/internal/store"
	"parenthelper/shared/go/middleware"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	notifier := mailer.New(
		mailer.NewSendGridClient(cfg.SendGridAPIKey, cfg.EmailFrom),
		cfg.ClaimReviewTo,
		cfg.SignupBaseURL,
	)
	coupons := payments.NewStripeClient(cfg.StripeSecretKey, cfg.StripeDiscounts)

	classSvc := classes.New(dataStore)
	providerSvc := providers.New(dataStore, notifier, cfg.AutoApproveClaims)
	franchiseSvc := franchises.New(dataStore, coupons, notifier)
	localContextSvc := localcontext.New(dataStore)
	bookingSvc := bookings.New(dataStore)
	contentSvc := content.New(dataStore)
	accountSvc := accounts.New(dataStore)

	api := httpapi.New(
		classSvc,
		providerSvc,
		franchiseSvc,
		localContextSvc,
		bookingSvc,
		contentSvc,
		accountSvc,
		notifier,
		cfg.AdminAPIKey,
	)

	handler := withCORS(cfg.AllowedOrigins, api.Routes())
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization, x-admin-key")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
