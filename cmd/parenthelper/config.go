package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL    string
	Addr           string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string

	AdminAPIKey       string
	AutoApproveClaims bool

	SendGridAPIKey string
	EmailFrom      string
	ClaimReviewTo  string
	SignupBaseURL  string

	StripeSecretKey string
	StripeDiscounts bool
}

func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}

	addr := fmt.Sprintf(":%s", envOrDefault("PORT", "8080"))
	origins := parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	return Config{
		DatabaseURL:    dsn,
		Addr:           addr,
		AllowedOrigins: origins,
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "json"),

		AdminAPIKey:       os.Getenv("ADMIN_API_KEY"),
		AutoApproveClaims: envBool("AUTO_APPROVE_PROVIDER_CLAIMS"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:      envOrDefault("EMAIL_FROM", "notification@parenthelper.co.uk"),
		ClaimReviewTo:  envOrDefault("CLAIM_REVIEW_EMAIL", "notification@parenthelper.co.uk"),
		SignupBaseURL:  envOrDefault("FRANCHISE_SIGNUP_BASE_URL", "https://parenthelper.co.uk/provider/signup"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripeDiscounts: envBool("ENABLE_STRIPE_DISCOUNTS"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
