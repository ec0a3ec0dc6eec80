package classes

import (
	"context"
	"errors"
	"strings"

	"parenthelper/internal/store"
)

// ErrEmptySearchTerm rejects whitespace-only search input.
var ErrEmptySearchTerm = errors.New("search term is required")

// Default page sizes applied when the caller does not supply a limit.
const (
	DefaultFeaturedLimit = 10
	DefaultTownLimit     = 50
	DefaultSearchLimit   = 20
	DefaultTownsLimit    = 25
)

// Store captures the persistence needs for class listing workflows.
type Store interface {
	ListClasses(ctx context.Context, filter store.ClassFilter) ([]store.Class, error)
	ClassByID(ctx context.Context, id int64) (store.Class, error)
	SearchClasses(ctx context.Context, term string, limit int) ([]store.Class, error)
	Categories(ctx context.Context) ([]string, error)
	Towns(ctx context.Context, search string, limit int) ([]string, error)
}

// Service coordinates class listing queries.
type Service interface {
	List(ctx context.Context, filter store.ClassFilter) ([]store.Class, error)
	Get(ctx context.Context, id int64) (store.Class, error)
	Featured(ctx context.Context, limit int) ([]store.Class, error)
	ByTown(ctx context.Context, town string, limit int) ([]store.Class, error)
	ByCategory(ctx context.Context, category string, limit int) ([]store.Class, error)
	Search(ctx context.Context, term string, limit int) ([]store.Class, error)
	Categories(ctx context.Context) ([]string, error)
	Towns(ctx context.Context, search string, limit int) ([]string, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, filter store.ClassFilter) ([]store.Class, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListClasses(ctx, filter)
}

func (s *service) Get(ctx context.Context, id int64) (store.Class, error) {
	if err := ctx.Err(); err != nil {
		return store.Class{}, err
	}
	return s.store.ClassByID(ctx, id)
}

func (s *service) Featured(ctx context.Context, limit int) ([]store.Class, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	featured := true
	return s.List(ctx, store.ClassFilter{Featured: &featured, Limit: limit})
}

func (s *service) ByTown(ctx context.Context, town string, limit int) ([]store.Class, error) {
	if limit <= 0 {
		limit = DefaultTownLimit
	}
	return s.List(ctx, store.ClassFilter{Town: town, Limit: limit})
}

func (s *service) ByCategory(ctx context.Context, category string, limit int) ([]store.Class, error) {
	if limit <= 0 {
		limit = DefaultTownLimit
	}
	return s.List(ctx, store.ClassFilter{Category: category, Limit: limit})
}

func (s *service) Search(ctx context.Context, term string, limit int) ([]store.Class, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptySearchTerm
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return s.store.SearchClasses(ctx, term, limit)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Categories(ctx)
}

func (s *service) Towns(ctx context.Context, search string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTownsLimit
	}
	return s.store.Towns(ctx, search, limit)
}
