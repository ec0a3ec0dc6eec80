package content

import (
	"context"

	"parenthelper/internal/store"
)

// DefaultPostsLimit applies when the caller does not supply a limit.
const DefaultPostsLimit = 20

// Store captures the persistence needs for newsletter and blog workflows.
type Store interface {
	SubscribeNewsletter(ctx context.Context, email, postcode string) error
	PublishedPosts(ctx context.Context, limit int) ([]store.BlogPost, error)
	PostBySlug(ctx context.Context, slug string) (store.BlogPost, error)
}

// Service coordinates newsletter signups and blog reads.
type Service interface {
	Subscribe(ctx context.Context, email, postcode string) error
	Posts(ctx context.Context, limit int) ([]store.BlogPost, error)
	Post(ctx context.Context, slug string) (store.BlogPost, error)
}

type service struct {
	store Store
}

// New constructs the content Service.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Subscribe(ctx context.Context, email, postcode string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.SubscribeNewsletter(ctx, email, postcode)
}

func (s *service) Posts(ctx context.Context, limit int) ([]store.BlogPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPostsLimit
	}
	return s.store.PublishedPosts(ctx, limit)
}

func (s *service) Post(ctx context.Context, slug string) (store.BlogPost, error) {
	if err := ctx.Err(); err != nil {
		return store.BlogPost{}, err
	}
	return s.store.PostBySlug(ctx, slug)
}
