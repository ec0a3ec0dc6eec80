package accounts

import "context"

// Store captures the persistence needs for provider account workflows.
type Store interface {
	CreateAccount(ctx context.Context, email, password, name string) error
	Authenticate(ctx context.Context, email, password string) (string, error)
	UserIDByToken(ctx context.Context, token string) (int64, error)
}

// Service coordinates provider account signup, login and session checks.
type Service interface {
	Signup(ctx context.Context, email, password, name string) error
	Login(ctx context.Context, email, password string) (string, error)
	Verify(ctx context.Context, token string) (int64, error)
}

type service struct {
	store Store
}

// New constructs the accounts Service.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Signup(ctx context.Context, email, password, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.CreateAccount(ctx, email, password, name)
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.store.Authenticate(ctx, email, password)
}

func (s *service) Verify(ctx context.Context, token string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.store.UserIDByToken(ctx, token)
}
