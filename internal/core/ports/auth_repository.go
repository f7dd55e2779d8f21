package ports

import (
	"context"
	"time"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// UserRepository defines persistence for identity-provider accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// SessionStore keeps refresh-token sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domain.Session) error
	// Get returns domain.ErrSessionNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (domain.Session, error)
	// Retire keeps a rotated session alive for grace so that concurrent
	// requests holding the old token still refresh.
	Retire(ctx context.Context, token string, grace time.Duration) error
	Delete(ctx context.Context, token string) error
}

// SignInLimiter throttles repeated failed sign-ins for one email.
type SignInLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
