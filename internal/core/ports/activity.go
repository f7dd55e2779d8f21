package ports

import (
	"context"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// ActivityRepository persists the per-user activity feed.
type ActivityRepository interface {
	Record(ctx context.Context, a domain.Activity) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Activity, error)
}

// ActivityRecorder accepts activity entries for asynchronous persistence.
type ActivityRecorder interface {
	Enqueue(a domain.Activity)
}
