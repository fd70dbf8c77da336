package out

import (
	"context"

	"dsaboost/internal/modules/progress/domain"
)

// Store persists progress rows keyed by (user, topic). Update runs fn on the
// current row (zero value with found=false when absent) inside one write
// transaction and stores the result.
type Store interface {
	Get(ctx context.Context, userID, topicID string) (domain.Progress, error)
	Update(ctx context.Context, userID, topicID string, fn func(current domain.Progress, found bool) (domain.Progress, error)) (domain.Progress, error)
	List(ctx context.Context, userID string) ([]domain.Progress, error)
	Delete(ctx context.Context, userID, topicID string) error
}

type Catalog interface {
	Topics() []domain.Topic
	Find(topicID string) (domain.Topic, bool)
}
