package port

import (
	"context"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
)

// FailureNotifier tells a user that an extraction job gave up.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, userEmail string, job *entity.ExtractionJob) error
}
