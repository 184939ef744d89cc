package summaries

import (
	"context"

	"github.com/Mihailchik/yt-summ/internal/models"
)

// UseCase runs the full processing sequence for one dequeued job:
// validation, transcript, pipeline, persistence, result formatting.
// The returned outcome always carries either summaries or a typed error.
type UseCase interface {
	Process(ctx context.Context, job *models.Job) *models.JobOutcome
}
