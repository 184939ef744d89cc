package summaries

import (
	"context"

	"github.com/Mihailchik/yt-summ/internal/models"
)

// Repository is the durable run-record store. The core only appends and
// updates by record; it never deletes.
type Repository interface {
	CreateRun(ctx context.Context, record *models.RunRecord) error
	UpdateTranscript(ctx context.Context, record *models.RunRecord) error
	UpdateSummaries(ctx context.Context, record *models.RunRecord) error
	GetRunByID(ctx context.Context, runID int64) (*models.RunRecord, error)
}
