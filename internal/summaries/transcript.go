package summaries

import (
	"context"

	"github.com/Mihailchik/yt-summ/internal/models"
)

// TranscriptSource resolves a video link to transcript text and language.
// Failures are *models.TypedError with one of the transcription codes.
type TranscriptSource interface {
	Fetch(ctx context.Context, url string) (*models.Transcript, error)
}
