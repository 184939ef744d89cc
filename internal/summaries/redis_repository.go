package summaries

import (
	"context"

	"github.com/Mihailchik/yt-summ/internal/models"
)

// RedisRepository caches fetched transcripts by video ID so re-submitted
// links skip the transcription provider.
type RedisRepository interface {
	GetTranscript(ctx context.Context, videoID string) (*models.Transcript, error)
	SetTranscript(ctx context.Context, videoID string, transcript *models.Transcript) error
}
