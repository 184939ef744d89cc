package summaries

import "context"

// AWSRepository archives raw transcripts to object storage. Notion
// properties truncate long text; the archive keeps the originals.
type AWSRepository interface {
	ArchiveTranscript(ctx context.Context, videoID string, runID int64, content string) error
}
