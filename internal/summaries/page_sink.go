package summaries

import (
	"context"
	"time"
)

// PageSink is the hosted page-database sink (Notion). All operations are
// best-effort from the core's point of view.
type PageSink interface {
	UpsertPage(ctx context.Context, runID int64, url string, createdAt time.Time) (string, error)
	SetRichText(ctx context.Context, pageID, property, text string) error
}
