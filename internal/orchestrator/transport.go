package orchestrator

import (
	"context"

	"github.com/Mihailchik/yt-summ/internal/telegram"
)

// ChatTransport is the narrow slice of the chat API the worker loop needs:
// long-poll updates in, messages out. The concrete Telegram client satisfies
// it; tests substitute fakes.
type ChatTransport interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendLongMessage(ctx context.Context, chatID int64, title, content string) error
}
