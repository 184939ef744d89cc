package summaries

import "context"

// Prompt identifiers for the five pipeline stages.
const (
	PromptClean     = "CLEAN"
	PromptFull      = "FULL"
	PromptMiddle    = "MIDDLE_10"
	PromptShort     = "SHORT_300"
	PromptResources = "RESOURCES"
)

// SummarizationModel sends one filled prompt to the language model and
// returns its raw text response. Credential/model rotation and the
// transient-retry policy live behind this interface.
type SummarizationModel interface {
	Call(ctx context.Context, promptID string, inputText string) (string, error)
}
