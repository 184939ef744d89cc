package pipeline

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Mihailchik/yt-summ/internal/models"
	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/Mihailchik/yt-summ/pkg/logger"
)

const (
	shortLimit         = 300
	shortBoundarySlack = 50
	middleSentenceCap  = 10
)

var (
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	sentenceSplit     = regexp.MustCompile(`[.!?]+`)
)

// Pipeline drives the five-stage summarization sequence over one transcript.
// Stages run one at a time; a failure in any stage collapses the whole run
// to the error state (no partial output is ever surfaced).
type Pipeline struct {
	model  summaries.SummarizationModel
	logger logger.Logger
}

func NewPipeline(model summaries.SummarizationModel, logger logger.Logger) *Pipeline {
	return &Pipeline{model: model, logger: logger}
}

// Run executes CLEAN → FULL → MIDDLE → SHORT → RESOURCES. Every stage's
// latency is recorded even when the run fails partway.
func (p *Pipeline) Run(ctx context.Context, transcript string) *models.PipelineResult {
	start := time.Now()
	perf := make(map[string]int64)

	result := &models.PipelineResult{Performance: perf}

	cleanText, links, err := p.runClean(ctx, transcript, perf)
	if err != nil {
		return models.FailedPipelineResult(models.AsTypedError(err), finish(perf, start))
	}
	result.CleanText = cleanText
	result.Links = links

	if result.FullSummary, err = p.runFull(ctx, cleanText, perf); err != nil {
		return models.FailedPipelineResult(models.AsTypedError(err), finish(perf, start))
	}
	if result.MiddleSummary, err = p.runMiddle(ctx, cleanText, perf); err != nil {
		return models.FailedPipelineResult(models.AsTypedError(err), finish(perf, start))
	}
	if result.ShortSummary, err = p.runShort(ctx, cleanText, perf); err != nil {
		return models.FailedPipelineResult(models.AsTypedError(err), finish(perf, start))
	}
	if result.Resources, err = p.runResources(ctx, cleanText, links, perf); err != nil {
		return models.FailedPipelineResult(models.AsTypedError(err), finish(perf, start))
	}

	finish(perf, start)
	p.logger.Infof("pipeline done clean_len=%d links=%d resources=%d total_ms=%d",
		len(result.CleanText), len(result.Links), len(result.Resources), perf["total_ms"])
	return result
}

func finish(perf map[string]int64, start time.Time) map[string]int64 {
	perf["total_ms"] = time.Since(start).Milliseconds()
	return perf
}

type cleanPayload struct {
	Clean string   `json:"clean"`
	Links []string `json:"links"`
}

// runClean asks the model to strip ads and filler and extract links. The
// response must be JSON; a malformed reply gets one substring repair and one
// clarification retry before the stage fails. An empty clean result falls
// back to the raw transcript so the rest of the pipeline still runs.
func (p *Pipeline) runClean(ctx context.Context, transcript string, perf map[string]int64) (string, []string, error) {
	stageStart := time.Now()
	defer func() { perf["clean_ms"] = time.Since(stageStart).Milliseconds() }()

	raw, err := p.model.Call(ctx, summaries.PromptClean, transcript)
	if err != nil {
		return "", nil, err
	}

	payload, parseErr := parseCleanResponse(raw)
	if parseErr != nil {
		p.logger.Warnf("clean stage returned invalid json, retrying with clarification: %v", parseErr)
		clarified := transcript + "\n\nReturn strict JSON in the exact format: {\"clean\":\"text\",\"links\":[\"url1\",\"url2\"]}"
		retryRaw, retryErr := p.model.Call(ctx, summaries.PromptClean, clarified)
		if retryErr != nil {
			return "", nil, retryErr
		}
		if payload, parseErr = parseCleanResponse(retryRaw); parseErr != nil {
			return "", nil, models.NewTypedError(models.ErrCodeInvalidJSON, "clean stage: "+parseErr.Error())
		}
	}

	cleanText := payload.Clean
	if cleanText == "" {
		p.logger.Warn("clean stage produced empty text, falling back to raw transcript")
		cleanText = transcript
	}

	var links []string
	for _, link := range payload.Links {
		if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
			links = append(links, link)
		}
	}
	return cleanText, links, nil
}

func parseCleanResponse(raw string) (*cleanPayload, error) {
	payload := &cleanPayload{}
	if err := json.Unmarshal([]byte(raw), payload); err == nil {
		return payload, nil
	}
	match := jsonObjectPattern.FindString(raw)
	if match == "" {
		return nil, models.NewTypedError(models.ErrCodeInvalidJSON, "no json object in response")
	}
	if err := json.Unmarshal([]byte(match), payload); err != nil {
		return nil, models.NewTypedError(models.ErrCodeInvalidJSON, err.Error())
	}
	return payload, nil
}

func (p *Pipeline) runFull(ctx context.Context, cleanText string, perf map[string]int64) (string, error) {
	stageStart := time.Now()
	defer func() { perf["full_ms"] = time.Since(stageStart).Milliseconds() }()

	raw, err := p.model.Call(ctx, summaries.PromptFull, cleanText)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// runMiddle targets exactly ten sentences. Overruns are cut to the first
// ten; shortfalls are logged and accepted as-is.
func (p *Pipeline) runMiddle(ctx context.Context, cleanText string, perf map[string]int64) (string, error) {
	stageStart := time.Now()
	defer func() { perf["middle_ms"] = time.Since(stageStart).Milliseconds() }()

	raw, err := p.model.Call(ctx, summaries.PromptMiddle, cleanText)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)

	// Some model replies wrap the summary in JSON.
	var wrapped struct {
		Middle string `json:"middle_800"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && wrapped.Middle != "" {
		text = wrapped.Middle
	}

	sentences := splitSentences(text)
	if len(sentences) > middleSentenceCap {
		text = strings.Join(sentences[:middleSentenceCap], ". ") + "."
		p.logger.Infof("middle summary truncated from %d to %d sentences", len(sentences), middleSentenceCap)
	} else if len(sentences) < middleSentenceCap {
		p.logger.Infof("middle summary short: %d sentences", len(sentences))
	}
	return text, nil
}

func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceSplit.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// runShort enforces the hard 300-character cap, preferring to cut at the
// last word boundary when one exists within the final 50 characters. The cap
// counts characters, not bytes, so non-ASCII summaries keep their full
// length and the cut never lands inside a rune.
func (p *Pipeline) runShort(ctx context.Context, cleanText string, perf map[string]int64) (string, error) {
	stageStart := time.Now()
	defer func() { perf["short_ms"] = time.Since(stageStart).Milliseconds() }()

	raw, err := p.model.Call(ctx, summaries.PromptShort, cleanText)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)
	runes := []rune(text)
	if len(runes) <= shortLimit {
		return text, nil
	}

	cut := runes[:shortLimit]
	for i := len(cut) - 1; i > shortLimit-shortBoundarySlack; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	p.logger.Infof("short summary truncated from %d to %d chars", len(runes), len(cut))
	return string(cut), nil
}

type resourcesPayload struct {
	Resources []struct {
		Name   string `json:"name"`
		Access string `json:"access_real"`
		Notes  string `json:"notes"`
	} `json:"resources_real_world"`
}

// runResources uses the links already extracted by CLEAN when present and
// only asks the model otherwise. Output is deduplicated preserving
// first-seen order.
func (p *Pipeline) runResources(ctx context.Context, cleanText string, links []string, perf map[string]int64) ([]string, error) {
	stageStart := time.Now()
	defer func() { perf["resources_ms"] = time.Since(stageStart).Milliseconds() }()

	if len(links) > 0 {
		return dedupe(links), nil
	}

	raw, err := p.model.Call(ctx, summaries.PromptResources, cleanText)
	if err != nil {
		return nil, err
	}
	return dedupe(parseResources(raw)), nil
}

func parseResources(raw string) []string {
	raw = strings.TrimSpace(raw)

	payload := &resourcesPayload{}
	if err := json.Unmarshal([]byte(raw), payload); err != nil {
		if match := jsonObjectPattern.FindString(raw); match != "" {
			_ = json.Unmarshal([]byte(match), payload)
		}
	}
	if len(payload.Resources) > 0 {
		var out []string
		for i, r := range payload.Resources {
			name := r.Name
			if name == "" {
				name = "resource"
			}
			line := name
			if r.Access != "" {
				line += " - " + r.Access
			}
			if r.Notes != "" {
				line += " - " + r.Notes
			}
			out = append(out, strconv.Itoa(i+1)+". "+line)
		}
		return out
	}

	// Line-oriented fallback.
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || len(line) <= 5 {
			continue
		}
		out = append(out, line)
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
