package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/pkg/errors"
)

const (
	notionBaseURL    = "https://api.notion.com/v1"
	notionAPIVersion = "2022-06-28"
)

// notionPageSink writes run pages into a Notion database. A run is looked up
// by its ID property so repeated submissions update the same page.
type notionPageSink struct {
	httpClient *http.Client
	token      string
	databaseID string
	propMaxLen int
}

func NewNotionPageSink(token, databaseID string, propMaxLen int) summaries.PageSink {
	return &notionPageSink{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		token:      token,
		databaseID: databaseID,
		propMaxLen: propMaxLen,
	}
}

func (n *notionPageSink) UpsertPage(ctx context.Context, runID int64, url string, createdAt time.Time) (string, error) {
	pageID, err := n.findPage(ctx, runID)
	if err != nil {
		return "", err
	}
	if pageID != "" {
		return pageID, nil
	}

	body := map[string]interface{}{
		"parent": map[string]string{"database_id": n.databaseID},
		"properties": map[string]interface{}{
			"ID": map[string]interface{}{
				"title": []map[string]interface{}{
					{"text": map[string]string{"content": fmt.Sprintf("%d", runID)}},
				},
			},
			"Link": map[string]string{"url": url},
			"Created": map[string]interface{}{
				"date": map[string]string{"start": createdAt.Format(time.RFC3339)},
			},
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := n.do(ctx, http.MethodPost, "/pages", body, &created); err != nil {
		return "", errors.Wrap(err, "notionPageSink.UpsertPage")
	}
	return created.ID, nil
}

func (n *notionPageSink) SetRichText(ctx context.Context, pageID, property, text string) error {
	text = truncateProp(text, n.propMaxLen)
	body := map[string]interface{}{
		"properties": map[string]interface{}{
			property: map[string]interface{}{
				"rich_text": []map[string]interface{}{
					{"text": map[string]string{"content": text}},
				},
			},
		},
	}
	if err := n.do(ctx, http.MethodPatch, "/pages/"+pageID, body, nil); err != nil {
		return errors.Wrap(err, "notionPageSink.SetRichText")
	}
	return nil
}

// truncateProp caps property text at max characters. Notion counts
// characters, not bytes, and a byte cut could land inside a rune.
func truncateProp(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

func (n *notionPageSink) findPage(ctx context.Context, runID int64) (string, error) {
	body := map[string]interface{}{
		"filter": map[string]interface{}{
			"property": "ID",
			"title":    map[string]string{"equals": fmt.Sprintf("%d", runID)},
		},
		"page_size": 1,
	}
	var result struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := n.do(ctx, http.MethodPost, "/databases/"+n.databaseID+"/query", body, &result); err != nil {
		return "", errors.Wrap(err, "notionPageSink.findPage")
	}
	if len(result.Results) == 0 {
		return "", nil
	}
	return result.Results[0].ID, nil
}

func (n *notionPageSink) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, notionBaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Notion-Version", notionAPIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notion api status %d: %s", resp.StatusCode, string(data))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
