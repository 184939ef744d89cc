package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Mihailchik/yt-summ/internal/config"
	"github.com/pkg/errors"
)

// Update is one inbound item from the Bot API getUpdates call.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
	From      *User  `json:"from"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// Client talks to the Telegram Bot API: long-poll updates in, messages out.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	pollTimeout  int
	messageLimit int
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		// long poll holds the connection up to pollTimeout; give the HTTP
		// client a little headroom past it
		httpClient:   &http.Client{Timeout: time.Duration(cfg.Telegram.PollTimeoutSec+5) * time.Second},
		baseURL:      cfg.Telegram.APIBaseURL,
		token:        cfg.Telegram.BotToken,
		pollTimeout:  cfg.Telegram.PollTimeoutSec,
		messageLimit: cfg.Telegram.MessageLimit,
	}
}

// GetUpdates long-polls for new updates starting at offset (exclusive cursor
// semantics are the caller's: pass lastUpdateID+1).
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(c.pollTimeout))
	params.Set("allowed_updates", `["message"]`)

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", c.baseURL, c.token, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "telegram.GetUpdates.NewRequest")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "telegram.GetUpdates.Do")
	}
	defer resp.Body.Close()

	var api apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, errors.Wrap(err, "telegram.GetUpdates.Decode")
	}
	if !api.OK {
		return nil, fmt.Errorf("telegram getUpdates failed: %s", api.Description)
	}

	var updates []Update
	if err = json.Unmarshal(api.Result, &updates); err != nil {
		return nil, errors.Wrap(err, "telegram.GetUpdates.Unmarshal")
	}
	return updates, nil
}

// SendMessage pushes one message with HTML formatting. Text longer than the
// transport limit must be split by the caller (SendLongMessage does both).
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return errors.Wrap(err, "telegram.SendMessage.Marshal")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "telegram.SendMessage.NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "telegram.SendMessage.Do")
	}
	defer resp.Body.Close()

	var api apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return errors.Wrap(err, "telegram.SendMessage.Decode")
	}
	if !api.OK {
		return fmt.Errorf("telegram sendMessage failed: %s", api.Description)
	}
	return nil
}

// SendLongMessage sends titled content, splitting it into ordered parts when
// it exceeds the transport's single-message limit.
func (c *Client) SendLongMessage(ctx context.Context, chatID int64, title, content string) error {
	header := fmt.Sprintf("<b>%s</b>\n\n", title)
	if len(header)+len(content) <= c.messageLimit {
		return c.SendMessage(ctx, chatID, header+content)
	}

	parts := SplitMessage(content, c.messageLimit-len(header)-20)
	for i, part := range parts {
		partTitle := title
		if len(parts) > 1 {
			partTitle = fmt.Sprintf("%s (part %d/%d)", title, i+1, len(parts))
		}
		if err := c.SendMessage(ctx, chatID, fmt.Sprintf("<b>%s</b>\n\n%s", partTitle, part)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) MessageLimit() int {
	return c.messageLimit
}
