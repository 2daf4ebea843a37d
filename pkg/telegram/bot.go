package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ds124wfegd/showcaller/pkg/retry"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-200 answer from the Bot API.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram API error: %d %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("telegram API error: %d", e.StatusCode)
}

// Rejected reports whether the bot was refused access to the chat, as opposed
// to a transient failure.
func (e *APIError) Rejected() bool {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

type Bot struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

func NewBot(token, chatID string) *Bot {
	return &Bot{
		token:   token,
		chatID:  chatID,
		baseURL: "https://api.telegram.org/bot" + token,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// Configured reports whether a bot token and a target chat are set.
func (b *Bot) Configured() bool {
	return b != nil && b.token != "" && b.chatID != ""
}

// CheckAccess asks the API whether the bot may post to its chat. A refusal is
// (false, nil); network trouble is an error.
func (b *Bot) CheckAccess(ctx context.Context) (bool, error) {
	params := url.Values{}
	params.Add("chat_id", b.chatID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/getChat?"+params.Encode(), nil)
	if err != nil {
		return false, err
	}

	err = b.do(req)
	if err == nil {
		return true, nil
	}
	if apiErr, ok := err.(*APIError); ok && apiErr.Rejected() {
		return false, nil
	}
	return false, err
}

func (b *Bot) SendMessage(ctx context.Context, chatID, text string) error {
	params := url.Values{}
	params.Add("chat_id", chatID)
	params.Add("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/sendMessage", strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return b.do(req)
}

// Notify posts the alert to the configured chat. Refusals are not retried.
func (b *Bot) Notify(ctx context.Context, title, body string) error {
	err := b.SendMessage(ctx, b.chatID, title+"\n"+body)
	if apiErr, ok := err.(*APIError); ok && apiErr.Rejected() {
		return retry.Permanent(err)
	}
	return err
}

func (b *Bot) do(req *http.Request) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var payload struct {
		Description string `json:"description"`
	}
	json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)
	return &APIError{StatusCode: resp.StatusCode, Description: payload.Description}
}
