package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// CommandHandler is called when a user command is received and returns the reply.
type CommandHandler func(ctx context.Context, command string) string

// Command is a text message received from a chat.
type Command struct {
	UpdateID int64
	ChatID   string
	Text     string
}

// ParseUpdates decodes a getUpdates response.
func ParseUpdates(body []byte) ([]Command, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode updates: invalid json")
	}
	res := gjson.ParseBytes(body)
	if !res.Get("ok").Bool() {
		return nil, fmt.Errorf("telegram API error: %s", res.Get("description").String())
	}
	var out []Command
	for _, u := range res.Get("result").Array() {
		out = append(out, Command{
			UpdateID: u.Get("update_id").Int(),
			ChatID:   u.Get("message.chat.id").String(),
			Text:     strings.TrimSpace(u.Get("message.text").String()),
		})
	}
	return out, nil
}

// poll fetches one batch of updates and dispatches them. It returns the next offset.
func (t *TelegramNotifier) poll(ctx context.Context, offset int64, handler CommandHandler) (int64, error) {
	apiURL := fmt.Sprintf("%s?offset=%d&timeout=30", t.endpoint("getUpdates"), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return offset, fmt.Errorf("create polling request: %w", err)
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return offset, fmt.Errorf("polling request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return offset, fmt.Errorf("read polling response: %w", err)
	}

	updates, err := ParseUpdates(body)
	if err != nil {
		return offset, err
	}
	for _, u := range updates {
		offset = u.UpdateID + 1
		if u.Text == "" {
			continue
		}
		t.Logger.Info().Str("command", u.Text).Str("chat_id", u.ChatID).Msg("received command")
		reply := handler(ctx, u.Text)
		if reply == "" {
			continue
		}
		chatID := u.ChatID
		if chatID == "" {
			chatID = t.ChatID
		}
		if err := t.SendTo(ctx, chatID, reply); err != nil {
			t.Logger.Error().Err(err).Msg("send reply")
		}
	}
	return offset, nil
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			t.Logger.Info().Msg("telegram polling stopped")
			return
		default:
		}

		next, err := t.poll(ctx, offset, handler)
		if err != nil {
			if ctx.Err() != nil {
				t.Logger.Info().Msg("telegram polling stopped")
				return
			}
			t.Logger.Warn().Err(err).Msg("telegram polling failed")
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			continue
		}
		offset = next
	}
}
