package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"matruraksha-bot/pkg"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Messenger sends, edits and resolves files through the chat platform's HTTP
// API. The platform itself stays an external collaborator: this client only
// covers the three calls the bot needs.
type Messenger struct {
	http    *resty.Client
	apiBase string
	token   string
	logger  *zap.Logger
}

// NewMessenger constructs a platform messenger for the given API base
// (e.g. https://api.telegram.org) and bot token.
func NewMessenger(apiBase, token string, timeout time.Duration, logger *zap.Logger) *Messenger {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Messenger{
		http:    client,
		apiBase: strings.TrimRight(apiBase, "/"),
		token:   token,
		logger:  logger,
	}
}

type sendResult struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Description string `json:"description"`
}

type fileResult struct {
	OK     bool `json:"ok"`
	Result struct {
		FilePath string `json:"file_path"`
	} `json:"result"`
	Description string `json:"description"`
}

func (m *Messenger) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", m.apiBase, m.token, name)
}

func markup(menu *pkg.Menu) map[string]any {
	if menu == nil {
		return nil
	}
	rows := make([][]map[string]string, 0, len(menu.Rows))
	for _, row := range menu.Rows {
		buttons := make([]map[string]string, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, map[string]string{
				"text":          b.Label,
				"callback_data": b.Data,
			})
		}
		rows = append(rows, buttons)
	}
	return map[string]any{"inline_keyboard": rows}
}

// Send posts a new message to the chat identified by sessionKey and returns
// the platform message id, used later for in-place edits.
func (m *Messenger) Send(ctx context.Context, sessionKey, text string, menu *pkg.Menu, mode pkg.ParseMode) (string, error) {
	body := map[string]any{
		"chat_id":                  sessionKey,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	if mode != pkg.ModePlain {
		body["parse_mode"] = string(mode)
	}
	if rm := markup(menu); rm != nil {
		body["reply_markup"] = rm
	}

	var result sendResult
	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(m.method("sendMessage"))
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	if !resp.IsSuccess() || !result.OK {
		return "", fmt.Errorf("send message: platform returned %d %s", resp.StatusCode(), result.Description)
	}
	return fmt.Sprintf("%d", result.Result.MessageID), nil
}

// Edit replaces the text and keyboard of an existing message in place.
func (m *Messenger) Edit(ctx context.Context, sessionKey, messageID, text string, menu *pkg.Menu, mode pkg.ParseMode) error {
	body := map[string]any{
		"chat_id":                  sessionKey,
		"message_id":               messageID,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	if mode != pkg.ModePlain {
		body["parse_mode"] = string(mode)
	}
	if rm := markup(menu); rm != nil {
		body["reply_markup"] = rm
	}

	var result sendResult
	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(m.method("editMessageText"))
	if err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	if !resp.IsSuccess() || !result.OK {
		return fmt.Errorf("edit message: platform returned %d %s", resp.StatusCode(), result.Description)
	}
	return nil
}

// FileURL resolves a platform file id to a durable download URL. Relative
// paths are resolved against the platform's file endpoint, mirroring how the
// platform reports file paths.
func (m *Messenger) FileURL(ctx context.Context, fileID string) (string, error) {
	var result fileResult
	resp, err := m.http.R().
		SetContext(ctx).
		SetQueryParam("file_id", fileID).
		SetResult(&result).
		Get(m.method("getFile"))
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}
	if !resp.IsSuccess() || !result.OK {
		return "", fmt.Errorf("get file: platform returned %d %s", resp.StatusCode(), result.Description)
	}

	path := result.Result.FilePath
	if strings.HasPrefix(path, "http") {
		return path, nil
	}
	return fmt.Sprintf("%s/file/bot%s/%s", m.apiBase, m.token, path), nil
}
