package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"matruraksha-bot/internal/core"

	"go.uber.org/zap"
)

// Handler consumes normalized chat events. Satisfied by *core.Bot.
type Handler interface {
	Handle(ctx context.Context, ev core.Event) error
}

// Server adapts Telegram webhook updates into core events. It implements
// http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Bot    Handler
	Logger *zap.Logger
}

// NewServer constructs a Server.
func NewServer(bot Handler, logger *zap.Logger) *Server {
	return &Server{Bot: bot, Logger: logger}
}

// ServeHTTP dispatches incoming requests based on the URL path. Minimal
// routing logic is implemented here to keep dependencies light.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := r.URL.Path
	switch {
	case path == "/webhook" && r.Method == http.MethodPost:
		s.handleWebhook(w, r.WithContext(ctx))
		return
	case path == "/healthz" && r.Method == http.MethodGet:
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
		return
	default:
		http.NotFound(w, r)
	}
}

// Telegram update wire shapes; only the fields the bot reads.

type update struct {
	Message       *message       `json:"message"`
	CallbackQuery *callbackQuery `json:"callback_query"`
}

type message struct {
	MessageID int64     `json:"message_id"`
	Chat      chat      `json:"chat"`
	Text      string    `json:"text"`
	Document  *document `json:"document"`
	Photo     []photo   `json:"photo"`
}

type chat struct {
	ID int64 `json:"id"`
}

type document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

type photo struct {
	FileID string `json:"file_id"`
}

type callbackQuery struct {
	Data    string   `json:"data"`
	Message *message `json:"message"`
}

// handleWebhook normalizes one Telegram update into a core event and hands it
// to the bot. Updates the bot cannot act on are acknowledged with 200 so
// Telegram does not redeliver them.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var upd update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}

	ev, ok := normalize(upd)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.Bot.Handle(r.Context(), ev); err != nil {
		s.Logger.Error("event handling failed",
			zap.String("session_key", ev.SessionKey),
			zap.Error(err),
		)
	}
	// Always 200: retries would replay the same user input.
	w.WriteHeader(http.StatusOK)
}

func normalize(upd update) (core.Event, bool) {
	if cq := upd.CallbackQuery; cq != nil && cq.Message != nil {
		ev := core.Event{
			SessionKey: strconv.FormatInt(cq.Message.Chat.ID, 10),
			MessageID:  strconv.FormatInt(cq.Message.MessageID, 10),
		}
		if strings.HasPrefix(cq.Data, core.CallbackLangPrefix) {
			// Language picks join the wizard's text path.
			ev.Kind = core.EventText
			ev.Text = cq.Data
			return ev, true
		}
		action, ok := core.ParseCallback(cq.Data)
		if !ok {
			return core.Event{}, false
		}
		ev.Kind = core.EventCallback
		ev.Action = &action
		return ev, true
	}

	msg := upd.Message
	if msg == nil {
		return core.Event{}, false
	}
	ev := core.Event{
		SessionKey: strconv.FormatInt(msg.Chat.ID, 10),
		MessageID:  strconv.FormatInt(msg.MessageID, 10),
	}

	if msg.Document != nil {
		ev.Kind = core.EventDocument
		ev.Attachment = &core.Attachment{
			FileID:   msg.Document.FileID,
			FileName: msg.Document.FileName,
		}
		return ev, true
	}
	if len(msg.Photo) > 0 {
		// Telegram sends size variants smallest first; take the largest.
		ev.Kind = core.EventDocument
		ev.Attachment = &core.Attachment{
			FileID: msg.Photo[len(msg.Photo)-1].FileID,
			Photo:  true,
		}
		return ev, true
	}

	switch strings.TrimSpace(msg.Text) {
	case "/start":
		ev.Kind = core.EventStart
	case "/register":
		ev.Kind = core.EventCallback
		ev.Action = &core.Action{Kind: core.ActionBeginRegistration}
	case "/cancel":
		ev.Kind = core.EventCancel
	default:
		ev.Kind = core.EventText
		ev.Text = msg.Text
	}
	return ev, true
}
