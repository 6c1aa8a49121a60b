package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"matruraksha-bot/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeHandler struct {
	events []core.Event
	err    error
}

func (f *fakeHandler) Handle(_ context.Context, ev core.Event) error {
	f.events = append(f.events, ev)
	return f.err
}

func post(t *testing.T, srv *Server, body string) (*httptest.ResponseRecorder, *fakeHandler) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	srv.ServeHTTP(rec, req)
	return rec, srv.Bot.(*fakeHandler)
}

func newTestServer() *Server {
	return NewServer(&fakeHandler{}, zap.NewNop())
}

func TestWebhookStartCommand(t *testing.T) {
	rec, h := post(t, newTestServer(), `{"message":{"message_id":7,"chat":{"id":100},"text":"/start"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.events, 1)
	assert.Equal(t, core.EventStart, h.events[0].Kind)
	assert.Equal(t, "100", h.events[0].SessionKey)
}

func TestWebhookRegisterCommand(t *testing.T) {
	_, h := post(t, newTestServer(), `{"message":{"message_id":7,"chat":{"id":100},"text":"/register"}}`)

	require.Len(t, h.events, 1)
	ev := h.events[0]
	assert.Equal(t, core.EventCallback, ev.Kind)
	require.NotNil(t, ev.Action)
	assert.Equal(t, core.ActionBeginRegistration, ev.Action.Kind)
}

func TestWebhookCancelCommand(t *testing.T) {
	_, h := post(t, newTestServer(), `{"message":{"chat":{"id":100},"text":" /cancel "}}`)

	require.Len(t, h.events, 1)
	assert.Equal(t, core.EventCancel, h.events[0].Kind)
}

func TestWebhookFreeText(t *testing.T) {
	_, h := post(t, newTestServer(), `{"message":{"chat":{"id":100},"text":"is spotting normal?"}}`)

	require.Len(t, h.events, 1)
	assert.Equal(t, core.EventText, h.events[0].Kind)
	assert.Equal(t, "is spotting normal?", h.events[0].Text)
}

func TestWebhookDocument(t *testing.T) {
	_, h := post(t, newTestServer(), `{"message":{"chat":{"id":100},"document":{"file_id":"f-1","file_name":"scan.pdf"}}}`)

	require.Len(t, h.events, 1)
	ev := h.events[0]
	assert.Equal(t, core.EventDocument, ev.Kind)
	require.NotNil(t, ev.Attachment)
	assert.Equal(t, "f-1", ev.Attachment.FileID)
	assert.Equal(t, "scan.pdf", ev.Attachment.FileName)
	assert.False(t, ev.Attachment.Photo)
}

func TestWebhookPhotoTakesLargestVariant(t *testing.T) {
	_, h := post(t, newTestServer(), `{"message":{"chat":{"id":100},"photo":[{"file_id":"small"},{"file_id":"medium"},{"file_id":"large"}]}}`)

	require.Len(t, h.events, 1)
	ev := h.events[0]
	assert.Equal(t, core.EventDocument, ev.Kind)
	require.NotNil(t, ev.Attachment)
	assert.Equal(t, "large", ev.Attachment.FileID)
	assert.True(t, ev.Attachment.Photo)
}

func TestWebhookCallbackAction(t *testing.T) {
	_, h := post(t, newTestServer(), `{"callback_query":{"data":"switch_mother_m-2","message":{"message_id":42,"chat":{"id":100}}}}`)

	require.Len(t, h.events, 1)
	ev := h.events[0]
	assert.Equal(t, core.EventCallback, ev.Kind)
	assert.Equal(t, "42", ev.MessageID)
	require.NotNil(t, ev.Action)
	assert.Equal(t, core.ActionSwitchProfile, ev.Action.Kind)
	assert.Equal(t, "m-2", ev.Action.ProfileID)
}

func TestWebhookLanguageCallbackBecomesText(t *testing.T) {
	_, h := post(t, newTestServer(), `{"callback_query":{"data":"lang_hi","message":{"message_id":42,"chat":{"id":100}}}}`)

	require.Len(t, h.events, 1)
	ev := h.events[0]
	assert.Equal(t, core.EventText, ev.Kind)
	assert.Equal(t, "lang_hi", ev.Text)
}

func TestWebhookUnknownCallbackAcknowledged(t *testing.T) {
	rec, h := post(t, newTestServer(), `{"callback_query":{"data":"garbage","message":{"chat":{"id":100}}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, h.events)
}

func TestWebhookHandlerErrorStillAcknowledged(t *testing.T) {
	srv := NewServer(&fakeHandler{err: assert.AnError}, zap.NewNop())
	rec, _ := post(t, srv, `{"message":{"chat":{"id":100},"text":"/start"}}`)

	assert.Equal(t, http.StatusOK, rec.Code, "telegram must not redeliver the update")
}

func TestWebhookInvalidJSON(t *testing.T) {
	rec, _ := post(t, newTestServer(), `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	newTestServer().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	newTestServer().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
