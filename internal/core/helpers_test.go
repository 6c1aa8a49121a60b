package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"matruraksha-bot/internal/session"
	"matruraksha-bot/pkg"

	"go.uber.org/zap"
)

// Fixed clock for deterministic stage and date assertions.
var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type sentMessage struct {
	SessionKey string
	Text       string
	Menu       *pkg.Menu
	Mode       pkg.ParseMode
}

type editedMessage struct {
	SessionKey string
	MessageID  string
	Text       string
	Menu       *pkg.Menu
	Mode       pkg.ParseMode
}

type fakeMessenger struct {
	sent    []sentMessage
	edits   []editedMessage
	fileURL string
	fileErr error
	sendErr error
}

func (m *fakeMessenger) Send(_ context.Context, sessionKey, text string, menu *pkg.Menu, mode pkg.ParseMode) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, sentMessage{sessionKey, text, menu, mode})
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

func (m *fakeMessenger) Edit(_ context.Context, sessionKey, messageID, text string, menu *pkg.Menu, mode pkg.ParseMode) error {
	m.edits = append(m.edits, editedMessage{sessionKey, messageID, text, menu, mode})
	return nil
}

func (m *fakeMessenger) FileURL(context.Context, string) (string, error) {
	if m.fileErr != nil {
		return "", m.fileErr
	}
	if m.fileURL != "" {
		return m.fileURL, nil
	}
	return "https://files.example/doc", nil
}

func (m *fakeMessenger) lastSent() sentMessage {
	return m.sent[len(m.sent)-1]
}

type fakeRepo struct {
	mu sync.Mutex

	profiles    []pkg.Profile
	profilesErr error

	insertedProfiles []pkg.RegistrationPayload
	insertProfile    *pkg.Profile
	insertProfileErr error

	recentUploads   []pkg.UploadRecord
	recentErr       error
	insertedUploads []pkg.UploadRecord
	insertUploadErr error

	history []string
}

func (r *fakeRepo) ProfilesBySessionKey(context.Context, string) ([]pkg.Profile, error) {
	if r.profilesErr != nil {
		return nil, r.profilesErr
	}
	return r.profiles, nil
}

func (r *fakeRepo) InsertProfile(_ context.Context, payload pkg.RegistrationPayload) (*pkg.Profile, error) {
	r.insertedProfiles = append(r.insertedProfiles, payload)
	if r.insertProfileErr != nil {
		return nil, r.insertProfileErr
	}
	if r.insertProfile != nil {
		return r.insertProfile, nil
	}
	return &pkg.Profile{ID: "fallback-id", Name: payload.Name, SessionKey: payload.SessionKey}, nil
}

func (r *fakeRepo) InsertUpload(_ context.Context, rec *pkg.UploadRecord) error {
	if r.insertUploadErr != nil {
		return r.insertUploadErr
	}
	r.insertedUploads = append(r.insertedUploads, *rec)
	return nil
}

func (r *fakeRepo) RecentUploads(context.Context, string, int) ([]pkg.UploadRecord, error) {
	if r.recentErr != nil {
		return nil, r.recentErr
	}
	return r.recentUploads, nil
}

func (r *fakeRepo) AppendHistory(_ context.Context, _, _, content, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, content)
	return nil
}

func (r *fakeRepo) historyLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

type fakeBackend struct {
	summary    *pkg.SummaryPayload
	summaryErr error

	registered    *pkg.Profile
	registerErr   error
	registerCalls int

	analysis   *pkg.AnalysisResult
	analyzeErr error
}

func (b *fakeBackend) FetchSummary(context.Context, string) (*pkg.SummaryPayload, error) {
	if b.summaryErr != nil {
		return nil, b.summaryErr
	}
	return b.summary, nil
}

func (b *fakeBackend) RegisterMother(context.Context, pkg.RegistrationPayload) (*pkg.Profile, error) {
	b.registerCalls++
	if b.registerErr != nil {
		return nil, b.registerErr
	}
	return b.registered, nil
}

func (b *fakeBackend) AnalyzeReport(context.Context, pkg.AnalyzeRequest) (*pkg.AnalysisResult, error) {
	if b.analyzeErr != nil {
		return nil, b.analyzeErr
	}
	return b.analysis, nil
}

func newTestBot(repo *fakeRepo, backend *fakeBackend, messenger *fakeMessenger) *Bot {
	b := NewBot(session.NewStore(nil, zap.NewNop()), repo, backend, messenger, nil, zap.NewNop())
	b.now = func() time.Time { return testNow }
	return b
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
