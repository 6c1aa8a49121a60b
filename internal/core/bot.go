package core

import (
	"context"
	"strings"
	"time"

	"matruraksha-bot/internal/session"
	"matruraksha-bot/pkg"

	"go.uber.org/zap"
)

// Repository is the store surface the bot needs: the profile directory,
// upload metadata, and the interaction-history sink.
type Repository interface {
	ProfilesBySessionKey(ctx context.Context, sessionKey string) ([]pkg.Profile, error)
	InsertProfile(ctx context.Context, payload pkg.RegistrationPayload) (*pkg.Profile, error)
	InsertUpload(ctx context.Context, rec *pkg.UploadRecord) error
	RecentUploads(ctx context.Context, profileID string, limit int) ([]pkg.UploadRecord, error)
	AppendHistory(ctx context.Context, profileID, kind, content, sessionKey string) error
}

// Backend is the remote analysis/summary/registration API.
type Backend interface {
	FetchSummary(ctx context.Context, profileID string) (*pkg.SummaryPayload, error)
	RegisterMother(ctx context.Context, payload pkg.RegistrationPayload) (*pkg.Profile, error)
	AnalyzeReport(ctx context.Context, req pkg.AnalyzeRequest) (*pkg.AnalysisResult, error)
}

// Messenger delivers output back through the chat platform. Send returns the
// new message id so later handlers can edit it in place.
type Messenger interface {
	Send(ctx context.Context, sessionKey, text string, menu *pkg.Menu, mode pkg.ParseMode) (string, error)
	Edit(ctx context.Context, sessionKey, messageID, text string, menu *pkg.Menu, mode pkg.ParseMode) error
	FileURL(ctx context.Context, fileID string) (string, error)
}

// Answerer produces AI answers for free-text questions. It is an external
// collaborator; the bot only routes to it and degrades when it fails.
type Answerer interface {
	Answer(ctx context.Context, profile *pkg.Profile, question string) (string, error)
}

// Bot is the conversational control layer: it owns action dispatch, the
// registration wizard, the dashboard, the summary aggregator and the upload
// pipeline, all reading and writing per-session state through the store.
type Bot struct {
	sessions  *session.Store
	repo      Repository
	backend   Backend
	messenger Messenger
	answerer  Answerer
	writer    *FallbackWriter
	logger    *zap.Logger
	now       func() time.Time
}

// NewBot wires the bot. answerer may be nil; free-text questions then get the
// generic help reply.
func NewBot(sessions *session.Store, repo Repository, backend Backend, messenger Messenger, answerer Answerer, logger *zap.Logger) *Bot {
	return &Bot{
		sessions:  sessions,
		repo:      repo,
		backend:   backend,
		messenger: messenger,
		answerer:  answerer,
		writer:    NewFallbackWriter(backend, repo, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Handle processes one inbound event under the session's lock. Handlers for
// the same session never interleave; handlers for different sessions run
// concurrently.
func (b *Bot) Handle(ctx context.Context, ev Event) error {
	return b.sessions.With(ctx, ev.SessionKey, func(s *session.Session) error {
		return b.handle(ctx, s, ev)
	})
}

func (b *Bot) handle(ctx context.Context, s *session.Session, ev Event) error {
	switch ev.Kind {
	case EventStart:
		return b.handleStart(ctx, s)
	case EventCancel:
		return b.handleCancel(ctx, s)
	case EventCallback:
		if ev.Action == nil {
			return nil
		}
		return b.handleAction(ctx, s, ev, *ev.Action)
	case EventDocument:
		return b.handleDocument(ctx, s, ev)
	case EventText:
		return b.handleText(ctx, s, ev)
	}
	return nil
}

// handleStart refreshes the profile cache and shows either the registration
// prompt (no profiles yet) or the home dashboard as a new message.
func (b *Bot) handleStart(ctx context.Context, s *session.Session) error {
	profiles, err := b.repo.ProfilesBySessionKey(ctx, s.Key)
	if err != nil {
		b.logger.Error("profile directory fetch failed",
			zap.String("session_key", s.Key),
			zap.Error(err),
		)
		return b.send(ctx, s.Key, MsgStartUnavailable)
	}

	if len(profiles) == 0 {
		s.Profiles = nil
		s.ActiveProfileID = ""
		menu := &pkg.Menu{Rows: [][]pkg.Button{
			{{Label: BtnRegisterMother, Data: CallbackRegisterNew}},
		}}
		text := welcomeNew(s.Key)
		_, err := b.messenger.Send(ctx, s.Key, text, menu, pkg.ModeMarkdown)
		return err
	}

	s.Profiles = profiles
	if s.ActiveProfile() == nil {
		s.ActiveProfileID = profiles[0].ID
	}
	s.SwitchPanelVisible = false
	return b.renderDashboard(ctx, s, "")
}

// handleCancel clears the draft and lock unconditionally; valid from any
// wizard state.
func (b *Bot) handleCancel(ctx context.Context, s *session.Session) error {
	if !s.RegistrationActive {
		return b.send(ctx, s.Key, MsgNothingToCancel)
	}
	s.ClearRegistration()
	return b.send(ctx, s.Key, MsgRegistrationCancelled)
}

// handleText routes text into the wizard while registration is active,
// otherwise to the AI answerer with a graceful fallback.
func (b *Bot) handleText(ctx context.Context, s *session.Session, ev Event) error {
	if s.RegistrationActive {
		return b.handleRegistrationInput(ctx, s, ev.Text)
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return nil
	}

	active := s.ActiveProfile()
	if active == nil {
		menu := &pkg.Menu{Rows: [][]pkg.Button{
			{{Label: BtnRegisterMother, Data: CallbackRegisterNew}},
		}}
		_, err := b.messenger.Send(ctx, s.Key, MsgRegisterPrompt, menu, pkg.ModePlain)
		return err
	}
	if b.answerer == nil {
		return b.send(ctx, s.Key, MsgFallbackHelp)
	}
	answer, err := b.answerer.Answer(ctx, active, text)
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			b.logger.Warn("answerer failed, degrading to help reply",
				zap.String("session_key", s.Key),
				zap.Error(err),
			)
		}
		return b.send(ctx, s.Key, MsgFallbackHelp)
	}
	return b.send(ctx, s.Key, answer)
}

func (b *Bot) send(ctx context.Context, sessionKey, text string) error {
	_, err := b.messenger.Send(ctx, sessionKey, text, nil, pkg.ModePlain)
	return err
}
