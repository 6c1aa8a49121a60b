package core

import (
	"context"
	"errors"

	"matruraksha-bot/internal/session"
	"matruraksha-bot/pkg"

	"go.uber.org/zap"
)

// handleAction routes one parsed UI action. While the registration lock is
// held, only actions belonging to the wizard (begin/restart and confirm) pass
// through; everything else gets the lock notice and mutates nothing.
func (b *Bot) handleAction(ctx context.Context, s *session.Session, ev Event, act Action) error {
	if s.RegistrationActive && act.Kind != ActionBeginRegistration && act.Kind != ActionConfirmRegistration {
		return b.send(ctx, s.Key, MsgFinishRegistrationFirst)
	}

	switch act.Kind {
	case ActionShowSummary:
		return b.sendSummary(ctx, s)

	case ActionOpenSwitch:
		s.SwitchPanelVisible = true
		return b.renderDashboard(ctx, s, ev.MessageID)

	case ActionCloseSwitch:
		s.SwitchPanelVisible = false
		return b.renderDashboard(ctx, s, ev.MessageID)

	case ActionUploadHint:
		return b.send(ctx, s.Key, MsgUploadHint)

	case ActionBeginRegistration:
		s.BeginRegistration()
		return b.send(ctx, s.Key, MsgEnterName)

	case ActionSwitchProfile:
		return b.switchProfile(ctx, s, ev, act.ProfileID)

	case ActionConfirmRegistration:
		return b.handleConfirm(ctx, s, act.Confirmed)
	}
	return nil
}

// switchProfile resolves the target against the cached profile list,
// refetching from the directory when the cache is empty. An unresolvable id
// yields the not-found notice and leaves the session untouched.
func (b *Bot) switchProfile(ctx context.Context, s *session.Session, ev Event, profileID string) error {
	target, err := b.resolveProfile(ctx, s, profileID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			b.logger.Error("profile switch lookup failed",
				zap.String("session_key", s.Key),
				zap.String("profile_id", profileID),
				zap.Error(err),
			)
		}
		return b.send(ctx, s.Key, MsgProfileNotFound)
	}

	s.ActiveProfileID = target.ID
	s.SwitchPanelVisible = false
	return b.renderDashboard(ctx, s, ev.MessageID)
}

func (b *Bot) resolveProfile(ctx context.Context, s *session.Session, profileID string) (*pkg.Profile, error) {
	if len(s.Profiles) == 0 {
		profiles, err := b.repo.ProfilesBySessionKey(ctx, s.Key)
		if err != nil {
			return nil, err
		}
		s.Profiles = profiles
	}
	for i := range s.Profiles {
		if s.Profiles[i].ID == profileID {
			return &s.Profiles[i], nil
		}
	}
	return nil, ErrProfileNotFound
}
