package core

import (
	"context"
	"strconv"
	"strings"

	"matruraksha-bot/internal/session"
	"matruraksha-bot/pkg"

	"go.uber.org/zap"
)

// langLexicon maps free-text language names and callback codes to the closed
// language set.
var langLexicon = map[string]pkg.LanguageCode{
	"english": pkg.LangEnglish,
	"hindi":   pkg.LangHindi,
	"marathi": pkg.LangMarathi,
	"en":      pkg.LangEnglish,
	"hi":      pkg.LangHindi,
	"mr":      pkg.LangMarathi,
}

// ResolveLanguage normalizes a language answer, which may be a typed name
// ("Hindi") or a button payload ("lang_hi"), into a language code.
func ResolveLanguage(input string) (pkg.LanguageCode, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.TrimPrefix(s, CallbackLangPrefix)
	code, ok := langLexicon[s]
	return code, ok
}

// handleRegistrationInput consumes one wizard answer and advances exactly one
// step. The literal "skip" stores nil; so does a failed integer/float parse
// on the typed fields — the wizard never re-prompts on bad input, it moves
// on. The language step is the single exception: unrecognized input
// re-prompts in place.
func (b *Bot) handleRegistrationInput(ctx context.Context, s *session.Session, text string) error {
	text = strings.TrimSpace(text)

	switch s.Step {
	case session.StepName:
		s.Draft.Name = stringOrNil(text)
		s.Step = session.StepAge
		return b.send(ctx, s.Key, MsgEnterAge)

	case session.StepAge:
		s.Draft.Age = intOrNil(text)
		s.Step = session.StepPhone
		return b.send(ctx, s.Key, MsgEnterPhone)

	case session.StepPhone:
		s.Draft.Phone = stringOrNil(text)
		s.Step = session.StepDueDate
		return b.send(ctx, s.Key, MsgEnterDueDate)

	case session.StepDueDate:
		s.Draft.DueDate = stringOrNil(text)
		s.Step = session.StepLocation
		return b.send(ctx, s.Key, MsgEnterLocation)

	case session.StepLocation:
		s.Draft.Location = stringOrNil(text)
		s.Step = session.StepGravida
		return b.send(ctx, s.Key, MsgEnterGravida)

	case session.StepGravida:
		s.Draft.Gravida = intOrNil(text)
		s.Step = session.StepParity
		return b.send(ctx, s.Key, MsgEnterParity)

	case session.StepParity:
		s.Draft.Parity = intOrNil(text)
		s.Step = session.StepBMI
		return b.send(ctx, s.Key, MsgEnterBMI)

	case session.StepBMI:
		s.Draft.BMI = floatOrNil(text)
		s.Step = session.StepLanguage
		_, err := b.messenger.Send(ctx, s.Key, MsgChooseLanguage, languageMenu(), pkg.ModePlain)
		return err

	case session.StepLanguage:
		lang, ok := ResolveLanguage(text)
		if !ok {
			return b.send(ctx, s.Key, MsgInvalidLanguage)
		}
		s.Draft.Language = &lang
		if err := b.send(ctx, s.Key, MsgProcessingRegistration); err != nil {
			b.logger.Warn("processing notice failed", zap.Error(err))
		}
		return b.finalizeRegistration(ctx, s)
	}
	return nil
}

// handleConfirm finalizes (or abandons) an in-progress registration from a
// confirm button. Outside an active registration it is a no-op. Finalize is
// only reachable from the language step: a confirm arriving mid-wizard is a
// stale or forged button and is ignored, keeping the lock and the draft
// intact until every field has been visited.
func (b *Bot) handleConfirm(ctx context.Context, s *session.Session, confirmed bool) error {
	if !s.RegistrationActive {
		return nil
	}
	if !confirmed {
		s.ClearRegistration()
		return b.send(ctx, s.Key, MsgRegistrationNotConfirmed)
	}
	if s.Step != session.StepLanguage {
		b.logger.Warn("confirm before final wizard step ignored",
			zap.String("session_key", s.Key),
			zap.Int("step", int(s.Step)),
		)
		return nil
	}
	if err := b.send(ctx, s.Key, MsgProcessingRegistration); err != nil {
		b.logger.Warn("processing notice failed", zap.Error(err))
	}
	return b.finalizeRegistration(ctx, s)
}

// finalizeRegistration hands the defaulted draft to the fallback writer. On
// either outcome the lock is released and the draft discarded; a failed
// finalize is never retried automatically.
func (b *Bot) finalizeRegistration(ctx context.Context, s *session.Session) error {
	payload := finalizePayload(s.Key, s.Draft)
	saved, err := b.writer.Save(ctx, payload)
	s.ClearRegistration()
	if err != nil {
		b.logger.Error("registration persist failed",
			zap.String("session_key", s.Key),
			zap.Error(err),
		)
		return b.send(ctx, s.Key, MsgRegistrationFailed)
	}

	if err := b.send(ctx, s.Key, MsgRegistrationSaved); err != nil {
		b.logger.Warn("saved notice failed", zap.Error(err))
	}

	profiles, listErr := b.repo.ProfilesBySessionKey(ctx, s.Key)
	if listErr != nil || len(profiles) == 0 {
		profiles = []pkg.Profile{*saved}
	} else if !containsProfile(profiles, saved.ID) {
		profiles = append(profiles, *saved)
	}
	s.Profiles = profiles
	s.ActiveProfileID = saved.ID
	s.SwitchPanelVisible = false
	return b.renderDashboard(ctx, s, "")
}

// finalizePayload applies the documented defaults: missing name becomes
// "Unknown", missing phone the sentinel placeholder, missing language "en".
func finalizePayload(sessionKey string, d session.Draft) pkg.RegistrationPayload {
	p := pkg.RegistrationPayload{
		Name:              DefaultName,
		Age:               d.Age,
		Phone:             DefaultPhone,
		DueDate:           d.DueDate,
		Location:          d.Location,
		Gravida:           d.Gravida,
		Parity:            d.Parity,
		BMI:               d.BMI,
		PreferredLanguage: string(pkg.LangEnglish),
		SessionKey:        sessionKey,
	}
	if d.Name != nil && *d.Name != "" {
		p.Name = *d.Name
	}
	if d.Phone != nil && *d.Phone != "" {
		p.Phone = *d.Phone
	}
	if d.Language != nil {
		p.PreferredLanguage = string(*d.Language)
	}
	return p
}

func languageMenu() *pkg.Menu {
	return &pkg.Menu{Rows: [][]pkg.Button{{
		{Label: "English", Data: CallbackLangPrefix + "en"},
		{Label: "हिंदी", Data: CallbackLangPrefix + "hi"},
		{Label: "मराठी", Data: CallbackLangPrefix + "mr"},
	}}}
}

func containsProfile(profiles []pkg.Profile, id string) bool {
	for _, p := range profiles {
		if p.ID == id {
			return true
		}
	}
	return false
}

func stringOrNil(text string) *string {
	if text == "" || strings.EqualFold(text, "skip") {
		return nil
	}
	return &text
}

func intOrNil(text string) *int {
	v, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return &v
}

func floatOrNil(text string) *float64 {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &v
}
