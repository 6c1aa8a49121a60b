package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"matruraksha-bot/internal/session"
	"matruraksha-bot/pkg"
)

const fortyWeeks = 40 * 7 * 24 * time.Hour

// View pairs rendered message text with its inline menu and markup mode.
type View struct {
	Text string
	Menu *pkg.Menu
	Mode pkg.ParseMode
}

// FormatDate renders an ISO-8601 date as "02 Jan 2006". Unparseable input
// falls back to its first ten characters (the date part of a longer stamp).
func FormatDate(iso string) string {
	if iso == "" {
		return "N/A"
	}
	t, err := parseISODate(iso)
	if err != nil {
		if len(iso) > 10 {
			return iso[:10]
		}
		return iso
	}
	return t.Format("02 Jan 2006")
}

func parseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// PregnancyStage derives the "Week w (Month m)" label from a due date.
// Weeks elapsed since conception (due date minus 40 weeks) are clamped to
// 0..42 and months to 1..10. The label is omitted — not an error — when the
// due date is absent, unparseable, or strictly more than 40 weeks in the
// past, at which point the pregnancy is long over.
func PregnancyStage(dueDate *string, now time.Time) (string, bool) {
	if dueDate == nil || *dueDate == "" {
		return "", false
	}
	due, err := parseISODate(*dueDate)
	if err != nil {
		return "", false
	}
	if due.Before(now.Add(-fortyWeeks)) {
		return "", false
	}

	conception := due.Add(-fortyWeeks)
	weeks := int(now.Sub(conception) / (7 * 24 * time.Hour))
	if weeks < 0 {
		weeks = 0
	}
	if weeks > 42 {
		weeks = 42
	}
	month := weeks / 4
	if month < 1 {
		month = 1
	}
	if month > 10 {
		month = 10
	}
	return fmt.Sprintf("Week %d (Month %d)", weeks, month), true
}

// BuildDashboard is a pure function of session state: profile header lines
// plus the action menu. Lines with no content are dropped rather than left
// blank.
func BuildDashboard(s *session.Session, now time.Time) View {
	active := s.ActiveProfile()

	name := "Mother"
	location := "Not set"
	dueLine := "N/A"
	stage := ""
	if active != nil {
		if active.Name != "" {
			name = active.Name
		}
		if active.Location != nil && *active.Location != "" {
			location = *active.Location
		}
		if active.DueDate != nil {
			dueLine = FormatDate(*active.DueDate)
		}
		stage, _ = PregnancyStage(active.DueDate, now)
	}

	lines := []string{
		fmt.Sprintf("👋 *Welcome back, %s!*", name),
		fmt.Sprintf("🆔 *Telegram Chat ID:* `%s`", s.Key),
		fmt.Sprintf("👩‍🍼 *Active Profile:* %s", name),
		fmt.Sprintf("📍 *Location:* %s", location),
		fmt.Sprintf("📅 *Due Date:* %s", dueLine),
	}
	if stage != "" {
		lines = append(lines, fmt.Sprintf("🤰 *Pregnancy:* %s", stage))
	}
	lines = append(lines, MsgDashboardFooter)

	return View{
		Text: strings.Join(lines, "\n"),
		Menu: DashboardMenu(s.Profiles, s.ActiveProfileID, s.SwitchPanelVisible),
		Mode: pkg.ModeMarkdown,
	}
}

// DashboardMenu builds the action keyboard. The four primary actions are
// always present; when the switch panel is open it adds the hide button and
// one switch button per non-active profile.
func DashboardMenu(profiles []pkg.Profile, activeID string, showSwitchPanel bool) *pkg.Menu {
	rows := [][]pkg.Button{
		{{Label: BtnHealthReports, Data: CallbackSummary}},
		{{Label: BtnSwitchProfiles, Data: CallbackOpenSwitch}},
		{{Label: BtnUploadDocuments, Data: CallbackUploadHint}},
		{{Label: BtnRegisterAnother, Data: CallbackRegister}},
	}

	if showSwitchPanel {
		rows = append(rows, []pkg.Button{{Label: BtnHideProfiles, Data: CallbackCloseSwitch}})
		for _, p := range profiles {
			if p.ID == "" || p.ID == activeID {
				continue
			}
			label := p.Name
			if label == "" {
				label = "Mother"
			}
			rows = append(rows, []pkg.Button{{Label: "👩 " + label, Data: CallbackSwitchPrefix + p.ID}})
		}
	}
	return &pkg.Menu{Rows: rows}
}

func welcomeNew(sessionKey string) string {
	return fmt.Sprintf(MsgWelcomeNewFmt, sessionKey)
}

// renderDashboard sends or refreshes the home view. A non-empty messageID
// means the trigger was a button on an existing message, which is edited in
// place; otherwise a new message is sent.
func (b *Bot) renderDashboard(ctx context.Context, s *session.Session, messageID string) error {
	if s.ActiveProfile() == nil {
		return b.send(ctx, s.Key, MsgNoProfileLinked)
	}
	view := BuildDashboard(s, b.now())
	if messageID != "" {
		return b.messenger.Edit(ctx, s.Key, messageID, view.Text, view.Menu, view.Mode)
	}
	_, err := b.messenger.Send(ctx, s.Key, view.Text, view.Menu, view.Mode)
	return err
}
