package core

import (
	"context"
	"fmt"
	"html"
	"strings"

	"matruraksha-bot/internal/session"
	"matruraksha-bot/pkg"

	"go.uber.org/zap"
)

// Section bounds for the aggregated summary.
const (
	maxTimelineEvents  = 5
	maxMemories        = 5
	maxReports         = 5
	maxRecommendations = 5
	maxRiskFlags       = 5
)

// sendSummary renders and sends the health summary for the active profile.
func (b *Bot) sendSummary(ctx context.Context, s *session.Session) error {
	active := s.ActiveProfile()
	if active == nil {
		return b.send(ctx, s.Key, MsgNoActiveProfile)
	}
	text := b.buildSummary(ctx, active)
	_, err := b.messenger.Send(ctx, s.Key, text, nil, pkg.ModeHTML)
	return err
}

// buildSummary assembles the report from up to four independently fallible
// sources: the remote summary payload, its timeline and key-memory sections,
// and locally stored uploads. A failed source drops only its own sections —
// the remote fetch failing still leaves the local header and the uploaded
// documents, plus an explicit degradation notice. All free text is
// HTML-escaped before it enters the output.
func (b *Bot) buildSummary(ctx context.Context, profile *pkg.Profile) string {
	esc := html.EscapeString

	lines := []string{
		fmt.Sprintf("<b>📊 Health Summary for %s</b>", esc(profile.Name)),
		fmt.Sprintf("<b>🆔 Mother ID:</b> <code>%s</code>", esc(profile.ID)),
	}
	if stage, ok := PregnancyStage(profile.DueDate, b.now()); ok {
		lines = append(lines, "<b>🤰 Pregnancy:</b> "+esc(stage))
	}
	if profile.DueDate != nil && *profile.DueDate != "" {
		lines = append(lines, "<b>📅 Due Date:</b> "+esc(FormatDate(*profile.DueDate)))
	}
	if profile.Location != nil && *profile.Location != "" {
		lines = append(lines, "<b>📍 Location:</b> "+esc(*profile.Location))
	}
	lines = append(lines, "")

	payload, remoteErr := b.backend.FetchSummary(ctx, profile.ID)
	if remoteErr != nil {
		b.logger.Error("summary fetch failed, degrading to local fields",
			zap.String("profile_id", profile.ID),
			zap.Error(remoteErr),
		)
		lines = append(lines, MsgSummaryUnavailable, "")
	}

	uploads, uploadsErr := b.repo.RecentUploads(ctx, profile.ID, maxReports)
	if uploadsErr != nil {
		b.logger.Error("recent uploads fetch failed, omitting section",
			zap.String("profile_id", profile.ID),
			zap.Error(uploadsErr),
		)
		uploads = nil
	}

	if payload != nil {
		lines = append(lines, timelineSection(payload.RecentTimeline)...)
		lines = append(lines, memoriesSection(payload.KeyMemories)...)
	}

	if len(uploads) > 0 {
		lines = append(lines, "<b>📎 Uploaded Documents:</b>")
		for _, u := range uploads {
			lines = append(lines, fmt.Sprintf("• %s — %s", esc(FormatDate(u.UploadedAt.Format("2006-01-02"))), esc(u.FileName)))
			if u.AnalysisSummary != nil && *u.AnalysisSummary != "" {
				lines = append(lines, "  ↳ "+esc(*u.AnalysisSummary))
			}
		}
		lines = append(lines, "")
	} else if uploadsErr == nil {
		lines = append(lines, MsgNoDocumentsYet, "")
	}

	if payload != nil && payload.Overview != nil {
		lines = append(lines, listSection("<b>✅ Recommendations:</b>", payload.Overview.Recommendations, maxRecommendations)...)
		lines = append(lines, listSection("<b>⚠️ Risks / Alerts:</b>", payload.Overview.Flags(), maxRiskFlags)...)
	}

	lines = append(lines, MsgSummaryClosing)
	return strings.Join(lines, "\n")
}

func timelineSection(events []pkg.TimelineEvent) []string {
	if len(events) == 0 {
		return nil
	}
	if len(events) > maxTimelineEvents {
		events = events[:maxTimelineEvents]
	}
	lines := []string{"<b>🗂 Key Timeline Events:</b>"}
	for _, e := range events {
		lines = append(lines, fmt.Sprintf("• %s: %s",
			html.EscapeString(FormatDate(e.When())),
			html.EscapeString(e.Text()),
		))
	}
	return append(lines, "")
}

func memoriesSection(memories []pkg.KeyMemory) []string {
	if len(memories) == 0 {
		return nil
	}
	if len(memories) > maxMemories {
		memories = memories[:maxMemories]
	}
	lines := []string{"<b>🧠 Important Notes:</b>"}
	for _, m := range memories {
		key := m.MemoryKey
		if key == "" {
			key = "Note"
		}
		lines = append(lines, fmt.Sprintf("• %s: %s",
			html.EscapeString(key),
			html.EscapeString(m.MemoryValue),
		))
	}
	return append(lines, "")
}

func listSection(header string, items pkg.StringList, max int) []string {
	if len(items) == 0 {
		return nil
	}
	if len(items) > max {
		items = items[:max]
	}
	lines := []string{header}
	for _, item := range items {
		lines = append(lines, "• "+html.EscapeString(item))
	}
	return append(lines, "")
}
