package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"matruraksha-bot/internal/session"
	"matruraksha-bot/pkg"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowedFileTypes is the upload allow-list. Checked before the record
// touches the store so rejected files leave no trace.
var allowedFileTypes = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// handleDocument runs the ingestion pipeline for one attachment: validate,
// resolve the file URL, persist the metadata record, then attempt an inline
// analysis. Analysis failure degrades to a "continues in background" reply —
// the stored record keeps its processing status either way.
func (b *Bot) handleDocument(ctx context.Context, s *session.Session, ev Event) error {
	if s.RegistrationActive {
		return b.send(ctx, s.Key, MsgFinishRegistrationFirst)
	}
	if ev.Attachment == nil {
		return b.send(ctx, s.Key, MsgSendDocument)
	}

	mother := s.ActiveProfile()
	if mother == nil {
		profiles, err := b.repo.ProfilesBySessionKey(ctx, s.Key)
		if err != nil {
			b.logger.Error("profile directory fetch failed",
				zap.String("session_key", s.Key),
				zap.Error(err),
			)
			return b.send(ctx, s.Key, MsgNoProfileForUpload)
		}
		if len(profiles) == 0 {
			return b.send(ctx, s.Key, MsgNoProfileForUpload)
		}
		s.Profiles = profiles
		s.ActiveProfileID = profiles[0].ID
		mother = s.ActiveProfile()
	}

	fileName, fileType := attachmentMeta(ev.Attachment)
	if !allowedFileTypes[fileType] {
		b.logger.Info("upload rejected",
			zap.String("session_key", s.Key),
			zap.String("file_type", fileType),
			zap.Error(ErrUnsupportedFileType),
		)
		return b.send(ctx, s.Key, fmt.Sprintf(MsgUnsupportedFileFmt, fileType))
	}

	interimID, err := b.messenger.Send(ctx, s.Key, fmt.Sprintf(MsgUploadReceivedFmt, fileName), nil, pkg.ModeMarkdown)
	if err != nil {
		return err
	}

	fileURL, err := b.messenger.FileURL(ctx, ev.Attachment.FileID)
	if err != nil {
		b.logger.Error("file url resolution failed",
			zap.String("file_id", ev.Attachment.FileID),
			zap.Error(err),
		)
		return b.messenger.Edit(ctx, s.Key, interimID, MsgUploadError, nil, pkg.ModePlain)
	}

	rec := &pkg.UploadRecord{
		ID:             uuid.New().String(),
		ProfileID:      mother.ID,
		SessionKey:     s.Key,
		FileName:       fileName,
		FileType:       fileType,
		FileURL:        fileURL,
		UploadedAt:     b.now(),
		AnalysisStatus: pkg.AnalysisProcessing,
	}
	if err := b.repo.InsertUpload(ctx, rec); err != nil {
		b.logger.Error("upload record insert failed",
			zap.String("mother_id", mother.ID),
			zap.Error(err),
		)
		return b.messenger.Edit(ctx, s.Key, interimID, MsgUploadError, nil, pkg.ModePlain)
	}

	confirmation := MsgUploadedBackground
	result, err := b.backend.AnalyzeReport(ctx, pkg.AnalyzeRequest{
		MotherID: mother.ID,
		ReportID: rec.ID,
		FileURL:  fileURL,
		FileType: fileType,
	})
	if err != nil {
		b.logger.Warn("inline analysis failed, continuing in background",
			zap.String("report_id", rec.ID),
			zap.Error(err),
		)
	} else {
		confirmation = formatAnalysis(fileName, result)
	}

	// History append is best-effort; the session must not leak into the
	// goroutine, so only plain values are captured.
	motherID, sessionKey := mother.ID, s.Key
	go func() {
		hctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.repo.AppendHistory(hctx, motherID, "document", "Uploaded document "+fileName, sessionKey); err != nil {
			b.logger.Warn("history append failed",
				zap.String("mother_id", motherID),
				zap.Error(err),
			)
		}
	}()

	return b.messenger.Edit(ctx, s.Key, interimID, confirmation, nil, pkg.ModeMarkdown)
}

// attachmentMeta derives a stored file name and the lowercase extension.
// Photos have no name on the wire, so one is synthesized.
func attachmentMeta(a *Attachment) (fileName, fileType string) {
	if a.Photo {
		return "photo_" + a.FileID + ".jpg", "jpg"
	}
	fileName = a.FileName
	if fileName == "" {
		fileName = "document_" + a.FileID
	}
	if i := strings.LastIndex(fileName, "."); i >= 0 && i < len(fileName)-1 {
		return fileName, strings.ToLower(fileName[i+1:])
	}
	return fileName, "unknown"
}

// formatAnalysis renders an immediate analysis result as the upload
// confirmation.
func formatAnalysis(fileName string, result *pkg.AnalysisResult) string {
	risk := strings.ToUpper(strings.TrimSpace(result.RiskLevel))
	if risk == "" {
		risk = "NORMAL"
	}
	lines := []string{
		"✅ *" + fileName + "* analyzed!",
		"",
		"🩺 Risk level: *" + risk + "*",
	}
	concerns := result.Concerns
	if len(concerns) > 3 {
		concerns = concerns[:3]
	}
	for _, c := range concerns {
		lines = append(lines, "• "+c)
	}
	lines = append(lines, "", "Use /start to refresh your dashboard.")
	return strings.Join(lines, "\n")
}
