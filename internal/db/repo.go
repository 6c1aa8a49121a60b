package db

import (
	"context"
	"database/sql"
	"fmt"

	"matruraksha-bot/pkg"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository wraps database operations for mother profiles, uploaded medical
// reports and interaction history. A single postgres database backs all three.
type Repository struct {
	DB     *sql.DB
	logger *zap.Logger
}

// NewRepository constructs a new Repository from an existing sql.DB.
// The caller is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB, logger *zap.Logger) *Repository {
	return &Repository{DB: db, logger: logger}
}

// ProfilesBySessionKey returns every profile registered under the given chat
// session key, oldest first. An empty slice (not an error) means the session
// has no registered profiles yet.
func (r *Repository) ProfilesBySessionKey(ctx context.Context, sessionKey string) ([]pkg.Profile, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, telegram_chat_id, name, age, phone, due_date, location,
		        gravida, parity, bmi, preferred_language, created_at
		 FROM mothers
		 WHERE telegram_chat_id = $1
		 ORDER BY created_at ASC`, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []pkg.Profile{}
	for rows.Next() {
		var p pkg.Profile
		var phone sql.NullString
		var lang string
		if err := rows.Scan(&p.ID, &p.SessionKey, &p.Name, &p.Age, &phone,
			&p.DueDate, &p.Location, &p.Gravida, &p.Parity, &p.BMI,
			&lang, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p.Phone = phone.String
		p.PreferredLanguage = pkg.LanguageCode(lang)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// InsertProfile writes a finalized registration directly to the store and
// returns the canonical saved record. It is the fallback path of the
// registration writer; the id is generated here because the primary API,
// which normally issues ids, was not reached.
func (r *Repository) InsertProfile(ctx context.Context, payload pkg.RegistrationPayload) (*pkg.Profile, error) {
	id := uuid.New().String()
	var p pkg.Profile
	var phone sql.NullString
	var lang string
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO mothers (id, telegram_chat_id, name, age, phone, due_date,
		                      location, gravida, parity, bmi, preferred_language)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, telegram_chat_id, name, age, phone, due_date, location,
		           gravida, parity, bmi, preferred_language, created_at`,
		id, payload.SessionKey, payload.Name, payload.Age, payload.Phone,
		payload.DueDate, payload.Location, payload.Gravida, payload.Parity,
		payload.BMI, payload.PreferredLanguage,
	).Scan(&p.ID, &p.SessionKey, &p.Name, &p.Age, &phone, &p.DueDate,
		&p.Location, &p.Gravida, &p.Parity, &p.BMI, &lang, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	p.Phone = phone.String
	p.PreferredLanguage = pkg.LanguageCode(lang)
	r.logger.Info("profile saved via store fallback",
		zap.String("profile_id", p.ID),
		zap.String("session_key", p.SessionKey),
	)
	return &p, nil
}

// InsertUpload stores metadata for an uploaded report with its initial
// analysis status.
func (r *Repository) InsertUpload(ctx context.Context, rec *pkg.UploadRecord) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO medical_reports (id, mother_id, telegram_chat_id, file_name,
		                              file_type, file_url, uploaded_at, analysis_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.ProfileID, rec.SessionKey, rec.FileName,
		rec.FileType, rec.FileURL, rec.UploadedAt, rec.AnalysisStatus,
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

// RecentUploads returns the most recent uploaded reports for a profile,
// newest first, bounded by limit.
func (r *Repository) RecentUploads(ctx context.Context, profileID string, limit int) ([]pkg.UploadRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, mother_id, telegram_chat_id, file_name, file_type, file_url,
		        uploaded_at, analysis_status, analysis_summary
		 FROM medical_reports
		 WHERE mother_id = $1
		 ORDER BY uploaded_at DESC
		 LIMIT $2`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var uploads []pkg.UploadRecord
	for rows.Next() {
		var u pkg.UploadRecord
		var status string
		if err := rows.Scan(&u.ID, &u.ProfileID, &u.SessionKey, &u.FileName,
			&u.FileType, &u.FileURL, &u.UploadedAt, &status, &u.AnalysisSummary); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		u.AnalysisStatus = pkg.AnalysisStatus(status)
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// AppendHistory records one interaction-history entry for a profile. Callers
// treat this as fire-and-forget; a failed append never fails the operation
// that produced it. created_at comes from the schema default.
func (r *Repository) AppendHistory(ctx context.Context, profileID, kind, content, sessionKey string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO chat_history (mother_id, telegram_chat_id, kind, content)
		 VALUES ($1, $2, $3, $4)`,
		profileID, sessionKey, kind, content,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}
