package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"matruraksha-bot/pkg"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var profileColumns = []string{
	"id", "telegram_chat_id", "name", "age", "phone", "due_date",
	"location", "gravida", "parity", "bmi", "preferred_language", "created_at",
}

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db, zap.NewNop()), mock
}

func TestProfilesBySessionKey(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("SELECT id, telegram_chat_id, name").
		WithArgs("100").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("m-1", "100", "Asha", 27, "9876543210", "2024-09-01",
				"Pune", 2, 1, 22.5, "mr", created).
			AddRow("m-2", "100", "Meera", nil, nil, nil,
				nil, nil, nil, nil, "en", created))

	profiles, err := repo.ProfilesBySessionKey(context.Background(), "100")
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	first := profiles[0]
	assert.Equal(t, "m-1", first.ID)
	assert.Equal(t, "Asha", first.Name)
	assert.Equal(t, pkg.LangMarathi, first.PreferredLanguage)
	require.NotNil(t, first.Age)
	assert.Equal(t, 27, *first.Age)

	second := profiles[1]
	assert.Nil(t, second.Age)
	assert.Nil(t, second.DueDate)
	assert.Equal(t, "", second.Phone, "NULL phone scans to empty string")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfilesBySessionKeyEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, telegram_chat_id, name").
		WithArgs("100").
		WillReturnRows(sqlmock.NewRows(profileColumns))

	profiles, err := repo.ProfilesBySessionKey(context.Background(), "100")
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func TestInsertProfileReturnsCanonicalRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO mothers").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("generated-id", "100", "Asha", nil, "0000000000", nil,
				nil, nil, nil, nil, "en", created))

	saved, err := repo.InsertProfile(context.Background(), pkg.RegistrationPayload{
		Name:              "Asha",
		Phone:             "0000000000",
		PreferredLanguage: "en",
		SessionKey:        "100",
	})
	require.NoError(t, err)
	assert.Equal(t, "generated-id", saved.ID)
	assert.Equal(t, created, saved.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertProfileError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO mothers").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.InsertProfile(context.Background(), pkg.RegistrationPayload{SessionKey: "100"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert profile")
}

func TestInsertUpload(t *testing.T) {
	repo, mock := newMockRepo(t)
	uploaded := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO medical_reports").
		WithArgs("r-1", "m-1", "100", "scan.pdf", "pdf",
			"https://files.example/scan.pdf", uploaded, pkg.AnalysisProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.InsertUpload(context.Background(), &pkg.UploadRecord{
		ID:             "r-1",
		ProfileID:      "m-1",
		SessionKey:     "100",
		FileName:       "scan.pdf",
		FileType:       "pdf",
		FileURL:        "https://files.example/scan.pdf",
		UploadedAt:     uploaded,
		AnalysisStatus: pkg.AnalysisProcessing,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentUploads(t *testing.T) {
	repo, mock := newMockRepo(t)
	uploaded := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, mother_id, telegram_chat_id").
		WithArgs("m-1", 5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "mother_id", "telegram_chat_id", "file_name", "file_type",
			"file_url", "uploaded_at", "analysis_status", "analysis_summary",
		}).AddRow("r-1", "m-1", "100", "scan.pdf", "pdf",
			"https://files.example/scan.pdf", uploaded, "done", "All clear"))

	uploads, err := repo.RecentUploads(context.Background(), "m-1", 5)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, pkg.AnalysisDone, uploads[0].AnalysisStatus)
	require.NotNil(t, uploads[0].AnalysisSummary)
	assert.Equal(t, "All clear", *uploads[0].AnalysisSummary)
}

func TestAppendHistory(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO chat_history").
		WithArgs("m-1", "100", "document", "Uploaded document scan.pdf").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.AppendHistory(context.Background(), "m-1", "document", "Uploaded document scan.pdf", "100")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
