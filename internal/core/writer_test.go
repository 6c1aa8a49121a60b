package core

import (
	"context"
	"errors"
	"testing"

	"matruraksha-bot/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPayload() pkg.RegistrationPayload {
	return pkg.RegistrationPayload{
		Name:              "Asha",
		Phone:             "9876543210",
		PreferredLanguage: "en",
		SessionKey:        "100",
	}
}

func TestWriterPrimarySuccessSkipsFallback(t *testing.T) {
	repo := &fakeRepo{}
	backend := &fakeBackend{registered: &pkg.Profile{ID: "m-1", Name: "Asha"}}
	w := NewFallbackWriter(backend, repo, zap.NewNop())

	saved, err := w.Save(context.Background(), testPayload())

	require.NoError(t, err)
	assert.Equal(t, "m-1", saved.ID)
	assert.Equal(t, 1, backend.registerCalls)
	assert.Empty(t, repo.insertedProfiles, "fallback must not run after a primary success")
}

func TestWriterFallsBackOnPrimaryFailure(t *testing.T) {
	repo := &fakeRepo{insertProfile: &pkg.Profile{ID: "local-1", Name: "Asha"}}
	backend := &fakeBackend{registerErr: errors.New("api down")}
	w := NewFallbackWriter(backend, repo, zap.NewNop())

	saved, err := w.Save(context.Background(), testPayload())

	require.NoError(t, err)
	assert.Equal(t, "local-1", saved.ID, "fallback record becomes canonical")
	require.Len(t, repo.insertedProfiles, 1)
	assert.Equal(t, "Asha", repo.insertedProfiles[0].Name)
}

func TestWriterBothPathsFail(t *testing.T) {
	repo := &fakeRepo{insertProfileErr: errors.New("db down")}
	backend := &fakeBackend{registerErr: errors.New("api down")}
	w := NewFallbackWriter(backend, repo, zap.NewNop())

	saved, err := w.Save(context.Background(), testPayload())

	require.Error(t, err)
	assert.Nil(t, saved)
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.Contains(t, err.Error(), "api down")
	assert.Contains(t, err.Error(), "db down")
}
