package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typecheck/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "typecheck.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSaveAndListResults(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		lang := "en"
		if i == 1 {
			lang = "de"
		}
		_, err := st.SaveResult(ctx, "user-a", model.ScoreResult{WordsTyped: 10 + i, AccuracyPercent: 90, WPM: 20 + i, ElapsedSeconds: 30},
			model.ResultMeta{Lang: lang, DurationSeconds: 30, CompletedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}
	_, err := st.SaveResult(ctx, "user-b", model.ScoreResult{WPM: 99}, model.ResultMeta{Lang: "en", CompletedAt: base})
	require.NoError(t, err)

	all, err := st.ListResults(ctx, model.ResultFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	mine, err := st.ListResults(ctx, model.ResultFilter{IdentityKey: "user-a", Lang: "en"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, 20, mine[0].WPM)
	assert.Equal(t, 22, mine[1].WPM)
	assert.NotEmpty(t, mine[0].ID)

	since := base.Add(90 * time.Minute)
	recent, err := st.ListResults(ctx, model.ResultFilter{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 22, recent[0].WPM)

	last, err := st.ListResults(ctx, model.ResultFilter{IdentityKey: "user-a", Last: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, 22, last[0].WPM)
}

func TestInsertResultFillsDefaults(t *testing.T) {
	st := newTestStore(t)
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return fixed }

	require.NoError(t, st.InsertResult(context.Background(), model.TestResultRecord{WPM: 40}))
	got, err := st.ListResults(context.Background(), model.ResultFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.True(t, got[0].Timestamp.Equal(fixed))
}

func TestCertificateRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	rec := model.CertificateRecord{
		Number:          "CERT-1700000000000-42",
		UserEmail:       "ada@example.com",
		WPM:             64,
		AccuracyPercent: 97.5,
		Date:            time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	require.NoError(t, st.SaveCertificate(ctx, rec))

	got, err := st.GetCertificate(ctx, " CERT-1700000000000-42 ")
	require.NoError(t, err)
	assert.Equal(t, rec.Number, got.Number)
	assert.Equal(t, rec.UserEmail, got.UserEmail)
	assert.Equal(t, rec.WPM, got.WPM)
	assert.Equal(t, rec.AccuracyPercent, got.AccuracyPercent)
	assert.True(t, rec.Date.Equal(got.Date))

	assert.Error(t, st.SaveCertificate(ctx, rec), "duplicate number must fail")

	_, err = st.GetCertificate(ctx, "CERT-0-0")
	assert.ErrorIs(t, err, ErrNotFound)
}
