package codes

import (
	"context"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vademecum/internal/storage"
)

func newTestSync(t *testing.T, fn roundTripFunc) (*SyncService, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewSyncService(db, testConfig(), zap.NewNop())
	svc.client.httpClient = &http.Client{Transport: fn}
	return svc, db
}

func TestFullSync(t *testing.T) {
	svc, db := newTestSync(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"results":[
			{"id":1,"tipo":"Códigos","nomecodigo":"Código Civil","num_artigo":"1","ordem":"1"},
			{"id":2,"tipo":"Códigos","nomecodigo":"Código Civil","num_artigo":"2","ordem":"2"},
			{"id":3,"tipo":"Constituição","nomecodigo":"Constituição Federal","num_artigo":"5","ordem":"5"}
		]}`), nil
	})

	run, err := svc.FullSync(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, run.TraceID)
	assert.Equal(t, 3, run.Counts["records"])
	assert.Equal(t, 2, run.Counts["codes"])

	stored, err := db.ListArticles()
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	last, err := svc.LastFullSync()
	require.NoError(t, err)
	assert.NotNil(t, last)

	saved, err := db.LastRun(RunKindFull)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, run.TraceID, saved.TraceID)
}

func TestFullSyncErrorKeepsSnapshot(t *testing.T) {
	svc, db := newTestSync(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `bad gateway`), nil
	})
	_, err := svc.FullSync(context.Background())
	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr)

	stored, err := db.ListArticles()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRefreshCodes(t *testing.T) {
	var calls atomic.Int32
	svc, db := newTestSync(t, func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		switch r.URL.Query().Get("nomecodigo") {
		case "codigo civil":
			return jsonResponse(http.StatusOK, `[{"id":"n1","nomecodigo":"Código Civil","num_artigo":"1"},{"id":"n2","nomecodigo":"Código Civil","num_artigo":"2"}]`), nil
		case "Código Penal":
			return jsonResponse(http.StatusOK, `[{"id":"p1","nomecodigo":"Código Penal","num_artigo":"121"}]`), nil
		}
		return jsonResponse(http.StatusNotFound, `{}`), nil
	})

	require.NoError(t, db.ReplaceAll(nil))
	run, err := svc.RefreshCodes(context.Background(), []string{"codigo civil", "Código Penal", "codigo civil", " "})
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, 3, run.Counts["records"])

	civil, err := db.ListArticlesByCode("Código Civil")
	require.NoError(t, err)
	assert.Len(t, civil, 2)

	_, err = svc.RefreshCodes(context.Background(), []string{"inexistente"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}
