package codes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vademecum/internal"
	"vademecum/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func testConfig() config.Config {
	return config.Config{
		APIBaseURL:         "https://example.test/api/",
		RateLimitRPS:       1000,
		TimeoutMs:          1000,
		APIMaxAttempts:     1,
		RefreshConcurrency: 2,
	}
}

func newTestClient(cfg config.Config, fn roundTripFunc) *Client {
	client := NewClient(cfg)
	client.httpClient = &http.Client{Transport: fn}
	return client
}

func TestListRecordsUnwrapsEnvelope(t *testing.T) {
	client := newTestClient(testConfig(), func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/vade-mecum/codigos", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "no token configured")
		return jsonResponse(http.StatusOK, `{"data":{"items":[{"id":1,"nomecodigo":"CF","num_artigo":"5"},{"id":2,"nomecodigo":"CC"}]}}`), nil
	})

	recs, err := client.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0].ID)
	assert.Equal(t, "CF", recs[0].NomeCodigo)
	assert.Equal(t, "5", recs[0].NumArtigo)
}

func TestListRecordsByCodeSendsQueryAndBearer(t *testing.T) {
	cfg := testConfig()
	cfg.APIToken = "secret"
	client := newTestClient(cfg, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "Código Civil", r.URL.Query().Get("nomecodigo"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		return jsonResponse(http.StatusOK, `[{"id":"a","nome_codigo":"Código Civil"}]`), nil
	})

	recs, err := client.ListRecordsByCode(context.Background(), "Código Civil")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Código Civil", recs[0].NomeCodigo)
}

func TestNon2xxIsStatusErrorWithoutRetry(t *testing.T) {
	calls := 0
	client := newTestClient(testConfig(), func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusServiceUnavailable, `{"error":"down"}`), nil
	})

	_, err := client.ListRecords(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Contains(t, statusErr.Body, "down")
	assert.Equal(t, 1, calls)
}

func TestRetriesWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.APIMaxAttempts = 3
	calls := 0
	client := newTestClient(cfg, func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return jsonResponse(http.StatusInternalServerError, `{"error":"boom"}`), nil
		}
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	recs, err := client.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 2, calls)
}

func TestBadRequestIsNotRetried(t *testing.T) {
	cfg := testConfig()
	cfg.APIMaxAttempts = 3
	calls := 0
	client := newTestClient(cfg, func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusBadRequest, `nope`), nil
	})

	_, err := client.ListRecords(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection refused")
	client := newTestClient(testConfig(), func(r *http.Request) (*http.Response, error) {
		return nil, boom
	})

	_, err := client.ListRecords(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestAdminWrites(t *testing.T) {
	rec := NewAdminRecord(internal.CodeArticleRecord{NomeCodigo: "CC", NumArtigo: "1", Normativo: "Toda pessoa"})

	t.Run("token required", func(t *testing.T) {
		client := newTestClient(testConfig(), func(r *http.Request) (*http.Response, error) {
			t.Fatal("no request expected")
			return nil, nil
		})
		_, err := client.CreateRecord(context.Background(), rec)
		assert.ErrorIs(t, err, ErrTokenRequired)
		assert.ErrorIs(t, client.DeleteRecord(context.Background(), "1"), ErrTokenRequired)
	})

	cfg := testConfig()
	cfg.APIToken = "admin"

	t.Run("create", func(t *testing.T) {
		client := newTestClient(cfg, func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/vade-mecum/codigos", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"nomecodigo":"CC"`)
			return jsonResponse(http.StatusCreated, `{"data":{"id":99,"nomecodigo":"CC","num_artigo":"1"}}`), nil
		})
		out, err := client.CreateRecord(context.Background(), rec)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "99", out[0].ID)
	})

	t.Run("update", func(t *testing.T) {
		client := newTestClient(cfg, func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/api/vade-mecum/codigos/99", r.URL.Path)
			return jsonResponse(http.StatusOK, ``), nil
		})
		out, err := client.UpdateRecord(context.Background(), "99", rec)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("delete", func(t *testing.T) {
		client := newTestClient(cfg, func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/vade-mecum/codigos/99", r.URL.Path)
			return jsonResponse(http.StatusNoContent, ``), nil
		})
		assert.NoError(t, client.DeleteRecord(context.Background(), "99"))
	})

	t.Run("invalid payload", func(t *testing.T) {
		client := newTestClient(cfg, func(r *http.Request) (*http.Response, error) {
			t.Fatal("no request expected")
			return nil, nil
		})
		_, err := client.CreateRecord(context.Background(), AdminRecord{NomeCodigo: "CC"})
		assert.Error(t, err)
	})
}
