package codes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vademecum/internal"
	"vademecum/internal/config"
	"vademecum/internal/records"
	"vademecum/internal/util"
)

const codesEndpoint = "vade-mecum/codigos"

var ErrTokenRequired = errors.New("vade mecum api: token required for admin writes")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vade mecum api error: status=%d body=%s", e.Code, e.Body)
}

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.RateLimitRPS),
	}
}

// ListRecords fetches every article of every code.
func (c *Client) ListRecords(ctx context.Context) ([]internal.CodeArticleRecord, error) {
	body, err := c.do(ctx, http.MethodGet, codesEndpoint, nil, nil)
	if err != nil {
		return nil, err
	}
	return records.NormalizePayload(body)
}

// ListRecordsByCode fetches the articles of one code by name.
func (c *Client) ListRecordsByCode(ctx context.Context, nomeCodigo string) ([]internal.CodeArticleRecord, error) {
	body, err := c.do(ctx, http.MethodGet, codesEndpoint, map[string]string{"nomecodigo": nomeCodigo}, nil)
	if err != nil {
		return nil, err
	}
	return records.NormalizePayload(body)
}

// CreateRecord posts a new article and returns whatever the backend echoes back.
func (c *Client) CreateRecord(ctx context.Context, rec AdminRecord) ([]internal.CodeArticleRecord, error) {
	return c.write(ctx, http.MethodPost, codesEndpoint, rec)
}

func (c *Client) UpdateRecord(ctx context.Context, id string, rec AdminRecord) ([]internal.CodeArticleRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("update record: empty id")
	}
	return c.write(ctx, http.MethodPut, codesEndpoint+"/"+url.PathEscape(id), rec)
}

func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("delete record: empty id")
	}
	if c.cfg.APIToken == "" {
		return ErrTokenRequired
	}
	_, err := c.do(ctx, http.MethodDelete, codesEndpoint+"/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) write(ctx context.Context, method, endpoint string, rec AdminRecord) ([]internal.CodeArticleRecord, error) {
	if c.cfg.APIToken == "" {
		return nil, ErrTokenRequired
	}
	if err := ValidateAdminRecord(rec); err != nil {
		return nil, err
	}
	payload, err := util.MarshalNoEscape(rec, false)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, method, endpoint, nil, payload)
	if err != nil {
		return nil, err
	}
	return records.NormalizePayload(body)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string, payload []byte) ([]byte, error) {
	baseURL := strings.TrimRight(c.cfg.APIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	attempts := c.cfg.APIMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
		if err != nil {
			return nil, err
		}
		if c.cfg.APIToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s %s: %w", method, endpoint, err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read %s response: %w", endpoint, readErr)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := &StatusError{Code: resp.StatusCode, Body: string(body)}
			if isRetryableStatus(resp.StatusCode) && attempt < attempts {
				lastErr = statusErr
				if err := sleepCtx(ctx, backoff(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, statusErr
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("vade mecum request failed")
	}
	return nil, lastErr
}

func backoff(attempt int) time.Duration {
	return time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
