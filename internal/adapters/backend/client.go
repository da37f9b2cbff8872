// Package backend is the REST client for the external camera-storage service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/pkg/logging"
	"github.com/samirrijal/camslew/internal/pkg/metrics"
)

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 512

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("camera backend %s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("camera backend %s: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Client implements ports.CameraBackend over the backend's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a camera backend client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// List returns every camera record.
func (c *Client) List(ctx context.Context) ([]domain.Camera, error) {
	var cameras []domain.Camera
	if err := c.do(ctx, "list", http.MethodGet, "/camera/get-all", nil, &cameras); err != nil {
		return nil, err
	}
	if cameras == nil {
		cameras = []domain.Camera{}
	}
	return cameras, nil
}

// GetByID fetches one camera. A 404 or an empty body maps to
// domain.ErrCameraNotFound.
func (c *Client) GetByID(ctx context.Context, id domain.CameraID) (*domain.Camera, error) {
	var cam *domain.Camera
	err := c.do(ctx, "get", http.MethodGet, "/camera/get-by-id/"+url.PathEscape(string(id)), nil, &cam)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrCameraNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if cam == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCameraNotFound, id)
	}
	if cam.ID == "" {
		cam.ID = id
	}
	return cam, nil
}

// Save creates a camera. Any ID on the record is not sent.
func (c *Client) Save(ctx context.Context, camera *domain.Camera) error {
	rec := *camera
	rec.ID = ""
	return c.do(ctx, "save", http.MethodPost, "/camera/save", rec, nil)
}

// Update sends a partial update; only non-empty fields are transmitted.
func (c *Client) Update(ctx context.Context, patch domain.CameraPatch) error {
	err := c.do(ctx, "update", http.MethodPut, "/camera/update", patch, nil)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrCameraNotFound, patch.ID)
	}
	return err
}

// Ping checks that the backend answers at all. Used by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/camera/get-all", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("camera backend ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return &StatusError{Operation: "ping", StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, op, method, path, body, out)
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendErrors.WithLabelValues(op).Inc()
		c.logger.WarnContext(ctx, "camera backend request failed",
			"operation", op, "method", method, "path", path, "error", err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if rid := logging.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("camera backend %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Operation: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
