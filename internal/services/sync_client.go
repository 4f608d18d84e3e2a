package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/statusxp/statusxp-backend/internal/config"
	"github.com/statusxp/statusxp-backend/internal/models"
)

// WorkerError is a failed call to the remote sync worker. The worker's own
// error message is surfaced to the caller; nothing is retried.
type WorkerError struct {
	StatusCode int
	Message    string
}

func (e *WorkerError) Error() string {
	if e.StatusCode == 0 {
		return "sync worker unreachable: " + e.Message
	}
	return fmt.Sprintf("sync worker returned %d: %s", e.StatusCode, e.Message)
}

// SyncWorkerClient forwards cancellation intent to the long-running sync
// worker. Single attempt, request-scoped timeout, no retry.
type SyncWorkerClient struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

func NewSyncWorkerClient(cfg *config.Config) *SyncWorkerClient {
	return &SyncWorkerClient{
		baseURL:    strings.TrimRight(cfg.SyncWorkerURL, "/"),
		secret:     cfg.SyncWorkerSecret,
		httpClient: &http.Client{Timeout: cfg.SyncWorkerTimeout},
	}
}

type stopSyncPayload struct {
	UserID string `json:"userId"`
}

type workerErrorBody struct {
	Error string `json:"error"`
}

// StopSync posts /sync/{platform}/stop to the worker. A 2xx answer means the
// worker accepted the cancellation request; anything else is a WorkerError.
func (c *SyncWorkerClient) StopSync(ctx context.Context, platform models.Platform, userID uuid.UUID) error {
	body, err := json.Marshal(stopSyncPayload{UserID: userID.String()})
	if err != nil {
		return fmt.Errorf("failed to encode stop request: %w", err)
	}

	url := fmt.Sprintf("%s/sync/%s/stop", c.baseURL, platform)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build stop request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &WorkerError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var workerErr workerErrorBody
		if decodeErr := json.NewDecoder(resp.Body).Decode(&workerErr); decodeErr != nil || workerErr.Error == "" {
			workerErr.Error = "failed to stop sync"
		}
		return &WorkerError{StatusCode: resp.StatusCode, Message: workerErr.Error}
	}

	return nil
}
