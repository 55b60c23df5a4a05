// Package extract calls the schedule extraction service, which turns an
// uploaded timetable image or PDF into structured schedule rows.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ExtractedStop is one stop row recognized in an uploaded timetable.
type ExtractedStop struct {
	Name       string   `json:"name"`
	Time       string   `json:"time"`
	Conditions []string `json:"conditions,omitempty"`
	Direction  string   `json:"direction,omitempty"`
	Run        *int     `json:"run,omitempty"`
}

// ExtractedSchedule is one recognized route with its stop rows.
type ExtractedSchedule struct {
	Route    string          `json:"route"`
	Operator string          `json:"operator,omitempty"`
	Type     string          `json:"type,omitempty"`
	Stops    []ExtractedStop `json:"stops"`
}

// Extractor recognizes schedules in an uploaded file.
type Extractor interface {
	ExtractSchedules(ctx context.Context, file []byte, filename, contentType string) ([]ExtractedSchedule, error)
}

// Config holds settings for the HTTP extractor.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPExtractor posts files to the extraction service. Transient server
// errors are retried with exponential backoff; client errors are not.
type HTTPExtractor struct {
	baseURL string
	apiKey  string
	client  *http.Client

	// maxElapsed bounds the whole retry sequence.
	maxElapsed time.Duration
}

// NewHTTPExtractor creates an extractor for the given service.
func NewHTTPExtractor(config Config) *HTTPExtractor {
	return &HTTPExtractor{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		client:     &http.Client{Timeout: config.Timeout},
		maxElapsed: 30 * time.Second,
	}
}

type extractResponse struct {
	Schedules []ExtractedSchedule `json:"schedules"`
}

// ExtractSchedules uploads the file and returns the recognized schedules.
func (e *HTTPExtractor) ExtractSchedules(ctx context.Context, file []byte, filename, contentType string) ([]ExtractedSchedule, error) {
	var schedules []ExtractedSchedule

	operation := func() error {
		result, err := e.post(ctx, file, filename, contentType)
		if err != nil {
			return err
		}
		schedules = result
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(e.maxElapsed),
	), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (e *HTTPExtractor) post(ctx context.Context, file []byte, filename, contentType string) ([]ExtractedSchedule, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build multipart body: %w", err))
	}
	if _, err := part.Write(file); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to write file part: %w", err))
	}
	if err := writer.WriteField("content_type", contentType); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to write content type field: %w", err))
	}
	if err := writer.Close(); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to finish multipart body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", &body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create extraction request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if e.apiKey != "" {
		req.Header.Set("X-API-Key", e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		// Network errors are retryable.
		return nil, fmt.Errorf("failed to reach extraction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, backoff.Permanent(fmt.Errorf("extraction rejected with status %d: %s", resp.StatusCode, string(respBody)))
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode extraction response: %w", err))
	}
	return decoded.Schedules, nil
}
