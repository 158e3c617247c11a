// Package client talks to the form backend: definition fetch, duplicate
// check and final submission. The backend itself is an external
// collaborator; only its interface lives here.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"formflow/internal/model"
)

// ErrFormUnavailable wraps any failure to fetch the form definition. It is
// fatal for the session; recovery is a manual reload.
var ErrFormUnavailable = errors.New("form unavailable")

// ErrSubmitFailed wraps a rejected or failed final submission. The session
// is untouched and the respondent may retry.
var ErrSubmitFailed = errors.New("submission failed")

// Backend is the collaborator surface the session controller needs. Tests
// substitute fakes; Client is the HTTP implementation.
type Backend interface {
	FetchForm(ctx context.Context, formID string) (*model.Form, error)
	CheckSubmission(ctx context.Context, formID, email string) (bool, error)
	Submit(ctx context.Context, formID string, req model.SubmissionRequest) error
}

// Client calls the backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// New creates a client for the given base URL.
func New(baseURL string, timeout time.Duration, log *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// FetchForm retrieves the form definition. Sections and questions come
// back sorted by position.
func (c *Client) FetchForm(ctx context.Context, formID string) (*model.Form, error) {
	url := fmt.Sprintf("%s/api/forms/%s", c.baseURL, formID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: backend returned %d", ErrFormUnavailable, resp.StatusCode)
	}

	var form model.Form
	if err := json.NewDecoder(resp.Body).Decode(&form); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormUnavailable, err)
	}
	if form.ID == "" {
		form.ID = formID
	}
	form.SortSections()
	return &form, nil
}

// CheckSubmission asks whether the email already submitted this form.
func (c *Client) CheckSubmission(ctx context.Context, formID, email string) (bool, error) {
	url := fmt.Sprintf("%s/api/forms/%s/check-submission", c.baseURL, formID)
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("duplicate check returned %d", resp.StatusCode)
	}

	var result struct {
		HasSubmitted bool `json:"has_submitted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err
	}
	return result.HasSubmitted, nil
}

// Submit posts the final payload. Any non-2xx status is a submission
// error; the response body is kept for diagnostics only and must not be
// shown raw to the respondent.
func (c *Client) Submit(ctx context.Context, formID string, sub model.SubmissionRequest) error {
	url := fmt.Sprintf("%s/api/forms/%s/submit", c.baseURL, formID)
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log.WithFields(logrus.Fields{
			"form_id": formID,
			"status":  resp.StatusCode,
		}).WithField("body", string(detail)).Error("submission rejected")
		return fmt.Errorf("%w: backend returned %d", ErrSubmitFailed, resp.StatusCode)
	}
	return nil
}
