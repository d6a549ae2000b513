// Package contactsapi is an HTTP client for a remote contact import API.
package contactsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jask/contactimport/internal/database/repository"
	"github.com/jask/contactimport/internal/grid"
	"github.com/jask/contactimport/internal/service"
)

// ErrStatus matches any *StatusError with errors.Is.
var ErrStatus = errors.New("unexpected status")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("contacts api: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("contacts api: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

var _ service.Importer = (*Client)(nil)

// Client talks to {BaseURL}/v1/contact-imports.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Logger  *log.Logger
}

// New returns a client with a timeout-bound http.Client.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type createRequest struct {
	Table [][]string `json:"table"`
}

type patchRequest struct {
	Mapping   []string `json:"mapping,omitempty"`
	HasHeader *bool    `json:"has_header,omitempty"`
	Status    string   `json:"status,omitempty"`
}

// CreateContactImport posts the trimmed table and returns the created record.
func (c *Client) CreateContactImport(ctx context.Context, t grid.Table) (repository.ContactImport, error) {
	if t.IsEmpty() {
		return repository.ContactImport{}, service.ErrEmptyTable
	}
	var out repository.ContactImport
	err := c.do(ctx, http.MethodPost, "/v1/contact-imports", createRequest{Table: t.Trimmed()}, http.StatusCreated, &out)
	return out, err
}

// Organize stores the column mapping of an import.
func (c *Client) Organize(ctx context.Context, id string, mapping []string, hasHeader bool) (repository.ContactImport, error) {
	var out repository.ContactImport
	err := c.do(ctx, http.MethodPatch, "/v1/contact-imports/"+url.PathEscape(id), patchRequest{Mapping: mapping, HasHeader: &hasHeader}, http.StatusOK, &out)
	return out, err
}

// Complete marks an import complete.
func (c *Client) Complete(ctx context.Context, id string) (repository.ContactImport, error) {
	var out repository.ContactImport
	err := c.do(ctx, http.MethodPatch, "/v1/contact-imports/"+url.PathEscape(id), patchRequest{Status: repository.StatusComplete}, http.StatusOK, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if c.Logger != nil {
		c.Logger.Debug("contacts api", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))
	}

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
