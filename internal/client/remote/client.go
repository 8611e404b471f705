// Package remote implements the client side of the notes API: the auth
// service, the note data store and the summarization service, all over HTTP.
package remote

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/GophNotes/internal/models"
)

// Error is a non-2xx answer of the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %s", http.StatusText(e.Status))
	}
	return e.Message
}

// Unwrap maps well-known statuses onto the shared sentinels so callers can
// use errors.Is.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return models.ErrUnauthorized
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		return models.ErrConflict
	}
	return nil
}

// NewHTTPClient returns an HTTP client for the API. When caFile is set the
// server certificate must chain to that CA.
func NewHTTPClient(caFile string) (*http.Client, error) {
	client := &http.Client{Timeout: 60 * time.Second}
	if caFile == "" {
		return client, nil
	}

	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	client.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: caPool, MinVersion: tls.VersionTLS12},
	}
	return client, nil
}

// TokenSource supplies the bearer token of the current session.
type TokenSource interface {
	Token() string
}

type api struct {
	client  *http.Client
	baseURL string
	tokens  TokenSource
}

func newAPI(client *http.Client, baseURL string, tokens TokenSource) api {
	if client == nil {
		client = http.DefaultClient
	}
	return api{client: client, baseURL: strings.TrimRight(baseURL, "/"), tokens: tokens}
}

func (a api) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.tokens != nil {
		if tok := a.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// do sends the request and decodes a 2xx JSON body into out (if non-nil).
func (a api) do(ctx context.Context, method, path string, in, out any) error {
	req, err := a.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}
