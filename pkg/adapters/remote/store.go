package remote

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
	"sort"
	"strings"
	"time"

	"github.com/aretw0/storygraph/internal/logging"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/sony/gobreaker"
)

// Store implements ports.UnitStore against a store service exposing
//
//	GET    /files                 -> ["id", ...]
//	GET    /file/{id}             -> {"content": "..."}
//	POST   /file                  <- {"filename": "id", "content": "..."}
//	DELETE /file/{id}
//	POST   /rename                <- {"old_name": "a", "new_name": "b"}
//
// 404 maps to domain.ErrUnitNotFound and 409 to domain.ErrUnitExists.
// Calls go through a circuit breaker; nothing is retried.
type Store struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger

	breakerSettings gobreaker.Settings
}

// Option configures the Store.
type Option func(*Store)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) {
		s.client = c
	}
}

// WithLogger sets the logger for breaker state changes.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithBreaker overrides the circuit breaker trip policy.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(s *Store) {
		s.breakerSettings.ReadyToTrip = func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		}
		s.breakerSettings.Timeout = openTimeout
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Store {
	s := &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logging.NewNop(),
		breakerSettings: gobreaker.Settings{
			Name:        "unit-store",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	settings := s.breakerSettings
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		s.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}
	// Answers that carry a domain meaning prove the service is healthy.
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, domain.ErrUnitNotFound) || errors.Is(err, domain.ErrUnitExists)
	}
	s.breaker = gobreaker.NewCircuitBreaker(settings)
	return s
}

// State reports the breaker state.
func (s *Store) State() gobreaker.State {
	return s.breaker.State()
}

type fileBody struct {
	Content string `json:"content"`
}

type writeBody struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type renameBody struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// List returns the sorted ids reported by the service.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.do(ctx, http.MethodGet, "/files", nil, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	sort.Strings(ids)
	return ids, nil
}

// Read returns the text of a unit.
func (s *Store) Read(ctx context.Context, id string) (string, error) {
	var body fileBody
	if err := s.do(ctx, http.MethodGet, "/file/"+url.PathEscape(id), nil, &body); err != nil {
		return "", err
	}
	return body.Content, nil
}

// Write creates or replaces a unit.
func (s *Store) Write(ctx context.Context, id, text string) error {
	return s.do(ctx, http.MethodPost, "/file", writeBody{Filename: id, Content: text}, nil)
}

// Delete removes a unit.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/file/"+url.PathEscape(id), nil, nil)
}

// Rename moves a unit.
func (s *Store) Rename(ctx context.Context, oldID, newID string) error {
	return s.do(ctx, http.MethodPost, "/rename", renameBody{OldName: oldID, NewName: newID}, nil)
}

func (s *Store) do(ctx context.Context, method, path string, in, out any) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.roundTrip(ctx, method, path, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("store service unavailable: %w", err)
	}
	return err
}

func (s *Store) roundTrip(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrUnitNotFound
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrUnitExists
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}
