// internal/forward/forward.go
package forward

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Timeout bounds every forwarded request.
const Timeout = 60 * time.Second

// ErrUnsupportedMethod is returned for methods outside the allowed set.
var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

// StatusError carries an upstream response with status >= 400.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// Recorder observes forwarded requests (metrics).
type Recorder interface {
	Forwarded(method, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Forwarded(string, string) {}

// Forwarder relays requests from a UI that cannot reach local services
// directly. Stateless.
type Forwarder struct {
	client *http.Client
	log    *logrus.Entry
	rec    Recorder
}

// Option customizes a Forwarder.
type Option func(*Forwarder)

// WithHTTPClient replaces the HTTP client. Its Timeout is overridden.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Forwarder) {
		if c != nil {
			cp := *c
			f.client = &cp
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(f *Forwarder) {
		if l != nil {
			f.log = l.WithField("component", "forward")
		}
	}
}

// WithRecorder sets the request recorder.
func WithRecorder(r Recorder) Option {
	return func(f *Forwarder) {
		if r != nil {
			f.rec = r
		}
	}
}

// New creates a Forwarder with the fixed per-call timeout.
func New(opts ...Option) *Forwarder {
	f := &Forwarder{
		client: &http.Client{},
		log:    logrus.StandardLogger().WithField("component", "forward"),
		rec:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client.Timeout = Timeout
	return f
}

// NormalizeMethod upper-cases method and checks it against the allowed set.
func NormalizeMethod(method string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
}

// Do sends method url with an optional JSON body and returns the response
// body text. Status >= 400 yields *StatusError.
func (f *Forwarder) Do(ctx context.Context, method, url string, body *string) (string, error) {
	m, err := NormalizeMethod(method)
	if err != nil {
		f.rec.Forwarded("other", "unsupported")
		return "", err
	}

	var rd io.Reader
	if body != nil {
		rd = strings.NewReader(*body)
	}

	req, err := http.NewRequestWithContext(ctx, m, url, rd)
	if err != nil {
		f.rec.Forwarded(m, "invalid")
		return "", fmt.Errorf("request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := f.log.WithFields(logrus.Fields{
		"method": m,
		"url":    url,
	})

	resp, err := f.client.Do(req)
	if err != nil {
		f.rec.Forwarded(m, "network")
		logger.WithError(err).Debug("forward failed")
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		f.rec.Forwarded(m, "network")
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		f.rec.Forwarded(m, "status")
		logger.WithField("status", resp.StatusCode).Debug("upstream error status")
		return "", &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	f.rec.Forwarded(m, "ok")
	return string(data), nil
}
