package records

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

	"go.uber.org/zap"
)

// ErrLookupUnavailable marks a lookup path that could not be consulted at
// all, as opposed to one that ran and found nothing.
var ErrLookupUnavailable = errors.New("records: lookup unavailable")

const lookupTimeout = 10 * time.Second

// Lookup finds the client record for an email or phone identifier.
// A miss is (Record{}, false, nil).
type Lookup interface {
	Lookup(ctx context.Context, identifier string) (Record, bool, error)
}

// LookupFunc adapts a plain function to Lookup.
type LookupFunc func(ctx context.Context, identifier string) (Record, bool, error)

func (f LookupFunc) Lookup(ctx context.Context, identifier string) (Record, bool, error) {
	return f(ctx, identifier)
}

// ─── Local file ───────────────────────────────────────────────────────────────

// Lookup runs the identifier against the file directly.
func (s *FileStore) Lookup(_ context.Context, identifier string) (Record, bool, error) {
	if Classify(identifier).Empty() {
		return Record{}, false, nil
	}
	return s.Find(QueryFor(identifier))
}

// ─── Remote /check-client ─────────────────────────────────────────────────────

// CheckClientResponse is the body returned by POST /check-client.
type CheckClientResponse struct {
	Match bool    `json:"match"`
	Data  *Record `json:"data,omitempty"`
	Error string  `json:"error,omitempty"`
}

// RemoteLookup asks the record-lookup endpoint of a running server.
type RemoteLookup struct {
	BaseURL string
	Client  *http.Client
}

func NewRemoteLookup(baseURL string) *RemoteLookup {
	return &RemoteLookup{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: lookupTimeout},
	}
}

func (l *RemoteLookup) Lookup(ctx context.Context, identifier string) (Record, bool, error) {
	body, err := json.Marshal(QueryFor(identifier))
	if err != nil {
		return Record{}, false, fmt.Errorf("records: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.BaseURL+"/check-client", bytes.NewReader(body))
	if err != nil {
		return Record{}, false, fmt.Errorf("records: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.Client.Do(req)
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: /check-client: %v", ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Record{}, false, fmt.Errorf("%w: /check-client status %d", ErrLookupUnavailable, resp.StatusCode)
	}

	var out CheckClientResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Record{}, false, fmt.Errorf("records: decode /check-client: %w", err)
	}
	if !out.Match || out.Data == nil || out.Data.IsZero() {
		return Record{}, false, nil
	}
	return *out.Data, true, nil
}

// ─── CSV over HTTP ────────────────────────────────────────────────────────────

// CSVLookup fetches the raw client-records file and matches locally. The
// file is fetched again on every call.
type CSVLookup struct {
	URL    string
	Client *http.Client
}

func NewCSVLookup(url string) *CSVLookup {
	return &CSVLookup{URL: url, Client: &http.Client{Timeout: lookupTimeout}}
}

func (l *CSVLookup) Lookup(ctx context.Context, identifier string) (Record, bool, error) {
	if Classify(identifier).Empty() {
		return Record{}, false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return Record{}, false, fmt.Errorf("records: create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := l.Client.Do(req)
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: fetch %s: %v", ErrLookupUnavailable, l.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Record{}, false, fmt.Errorf("%w: fetch %s: status %d", ErrLookupUnavailable, l.URL, resp.StatusCode)
	}

	rs, err := NewReader(resp.Body).ReadAll()
	if err != nil {
		return Record{}, false, fmt.Errorf("records: read %s: %w", l.URL, err)
	}
	rec, ok := Match(identifier, rs)
	return rec, ok, nil
}

// ─── Fallback chain ───────────────────────────────────────────────────────────

// Fallback tries Primary and, when it fails or finds nothing, Secondary.
// Failures are logged and swallowed: the chain only ever reports found or
// not found.
type Fallback struct {
	Primary   Lookup
	Secondary Lookup
	Logger    *zap.Logger
}

func NewFallback(primary, secondary Lookup, logger *zap.Logger) *Fallback {
	return &Fallback{Primary: primary, Secondary: secondary, Logger: logger.Named("records")}
}

func (f *Fallback) Lookup(ctx context.Context, identifier string) (Record, bool, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	for i, l := range []Lookup{f.Primary, f.Secondary} {
		if l == nil {
			continue
		}
		rec, ok, err := l.Lookup(ctx, identifier)
		if err != nil {
			logger.Warn("records: lookup path failed, trying next",
				zap.Int("path", i+1), zap.Error(err))
			continue
		}
		if ok {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}
