package reputation

import (
	"Genie/internal/config"
	"Genie/internal/lib/sl"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/sony/gobreaker/v2"
)

const maxBodySize = 1 << 20

// ErrMalformedResponse is returned when the service answers with invalid JSON.
var ErrMalformedResponse = errors.New("malformed reputation response")

type query struct {
	Key     string `json:"key"`
	KeyType string `json:"key-type"`
}

type lookupRequest struct {
	Queries []query `json:"queries"`
}

// Verdict is the raw JSON answer of the reputation service.
type Verdict struct {
	URL string
	Raw json.RawMessage
}

// String returns the compact JSON text of the verdict.
func (v Verdict) String() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, v.Raw); err != nil {
		return string(v.Raw)
	}
	return buf.String()
}

type Service struct {
	baseUrl string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[Verdict]
	log     *slog.Logger
}

func NewReputationService(conf *config.Config, logger *slog.Logger) *Service {
	timeout := time.Duration(conf.Reputation.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return New(conf.Reputation.BaseURL, &http.Client{Timeout: timeout},
		conf.Reputation.FailureThreshold, time.Duration(conf.Reputation.ResetTimeoutSec)*time.Second, logger)
}

// New creates a client for baseUrl. After threshold consecutive failures the
// breaker rejects lookups until resetTimeout passes.
func New(baseUrl string, client *http.Client, threshold uint32, resetTimeout time.Duration, logger *slog.Logger) *Service {
	if threshold == 0 {
		threshold = 5
	}
	log := logger.With(sl.Module("reputation service"))
	s := &Service{
		baseUrl: baseUrl,
		client:  client,
		log:     log,
	}
	s.breaker = gobreaker.NewCircuitBreaker[Verdict](gobreaker.Settings{
		Name:    "reputation",
		Timeout: resetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.With(
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			).Warn("circuit breaker state changed")
		},
	})
	return s
}

// CheckURL asks the reputation service about one URL.
func (s *Service) CheckURL(ctx context.Context, url string) (Verdict, error) {
	verdict, err := s.breaker.Execute(func() (Verdict, error) {
		return s.lookup(ctx, url)
	})
	if err != nil {
		lookupsTotal.WithLabelValues("failure").Inc()
		s.log.With(
			slog.String("url", url),
			sl.Err(err),
		).Warn("url lookup failed")
		return Verdict{}, err
	}
	lookupsTotal.WithLabelValues("success").Inc()
	return verdict, nil
}

func (s *Service) lookup(ctx context.Context, url string) (Verdict, error) {
	body := lookupRequest{
		Queries: []query{{Key: url, KeyType: "url"}},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return Verdict{}, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseUrl, bytes.NewReader(bodyBytes))
	if err != nil {
		return Verdict{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Verdict{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Verdict{}, fmt.Errorf("reputation service responded with %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	if !json.Valid(raw) {
		return Verdict{}, fmt.Errorf("%w: %s", ErrMalformedResponse, truncate(string(raw), 200))
	}

	s.log.With(
		slog.String("url", url),
	).Debug("url checked")
	return Verdict{URL: url, Raw: raw}, nil
}

// truncate keeps at most n bytes of s without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
