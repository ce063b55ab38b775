// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package spotify

import (
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/SivanLackrif/shmali/internal/logging"
	"github.com/SivanLackrif/shmali/internal/metrics"
)

// breakerClient wraps an http.Client with a circuit breaker so a dead
// or throttling Spotify API stops consuming request quota and latency.
//
// The breaker uses real time for its interval and timeout calculations.
// Tests should exercise the underlying client through httptest servers
// rather than waiting out breaker state transitions.
type breakerClient struct {
	client *http.Client
	cb     *gobreaker.CircuitBreaker[*http.Response]
	name   string
}

// newBreakerClient builds the protected client. The circuit opens after
// maxFailures consecutive failures and retries after timeout.
func newBreakerClient(client *http.Client, maxFailures uint32, timeout time.Duration) *breakerClient {
	const cbName = "spotify-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3, // Allow 3 probe requests in half-open state
		Interval:    time.Minute,
		Timeout:     timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= maxFailures
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &breakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// Do executes the request through the breaker. HTTP 5xx responses count
// as failures; 4xx responses pass through as successes since they
// indicate a request problem, not an unhealthy upstream.
func (bc *breakerClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := bc.cb.Execute(func() (*http.Response, error) {
		resp, err := bc.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			_ = resp.Body.Close()
			return nil, errors.New("spotify API returned " + resp.Status)
		}
		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "success").Inc()
	return resp, nil
}

// stateToString converts a gobreaker state to a metric label
func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// stateToFloat converts a gobreaker state to a gauge value
func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
