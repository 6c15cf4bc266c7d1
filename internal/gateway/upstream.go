package gateway

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

	"github.com/sony/gobreaker"
)

// errNotFound is a 404 from the upstream. It does not count against the breaker.
var errNotFound = errors.New("not found")

// upstream incapsula le chiamate HTTP verso un servizio a monte con Circuit Breaker
type upstream struct {
	name    string
	base    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func newUpstream(name, base string, timeout time.Duration, bs BreakerSettings, obs Observer) *upstream {
	return &upstream{
		name:    name,
		base:    strings.TrimRight(strings.TrimSpace(base), "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: mkCB(name, bs, obs),
	}
}

func mkCB(name string, bs BreakerSettings, obs Observer) *gobreaker.CircuitBreaker {
	fails := bs.Failures
	if fails <= 0 {
		fails = 3
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: bs.Interval,
		Timeout:  bs.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
		// una richiesta annullata dal chiamante non dice nulla sulla salute del servizio
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, _, to gobreaker.State) {
			if obs != nil {
				obs.BreakerState(name, to.String())
			}
		},
	})
}

func (u *upstream) url(path string) string {
	return u.base + "/" + strings.TrimLeft(path, "/")
}

// getJSON esegue la GET e decodifica JSON in out
func (u *upstream) getJSON(ctx context.Context, path string, out any) error {
	_, err := u.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url(path), nil)
		if err != nil {
			return nil, err
		}
		return nil, u.do(req, out)
	})
	return err
}

// postJSON invia in come corpo JSON; out può essere nil
func (u *upstream) postJSON(ctx context.Context, path string, in, out any) error {
	_, err := u.breaker.Execute(func() (any, error) {
		var body io.Reader
		if in != nil {
			b, err := json.Marshal(in)
			if err != nil {
				return nil, fmt.Errorf("%s encode error: %w", u.name, err)
			}
			body = bytes.NewReader(b)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url(path), body)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return nil, u.do(req, out)
	})
	return err
}

func (u *upstream) do(req *http.Request, out any) error {
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request error: %w", u.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: %w", u.name, req.URL.Path, errNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s upstream status %d: %s", u.name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode error: %w", u.name, err)
	}
	return nil
}
