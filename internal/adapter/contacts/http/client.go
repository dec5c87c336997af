package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/strogmv/claimcomms/internal/domain"
	"github.com/strogmv/claimcomms/internal/pkg/circuitbreaker"
	"github.com/strogmv/claimcomms/internal/pkg/logger"
)

// StatusError is returned for non-2xx responses from the application API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("application api responded %d: %s", e.StatusCode, e.Body)
}

// Client resolves contact details from the application backend.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *circuitbreaker.Breaker
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(cl *Client) { cl.breaker = b }
}

func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.NewBreaker("application-api", 5, 30*time.Second, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) LatestContactDetails(ctx context.Context, agreementRef string) (domain.ContactDetails, error) {
	endpoint := c.baseURL + "/applications/latest-contact-details/" + url.PathEscape(agreementRef)
	log := logger.From(ctx)
	log.Info("retrieving latest contact details")

	var details domain.ContactDetails
	err := c.breaker.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
		return json.NewDecoder(resp.Body).Decode(&details)
	})
	if err != nil {
		log.Error("error retrieving contact details",
			"endpoint", endpoint,
			"error", err.Error(),
			logger.Event("exception", "category", "failed-request"),
		)
		return domain.ContactDetails{}, err
	}

	log.Info("retrieved latest contact details")
	return details, nil
}
