// Package catalogapi is the HTTP client of the public product catalog
// (dummyjson compatible: GET /products, GET /products/{id}).
package catalogapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/retry"
)

var _ port.CatalogClient = (*Client)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

const retryDelay = 200 * time.Millisecond

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type Opt func(*clientOpts) error

type clientOpts struct {
	baseURL     *url.URL
	hc          httpDoer
	timeout     time.Duration
	maxAttempts int
}

// BaseURLOpt is required.
func BaseURLOpt(rawURL string) Opt {
	return func(o *clientOpts) error {
		u, err := url.Parse(strings.TrimRight(rawURL, "/"))
		if err != nil {
			return err
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base url %q", rawURL)
		}
		o.baseURL = u
		return nil
	}
}

// TimeoutOpt bounds a single request, zero means no timeout.
func TimeoutOpt(d time.Duration) Opt {
	return func(o *clientOpts) error {
		if d < 0 {
			return errors.New("negative timeout")
		}
		o.timeout = d
		return nil
	}
}

// MaxAttemptsOpt sets how many times a failed request is tried,
// 1 disables retries.
func MaxAttemptsOpt(n int) Opt {
	return func(o *clientOpts) error {
		if n < 1 {
			return errors.New("max attempts must be at least 1")
		}
		o.maxAttempts = n
		return nil
	}
}

func HTTPClientOpt(hc httpDoer) Opt {
	return func(o *clientOpts) error {
		if hc == nil {
			return errors.New("http client is nil")
		}
		o.hc = hc
		return nil
	}
}

type Client struct {
	baseURL  *url.URL
	hc       httpDoer
	retryCfg retry.RetryConfig
}

func New(opts ...Opt) (Client, error) {
	const op = "catalogapi.New"

	options := clientOpts{maxAttempts: 1}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return Client{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if options.baseURL == nil {
		return Client{}, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}

	if options.hc == nil {
		options.hc = &http.Client{Timeout: options.timeout}
	}

	return Client{
		baseURL: options.baseURL,
		hc:      options.hc,
		retryCfg: retry.RetryConfig{
			MaxAttempts: options.maxAttempts,
			Backoff:     retry.ExponentialBackoff(retryDelay),
			ShouldRetry: shouldRetry,
		},
	}, nil
}

func (c Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.ListProducts"

	var envelope productsEnvelope
	err := retry.Do(ctx, c.retryCfg, func() error {
		return c.getJSON(ctx, "/products", &envelope)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toDomain(envelope.Products), nil
}

func (c Client) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	const op = "Client.GetProduct"

	var p product
	err := retry.Do(ctx, c.retryCfg, func() error {
		return c.getJSON(ctx, "/products/"+strconv.Itoa(id), &p)
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p.toDomain(), nil
}

func (c Client) getJSON(ctx context.Context, path string, v any) error {
	u := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return port.ErrProductNotFound
	case res.StatusCode < 200 || res.StatusCode > 299:
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, res.Status)
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func shouldRetry(err error) bool {
	return !errors.Is(err, port.ErrProductNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
