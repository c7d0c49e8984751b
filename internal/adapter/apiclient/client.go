package apiclient

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
	"strings"

	"github.com/google/uuid"
	"github.com/zibot/farmconnect/pkg/formdata"
)

const defaultUserAgent = "farmconnect-cli"

var (
	ErrNoBaseURL      = errors.New("base url is not set")
	ErrInvalidBaseURL = errors.New("base url must be an absolute http(s) url")
)

// HTTPDoer is satisfied by [*http.Client].
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type Opt func(*clientOpts) error

type clientOpts struct {
	baseURL   string
	doer      HTTPDoer
	userAgent string
}

func BaseURLOpt(baseURL string) Opt {
	return func(o *clientOpts) error {
		if baseURL == "" {
			return ErrNoBaseURL
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
		}
		o.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

func HTTPClientOpt(doer HTTPDoer) Opt {
	return func(o *clientOpts) error {
		if doer == nil {
			return errors.New("http client is nil")
		}
		o.doer = doer
		return nil
	}
}

func UserAgentOpt(ua string) Opt {
	return func(o *clientOpts) error {
		if ua != "" {
			o.userAgent = ua
		}
		return nil
	}
}

// A Client talks to the marketplace REST API under a single base URL.
//
// Every call is a single attempt. There is no client side timeout; callers
// bound calls with their context.
type Client struct {
	baseURL   string
	doer      HTTPDoer
	userAgent string
}

func New(opts ...Opt) (Client, error) {
	const op = "apiclient.New"

	options := clientOpts{
		doer:      new(http.Client),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return Client{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	if options.baseURL == "" {
		return Client{}, fmt.Errorf("%s: %w", op, ErrNoBaseURL)
	}

	return Client{
		baseURL:   options.baseURL,
		doer:      options.doer,
		userAgent: options.userAgent,
	}, nil
}

func (c Client) BaseURL() string {
	return c.baseURL
}

// Get decodes the JSON response of GET path into out.
func (c Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// PostJSON sends body as JSON and decodes the JSON response into out.
func (c Client) PostJSON(ctx context.Context, path string, body, out any) error {
	const op = "Client.PostJSON"

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(b), "application/json", out)
}

func (c Client) PostForm(
	ctx context.Context, path string, form *formdata.Form, out any,
) error {
	return c.sendForm(ctx, http.MethodPost, path, form, out)
}

func (c Client) PatchForm(
	ctx context.Context, path string, form *formdata.Form, out any,
) error {
	return c.sendForm(ctx, http.MethodPatch, path, form, out)
}

func (c Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", out)
}

func (c Client) sendForm(
	ctx context.Context, method, path string, form *formdata.Form, out any,
) error {
	const op = "Client.sendForm"

	body, contentType, err := form.Encode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c Client) do(
	ctx context.Context,
	method, path string,
	body io.Reader,
	contentType string,
	out any,
) error {
	const op = "Client.do"

	requestID := uuid.NewString()
	log := slog.With(
		"op", op, "method", method, "path", path, "requestID", requestID,
	)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.doer.Do(req)
	if err != nil {
		log.Debug("request failed", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			log.Debug("failed to close response body", "err", err)
		}
	}()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response body: %w", op, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		log.Debug("unsuccessful response", "status", res.StatusCode)
		return newStatusError(res.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
