package docusign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/sirosfoundation/go-docusign/pkg/auth"
	"github.com/sirosfoundation/go-docusign/pkg/calllog"
	"github.com/sirosfoundation/go-docusign/pkg/config"
	"github.com/sirosfoundation/go-docusign/pkg/mime"
	"github.com/sirosfoundation/go-docusign/pkg/payload"
	"github.com/sirosfoundation/go-docusign/pkg/transport"
)

// ErrNoLoginAccounts is returned when login information lists no account
var ErrNoLoginAccounts = errors.New("login information returned no accounts")

// APIError is returned by calls whose result is not a JSON document, such
// as downloads, when the provider answers with an error status.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *APIError) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s: %s", e.StatusCode, e.ErrorCode, e.Message)
}

// Result is a parsed JSON response body. Error responses are results too;
// check ErrorCode.
type Result map[string]any

// String returns the value at key formatted as a string, "" when absent
func (r Result) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ErrorCode returns the provider error code of a failed call
func (r Result) ErrorCode() string { return r.String("errorCode") }

// Message returns the provider error message of a failed call
func (r Result) Message() string { return r.String("message") }

// Decode maps the result onto a struct using its json tags
func (r Result) Decode(out any) error {
	return transport.DecodeMap(r, out)
}

type options struct {
	logger hclog.Logger
	fs     afero.Fs
	https  *transport.HTTPSConfig
}

// Option configures a Client
type Option func(*options)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger hclog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFs sets the filesystem documents, keys and downloads use
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithHTTPSConfig replaces the transport settings derived from the config
func WithHTTPSConfig(cfg *transport.HTTPSConfig) Option {
	return func(o *options) {
		o.https = cfg
	}
}

// Client calls the eSignature REST API for one account.
//
// A Client is not safe for concurrent use: the resolved account id and
// the call log are shared by all calls.
type Client struct {
	cfg    config.Config
	gen    payload.Generation
	http   *transport.HTTPSClient
	oauth  *auth.OAuth
	fs     afero.Fs
	logger hclog.Logger
	calls  *calllog.Log

	accountID string
}

// NewClient resolves cfg over the defaults and prepares the transport.
// Nothing is sent until the first call.
func NewClient(cfg config.Config, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = hclog.NewNullLogger()
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}

	resolved, err := config.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	resolved.Endpoint = strings.TrimSuffix(resolved.Endpoint, "/")
	if err := resolved.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpsCfg := o.https
	if httpsCfg == nil {
		httpsCfg = transport.ConfigFrom(&resolved)
	}
	if httpsCfg.Fs == nil {
		httpsCfg.Fs = o.fs
	}

	logger := o.logger.Named("docusign")
	calls := calllog.New(logger)

	httpClient, err := transport.NewHTTPSClient(httpsCfg,
		transport.WithEndpoint(resolved.Endpoint, resolved.APIVersion),
		transport.WithAuthenticator(auth.FromConfig(&resolved)),
		transport.WithCallLog(calls),
		transport.WithUserAgent(resolved.UserAgent),
		transport.WithAccept(resolved.Accept()),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("client created", "endpoint", resolved.Endpoint, "api_version", resolved.APIVersion, "auth", resolved.AuthMode())

	return &Client{
		cfg:       resolved,
		gen:       payload.GenerationFor(resolved.APIVersion),
		http:      httpClient,
		oauth:     auth.NewOAuth(resolved, httpClient.HTTPClient()),
		fs:        o.fs,
		logger:    logger,
		calls:     calls,
		accountID: resolved.AccountID,
	}, nil
}

// Config returns the resolved configuration
func (c *Client) Config() config.Config {
	return c.cfg
}

// Generation returns the payload shape used for the configured API version
func (c *Client) Generation() payload.Generation {
	return c.gen
}

// SetAccessToken switches the client to bearer authentication.
func (c *Client) SetAccessToken(token string) {
	c.cfg.AccessToken = token
	c.http.SetAuthenticator(auth.FromConfig(&c.cfg))
}

// SetAccountID overrides the account used by later calls
func (c *Client) SetAccountID(id string) {
	c.accountID = id
}

// LastCall returns the redacted lines of the most recent exchange
func (c *Client) LastCall() []string {
	return c.calls.Last()
}

// LoginInformation fetches the accounts of the authenticated user.
func (c *Client) LoginInformation(ctx context.Context, headers http.Header) (Result, error) {
	return c.do(ctx, &transport.Request{
		Method: http.MethodGet,
		Path:   "/login_information",
		Header: headers,
	})
}

// AccountID returns the configured account id or resolves it from the
// first login account. The resolved id is cached for the client's lifetime.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	if c.accountID != "" {
		return c.accountID, nil
	}

	info, err := c.LoginInformation(ctx, nil)
	if err != nil {
		return "", err
	}

	accounts, _ := info["loginAccounts"].([]any)
	if len(accounts) == 0 {
		if code := info.ErrorCode(); code != "" {
			return "", fmt.Errorf("%w: %s: %s", ErrNoLoginAccounts, code, info.Message())
		}
		return "", ErrNoLoginAccounts
	}
	first, _ := accounts[0].(map[string]any)
	id := Result(first).String("accountId")
	if id == "" {
		return "", fmt.Errorf("%w: first account has no accountId", ErrNoLoginAccounts)
	}

	c.logger.Debug("resolved account", "account_id", id)
	c.accountID = id
	return id, nil
}

// accountPath prefixes path with the account, resolving it if needed.
func (c *Client) accountPath(ctx context.Context, format string, args ...any) (string, error) {
	id, err := c.AccountID(ctx)
	if err != nil {
		return "", err
	}
	escaped := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			escaped[i] = url.PathEscape(s)
		} else {
			escaped[i] = a
		}
	}
	return "/accounts/" + url.PathEscape(id) + fmt.Sprintf(format, escaped...), nil
}

func parseResult(resp *transport.Response) (Result, error) {
	m, err := resp.JSON()
	if err != nil {
		return nil, fmt.Errorf("unexpected response %s: %w", resp.Status, err)
	}
	return Result(m), nil
}

func (c *Client) do(ctx context.Context, req *transport.Request) (Result, error) {
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return parseResult(resp)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, body any, headers http.Header) (Result, error) {
	req := &transport.Request{Method: method, Path: path, Query: query, Header: headers}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Body = data
		req.ContentType = mime.ContentTypeJSON
	}
	return c.do(ctx, req)
}

func (c *Client) sendForm(ctx context.Context, method, path string, postBody any, files []mime.File, headers http.Header) (Result, error) {
	data, err := json.Marshal(postBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	body, contentType, err := mime.NewForm(data, files).Serialize()
	if err != nil {
		return nil, err
	}
	return c.do(ctx, &transport.Request{
		Method:      method,
		Path:        path,
		Header:      headers,
		Body:        body,
		ContentType: contentType,
	})
}

// download returns the raw body of a binary resource.
func (c *Client) download(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.http.Do(ctx, &transport.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
		Header: http.Header{"Accept": {"*/*"}},
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if m, err := resp.JSON(); err == nil {
			apiErr.ErrorCode = Result(m).ErrorCode()
			apiErr.Message = Result(m).Message()
		}
		return nil, apiErr
	}
	return resp.Body, nil
}

// loadFiles reads document contents. It runs before any request so a
// missing file never leaves a half-made call behind.
func (c *Client) loadFiles(docs []payload.Document) ([]mime.File, error) {
	files := make([]mime.File, 0, len(docs))
	for i, doc := range docs {
		var data []byte
		var err error
		switch {
		case doc.Data != nil:
			data = doc.Data
		case doc.Reader != nil:
			data, err = io.ReadAll(doc.Reader)
		case doc.Path != "":
			data, err = afero.ReadFile(c.fs, doc.Path)
		default:
			err = errors.New("path, data or reader is required")
		}
		if err != nil {
			return nil, &payload.InputError{Path: fmt.Sprintf("files[%d]", i), Err: err}
		}
		files = append(files, mime.File{
			Name:        doc.FileName(),
			Path:        doc.Path,
			ContentType: doc.MediaType(),
			DocumentID:  doc.ID(i),
			Data:        data,
		})
	}
	return files, nil
}

// Raw sends body to path below the versioned endpoint. An empty method
// uses the configured default. body may be nil, raw bytes or a value
// marshalled as JSON.
func (c *Client) Raw(ctx context.Context, method, path string, body any) (Result, error) {
	if method == "" {
		method = c.cfg.Method
	}
	if raw, ok := body.([]byte); ok {
		req := &transport.Request{Method: strings.ToUpper(method), Path: path}
		if len(raw) > 0 {
			req.Body = raw
			if json.Valid(raw) {
				req.ContentType = mime.ContentTypeJSON
			}
		}
		return c.do(ctx, req)
	}
	return c.sendJSON(ctx, strings.ToUpper(method), path, nil, body, nil)
}

// SaveDocument writes downloaded bytes to path, creating parent directories
func (c *Client) SaveDocument(path string, data []byte) error {
	if err := c.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(c.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
