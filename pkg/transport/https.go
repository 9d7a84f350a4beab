package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"

	"github.com/sirosfoundation/go-docusign/pkg/auth"
	"github.com/sirosfoundation/go-docusign/pkg/calllog"
	"github.com/sirosfoundation/go-docusign/pkg/config"
)

// TLS version constants
const (
	TLS12 = tls.VersionTLS12
	TLS13 = tls.VersionTLS13
)

// RecommendedTLS12CipherSuites are offered when TLS 1.2 is negotiated
var RecommendedTLS12CipherSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
}

// ErrCAFile is returned when the CA bundle cannot be read or holds no
// certificates.
var ErrCAFile = errors.New("unable to load CA file")

// HTTPSConfig contains HTTPS client/server configuration
type HTTPSConfig struct {
	MinTLSVersion uint16
	MaxTLSVersion uint16
	CipherSuites  []uint16
	Certificates  []tls.Certificate
	RootCAs       *x509.CertPool
	ClientAuth    tls.ClientAuthType
	ClientCAs     *x509.CertPool

	// CAFile is a PEM bundle added to RootCAs
	CAFile string
	// Insecure disables peer verification on the client and allows the
	// server to listen without TLS
	Insecure bool

	// OpenTimeout bounds connection setup including the TLS handshake
	OpenTimeout time.Duration
	// ReadTimeout bounds the wait for response headers
	ReadTimeout time.Duration

	Fs afero.Fs
}

// DefaultHTTPSConfig returns a default HTTPS configuration
func DefaultHTTPSConfig() *HTTPSConfig {
	return &HTTPSConfig{
		MinTLSVersion: TLS12,
		MaxTLSVersion: TLS13,
		CipherSuites:  RecommendedTLS12CipherSuites,
		ClientAuth:    tls.NoClientCert,
		OpenTimeout:   config.DefaultOpenTimeout,
		ReadTimeout:   config.DefaultReadTimeout,
	}
}

// ConfigFrom derives the transport settings from a client configuration.
func ConfigFrom(cfg *config.Config) *HTTPSConfig {
	c := DefaultHTTPSConfig()
	c.CAFile = cfg.CAFile
	c.Insecure = cfg.Insecure
	if cfg.OpenTimeout > 0 {
		c.OpenTimeout = cfg.OpenTimeout
	}
	if cfg.ReadTimeout > 0 {
		c.ReadTimeout = cfg.ReadTimeout
	}
	return c
}

func (c *HTTPSConfig) fs() afero.Fs {
	if c.Fs == nil {
		return afero.NewOsFs()
	}
	return c.Fs
}

func (c *HTTPSConfig) rootCAs() (*x509.CertPool, error) {
	if c.CAFile == "" {
		return c.RootCAs, nil
	}

	pemData, err := afero.ReadFile(c.fs(), c.CAFile)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCAFile, c.CAFile, err)
	}

	pool := c.RootCAs
	if pool == nil {
		if pool, err = x509.SystemCertPool(); err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
	}
	if !pool.AppendCertsFromPEM(pemData) {
		return nil, fmt.Errorf("%w %s: no certificates found", ErrCAFile, c.CAFile)
	}
	return pool, nil
}

// HTTPSClient sends API requests. Every call opens a fresh connection.
type HTTPSClient struct {
	client *http.Client
	config *HTTPSConfig

	endpoint   string
	apiVersion string
	userAgent  string
	accept     string
	calls      *calllog.Log

	mu   sync.RWMutex
	auth auth.Authenticator
}

// ClientOption configures an HTTPSClient
type ClientOption func(*HTTPSClient)

// WithEndpoint sets the base URL and API version requests are resolved against
func WithEndpoint(endpoint, apiVersion string) ClientOption {
	return func(c *HTTPSClient) {
		c.endpoint = strings.TrimSuffix(endpoint, "/")
		c.apiVersion = apiVersion
	}
}

// WithAuthenticator sets the authentication applied to every request
func WithAuthenticator(a auth.Authenticator) ClientOption {
	return func(c *HTTPSClient) {
		c.auth = a
	}
}

// WithCallLog records every exchange
func WithCallLog(l *calllog.Log) ClientOption {
	return func(c *HTTPSClient) {
		c.calls = l
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *HTTPSClient) {
		c.userAgent = ua
	}
}

// WithAccept sets the default Accept header
func WithAccept(accept string) ClientOption {
	return func(c *HTTPSClient) {
		c.accept = accept
	}
}

// NewHTTPSClient creates a new HTTPS client. A configured CA file that
// cannot be loaded fails here rather than on first use.
func NewHTTPSClient(cfg *HTTPSConfig, opts ...ClientOption) (*HTTPSClient, error) {
	if cfg == nil {
		cfg = DefaultHTTPSConfig()
	}

	roots, err := cfg.rootCAs()
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		MinVersion:         cfg.MinTLSVersion,
		MaxVersion:         cfg.MaxTLSVersion,
		CipherSuites:       cfg.CipherSuites,
		Certificates:       cfg.Certificates,
		RootCAs:            roots,
		InsecureSkipVerify: cfg.Insecure, // #nosec G402 -- opt-in for test endpoints
	}

	dialer := &net.Dialer{Timeout: cfg.OpenTimeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   cfg.OpenTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		DisableKeepAlives:     true,
	}

	c := &HTTPSClient{
		client: &http.Client{Transport: transport},
		config: cfg,
		accept: "application/json",
		auth:   auth.None{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetAuthenticator replaces the authentication for later requests
func (c *HTTPSClient) SetAuthenticator(a auth.Authenticator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = a
}

func (c *HTTPSClient) authenticator() auth.Authenticator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// HTTPClient exposes the underlying client, e.g. for OAuth token requests
func (c *HTTPSClient) HTTPClient() *http.Client {
	return c.client
}

// CallLog returns the call log, nil when none was configured
func (c *HTTPSClient) CallLog() *calllog.Log {
	return c.calls
}

// BuildURI joins endpoint, API version and path. The path is expected to
// start with a slash. Query values are appended encoded.
func BuildURI(endpoint, apiVersion, path string, query url.Values) string {
	uri := strings.TrimSuffix(endpoint, "/") + "/" + apiVersion + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	return uri
}

// Request is one API call. Path is relative to the versioned endpoint
// unless URL is set.
type Request struct {
	Method      string
	Path        string
	URL         string
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string
}

// Response is a fully buffered API response. The status is not inspected.
type Response struct {
	StatusCode int
	Status     string
	Proto      string
	Header     http.Header
	Body       []byte
}

// JSON parses the body as an object. An empty body yields an empty map.
func (r *Response) JSON() (map[string]any, error) {
	out := map[string]any{}
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(r.Body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response body: %w", err)
	}
	return out, nil
}

// Decode maps the JSON body onto out using its json tags.
func (r *Response) Decode(out any) error {
	m, err := r.JSON()
	if err != nil {
		return err
	}
	return DecodeMap(m, out)
}

// DecodeMap maps a parsed JSON object onto out using its json tags. Numbers
// and booleans sent as strings are converted.
func DecodeMap(m map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Do sends req. Headers are layered: authentication first, then Accept and
// User-Agent, then the request's own headers which win. Transport failures
// are returned as reported by net/http.
func (c *HTTPSClient) Do(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	uri := req.URL
	if uri == "" {
		uri = BuildURI(c.endpoint, c.apiVersion, req.Path, req.Query)
	}

	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	header := http.Header{}
	if a := c.authenticator(); a != nil {
		if err := a.Apply(header); err != nil {
			return nil, fmt.Errorf("failed to apply authentication: %w", err)
		}
	}
	if c.accept != "" {
		header.Set("Accept", c.accept)
	}
	if c.userAgent != "" {
		header.Set("User-Agent", c.userAgent)
	}
	if req.ContentType != "" {
		header.Set("Content-Type", req.ContentType)
	}
	for key, values := range req.Header {
		header.Del(key)
		for _, v := range values {
			header.Add(key, v)
		}
	}
	httpReq.Header = header

	exchange := calllog.Exchange{
		Method:        method,
		URI:           uri,
		RequestHeader: header,
		RequestBody:   req.Body,
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		exchange.Err = err
		c.record(exchange)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		exchange.Err = err
		c.record(exchange)
		return nil, err
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Header:     resp.Header,
		Body:       respBody,
	}

	exchange.Proto = resp.Proto
	exchange.Status = resp.Status
	exchange.ResponseHeader = resp.Header
	exchange.ResponseBody = respBody
	c.record(exchange)

	return out, nil
}

func (c *HTTPSClient) record(ex calllog.Exchange) {
	if c.calls != nil {
		c.calls.Record(ex)
	}
}

// IsTimeout reports whether err is a connect or read timeout
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// HTTPSServer receives callbacks over HTTPS
type HTTPSServer struct {
	server *http.Server
	config *HTTPSConfig
}

// NewHTTPSServer serves handler at path on addr
func NewHTTPSServer(addr, path string, config *HTTPSConfig, handler http.Handler) *HTTPSServer {
	if config == nil {
		config = DefaultHTTPSConfig()
	}

	tlsConfig := &tls.Config{
		MinVersion:   config.MinTLSVersion,
		MaxVersion:   config.MaxTLSVersion,
		CipherSuites: config.CipherSuites,
		Certificates: config.Certificates,
		ClientCAs:    config.ClientCAs,
		ClientAuth:   config.ClientAuth,
	}

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	return &HTTPSServer{
		config: config,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			TLSConfig:         tlsConfig,
			ReadHeaderTimeout: config.OpenTimeout,
			ReadTimeout:       config.ReadTimeout,
			WriteTimeout:      config.ReadTimeout,
		},
	}
}

// Handler returns the server's routing handler
func (s *HTTPSServer) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until Shutdown. Without certificates the server only
// starts when Insecure is set, in which case it speaks plain HTTP.
func (s *HTTPSServer) Start() error {
	if len(s.config.Certificates) == 0 {
		if !s.config.Insecure {
			return fmt.Errorf("no TLS certificates configured")
		}
		return s.server.ListenAndServe()
	}
	return s.server.ListenAndServeTLS("", "")
}

// Shutdown gracefully shuts down the server
func (s *HTTPSServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
