package transport

import (
	"context"
	"crypto/tls"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-docusign/pkg/auth"
	"github.com/sirosfoundation/go-docusign/pkg/calllog"
	"github.com/sirosfoundation/go-docusign/pkg/config"
)

func TestDefaultHTTPSConfig(t *testing.T) {
	config := DefaultHTTPSConfig()

	if config.MinTLSVersion != TLS12 {
		t.Errorf("expected MinTLSVersion TLS12, got %d", config.MinTLSVersion)
	}
	if config.MaxTLSVersion != TLS13 {
		t.Errorf("expected MaxTLSVersion TLS13, got %d", config.MaxTLSVersion)
	}
	if config.OpenTimeout != 5*time.Second {
		t.Errorf("expected OpenTimeout 5s, got %v", config.OpenTimeout)
	}
	if config.ReadTimeout != 60*time.Second {
		t.Errorf("expected ReadTimeout 60s, got %v", config.ReadTimeout)
	}
	for _, suite := range RecommendedTLS12CipherSuites {
		if tls.CipherSuiteName(suite) == "" {
			t.Errorf("unknown cipher suite: %d", suite)
		}
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.CAFile = "/etc/ssl/docusign.pem"
	cfg.Insecure = true
	cfg.ReadTimeout = 2 * time.Second

	c := ConfigFrom(&cfg)
	assert.Equal(t, "/etc/ssl/docusign.pem", c.CAFile)
	assert.True(t, c.Insecure)
	assert.Equal(t, 2*time.Second, c.ReadTimeout)
	assert.Equal(t, config.DefaultOpenTimeout, c.OpenTimeout)
}

func TestBuildURI(t *testing.T) {
	assert.Equal(t,
		"https://demo.docusign.net/restapi/v2/login_information",
		BuildURI("https://demo.docusign.net/restapi", "v2", "/login_information", nil))
	assert.Equal(t,
		"https://demo.docusign.net/restapi/v2.1/accounts/1/envelopes?from_date=2024-01-02",
		BuildURI("https://demo.docusign.net/restapi/", "v2.1", "/accounts/1/envelopes", url.Values{"from_date": {"2024-01-02"}}))
}

func TestHTTPSClient_Do_HeaderLayering(t *testing.T) {
	var got http.Header
	var gotBody []byte
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"envelopeId":"env-1","status":"sent"}`))
	}))
	defer server.Close()

	calls := calllog.New(nil)
	client, err := NewHTTPSClient(nil,
		WithEndpoint(server.URL+"/restapi", "v2"),
		WithAuthenticator(auth.Bearer{Token: "tok"}),
		WithUserAgent("go-docusign/test"),
		WithCallLog(calls),
	)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), &Request{
		Method:      http.MethodPost,
		Path:        "/accounts/1/envelopes",
		Body:        []byte(`{"status":"sent"}`),
		ContentType: "application/json",
		Header:      http.Header{"Accept": {"application/pdf"}, "X-Custom": {"1"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/restapi/v2/accounts/1/envelopes", gotPath)
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "application/pdf", got.Get("Accept"))
	assert.Equal(t, "go-docusign/test", got.Get("User-Agent"))
	assert.Equal(t, "1", got.Get("X-Custom"))
	assert.Equal(t, `{"status":"sent"}`, string(gotBody))

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	m, err := resp.JSON()
	require.NoError(t, err)
	assert.Equal(t, "env-1", m["envelopeId"])

	var summary struct {
		EnvelopeID string `json:"envelopeId"`
		Status     string `json:"status"`
	}
	require.NoError(t, resp.Decode(&summary))
	assert.Equal(t, "env-1", summary.EnvelopeID)

	last := calls.Last()
	require.NotEmpty(t, last)
	assert.Equal(t, "POST "+server.URL+"/restapi/v2/accounts/1/envelopes", last[1])
}

func TestHTTPSClient_Do_ErrorStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorCode":"INVALID_REQUEST_BODY","message":"bad"}`))
	}))
	defer server.Close()

	client, err := NewHTTPSClient(nil, WithEndpoint(server.URL, "v2"))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), &Request{Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	m, err := resp.JSON()
	require.NoError(t, err)
	assert.Equal(t, "INVALID_REQUEST_BODY", m["errorCode"])
}

func TestHTTPSClient_SetAuthenticator(t *testing.T) {
	var authz string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
	}))
	defer server.Close()

	client, err := NewHTTPSClient(nil, WithEndpoint(server.URL, "v2"))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), &Request{Path: "/"})
	require.NoError(t, err)
	assert.Empty(t, authz)

	client.SetAuthenticator(auth.Bearer{Token: "fresh"})
	_, err = client.Do(context.Background(), &Request{Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", authz)
}

func TestHTTPSClient_ReadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	cfg := DefaultHTTPSConfig()
	cfg.ReadTimeout = 50 * time.Millisecond
	calls := calllog.New(nil)
	client, err := NewHTTPSClient(cfg, WithEndpoint(server.URL, "v2"), WithCallLog(calls))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), &Request{Path: "/slow"})
	require.Error(t, err)
	assert.True(t, IsTimeout(err))

	var urlErr *url.Error
	assert.True(t, errors.As(err, &urlErr), "transport errors are not wrapped")
	assert.Contains(t, calls.String(), "Error: ")
}

func TestHTTPSClient_ContextCancellation(t *testing.T) {
	client, err := NewHTTPSClient(nil, WithEndpoint("http://127.0.0.1:1", "v2"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Do(ctx, &Request{Path: "/"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTimeout(errors.New("plain")))
}

func TestNewHTTPSClient_CAFile(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: server.Certificate().Raw})
	require.NoError(t, afero.WriteFile(fs, "/ca.pem", caPEM, 0o600))

	cfg := DefaultHTTPSConfig()
	cfg.Fs = fs
	cfg.CAFile = "/ca.pem"
	client, err := NewHTTPSClient(cfg, WithEndpoint(server.URL, "v2"))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), &Request{Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	untrusted, err := NewHTTPSClient(DefaultHTTPSConfig(), WithEndpoint(server.URL, "v2"))
	require.NoError(t, err)
	_, err = untrusted.Do(context.Background(), &Request{Path: "/"})
	assert.Error(t, err, "peer verification is on by default")
}

func TestNewHTTPSClient_BadCAFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/garbage.pem", []byte("not a certificate"), 0o600))

	cfg := DefaultHTTPSConfig()
	cfg.Fs = fs

	cfg.CAFile = "/missing.pem"
	_, err := NewHTTPSClient(cfg)
	assert.ErrorIs(t, err, ErrCAFile)

	cfg.CAFile = "/garbage.pem"
	_, err = NewHTTPSClient(cfg)
	assert.ErrorIs(t, err, ErrCAFile)
}

func TestNewHTTPSServer(t *testing.T) {
	server := NewHTTPSServer(":8443", "/connect", nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	if server.config == nil {
		t.Fatal("expected config to be set to default")
	}

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/connect", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/other", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	if err := server.Start(); err == nil {
		t.Error("expected error without certificates")
	}
}
