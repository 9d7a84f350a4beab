package connect

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEvent = `{
  "event": "envelope-completed",
  "apiVersion": "v2.1",
  "uri": "/restapi/v2.1/accounts/acct-1/envelopes/env-1",
  "retryCount": 0,
  "configurationId": 10549,
  "generatedDateTime": "2024-03-05T10:15:30.1234567Z",
  "data": {"accountId": "acct-1", "userId": "user-1", "envelopeId": "env-1"}
}`

func TestComputeHMAC(t *testing.T) {
	// echo -n 'payload' | openssl dgst -sha256 -hmac secret -binary | base64
	assert.Equal(t, "uC/LeRrOxXhZuYm0MKgmSIzi5Hn9+SMmvQoug3WkK6Q=", ComputeHMAC([]byte("secret"), []byte("payload")))
}

func TestVerify(t *testing.T) {
	sig := ComputeHMAC([]byte("secret"), []byte(sampleEvent))
	assert.True(t, Verify("secret", []byte(sampleEvent), sig))
	assert.False(t, Verify("other", []byte(sampleEvent), sig))
	assert.False(t, Verify("secret", []byte(sampleEvent+" "), sig))
	assert.False(t, Verify("secret", []byte(sampleEvent), ""))
}

func TestVerifyRequest(t *testing.T) {
	newRequest := func(headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/connect", strings.NewReader(sampleEvent))
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}
	sig := ComputeHMAC([]byte("new-key"), []byte(sampleEvent))

	r := newRequest(map[string]string{
		SignatureHeader(1): "bogus",
		SignatureHeader(2): sig,
	})
	require.NoError(t, VerifyRequest(r, "old-key", "new-key"))
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, sampleEvent, string(body), "body is restored")

	r = newRequest(map[string]string{SignatureHeader(1): sig})
	assert.ErrorIs(t, VerifyRequest(r, "old-key"), ErrInvalidSignature)

	r = newRequest(nil)
	assert.ErrorIs(t, VerifyRequest(r, "new-key"), ErrInvalidSignature)
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(sampleEvent))
	require.NoError(t, err)
	assert.Equal(t, "envelope-completed", ev.Event)
	assert.Equal(t, "env-1", ev.Data.EnvelopeID)

	ts, err := ev.Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 15, 30, 123456700, time.UTC), ts.UTC())

	ev.GeneratedDateTime = "3/5/2024 10:15:30 AM"
	ts, err = ev.Time()
	require.NoError(t, err)
	assert.Equal(t, 2024, ts.Year())
	assert.Equal(t, time.March, ts.Month())

	ev.GeneratedDateTime = ""
	_, err = ev.Time()
	assert.Error(t, err)

	_, err = ParseEvent([]byte(`{"data":{}}`))
	assert.Error(t, err)
	_, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	var got *Event
	h := NewHandler(func(ctx context.Context, ev *Event) error {
		got = ev
		return nil
	}, nil, "secret")

	post := func(body, sig string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/connect", strings.NewReader(body))
		if sig != "" {
			r.Header.Set(SignatureHeader(1), sig)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	rec := post(sampleEvent, ComputeHMAC([]byte("secret"), []byte(sampleEvent)))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "acct-1", got.Data.AccountID)

	rec = post(sampleEvent, "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post("{}", ComputeHMAC([]byte("secret"), []byte("{}")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/connect", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_CallbackError(t *testing.T) {
	h := NewHandler(func(ctx context.Context, ev *Event) error {
		return errors.New("queue full")
	}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/connect", strings.NewReader(sampleEvent)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "queue full")
}
