package calllog

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	docmime "github.com/sirosfoundation/go-docusign/pkg/mime"
)

func TestFormat_JSONExchange(t *testing.T) {
	lines := Format(Exchange{
		Method: "GET",
		URI:    "https://demo.docusign.net/restapi/v2/login_information",
		RequestHeader: http.Header{
			"X-Docusign-Authentication": {`{"Username":"u@example.com","Password":"s3cr\"et","IntegratorKey":"k"}`},
			"Accept":                    {"application/json"},
		},
		Proto:          "HTTP/1.1",
		Status:         "200 OK",
		ResponseHeader: http.Header{"Content-Type": {"application/json; charset=utf-8"}},
		ResponseBody:   []byte(`{"loginAccounts":[{"accountId":"123"}]}`),
	})

	assert.Equal(t, []string{
		"--DocuSign REQUEST--",
		"GET https://demo.docusign.net/restapi/v2/login_information",
		"Accept: application/json",
		`X-Docusign-Authentication: {"Username":"u@example.com","Password":"[FILTERED]","IntegratorKey":"k"}`,
		"Body: ",
		"--DocuSign RESPONSE--",
		"HTTP/1.1 200 OK",
		"Content-Type: application/json; charset=utf-8",
		`Body: {"loginAccounts":[{"accountId":"123"}]}`,
	}, lines)
}

func TestRedact_XML(t *testing.T) {
	in := "<DocuSignCredentials><Username>u</Username><Password>p&amp;w</Password><IntegratorKey>k</IntegratorKey></DocuSignCredentials>"
	out := Redact(in)
	assert.Equal(t, "<DocuSignCredentials><Username>u</Username><Password>[FILTERED]</Password><IntegratorKey>k</IntegratorKey></DocuSignCredentials>", out)
	assert.Equal(t, "no credentials here", Redact("no credentials here"))
}

func TestFormat_MultipartFilesMasked(t *testing.T) {
	form := docmime.NewForm([]byte(`{"emailSubject":"Please sign"}`), []docmime.File{
		{Name: "a.pdf", Data: []byte("%PDF-1.4 secret-one")},
		{Name: "b.pdf", Data: []byte{0xff, 0xfe, 0x00, 0x01}},
	})
	body, contentType, err := form.Serialize()
	require.NoError(t, err)

	lines := Format(Exchange{
		Method:         "POST",
		URI:            "https://demo.docusign.net/restapi/v2/accounts/1/envelopes",
		RequestHeader:  http.Header{"Content-Type": {contentType}},
		RequestBody:    body,
		Proto:          "HTTP/1.1",
		Status:         "201 Created",
		ResponseHeader: http.Header{},
	})

	text := strings.Join(lines, "\n")
	assert.Contains(t, text, `{"emailSubject":"Please sign"}`)
	assert.Contains(t, text, `filename="a.pdf"`)
	assert.Equal(t, 2, strings.Count(text, BinaryBlob))
	assert.NotContains(t, text, "secret-one")
}

func TestFormat_BinaryResponse(t *testing.T) {
	for _, ct := range []string{"application/pdf", "image/png", "application/octet-stream"} {
		lines := Format(Exchange{
			Method:         "GET",
			URI:            "https://x/documents/combined",
			Proto:          "HTTP/1.1",
			Status:         "200 OK",
			ResponseHeader: http.Header{"Content-Type": {ct}},
			ResponseBody:   []byte("%PDF-1.4\x00\x01"),
		})
		assert.Equal(t, "Body: "+BinaryBlob, lines[len(lines)-1], ct)
	}
}

func TestFormat_InvalidUTF8(t *testing.T) {
	lines := Format(Exchange{
		Method:         "GET",
		URI:            "https://x",
		Proto:          "HTTP/1.1",
		Status:         "200 OK",
		ResponseHeader: http.Header{"Content-Type": {"text/plain"}},
		ResponseBody:   []byte("ok\xffdone"),
	})
	assert.Equal(t, "Body: ok�done", lines[len(lines)-1])
}

func TestFormat_TransportError(t *testing.T) {
	lines := Format(Exchange{Method: "GET", URI: "https://x", Err: errors.New("dial tcp: i/o timeout")})
	assert.Equal(t, "--DocuSign RESPONSE--", lines[len(lines)-2])
	assert.Equal(t, "Error: dial tcp: i/o timeout", lines[len(lines)-1])
}

func TestLog_KeepsOnlyLast(t *testing.T) {
	var out bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Level: hclog.Trace, Output: &out})
	log := New(logger)

	assert.Nil(t, log.Last())
	assert.Equal(t, "", log.String())

	log.Record(Exchange{Method: "GET", URI: "https://x/first", Proto: "HTTP/1.1", Status: "200 OK"})
	log.Record(Exchange{Method: "DELETE", URI: "https://x/second", Proto: "HTTP/1.1", Status: "200 OK"})

	last := log.Last()
	require.NotEmpty(t, last)
	assert.Equal(t, "DELETE https://x/second", last[1])
	assert.NotContains(t, log.String(), "first")

	last[1] = "mutated"
	assert.Equal(t, "DELETE https://x/second", log.Last()[1])

	assert.Contains(t, out.String(), "request completed")
	assert.Contains(t, out.String(), "--DocuSign REQUEST--")
}

func TestNew_NilLogger(t *testing.T) {
	log := New(nil)
	log.Record(Exchange{Method: "GET", URI: "https://x"})
	assert.Len(t, log.Last(), 6)
}
