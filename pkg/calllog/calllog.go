package calllog

import (
	"bytes"
	"mime"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	docmime "github.com/sirosfoundation/go-docusign/pkg/mime"
)

const (
	requestMarker  = "--DocuSign REQUEST--"
	responseMarker = "--DocuSign RESPONSE--"

	// Filtered replaces credential values
	Filtered = "[FILTERED]"
	// BinaryBlob replaces file contents and binary response bodies
	BinaryBlob = "[BINARY BLOB]"
)

var (
	jsonPassword = regexp.MustCompile(`("Password"\s*:\s*")((?:[^"\\]|\\.)*)(")`)
	xmlPassword  = regexp.MustCompile(`(?s)(<Password>)(.*?)(</Password>)`)
)

// Exchange is one request and its response as seen on the wire.
type Exchange struct {
	Method        string
	URI           string
	RequestHeader http.Header
	RequestBody   []byte

	Proto          string
	Status         string
	ResponseHeader http.Header
	ResponseBody   []byte

	// Err is set when no response was received
	Err error
}

// Log keeps the formatted form of the most recent exchange.
type Log struct {
	mu     sync.Mutex
	logger hclog.Logger
	last   []string
}

// New creates a log that also writes exchanges to logger. A nil logger
// discards them.
func New(logger hclog.Logger) *Log {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Log{logger: logger.Named("calls")}
}

// Record formats ex and replaces the previous exchange.
func (l *Log) Record(ex Exchange) {
	lines := Format(ex)

	l.mu.Lock()
	l.last = lines
	l.mu.Unlock()

	if ex.Err != nil {
		l.logger.Debug("request failed", "method", ex.Method, "uri", ex.URI, "error", ex.Err)
	} else {
		l.logger.Debug("request completed", "method", ex.Method, "uri", ex.URI, "status", ex.Status)
	}
	if l.logger.IsTrace() {
		l.logger.Trace(strings.Join(lines, "\n"))
	}
}

// Last returns the lines of the most recent exchange, nil before the first
func (l *Log) Last() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return nil
	}
	out := make([]string, len(l.last))
	copy(out, l.last)
	return out
}

func (l *Log) String() string {
	return strings.Join(l.Last(), "\n")
}

// Format renders ex with credentials and binary content masked.
func Format(ex Exchange) []string {
	lines := []string{requestMarker, ex.Method + " " + ex.URI}
	lines = append(lines, headerLines(ex.RequestHeader)...)
	lines = append(lines, "Body: "+requestBody(ex.RequestHeader.Get("Content-Type"), ex.RequestBody))

	lines = append(lines, responseMarker)
	if ex.Err != nil {
		return append(lines, "Error: "+clean(ex.Err.Error()))
	}
	lines = append(lines, strings.TrimSpace(ex.Proto+" "+ex.Status))
	lines = append(lines, headerLines(ex.ResponseHeader)...)
	lines = append(lines, "Body: "+responseBody(ex.ResponseHeader.Get("Content-Type"), ex.ResponseBody))
	return lines
}

// Redact masks password values in JSON and XML credential blobs.
func Redact(s string) string {
	s = jsonPassword.ReplaceAllString(s, "${1}"+Filtered+"${3}")
	return xmlPassword.ReplaceAllString(s, "${1}"+Filtered+"${3}")
}

func clean(s string) string {
	return strings.ToValidUTF8(s, "�")
}

func headerLines(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, http.CanonicalHeaderKey(k)+": "+Redact(clean(strings.Join(h[k], ", "))))
	}
	return lines
}

func requestBody(contentType string, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.HasPrefix(mediaType, "multipart/") {
		return Redact(clean(string(body)))
	}

	form, err := docmime.Parse(bytes.NewReader(body), contentType)
	if err != nil {
		return BinaryBlob
	}
	for i := range form.Files {
		form.Files[i].Data = []byte(BinaryBlob)
	}
	masked, _, err := form.Serialize()
	if err != nil {
		return BinaryBlob
	}
	return Redact(clean(string(masked)))
}

func responseBody(contentType string, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !textual(contentType) {
		return BinaryBlob
	}
	return Redact(clean(string(body)))
}

// textual reports whether a response body is worth printing. PDF, PNG and
// other binary downloads are not.
func textual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case strings.Contains(mediaType, "json"), strings.Contains(mediaType, "xml"):
		return true
	case mediaType == "application/x-www-form-urlencoded":
		return true
	}
	return false
}
