package connect

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/hashicorp/go-hclog"
)

// SignatureHeaderPrefix is followed by 1, 2, ... one header per active
// HMAC key of the Connect configuration.
const SignatureHeaderPrefix = "X-DocuSign-Signature-"

// MaxBodySize bounds the notification bodies read by Handler
const MaxBodySize = 10 << 20

// ErrInvalidSignature is returned when no signature header matches
var ErrInvalidSignature = errors.New("invalid connect signature")

// ComputeHMAC returns the base64 HMAC-SHA256 of payload under secret.
func ComputeHMAC(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify compares signature with the HMAC of payload in constant time.
func Verify(secret string, payload []byte, signature string) bool {
	return hmac.Equal([]byte(signature), []byte(ComputeHMAC([]byte(secret), payload)))
}

// SignatureHeader returns the name of the n-th signature header
func SignatureHeader(n int) string {
	return SignatureHeaderPrefix + strconv.Itoa(n)
}

// VerifyRequest checks the body of r against every signature header and
// each secret. The body is restored so r can still be read.
func VerifyRequest(r *http.Request, secrets ...string) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	for n := 1; ; n++ {
		signature := r.Header.Get(SignatureHeader(n))
		if signature == "" {
			break
		}
		for _, secret := range secrets {
			if Verify(secret, body, signature) {
				return nil
			}
		}
	}
	return ErrInvalidSignature
}

// Event is a JSON Connect notification.
type Event struct {
	Event             string    `json:"event"`
	APIVersion        string    `json:"apiVersion"`
	URI               string    `json:"uri"`
	RetryCount        int       `json:"retryCount"`
	ConfigurationID   any       `json:"configurationId"`
	GeneratedDateTime string    `json:"generatedDateTime"`
	Data              EventData `json:"data"`
}

// EventData identifies the envelope and recipient an event is about
type EventData struct {
	AccountID       string         `json:"accountId"`
	UserID          string         `json:"userId"`
	EnvelopeID      string         `json:"envelopeId"`
	RecipientID     string         `json:"recipientId,omitempty"`
	EnvelopeSummary map[string]any `json:"envelopeSummary,omitempty"`
}

// Time parses GeneratedDateTime. The provider has sent both RFC 3339 and
// US-style timestamps, so the layout is detected.
func (e *Event) Time() (time.Time, error) {
	if e.GeneratedDateTime == "" {
		return time.Time{}, fmt.Errorf("event has no generatedDateTime")
	}
	t, err := dateparse.ParseAny(e.GeneratedDateTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing generatedDateTime: %w", err)
	}
	return t, nil
}

// ParseEvent decodes a notification body
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse connect event: %w", err)
	}
	if ev.Event == "" {
		return nil, fmt.Errorf("connect event has no event type")
	}
	return &ev, nil
}

// EventFunc handles one verified event
type EventFunc func(ctx context.Context, ev *Event) error

// Handler receives Connect notifications. When secrets are configured
// every request must carry a matching signature.
type Handler struct {
	secrets []string
	onEvent EventFunc
	logger  hclog.Logger
	tracker *Tracker
}

// NewHandler creates a handler. logger may be nil.
func NewHandler(onEvent EventFunc, logger hclog.Logger, secrets ...string) *Handler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Handler{secrets: secrets, onEvent: onEvent, logger: logger.Named("connect")}
}

// WithTracker makes the handler acknowledge redelivered notifications
// without passing them on again. A notification counts as delivered once
// the callback succeeded.
func (h *Handler) WithTracker(t *Tracker) *Handler {
	h.tracker = t
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if len(h.secrets) > 0 {
		if err := VerifyRequest(r, h.secrets...); err != nil {
			h.logger.Warn("rejected notification", "remote", r.RemoteAddr, "error", err)
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ev, err := ParseEvent(body)
	if err != nil {
		h.logger.Warn("malformed notification", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var key string
	if h.tracker != nil {
		key = BodyKey(body)
		if h.tracker.IsDuplicate(key) {
			h.logger.Debug("duplicate notification", "event", ev.Event, "envelope_id", ev.Data.EnvelopeID, "retry_count", ev.RetryCount)
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	h.logger.Debug("notification received", "event", ev.Event, "envelope_id", ev.Data.EnvelopeID)
	if h.onEvent != nil {
		if err := h.onEvent(r.Context(), ev); err != nil {
			h.logger.Error("failed to process notification", "event", ev.Event, "error", err)
			http.Error(w, fmt.Sprintf("Failed to process event: %v", err), http.StatusInternalServerError)
			return
		}
	}
	if h.tracker != nil {
		h.tracker.MarkReceived(key)
	}
	w.WriteHeader(http.StatusOK)
}
