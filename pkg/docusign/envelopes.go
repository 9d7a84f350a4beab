package docusign

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sirosfoundation/go-docusign/pkg/payload"
)

// EnvelopeFromDocumentRequest creates an envelope from uploaded documents.
type EnvelopeFromDocumentRequest struct {
	// Status is sent (default) or created for a draft
	Status       string
	EmailSubject string `mapstructure:"email_subject"`
	EmailBody    string `mapstructure:"email_body"`
	BrandID      string `mapstructure:"brand_id"`

	Signers             []payload.Signer
	CarbonCopies        []payload.CarbonCopy `mapstructure:"carbon_copies"`
	CertifiedDeliveries []payload.CarbonCopy `mapstructure:"certified_deliveries"`
	Files               []payload.Document

	EventNotification *payload.EventNotification `mapstructure:"event_notification"`
	CustomFields      map[string]string          `mapstructure:"custom_fields"`
	EmailSettings     *payload.EmailSettings     `mapstructure:"email_settings"`

	Headers http.Header `mapstructure:"-"`
}

func status(s string) string {
	if s == "" {
		return payload.StatusSent
	}
	return s
}

// Definition builds the post_body of the request.
func (r *EnvelopeFromDocumentRequest) Definition(gen payload.Generation) (*payload.EnvelopeDefinition, error) {
	recipients, err := payload.BuildRecipients(r.Signers, r.CarbonCopies, r.CertifiedDeliveries, payload.BuildOptions{Generation: gen})
	if err != nil {
		return nil, err
	}
	notification, err := payload.BuildEventNotification(r.EventNotification)
	if err != nil {
		return nil, err
	}
	return &payload.EnvelopeDefinition{
		Status:            status(r.Status),
		EmailSubject:      r.EmailSubject,
		EmailBlurb:        r.EmailBody,
		BrandID:           r.BrandID,
		Documents:         payload.BuildDocuments(r.Files),
		Recipients:        recipients,
		EventNotification: notification,
		CustomFields:      payload.TextFields(r.CustomFields),
		EmailSettings:     r.EmailSettings,
	}, nil
}

// CreateEnvelopeFromDocument uploads the files and creates an envelope
// addressed to the signers. Input is validated and files are read before
// anything is sent.
func (c *Client) CreateEnvelopeFromDocument(ctx context.Context, req EnvelopeFromDocumentRequest) (Result, error) {
	def, err := req.Definition(c.gen)
	if err != nil {
		return nil, err
	}
	files, err := c.loadFiles(req.Files)
	if err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/envelopes")
	if err != nil {
		return nil, err
	}
	return c.sendForm(ctx, http.MethodPost, path, def, files, req.Headers)
}

// EnvelopeFromTemplateRequest creates an envelope from one server template.
type EnvelopeFromTemplateRequest struct {
	Status       string
	EmailSubject string `mapstructure:"email_subject"`
	EmailBody    string `mapstructure:"email_body"`
	TemplateID   string `mapstructure:"template_id"`

	// Signers fill the template roles and need a RoleName
	Signers []payload.Signer

	EventNotification *payload.EventNotification `mapstructure:"event_notification"`
	CustomFields      map[string]string          `mapstructure:"custom_fields"`

	Headers http.Header `mapstructure:"-"`
}

// Definition builds the request body
func (r *EnvelopeFromTemplateRequest) Definition(gen payload.Generation) (*payload.EnvelopeDefinition, error) {
	if err := validation.Validate(r.TemplateID, validation.Required); err != nil {
		return nil, &payload.InputError{Path: "template_id", Err: err}
	}
	roles, err := payload.BuildTemplateRoles(r.Signers, payload.BuildOptions{Generation: gen})
	if err != nil {
		return nil, err
	}
	notification, err := payload.BuildEventNotification(r.EventNotification)
	if err != nil {
		return nil, err
	}
	return &payload.EnvelopeDefinition{
		Status:            status(r.Status),
		EmailSubject:      r.EmailSubject,
		EmailBlurb:        r.EmailBody,
		TemplateID:        r.TemplateID,
		TemplateRoles:     roles,
		EventNotification: notification,
		CustomFields:      payload.TextFields(r.CustomFields),
	}, nil
}

// CreateEnvelopeFromTemplate creates an envelope from a stored template
func (c *Client) CreateEnvelopeFromTemplate(ctx context.Context, req EnvelopeFromTemplateRequest) (Result, error) {
	def, err := req.Definition(c.gen)
	if err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/envelopes")
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPost, path, nil, def, req.Headers)
}

// CompositeTemplateRequest combines server templates with inline signers
// and optional replacement documents.
type CompositeTemplateRequest struct {
	Status            string
	EmailSubject      string   `mapstructure:"email_subject"`
	EmailBody         string   `mapstructure:"email_body"`
	ServerTemplateIDs []string `mapstructure:"server_template_ids"`

	Signers []payload.Signer
	Files   []payload.Document

	EventNotification *payload.EventNotification `mapstructure:"event_notification"`
	CustomFields      map[string]string          `mapstructure:"custom_fields"`

	Headers http.Header `mapstructure:"-"`
}

// Definition builds the request body
func (r *CompositeTemplateRequest) Definition(gen payload.Generation) (*payload.EnvelopeDefinition, error) {
	composites, err := payload.BuildCompositeTemplates(r.ServerTemplateIDs, r.Signers, r.Files, payload.BuildOptions{Generation: gen})
	if err != nil {
		return nil, err
	}
	notification, err := payload.BuildEventNotification(r.EventNotification)
	if err != nil {
		return nil, err
	}
	return &payload.EnvelopeDefinition{
		Status:             status(r.Status),
		EmailSubject:       r.EmailSubject,
		EmailBlurb:         r.EmailBody,
		CompositeTemplates: composites,
		EventNotification:  notification,
		CustomFields:       payload.TextFields(r.CustomFields),
	}, nil
}

// CreateEnvelopeFromCompositeTemplate creates an envelope from composite
// templates. The request is multipart when files are given, JSON otherwise.
func (c *Client) CreateEnvelopeFromCompositeTemplate(ctx context.Context, req CompositeTemplateRequest) (Result, error) {
	def, err := req.Definition(c.gen)
	if err != nil {
		return nil, err
	}
	files, err := c.loadFiles(req.Files)
	if err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/envelopes")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return c.sendJSON(ctx, http.MethodPost, path, nil, def, req.Headers)
	}
	return c.sendForm(ctx, http.MethodPost, path, def, files, req.Headers)
}

// CreateEnvelope creates env and records the new envelope id on it.
func (c *Client) CreateEnvelope(ctx context.Context, env *payload.Envelope) (string, error) {
	def, err := env.Definition(c.gen)
	if err != nil {
		return "", err
	}
	path, err := c.accountPath(ctx, "/envelopes")
	if err != nil {
		return "", err
	}
	result, err := c.sendJSON(ctx, http.MethodPost, path, nil, def, nil)
	if err != nil {
		return "", err
	}
	id := result.String("envelopeId")
	if id == "" {
		return "", &APIError{ErrorCode: result.ErrorCode(), Message: result.Message()}
	}
	env.ID = id
	c.logger.Info("envelope created", "envelope_id", id)
	return id, nil
}

// GetEnvelopeStatus returns the envelope summary
func (c *Client) GetEnvelopeStatus(ctx context.Context, envelopeID string) (Result, error) {
	path, err := c.accountPath(ctx, "/envelopes/%s", envelopeID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodGet, path, nil, nil, nil)
}

// GetEnvelopeRecipients lists recipients, optionally with their tabs and
// extended details.
func (c *Client) GetEnvelopeRecipients(ctx context.Context, envelopeID string, includeTabs, includeExtended bool) (Result, error) {
	path, err := c.accountPath(ctx, "/envelopes/%s/recipients", envelopeID)
	if err != nil {
		return nil, err
	}
	query := url.Values{
		"include_tabs":     {strconv.FormatBool(includeTabs)},
		"include_extended": {strconv.FormatBool(includeExtended)},
	}
	return c.sendJSON(ctx, http.MethodGet, path, query, nil, nil)
}

// GetEnvelopeDocuments lists the documents of an envelope
func (c *Client) GetEnvelopeDocuments(ctx context.Context, envelopeID string) (Result, error) {
	path, err := c.accountPath(ctx, "/envelopes/%s/documents", envelopeID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodGet, path, nil, nil, nil)
}

// GetDocumentFromEnvelope downloads one document
func (c *Client) GetDocumentFromEnvelope(ctx context.Context, envelopeID, documentID string) ([]byte, error) {
	path, err := c.accountPath(ctx, "/envelopes/%s/documents/%s", envelopeID, documentID)
	if err != nil {
		return nil, err
	}
	return c.download(ctx, path, nil)
}

// GetCombinedDocumentFromEnvelope downloads all documents as one PDF,
// optionally followed by the certificate of completion.
func (c *Client) GetCombinedDocumentFromEnvelope(ctx context.Context, envelopeID string, certificate bool) ([]byte, error) {
	path, err := c.accountPath(ctx, "/envelopes/%s/documents/combined", envelopeID)
	if err != nil {
		return nil, err
	}
	var query url.Values
	if certificate {
		query = url.Values{"certificate": {"true"}}
	}
	return c.download(ctx, path, query)
}

// GetPageImage downloads a rendered page as PNG
func (c *Client) GetPageImage(ctx context.Context, envelopeID, documentID string, page int) ([]byte, error) {
	if page < 1 {
		return nil, &payload.InputError{Path: "page", Err: fmt.Errorf("page %d is not a page number", page)}
	}
	path, err := c.accountPath(ctx, "/envelopes/%s/documents/%s/pages/%d/page_image", envelopeID, documentID, page)
	if err != nil {
		return nil, err
	}
	return c.download(ctx, path, nil)
}

// AddEnvelopeDocuments uploads documents to a draft envelope
func (c *Client) AddEnvelopeDocuments(ctx context.Context, envelopeID string, docs []payload.Document) (Result, error) {
	if len(docs) == 0 {
		return nil, &payload.InputError{Path: "files", Err: fmt.Errorf("at least one document is required")}
	}
	files, err := c.loadFiles(docs)
	if err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/envelopes/%s/documents", envelopeID)
	if err != nil {
		return nil, err
	}
	body := payload.DocumentList{Documents: payload.BuildDocuments(docs)}
	return c.sendForm(ctx, http.MethodPut, path, body, files, nil)
}

// DeleteEnvelopeDocuments removes documents from a draft envelope
func (c *Client) DeleteEnvelopeDocuments(ctx context.Context, envelopeID string, documentIDs ...string) (Result, error) {
	if len(documentIDs) == 0 {
		return nil, &payload.InputError{Path: "document_ids", Err: fmt.Errorf("at least one document id is required")}
	}
	path, err := c.accountPath(ctx, "/envelopes/%s/documents", envelopeID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodDelete, path, nil, payload.DocumentIDs(documentIDs...), nil)
}

// AddEnvelopeRecipients adds signers and carbon copies to an envelope
func (c *Client) AddEnvelopeRecipients(ctx context.Context, envelopeID string, signers []payload.Signer, ccs []payload.CarbonCopy) (Result, error) {
	recipients, err := payload.BuildRecipients(signers, ccs, nil, payload.BuildOptions{Generation: c.gen})
	if err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/envelopes/%s/recipients", envelopeID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPost, path, nil, recipients, nil)
}

// UpdateEnvelopeRecipients changes signer details. With resend the
// notification email goes out again.
func (c *Client) UpdateEnvelopeRecipients(ctx context.Context, envelopeID string, signers []payload.Signer, resend bool) (Result, error) {
	defs, err := payload.BuildSigners(signers, payload.BuildOptions{Generation: c.gen})
	if err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/envelopes/%s/recipients", envelopeID)
	if err != nil {
		return nil, err
	}
	var query url.Values
	if resend {
		query = url.Values{"resend_envelope": {"true"}}
	}
	return c.sendJSON(ctx, http.MethodPut, path, query, payload.Recipients{Signers: defs}, nil)
}

// DeleteEnvelopeRecipient removes one recipient
func (c *Client) DeleteEnvelopeRecipient(ctx context.Context, envelopeID, recipientID string) (Result, error) {
	path, err := c.accountPath(ctx, "/envelopes/%s/recipients", envelopeID)
	if err != nil {
		return nil, err
	}
	body := payload.Recipients{Signers: []payload.SignerDefinition{{RecipientID: recipientID}}}
	return c.sendJSON(ctx, http.MethodDelete, path, nil, body, nil)
}

// VoidEnvelope cancels an in-process envelope
func (c *Client) VoidEnvelope(ctx context.Context, envelopeID, reason string) (Result, error) {
	if err := validation.Validate(reason, validation.Required); err != nil {
		return nil, &payload.InputError{Path: "voided_reason", Err: err}
	}
	path, err := c.accountPath(ctx, "/envelopes/%s", envelopeID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPut, path, nil, payload.StatusUpdate{Status: payload.StatusVoided, VoidedReason: reason}, nil)
}

// MoveEnvelopeToFolder moves an envelope, e.g. to the recycle bin
func (c *Client) MoveEnvelopeToFolder(ctx context.Context, envelopeID, folderID string) (Result, error) {
	path, err := c.accountPath(ctx, "/folders/%s", folderID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPut, path, nil, payload.FolderMove{EnvelopeIDs: []string{envelopeID}}, nil)
}

// FolderSearch selects envelopes of a search folder such as drafts,
// awaiting_my_signature or completed.
type FolderSearch struct {
	Folder            string
	FromDate          time.Time `mapstructure:"from_date"`
	ToDate            time.Time `mapstructure:"to_date"`
	StartPosition     int       `mapstructure:"start_position"`
	Count             int
	Order             string
	OrderBy           string `mapstructure:"order_by"`
	IncludeRecipients bool   `mapstructure:"include_recipients"`
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (s FolderSearch) query() url.Values {
	q := url.Values{}
	if !s.FromDate.IsZero() {
		q.Set("from_date", formatDate(s.FromDate))
	}
	if !s.ToDate.IsZero() {
		q.Set("to_date", formatDate(s.ToDate))
	}
	if s.StartPosition > 0 {
		q.Set("start_position", strconv.Itoa(s.StartPosition))
	}
	if s.Count > 0 {
		q.Set("count", strconv.Itoa(s.Count))
	}
	if s.Order != "" {
		q.Set("order", s.Order)
	}
	if s.OrderBy != "" {
		q.Set("order_by", s.OrderBy)
	}
	if s.IncludeRecipients {
		q.Set("include_recipients", "true")
	}
	return q
}

// SearchFolderForEnvelopes lists the envelopes of a search folder
func (c *Client) SearchFolderForEnvelopes(ctx context.Context, s FolderSearch) (Result, error) {
	if err := validation.Validate(s.Folder, validation.Required); err != nil {
		return nil, &payload.InputError{Path: "folder", Err: err}
	}
	path, err := c.accountPath(ctx, "/search_folders/%s", s.Folder)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodGet, path, s.query(), nil, nil)
}

// EnvelopeQuery lists envelopes changed since FromDate
type EnvelopeQuery struct {
	FromDate time.Time `mapstructure:"from_date"`
	ToDate   time.Time `mapstructure:"to_date"`
	// Status filters by envelope status, e.g. "completed" or "sent,delivered"
	Status string
}

// Validate requires a start date that does not follow the end date.
func (q EnvelopeQuery) Validate() error {
	if q.FromDate.IsZero() {
		return &payload.InputError{Path: "from_date", Err: fmt.Errorf("from date is required")}
	}
	if !q.ToDate.IsZero() && q.ToDate.Before(q.FromDate) {
		return &payload.InputError{Path: "to_date", Err: fmt.Errorf("to date precedes from date")}
	}
	return nil
}

// ListEnvelopes lists envelopes by status change date
func (c *Client) ListEnvelopes(ctx context.Context, q EnvelopeQuery) (Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/envelopes")
	if err != nil {
		return nil, err
	}
	query := url.Values{"from_date": {formatDate(q.FromDate)}}
	if !q.ToDate.IsZero() {
		query.Set("to_date", formatDate(q.ToDate))
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	return c.sendJSON(ctx, http.MethodGet, path, query, nil, nil)
}

// GetEnvelopeCustomFields returns the envelope-level custom fields
func (c *Client) GetEnvelopeCustomFields(ctx context.Context, envelopeID string) (Result, error) {
	path, err := c.accountPath(ctx, "/envelopes/%s/custom_fields", envelopeID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodGet, path, nil, nil, nil)
}

// UpdateEnvelopeCustomFields sets text custom field values by name
func (c *Client) UpdateEnvelopeCustomFields(ctx context.Context, envelopeID string, fields map[string]string) (Result, error) {
	body := payload.TextFields(fields)
	if body == nil {
		return nil, &payload.InputError{Path: "custom_fields", Err: fmt.Errorf("at least one field is required")}
	}
	path, err := c.accountPath(ctx, "/envelopes/%s/custom_fields", envelopeID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPut, path, nil, body, nil)
}
