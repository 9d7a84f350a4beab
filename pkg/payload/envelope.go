package payload

import (
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Envelope statuses
const (
	StatusCreated = "created"
	StatusSent    = "sent"
	StatusVoided  = "voided"
)

// EnvelopeDefinition is the body of a create-envelope request.
type EnvelopeDefinition struct {
	Status             string                        `json:"status,omitempty"`
	EmailSubject       string                        `json:"emailSubject,omitempty"`
	EmailBlurb         string                        `json:"emailBlurb,omitempty"`
	BrandID            string                        `json:"brandId,omitempty"`
	TemplateID         string                        `json:"templateId,omitempty"`
	TemplateRoles      []TemplateRoleDefinition      `json:"templateRoles,omitempty"`
	Documents          []DocumentDefinition          `json:"documents,omitempty"`
	Recipients         *Recipients                   `json:"recipients,omitempty"`
	CompositeTemplates []CompositeTemplateDefinition `json:"compositeTemplates,omitempty"`
	EventNotification  *EventNotificationDefinition  `json:"eventNotification,omitempty"`
	CustomFields       *CustomFields                 `json:"customFields,omitempty"`
	EmailSettings      *EmailSettings                `json:"emailSettings,omitempty"`
}

// EmailSettings overrides reply-to and adds BCC archive addresses
type EmailSettings struct {
	ReplyEmailAddressOverride string            `json:"replyEmailAddressOverride,omitempty" mapstructure:"reply_email_address_override"`
	ReplyEmailNameOverride    string            `json:"replyEmailNameOverride,omitempty" mapstructure:"reply_email_name_override"`
	BCCEmailAddresses         []BCCEmailAddress `json:"bccEmailAddresses,omitempty" mapstructure:"bcc_email_addresses"`
}

// BCCEmailAddress receives a copy of every envelope email
type BCCEmailAddress struct {
	BCCEmailAddressID string `json:"bccEmailAddressId,omitempty" mapstructure:"bcc_email_address_id"`
	Email             string `json:"email"`
}

// EventNotification subscribes a URL to envelope and recipient events.
type EventNotification struct {
	URL                        string
	Logging                    bool
	UseSOAPInterface           bool           `mapstructure:"use_soap_interface"`
	IncludeCertificateWithSOAP bool           `mapstructure:"include_certificate_with_soap"`
	RequireAcknowledgment      bool           `mapstructure:"require_acknowledgment"`
	EnvelopeEvents             []EventTrigger `mapstructure:"envelope_events"`
	RecipientEvents            []EventTrigger `mapstructure:"recipient_events"`
}

// EventTrigger selects one status change to report
type EventTrigger struct {
	StatusCode       string `mapstructure:"status_code"`
	IncludeDocuments bool   `mapstructure:"include_documents"`
}

// EventNotificationDefinition is the wire form of an event notification
type EventNotificationDefinition struct {
	URL                        string                     `json:"url"`
	LoggingEnabled             bool                       `json:"loggingEnabled"`
	UseSoapInterface           bool                       `json:"useSoapInterface"`
	IncludeCertificateWithSoap bool                       `json:"includeCertificateWithSoap"`
	RequireAcknowledgment      bool                       `json:"requireAcknowledgment"`
	EnvelopeEvents             []EnvelopeEventDefinition  `json:"envelopeEvents"`
	RecipientEvents            []RecipientEventDefinition `json:"recipientEvents,omitempty"`
}

// EnvelopeEventDefinition is one envelope status trigger
type EnvelopeEventDefinition struct {
	EnvelopeEventStatusCode string `json:"envelopeEventStatusCode"`
	IncludeDocuments        bool   `json:"includeDocuments"`
}

// RecipientEventDefinition is one recipient status trigger
type RecipientEventDefinition struct {
	RecipientEventStatusCode string `json:"recipientEventStatusCode"`
	IncludeDocuments         bool   `json:"includeDocuments"`
}

// BuildEventNotification converts n; nil yields nil. A URL is required.
func BuildEventNotification(n *EventNotification) (*EventNotificationDefinition, error) {
	if n == nil {
		return nil, nil
	}
	if err := validation.Validate(n.URL, validation.Required); err != nil {
		return nil, inputError("event_notification.url", err)
	}

	def := &EventNotificationDefinition{
		URL:                        n.URL,
		LoggingEnabled:             n.Logging,
		UseSoapInterface:           n.UseSOAPInterface,
		IncludeCertificateWithSoap: n.IncludeCertificateWithSOAP,
		RequireAcknowledgment:      n.RequireAcknowledgment,
		EnvelopeEvents:             make([]EnvelopeEventDefinition, 0, len(n.EnvelopeEvents)),
	}
	for i, ev := range n.EnvelopeEvents {
		if ev.StatusCode == "" {
			return nil, inputError(fmt.Sprintf("event_notification.envelope_events[%d]", i), fmt.Errorf("status_code is required"))
		}
		def.EnvelopeEvents = append(def.EnvelopeEvents, EnvelopeEventDefinition{
			EnvelopeEventStatusCode: ev.StatusCode,
			IncludeDocuments:        ev.IncludeDocuments,
		})
	}
	for i, ev := range n.RecipientEvents {
		if ev.StatusCode == "" {
			return nil, inputError(fmt.Sprintf("event_notification.recipient_events[%d]", i), fmt.Errorf("status_code is required"))
		}
		def.RecipientEvents = append(def.RecipientEvents, RecipientEventDefinition{
			RecipientEventStatusCode: ev.StatusCode,
			IncludeDocuments:         ev.IncludeDocuments,
		})
	}
	return def, nil
}

// CustomFields are envelope-level metadata fields.
type CustomFields struct {
	TextCustomFields []TextCustomField `json:"textCustomFields,omitempty"`
	ListCustomFields []ListCustomField `json:"listCustomFields,omitempty"`
}

// TextCustomField is a free text envelope field. The provider encodes
// flags as the strings "true" and "false".
type TextCustomField struct {
	FieldID  string `json:"fieldId,omitempty"`
	Name     string `json:"name"`
	Show     string `json:"show,omitempty"`
	Required string `json:"required,omitempty"`
	Value    string `json:"value"`
}

// ListCustomField is an envelope field with a fixed set of values
type ListCustomField struct {
	FieldID   string   `json:"fieldId,omitempty"`
	Name      string   `json:"name"`
	Show      string   `json:"show,omitempty"`
	Required  string   `json:"required,omitempty"`
	Value     string   `json:"value"`
	ListItems []string `json:"listItems,omitempty"`
}

// TextFields builds shown, optional text fields sorted by name.
func TextFields(values map[string]string) *CustomFields {
	if len(values) == 0 {
		return nil
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := &CustomFields{}
	for _, name := range names {
		fields.TextCustomFields = append(fields.TextCustomFields, TextCustomField{
			Name:     name,
			Show:     "true",
			Required: "false",
			Value:    values[name],
		})
	}
	return fields
}

// StatusUpdate changes the status of an envelope, e.g. to void it
type StatusUpdate struct {
	Status       string `json:"status"`
	VoidedReason string `json:"voidedReason,omitempty"`
}

// FolderMove moves envelopes into a folder
type FolderMove struct {
	EnvelopeIDs []string `json:"envelopeIds"`
}

// DocumentList names documents, e.g. for deletion
type DocumentList struct {
	Documents []DocumentDefinition `json:"documents"`
}

// DocumentIDs builds a DocumentList from bare ids
func DocumentIDs(ids ...string) DocumentList {
	list := DocumentList{Documents: make([]DocumentDefinition, 0, len(ids))}
	for _, id := range ids {
		list.Documents = append(list.Documents, DocumentDefinition{DocumentID: id})
	}
	return list
}
