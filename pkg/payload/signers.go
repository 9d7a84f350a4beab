package payload

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"
)

// BuildOptions controls the shape produced by the builders.
type BuildOptions struct {
	Generation Generation
	// Template adds templateLocked and templateRequired to signers and tabs
	Template bool
}

// EmailNotification overrides the notification email for one recipient
type EmailNotification struct {
	EmailSubject      string `json:"emailSubject,omitempty" mapstructure:"email_subject"`
	EmailBody         string `json:"emailBody,omitempty" mapstructure:"email_body"`
	SupportedLanguage string `json:"supportedLanguage,omitempty" mapstructure:"supported_language"`
}

// Signer describes a recipient who signs.
type Signer struct {
	Email    string
	Name     string
	RoleName string `mapstructure:"role_name"`

	// RecipientID and RoutingOrder default to the 1-based input position
	RecipientID  string `mapstructure:"recipient_id"`
	RoutingOrder int    `mapstructure:"routing_order"`

	// Embedded suppresses the notification email and requires ClientUserID
	// (or the email when empty) for the recipient view.
	Embedded     bool
	ClientUserID string `mapstructure:"client_user_id"`

	AccessCode               string             `mapstructure:"access_code"`
	Note                     string
	IDCheckConfigurationName string             `mapstructure:"id_check_configuration_name"`
	RequireIDLookup          bool               `mapstructure:"require_id_lookup"`
	EmailNotification        *EmailNotification `mapstructure:"email_notification"`
	CustomFields             []string           `mapstructure:"custom_fields"`

	TemplateLocked   *bool `mapstructure:"template_locked"`
	TemplateRequired *bool `mapstructure:"template_required"`

	Tabs map[TabKind][]Tab
}

// AddTabs appends tabs of one kind
func (s *Signer) AddTabs(kind TabKind, tabs ...Tab) {
	if s.Tabs == nil {
		s.Tabs = make(map[TabKind][]Tab)
	}
	s.Tabs[kind] = append(s.Tabs[kind], tabs...)
}

// ClientID returns the client user id used for embedded signing.
func (s *Signer) ClientID() string {
	if s.ClientUserID != "" {
		return s.ClientUserID
	}
	return s.Email
}

// SignerDefinition is the wire form of a signer.
type SignerDefinition struct {
	RecipientID  string `json:"recipientId"`
	RoutingOrder string `json:"routingOrder,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	RoleName     string `json:"roleName,omitempty"`
	ClientUserID string `json:"clientUserId,omitempty"`

	AccessCode               string             `json:"accessCode,omitempty"`
	Note                     string             `json:"note,omitempty"`
	IDCheckConfigurationName string             `json:"idCheckConfigurationName,omitempty"`
	RequireIDLookup          *bool              `json:"requireIdLookup,omitempty"`
	EmailNotification        *EmailNotification `json:"emailNotification,omitempty"`
	CustomFields             []string           `json:"customFields,omitempty"`

	TemplateAccessCodeRequired *bool `json:"templateAccessCodeRequired,omitempty"`
	TemplateLocked             *bool `json:"templateLocked,omitempty"`
	TemplateRequired           *bool `json:"templateRequired,omitempty"`

	Embedded *bool   `json:"embedded,omitempty"`
	Tabs     *TabSet `json:"tabs,omitempty"`
}

func position(explicit string, index int) string {
	if explicit != "" {
		return explicit
	}
	return strconv.Itoa(index + 1)
}

func routing(explicit, index int) string {
	if explicit > 0 {
		return strconv.Itoa(explicit)
	}
	return strconv.Itoa(index + 1)
}

// BuildSigner converts the signer at input position index.
func BuildSigner(signer Signer, index int, opts BuildOptions) (SignerDefinition, error) {
	id := position(signer.RecipientID, index)

	def := SignerDefinition{
		RecipientID:              id,
		RoutingOrder:             routing(signer.RoutingOrder, index),
		Email:                    signer.Email,
		Name:                     signer.Name,
		RoleName:                 signer.RoleName,
		AccessCode:               signer.AccessCode,
		Note:                     signer.Note,
		IDCheckConfigurationName: signer.IDCheckConfigurationName,
		RequireIDLookup:          flag(signer.RequireIDLookup),
		EmailNotification:        signer.EmailNotification,
		CustomFields:             signer.CustomFields,
	}

	if signer.Embedded {
		def.ClientUserID = signer.ClientID()
	}

	if opts.Template {
		def.TemplateAccessCodeRequired = boolPtr(false)
		def.TemplateLocked = optionalBool(signer.TemplateLocked, true)
		def.TemplateRequired = optionalBool(signer.TemplateRequired, true)
	}

	tabs, err := BuildTabs(signer.Tabs, id, opts)
	if err != nil {
		return SignerDefinition{}, err
	}
	def.Tabs = tabs

	return def, nil
}

// BuildSigners converts signers in input order. Recipient ids and routing
// order default to index+1. Every invalid signer is reported.
func BuildSigners(signers []Signer, opts BuildOptions) ([]SignerDefinition, error) {
	var result *multierror.Error
	defs := make([]SignerDefinition, 0, len(signers))

	for i, signer := range signers {
		def, err := BuildSigner(signer, i, opts)
		if err != nil {
			result = multierror.Append(result, inputError(fmt.Sprintf("signers[%d]", i), err))
			continue
		}
		defs = append(defs, def)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return defs, nil
}

// TemplateRoleDefinition fills a role of a server template.
type TemplateRoleDefinition struct {
	Name              string             `json:"name,omitempty"`
	Email             string             `json:"email,omitempty"`
	RoleName          string             `json:"roleName"`
	ClientUserID      string             `json:"clientUserId,omitempty"`
	AccessCode        string             `json:"accessCode,omitempty"`
	RoutingOrder      string             `json:"routingOrder,omitempty"`
	EmailNotification *EmailNotification `json:"emailNotification,omitempty"`
	Tabs              *TabSet            `json:"tabs,omitempty"`
}

// BuildTemplateRoles converts signers into template roles. A role name is
// required; tabs carry only label, value and selection because the
// template already positions them.
func BuildTemplateRoles(signers []Signer, opts BuildOptions) ([]TemplateRoleDefinition, error) {
	var result *multierror.Error
	roles := make([]TemplateRoleDefinition, 0, len(signers))

	for i, signer := range signers {
		path := fmt.Sprintf("signers[%d]", i)
		if signer.RoleName == "" {
			result = multierror.Append(result, inputError(path, fmt.Errorf("role_name is required")))
			continue
		}

		role := TemplateRoleDefinition{
			Name:              signer.Name,
			Email:             signer.Email,
			RoleName:          signer.RoleName,
			AccessCode:        signer.AccessCode,
			EmailNotification: signer.EmailNotification,
		}
		if signer.RoutingOrder > 0 {
			role.RoutingOrder = strconv.Itoa(signer.RoutingOrder)
		}
		if signer.Embedded {
			role.ClientUserID = signer.ClientID()
		}

		if len(signer.Tabs) > 0 {
			set := NewTabSet(opts.Generation)
			for kind, tabs := range signer.Tabs {
				if !kind.Known() {
					result = multierror.Append(result, inputError(path, fmt.Errorf("unknown tab kind %q", kind)))
					continue
				}
				for j, tab := range tabs {
					def, err := prefillTab(tab)
					if err != nil {
						result = multierror.Append(result, inputError(fmt.Sprintf("%s.tabs.%s[%d]", path, kind, j), err))
						continue
					}
					set.Add(kind, def)
				}
			}
			role.Tabs = set
		}
		roles = append(roles, role)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return roles, nil
}

// prefillTab renders a tab that fills a template field by label. Anchors and
// positions belong to the template, so a tab without a label addresses nothing.
func prefillTab(tab Tab) (TabDefinition, error) {
	if tab.Label == "" {
		return TabDefinition{}, fmt.Errorf("label is required to prefill a template tab")
	}
	def := TabDefinition{
		TabLabel: tab.Label,
		Name:     tab.Name,
		Selected: tab.Selected,
		Locked:   boolPtr(tab.Locked),
	}
	if tab.DocumentID != "" {
		def.DocumentID = tab.DocumentID
	}
	if tab.Value != "" {
		def.Value = stringPtr(tab.Value)
	}
	return def, nil
}
