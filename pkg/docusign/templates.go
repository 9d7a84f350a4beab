package docusign

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sirosfoundation/go-docusign/pkg/payload"
)

// TemplateRequest stores documents and signer roles as a server template.
type TemplateRequest struct {
	Name         string
	Description  string
	EmailSubject string `mapstructure:"email_subject"`
	EmailBody    string `mapstructure:"email_body"`
	Password     string
	Shared       bool

	Signers []payload.Signer
	Files   []payload.Document

	Headers http.Header `mapstructure:"-"`
}

// Definition builds the post_body. Signers and tabs are built in
// template mode.
func (r *TemplateRequest) Definition(gen payload.Generation) (*payload.TemplateDefinition, error) {
	if err := validation.Validate(r.Name, validation.Required); err != nil {
		return nil, &payload.InputError{Path: "name", Err: err}
	}
	recipients, err := payload.BuildRecipients(r.Signers, nil, nil, payload.BuildOptions{Generation: gen, Template: true})
	if err != nil {
		return nil, err
	}
	return &payload.TemplateDefinition{
		EmailBlurb:   r.EmailBody,
		EmailSubject: r.EmailSubject,
		Documents:    payload.BuildDocuments(r.Files),
		Recipients:   recipients,
		EnvelopeTemplateDefinition: payload.EnvelopeTemplateDefinition{
			Description: r.Description,
			Name:        r.Name,
			PageCount:   1,
			Password:    r.Password,
			Shared:      r.Shared,
		},
	}, nil
}

// CreateTemplate uploads the documents and stores the template
func (c *Client) CreateTemplate(ctx context.Context, req TemplateRequest) (Result, error) {
	def, err := req.Definition(c.gen)
	if err != nil {
		return nil, err
	}
	files, err := c.loadFiles(req.Files)
	if err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/templates")
	if err != nil {
		return nil, err
	}
	return c.sendForm(ctx, http.MethodPost, path, def, files, req.Headers)
}

// GetTemplate returns a stored template
func (c *Client) GetTemplate(ctx context.Context, templateID string) (Result, error) {
	path, err := c.accountPath(ctx, "/templates/%s", templateID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodGet, path, nil, nil, nil)
}

// ListTemplates lists the templates of the account
func (c *Client) ListTemplates(ctx context.Context) (Result, error) {
	path, err := c.accountPath(ctx, "/templates")
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodGet, path, nil, nil, nil)
}
