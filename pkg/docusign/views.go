package docusign

import (
	"context"
	"html/template"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sirosfoundation/go-docusign/pkg/payload"
)

// GetRecipientView returns the URL of an embedded signing session. The
// recipient must have been added as embedded with the same client user id.
func (c *Client) GetRecipientView(ctx context.Context, envelopeID string, view payload.RecipientView) (Result, error) {
	req, err := payload.BuildRecipientView(view)
	if err != nil {
		return nil, err
	}
	path, err := c.accountPath(ctx, "/envelopes/%s/views/recipient", envelopeID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPost, path, nil, req, nil)
}

// GetSenderView returns the URL of the sender's tagging view of a draft
func (c *Client) GetSenderView(ctx context.Context, envelopeID, returnURL string) (Result, error) {
	if err := validation.Validate(returnURL, validation.Required); err != nil {
		return nil, &payload.InputError{Path: "return_url", Err: err}
	}
	path, err := c.accountPath(ctx, "/envelopes/%s/views/sender", envelopeID)
	if err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPost, path, nil, payload.ReturnURLRequest{ReturnURL: returnURL}, nil)
}

// GetConsoleView returns the URL of the web console, opened on envelopeID
// when one is given.
func (c *Client) GetConsoleView(ctx context.Context, envelopeID, returnURL string) (Result, error) {
	path, err := c.accountPath(ctx, "/views/console")
	if err != nil {
		return nil, err
	}
	body := payload.ReturnURLRequest{EnvelopeID: envelopeID, ReturnURL: returnURL}
	return c.sendJSON(ctx, http.MethodPost, path, nil, body, nil)
}

// BreakoutPath returns an HTML page that sends the parent frame to path.
// Embedded signing returns inside an iframe; serving this page from the
// return URL leaves it.
func BreakoutPath(path string) string {
	return "<html><body><script type='text/javascript' charset='utf-8'>parent.location.href = '" +
		template.JSEscapeString(path) + "';</script></body></html>"
}
