package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-docusign/pkg/config"
)

// HeaderName carries the legacy credential blob
const HeaderName = "X-DocuSign-Authentication"

// Credential blob formats
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Authenticator adds authentication headers to an outgoing request.
type Authenticator interface {
	Apply(h http.Header) error
}

// None sends no authentication header
type None struct{}

// Apply implements Authenticator
func (None) Apply(http.Header) error { return nil }

// Bearer sends a previously obtained access token.
type Bearer struct {
	Token string
}

// Apply implements Authenticator
func (b Bearer) Apply(h http.Header) error {
	h.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Credentials sends username, password and integrator key in the
// X-DocuSign-Authentication header.
type Credentials struct {
	Username      string
	Password      string
	IntegratorKey string
	// Format is FormatJSON (default) or FormatXML
	Format string
}

// Apply implements Authenticator
func (c Credentials) Apply(h http.Header) error {
	value, err := c.Value()
	if err != nil {
		return err
	}
	h.Set(HeaderName, value)
	return nil
}

// Value renders the credential blob.
func (c Credentials) Value() (string, error) {
	if c.Format == FormatXML {
		doc := etree.NewDocument()
		root := doc.CreateElement("DocuSignCredentials")
		root.CreateElement("Username").SetText(c.Username)
		root.CreateElement("Password").SetText(c.Password)
		root.CreateElement("IntegratorKey").SetText(c.IntegratorKey)
		out, err := doc.WriteToString()
		if err != nil {
			return "", fmt.Errorf("failed to render credential header: %w", err)
		}
		return out, nil
	}

	out, err := json.Marshal(struct {
		Username      string `json:"Username"`
		Password      string `json:"Password"`
		IntegratorKey string `json:"IntegratorKey"`
	}{c.Username, c.Password, c.IntegratorKey})
	if err != nil {
		return "", fmt.Errorf("failed to render credential header: %w", err)
	}
	return string(out), nil
}

// FromConfig selects the authenticator for cfg. A token takes precedence
// over credentials; with neither configured requests go out unauthenticated.
func FromConfig(cfg *config.Config) Authenticator {
	switch cfg.AuthMode() {
	case config.AuthToken:
		return Bearer{Token: cfg.AccessToken}
	case config.AuthCredentials:
		return Credentials{
			Username:      cfg.Username,
			Password:      cfg.Password,
			IntegratorKey: cfg.IntegratorKey,
			Format:        cfg.CredentialFormat,
		}
	default:
		return None{}
	}
}
