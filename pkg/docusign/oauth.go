package docusign

import (
	"context"
	"crypto/rsa"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/sirosfoundation/go-docusign/pkg/auth"
)

// GetToken exchanges username and password for an access token. The
// client keeps its authentication; call SetAccessToken to switch.
func (c *Client) GetToken(ctx context.Context, username, password string) (*oauth2.Token, error) {
	return c.oauth.PasswordToken(ctx, username, password)
}

// RequestJWTUserToken obtains a token with the JWT grant. A nil key is
// loaded from oauth.privateKeyFile.
func (c *Client) RequestJWTUserToken(ctx context.Context, key *rsa.PrivateKey) (*oauth2.Token, error) {
	if key == nil {
		if c.cfg.OAuth.PrivateKeyFile == "" {
			return nil, fmt.Errorf("no private key given and oauth.privateKeyFile is not set")
		}
		var err error
		if key, err = auth.LoadPrivateKey(c.fs, c.cfg.OAuth.PrivateKeyFile); err != nil {
			return nil, err
		}
	}
	tok, err := c.oauth.JWTToken(ctx, key)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("obtained jwt user token", "expiry", tok.Expiry)
	return tok, nil
}

// RefreshToken exchanges the refresh token of tok
func (c *Client) RefreshToken(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	return c.oauth.Refresh(ctx, tok)
}

// UserInfo returns the user and accounts behind tok
func (c *Client) UserInfo(ctx context.Context, tok *oauth2.Token) (*auth.UserInfo, error) {
	return c.oauth.UserInfo(ctx, tok)
}

// ConsentURL returns the page where the user grants the integration access
func (c *Client) ConsentURL() string {
	return c.oauth.ConsentURL()
}
