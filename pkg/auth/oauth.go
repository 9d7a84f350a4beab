package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/sirosfoundation/go-docusign/pkg/config"
)

// Sentinel errors for token requests.
var (
	// ErrConsentRequired indicates the user has not granted consent to the
	// integration yet. Send them to [OAuth.ConsentURL] and retry.
	ErrConsentRequired = errors.New("consent required")

	// ErrTokenRequest indicates the account server rejected a token request.
	ErrTokenRequest = errors.New("token request rejected")

	// ErrMissingUserID indicates a JWT grant without oauth.userId.
	ErrMissingUserID = errors.New("oauth user id is required for the JWT grant")
)

// JWTBearerGrant is the grant type of the JWT user token flow
const JWTBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// OAuth issues and refreshes access tokens.
type OAuth struct {
	cfg    config.Config
	client *http.Client
	now    func() time.Time
}

// NewOAuth creates an OAuth helper. client may be nil to use http.DefaultClient.
func NewOAuth(cfg config.Config, client *http.Client) *OAuth {
	return &OAuth{cfg: cfg, client: client, now: time.Now}
}

// UserInfo is returned by the account server userinfo endpoint
type UserInfo struct {
	Sub      string        `json:"sub"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Accounts []UserAccount `json:"accounts"`
}

// UserAccount is one account the user may act on
type UserAccount struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	IsDefault   bool   `json:"is_default"`
	BaseURI     string `json:"base_uri"`
}

// DefaultAccount returns the account flagged as default, or the first one.
func (u *UserInfo) DefaultAccount() (UserAccount, bool) {
	for _, a := range u.Accounts {
		if a.IsDefault {
			return a, true
		}
	}
	if len(u.Accounts) > 0 {
		return u.Accounts[0], true
	}
	return UserAccount{}, false
}

func (o *OAuth) context(ctx context.Context) context.Context {
	if o.client != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, o.client)
	}
	return ctx
}

func (o *OAuth) httpClient() *http.Client {
	if o.client != nil {
		return o.client
	}
	return http.DefaultClient
}

func (o *OAuth) baseURL() string {
	return strings.TrimRight(o.cfg.OAuth.BaseURL, "/")
}

// passwordConfig targets the legacy REST token endpoint.
func (o *OAuth) passwordConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID: o.cfg.IntegratorKey,
		Endpoint: oauth2.Endpoint{
			TokenURL:  strings.TrimRight(o.cfg.Endpoint, "/") + "/" + o.cfg.APIVersion + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"api"},
	}
}

func (o *OAuth) authCodeConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     o.cfg.IntegratorKey,
		ClientSecret: o.cfg.OAuth.SecretKey,
		Endpoint: oauth2.Endpoint{
			AuthURL:   o.baseURL() + "/oauth/auth",
			TokenURL:  o.baseURL() + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: o.cfg.OAuth.RedirectURL,
		Scopes:      o.cfg.OAuth.Scopes,
	}
}

// PasswordToken exchanges a username and password for an access token.
func (o *OAuth) PasswordToken(ctx context.Context, username, password string) (*oauth2.Token, error) {
	tok, err := o.passwordConfig().PasswordCredentialsToken(o.context(ctx), username, password)
	if err != nil {
		return nil, fmt.Errorf("requesting password token: %w", err)
	}
	return tok, nil
}

// ConsentURL returns the page where a user grants the integration access.
func (o *OAuth) ConsentURL() string {
	return o.authCodeConfig().AuthCodeURL("")
}

// Refresh exchanges the refresh token of tok for a new access token.
func (o *OAuth) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	if tok == nil || tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", ErrTokenRequest)
	}
	src := o.authCodeConfig().TokenSource(o.context(ctx), &oauth2.Token{RefreshToken: tok.RefreshToken})
	fresh, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	return fresh, nil
}

// Assertion builds the signed JWT used by the JWT grant.
func (o *OAuth) Assertion(key *rsa.PrivateKey) (string, error) {
	if o.cfg.OAuth.UserID == "" {
		return "", ErrMissingUserID
	}
	aud, err := url.Parse(o.baseURL())
	if err != nil {
		return "", fmt.Errorf("parsing oauth base url: %w", err)
	}

	now := o.now()
	claims := jwt.MapClaims{
		"iss":   o.cfg.IntegratorKey,
		"sub":   o.cfg.OAuth.UserID,
		"aud":   aud.Host,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"scope": strings.Join(o.cfg.OAuth.Scopes, " "),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing assertion: %w", err)
	}
	return signed, nil
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// JWTToken requests a user token with the JWT bearer grant. It returns
// ErrConsentRequired when the user has not consented yet.
func (o *OAuth) JWTToken(ctx context.Context, key *rsa.PrivateKey) (*oauth2.Token, error) {
	assertion, err := o.Assertion(key)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type": {JWTBearerGrant},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL()+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: status %d: %s", ErrTokenRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if tr.Error == "consent_required" {
		return nil, ErrConsentRequired
	}
	if tr.Error != "" || tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s %s", ErrTokenRequest, tr.Error, tr.ErrorDescription)
	}

	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = o.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// UserInfo looks up the user and accounts behind an access token.
func (o *OAuth) UserInfo(ctx context.Context, tok *oauth2.Token) (*UserInfo, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token", ErrTokenRequest)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL()+"/oauth/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	return &info, nil
}
