package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Version is reported in the default user agent.
const Version = "0.3.0"

// Built-in defaults
const (
	DefaultEndpoint         = "https://demo.docusign.net/restapi"
	DefaultAPIVersion       = "v2"
	DefaultMethod           = "GET"
	DefaultFormat           = "json"
	DefaultCredentialFormat = "json"
	DefaultOAuthBaseURL     = "https://account-d.docusign.com"
	DefaultOpenTimeout      = 5 * time.Second
	DefaultReadTimeout      = 60 * time.Second
)

// DefaultUserAgent is sent when no user agent is configured
var DefaultUserAgent = "go-docusign/" + Version

// DefaultScopes are requested by the JWT grant and the consent URL
var DefaultScopes = []string{"signature", "impersonation"}

// AuthMode identifies which authentication header a client sends.
type AuthMode int

const (
	// AuthNone sends no authentication header; the provider rejects the call.
	AuthNone AuthMode = iota
	// AuthCredentials sends the X-DocuSign-Authentication credential blob.
	AuthCredentials
	// AuthToken sends Authorization: Bearer.
	AuthToken
)

func (m AuthMode) String() string {
	switch m {
	case AuthCredentials:
		return "credentials"
	case AuthToken:
		return "token"
	default:
		return "none"
	}
}

// Config holds connection and authentication parameters for one client.
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	APIVersion string `yaml:"apiVersion"`
	UserAgent  string `yaml:"userAgent"`
	// Method is used by raw calls that do not name one
	Method string `yaml:"method"`
	// Format selects the default Accept header: json or xml
	Format string `yaml:"format"`

	AccessToken   string `yaml:"accessToken"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	IntegratorKey string `yaml:"integratorKey"`
	AccountID     string `yaml:"accountId"`

	// CredentialFormat is json or xml
	CredentialFormat string `yaml:"credentialFormat"`

	CAFile   string `yaml:"caFile"`
	Insecure bool   `yaml:"insecure"` // local and test environments only

	OpenTimeout time.Duration `yaml:"openTimeout"`
	ReadTimeout time.Duration `yaml:"readTimeout"`

	OAuth OAuthConfig `yaml:"oauth"`
}

// OAuthConfig holds the account server settings used for token grants
type OAuthConfig struct {
	BaseURL        string   `yaml:"baseUrl"`
	UserID         string   `yaml:"userId"`
	SecretKey      string   `yaml:"secretKey"`
	PrivateKeyFile string   `yaml:"privateKeyFile"`
	RedirectURL    string   `yaml:"redirectUrl"`
	Scopes         []string `yaml:"scopes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint:         DefaultEndpoint,
		APIVersion:       DefaultAPIVersion,
		UserAgent:        DefaultUserAgent,
		Method:           DefaultMethod,
		Format:           DefaultFormat,
		CredentialFormat: DefaultCredentialFormat,
		OpenTimeout:      DefaultOpenTimeout,
		ReadTimeout:      DefaultReadTimeout,
		OAuth: OAuthConfig{
			BaseURL: DefaultOAuthBaseURL,
			Scopes:  append([]string(nil), DefaultScopes...),
		},
	}
}

// Merge returns base with every non-zero field of override applied on top.
// Applications keep their own default Config and merge per-client values
// over it; there is no process-wide configuration.
func Merge(base, override Config) (Config, error) {
	merged := base
	merged.OAuth.Scopes = append([]string(nil), base.OAuth.Scopes...)
	if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("merging config: %w", err)
	}
	return merged, nil
}

// Resolve layers application and per-client values over the built-in defaults.
func Resolve(layers ...Config) (Config, error) {
	cfg := Default()
	for _, layer := range layers {
		var err error
		if cfg, err = Merge(cfg, layer); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// AuthMode reports the authentication mode. A token wins over credentials.
func (c *Config) AuthMode() AuthMode {
	switch {
	case c.AccessToken != "":
		return AuthToken
	case c.Username != "" || c.Password != "" || c.IntegratorKey != "":
		return AuthCredentials
	default:
		return AuthNone
	}
}

// Accept returns the Accept header value for the configured format.
func (c *Config) Accept() string {
	if strings.EqualFold(c.Format, "xml") {
		return "application/xml"
	}
	return "application/json"
}

// Validate checks option values. Credentials are never required here.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, validation.Required),
		validation.Field(&c.APIVersion, validation.Required),
		validation.Field(&c.Method, validation.In("GET", "POST", "PUT", "DELETE")),
		validation.Field(&c.Format, validation.In("json", "xml")),
		validation.Field(&c.CredentialFormat, validation.In("json", "xml")),
		validation.Field(&c.OpenTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
	)
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs reads configuration from a YAML file on fs. ${VAR} references are
// expanded from the environment before parsing.
func LoadFs(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Endpoint == "" {
		c.Endpoint = d.Endpoint
	}
	if c.APIVersion == "" {
		c.APIVersion = d.APIVersion
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Method == "" {
		c.Method = d.Method
	}
	c.Method = strings.ToUpper(c.Method)
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.CredentialFormat == "" {
		c.CredentialFormat = d.CredentialFormat
	}
	if c.OpenTimeout == 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.OAuth.BaseURL == "" {
		c.OAuth.BaseURL = d.OAuth.BaseURL
	}
	if len(c.OAuth.Scopes) == 0 {
		c.OAuth.Scopes = d.OAuth.Scopes
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
}
