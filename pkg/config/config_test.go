package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://demo.docusign.net/restapi", cfg.Endpoint)
	assert.Equal(t, "v2", cfg.APIVersion)
	assert.Equal(t, "GET", cfg.Method)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.OpenTimeout)
	assert.Equal(t, 60*time.Second, cfg.ReadTimeout)
	assert.Equal(t, []string{"signature", "impersonation"}, cfg.OAuth.Scopes)
	assert.NoError(t, cfg.Validate())
}

func TestMerge_OverrideWins(t *testing.T) {
	app := Config{
		Username:      "module-user",
		Password:      "module-pass",
		IntegratorKey: "module-key",
		AccountID:     "111",
		APIVersion:    "v2.1",
	}
	client := Config{
		AccountID: "222",
		Endpoint:  "https://www.docusign.net/restapi",
	}

	cfg, err := Resolve(app, client)
	require.NoError(t, err)

	assert.Equal(t, "222", cfg.AccountID)
	assert.Equal(t, "https://www.docusign.net/restapi", cfg.Endpoint)
	assert.Equal(t, "module-user", cfg.Username)
	assert.Equal(t, "v2.1", cfg.APIVersion)
	assert.Equal(t, "GET", cfg.Method, "built-in default survives both layers")
}

func TestMerge_DoesNotMutateBase(t *testing.T) {
	base := Default()
	_, err := Merge(base, Config{OAuth: OAuthConfig{Scopes: []string{"signature"}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"signature", "impersonation"}, base.OAuth.Scopes)
}

func TestAuthMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want AuthMode
	}{
		{"none", Config{}, AuthNone},
		{"credentials", Config{Username: "u", Password: "p", IntegratorKey: "k"}, AuthCredentials},
		{"token", Config{AccessToken: "t"}, AuthToken},
		{"token wins", Config{AccessToken: "t", Username: "u", Password: "p"}, AuthToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.AuthMode())
		})
	}
}

func TestAccept(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "application/json", cfg.Accept())

	cfg.Format = "xml"
	assert.Equal(t, "application/xml", cfg.Accept())
}

func TestValidate_RejectsUnknownValues(t *testing.T) {
	cfg := Default()
	cfg.Format = "csv"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Method = "PATCH"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Endpoint = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadFs(t *testing.T) {
	t.Setenv("DOCUSIGN_TEST_PASSWORD", "s3cret")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/docusign.yaml", []byte(`
endpoint: https://demo.docusign.net/restapi/
apiVersion: v2.1
username: user@example.com
password: ${DOCUSIGN_TEST_PASSWORD}
integratorKey: KEY-1
method: put
openTimeout: 2s
oauth:
  userId: 5a1c
`), 0o600))

	cfg, err := LoadFs(fs, "/etc/docusign.yaml")
	require.NoError(t, err)

	assert.Equal(t, "https://demo.docusign.net/restapi", cfg.Endpoint)
	assert.Equal(t, "v2.1", cfg.APIVersion)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "PUT", cfg.Method)
	assert.Equal(t, 2*time.Second, cfg.OpenTimeout)
	assert.Equal(t, 60*time.Second, cfg.ReadTimeout)
	assert.Equal(t, DefaultOAuthBaseURL, cfg.OAuth.BaseURL)
	assert.Equal(t, "5a1c", cfg.OAuth.UserID)
	assert.Equal(t, AuthCredentials, cfg.AuthMode())
}

func TestLoadFs_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := LoadFs(fs, "/missing.yaml")
	assert.ErrorContains(t, err, "reading config file")

	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("endpoint: [unclosed"), 0o600))
	_, err = LoadFs(fs, "/bad.yaml")
	assert.ErrorContains(t, err, "parsing config file")

	require.NoError(t, afero.WriteFile(fs, "/invalid.yaml", []byte("format: csv"), 0o600))
	_, err = LoadFs(fs, "/invalid.yaml")
	assert.ErrorContains(t, err, "validating config")
}
