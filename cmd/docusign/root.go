package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sirosfoundation/go-docusign/pkg/config"
	"github.com/sirosfoundation/go-docusign/pkg/docusign"
)

// appFs is where config, envelope and key files are read and downloads
// are written.
var appFs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "docusign",
	Short: "DocuSign eSignature client",
	Long: "docusign sends envelopes, inspects their status and downloads signed documents " +
		"through the DocuSign eSignature REST API.",
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to YAML configuration file")
	pf.String("endpoint", "", "REST endpoint (default "+config.DefaultEndpoint+")")
	pf.String("api-version", "", "API version path segment (default "+config.DefaultAPIVersion+")")
	pf.String("account-id", "", "Account id, resolved from login information when empty")
	pf.String("token", "", "OAuth access token, used instead of username and password")
	pf.Bool("debug", false, "Debug output, including the last exchange on failure")

	_ = viper.BindPFlag("config", pf.Lookup("config"))
	_ = viper.BindPFlag("endpoint", pf.Lookup("endpoint"))
	_ = viper.BindPFlag("api_version", pf.Lookup("api-version"))
	_ = viper.BindPFlag("account_id", pf.Lookup("account-id"))
	_ = viper.BindPFlag("token", pf.Lookup("token"))
	_ = viper.BindPFlag("debug", pf.Lookup("debug"))
}

func initConfig() {
	bindEnv(viper.GetViper())
}

// bindEnv maps DOCUSIGN_* environment variables onto v. Credentials come
// from the environment or the config file only, under their prefixed names.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("DOCUSIGN")
	v.AutomaticEnv()
	_ = v.BindEnv("username", "DOCUSIGN_USERNAME")
	_ = v.BindEnv("password", "DOCUSIGN_PASSWORD")
	_ = v.BindEnv("integrator_key", "DOCUSIGN_INTEGRATOR_KEY")
}

// loadConfig reads the config file named by v, if any, and applies flag
// and DOCUSIGN_* environment values over it.
func loadConfig(fs afero.Fs, v *viper.Viper) (config.Config, error) {
	var base config.Config
	if path := v.GetString("config"); path != "" {
		cfg, err := config.LoadFs(fs, path)
		if err != nil {
			return config.Config{}, err
		}
		base = *cfg
	}

	override := config.Config{
		Endpoint:      v.GetString("endpoint"),
		APIVersion:    v.GetString("api_version"),
		AccountID:     v.GetString("account_id"),
		AccessToken:   v.GetString("token"),
		Username:      v.GetString("username"),
		Password:      v.GetString("password"),
		IntegratorKey: v.GetString("integrator_key"),
		OAuth: config.OAuthConfig{
			UserID:         v.GetString("oauth_user_id"),
			PrivateKeyFile: v.GetString("oauth_private_key_file"),
		},
	}
	return config.Merge(base, override)
}

func newLogger(v *viper.Viper) hclog.Logger {
	level := hclog.Info
	if v.GetBool("debug") {
		level = hclog.Trace
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "docusign",
		Level:  level,
		Output: os.Stderr,
	})
}

func newClient() (*docusign.Client, hclog.Logger, error) {
	logger := newLogger(viper.GetViper())
	cfg, err := loadConfig(appFs, viper.GetViper())
	if err != nil {
		return nil, logger, err
	}
	client, err := docusign.NewClient(cfg, docusign.WithLogger(logger), docusign.WithFs(appFs))
	if err != nil {
		return nil, logger, err
	}
	return client, logger, nil
}

// explain prints the last exchange when a call failed in debug mode.
func explain(cmd *cobra.Command, client *docusign.Client, err error) error {
	if err != nil && client != nil && viper.GetBool("debug") {
		for _, line := range client.LastCall() {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
	}
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints a result and turns a provider error into a command
// failure.
func printResult(cmd *cobra.Command, client *docusign.Client, result docusign.Result) error {
	if err := printJSON(cmd, result); err != nil {
		return err
	}
	if code := result.ErrorCode(); code != "" {
		return explain(cmd, client, fmt.Errorf("%s: %s", code, result.Message()))
	}
	return nil
}
