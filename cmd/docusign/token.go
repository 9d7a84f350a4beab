package main

import (
	"errors"
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/sirosfoundation/go-docusign/pkg/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Obtain OAuth access tokens",
}

var tokenPasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Exchange username and password for an access token",
	Args:  cobra.NoArgs,
	RunE:  runTokenPassword,
}

var tokenJWTCmd = &cobra.Command{
	Use:   "jwt",
	Short: "Request a user token with the JWT grant",
	Long: "Request a user token with the JWT grant. When the user has not granted " +
		"consent yet, the consent page is opened in a browser; run the command again afterwards.",
	Args: cobra.NoArgs,
	RunE: runTokenJWT,
}

func init() {
	tokenJWTCmd.Flags().String("user-id", "", "User to impersonate (oauth.userId)")
	tokenJWTCmd.Flags().String("key", "", "PEM private key of the integration (oauth.privateKeyFile)")
	tokenJWTCmd.Flags().Bool("no-browser", false, "Print the consent URL instead of opening it")

	_ = viper.BindPFlag("oauth_user_id", tokenJWTCmd.Flags().Lookup("user-id"))
	_ = viper.BindPFlag("oauth_private_key_file", tokenJWTCmd.Flags().Lookup("key"))

	tokenCmd.AddCommand(tokenPasswordCmd, tokenJWTCmd)
	rootCmd.AddCommand(tokenCmd)
}

type tokenOutput struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Expiry       string `json:"expiry,omitempty"`
}

func printToken(cmd *cobra.Command, tok *oauth2.Token) error {
	out := tokenOutput{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		out.Expiry = tok.Expiry.UTC().Format("2006-01-02T15:04:05Z")
	}
	return printJSON(cmd, out)
}

func runTokenPassword(cmd *cobra.Command, _ []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	cfg := client.Config()
	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("username and password are required (DOCUSIGN_USERNAME, DOCUSIGN_PASSWORD or the config file)")
	}
	tok, err := client.GetToken(cmd.Context(), cfg.Username, cfg.Password)
	if err != nil {
		return explain(cmd, client, err)
	}
	return printToken(cmd, tok)
}

func runTokenJWT(cmd *cobra.Command, _ []string) error {
	client, logger, err := newClient()
	if err != nil {
		return err
	}

	tok, err := client.RequestJWTUserToken(cmd.Context(), nil)
	if errors.Is(err, auth.ErrConsentRequired) {
		url := client.ConsentURL()
		noBrowser, _ := cmd.Flags().GetBool("no-browser")
		if noBrowser {
			fmt.Fprintln(cmd.OutOrStdout(), url)
		} else {
			logger.Info("consent required, opening browser", "url", url)
			if berr := browser.OpenURL(url); berr != nil {
				logger.Warn("failed to open browser", "error", berr)
				fmt.Fprintln(cmd.OutOrStdout(), url)
			}
		}
		return err
	}
	if err != nil {
		return err
	}
	return printToken(cmd, tok)
}
