package main

import (
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Show login information and the account in use",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	client, logger, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	info, err := client.LoginInformation(ctx, nil)
	if err != nil {
		return explain(cmd, client, err)
	}
	if err := printResult(cmd, client, info); err != nil {
		return err
	}

	id, err := client.AccountID(ctx)
	if err != nil {
		return explain(cmd, client, err)
	}
	logger.Info("using account", "account_id", id)
	return nil
}
