package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sirosfoundation/go-docusign/pkg/connect"
	"github.com/sirosfoundation/go-docusign/pkg/transport"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Verify and receive Connect notifications",
}

var connectVerifyCmd = &cobra.Command{
	Use:   "verify <body-file>",
	Short: "Check a notification body against its HMAC signature",
	Long: "Check a notification body against its HMAC signature. Without --signature " +
		"the computed signature is printed.",
	Args: cobra.ExactArgs(1),
	RunE: runConnectVerify,
}

var connectListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Receive notifications and log them",
	Args:  cobra.NoArgs,
	RunE:  runConnectListen,
}

func init() {
	connectVerifyCmd.Flags().String("secret", "", "HMAC key of the Connect configuration")
	connectVerifyCmd.Flags().String("signature", "", "Value of an X-DocuSign-Signature-N header")
	_ = connectVerifyCmd.MarkFlagRequired("secret")

	connectListenCmd.Flags().String("addr", ":8443", "Listen address")
	connectListenCmd.Flags().String("path", "/connect", "Notification path")
	connectListenCmd.Flags().StringSlice("secret", nil, "HMAC keys; requests must match one when set")
	connectListenCmd.Flags().String("cert", "", "TLS certificate (PEM)")
	connectListenCmd.Flags().String("key", "", "TLS private key (PEM)")
	connectListenCmd.Flags().Bool("insecure", false, "Serve plain HTTP, for local testing behind a TLS proxy")
	connectListenCmd.Flags().Duration("dedup-window", 24*time.Hour, "Acknowledge redelivered notifications seen within this window; 0 disables")

	connectCmd.AddCommand(connectVerifyCmd, connectListenCmd)
	rootCmd.AddCommand(connectCmd)
}

func runConnectVerify(cmd *cobra.Command, args []string) error {
	body, err := afero.ReadFile(appFs, args[0])
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	secret, _ := cmd.Flags().GetString("secret")
	signature, _ := cmd.Flags().GetString("signature")

	if signature == "" {
		fmt.Fprintln(cmd.OutOrStdout(), connect.ComputeHMAC([]byte(secret), body))
		return nil
	}
	if !connect.Verify(secret, body, signature) {
		return connect.ErrInvalidSignature
	}
	fmt.Fprintln(cmd.OutOrStdout(), "signature valid")
	return nil
}

// logEvents logs every notification
func logEvents(logger hclog.Logger) connect.EventFunc {
	return func(_ context.Context, ev *connect.Event) error {
		args := []any{"event", ev.Event, "envelope_id", ev.Data.EnvelopeID}
		if ev.Data.RecipientID != "" {
			args = append(args, "recipient_id", ev.Data.RecipientID)
		}
		if t, err := ev.Time(); err == nil {
			args = append(args, "generated", t.UTC())
		}
		logger.Info("notification", args...)
		return nil
	}
}

func runConnectListen(cmd *cobra.Command, _ []string) error {
	logger := newLogger(viper.GetViper())

	addr, _ := cmd.Flags().GetString("addr")
	path, _ := cmd.Flags().GetString("path")
	secrets, _ := cmd.Flags().GetStringSlice("secret")
	certFile, _ := cmd.Flags().GetString("cert")
	keyFile, _ := cmd.Flags().GetString("key")
	insecure, _ := cmd.Flags().GetBool("insecure")
	window, _ := cmd.Flags().GetDuration("dedup-window")

	cfg := transport.DefaultHTTPSConfig()
	cfg.Insecure = insecure
	if certFile != "" || keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return fmt.Errorf("loading TLS key pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	if len(secrets) == 0 {
		logger.Warn("no HMAC secret configured, notifications are not authenticated")
	}

	handler := connect.NewHandler(logEvents(logger), logger, secrets...)
	if window > 0 {
		handler.WithTracker(connect.NewTracker(window))
	}
	server := transport.NewHTTPSServer(addr, path, cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening for notifications", "addr", addr, "path", path, "tls", !insecure)
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
