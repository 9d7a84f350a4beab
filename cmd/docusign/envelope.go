package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-docusign/pkg/docusign"
	"github.com/sirosfoundation/go-docusign/pkg/payload"
)

var envelopeCmd = &cobra.Command{
	Use:   "envelope",
	Short: "Send and inspect envelopes",
}

var envelopeSendCmd = &cobra.Command{
	Use:   "send <envelope.yaml>",
	Short: "Create an envelope from a YAML description",
	Long: `Create an envelope from a YAML description, for example:

  email_subject: Please sign
  signers:
    - email: a@example.com
      name: A
      embedded: true
      tabs:
        sign_here:
          - anchor_string: /s1/
  files:
    - path: contract.pdf

Relative file paths are resolved against the directory of the YAML file.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnvelopeSend,
}

var envelopeStatusCmd = &cobra.Command{
	Use:   "status <envelope-id>",
	Short: "Show the status of an envelope",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvelopeStatus,
}

var envelopeRecipientsCmd = &cobra.Command{
	Use:   "recipients <envelope-id>",
	Short: "List the recipients of an envelope",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvelopeRecipients,
}

var envelopeVoidCmd = &cobra.Command{
	Use:   "void <envelope-id>",
	Short: "Void an in-process envelope",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvelopeVoid,
}

var envelopeDownloadCmd = &cobra.Command{
	Use:   "download <envelope-id>",
	Short: "Download a document or the combined PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvelopeDownload,
}

var envelopeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List envelopes changed in a date range",
	Args:  cobra.NoArgs,
	RunE:  runEnvelopeList,
}

func init() {
	envelopeRecipientsCmd.Flags().Bool("tabs", false, "Include tabs")
	envelopeVoidCmd.Flags().String("reason", "", "Reason shown to recipients")
	_ = envelopeVoidCmd.MarkFlagRequired("reason")
	envelopeDownloadCmd.Flags().String("document", "combined", "Document id, or combined for all documents")
	envelopeDownloadCmd.Flags().Bool("certificate", false, "Append the certificate of completion to the combined PDF")
	envelopeDownloadCmd.Flags().StringP("output", "o", "", "Output file (default <envelope-id>.pdf)")
	envelopeListCmd.Flags().String("from", "", "Start of the range, e.g. 2024-03-01 or 03/01/2024")
	envelopeListCmd.Flags().String("to", "", "End of the range")
	envelopeListCmd.Flags().String("status", "", "Status filter, e.g. completed")
	_ = envelopeListCmd.MarkFlagRequired("from")

	envelopeCmd.AddCommand(envelopeSendCmd, envelopeStatusCmd, envelopeRecipientsCmd,
		envelopeVoidCmd, envelopeDownloadCmd, envelopeListCmd)
	rootCmd.AddCommand(envelopeCmd)
}

// loadEnvelopeRequest decodes an envelope description. Relative document
// paths are taken relative to the description.
func loadEnvelopeRequest(fs afero.Fs, path string) (docusign.EnvelopeFromDocumentRequest, error) {
	var req docusign.EnvelopeFromDocumentRequest

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return req, fmt.Errorf("reading envelope file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return req, fmt.Errorf("parsing envelope file: %w", err)
	}
	if err := payload.Decode(raw, &req); err != nil {
		return req, err
	}

	dir := filepath.Dir(path)
	for i := range req.Files {
		if p := req.Files[i].Path; p != "" && !filepath.IsAbs(p) {
			req.Files[i].Path = filepath.Join(dir, p)
		}
	}
	return req, nil
}

func runEnvelopeSend(cmd *cobra.Command, args []string) error {
	req, err := loadEnvelopeRequest(appFs, args[0])
	if err != nil {
		return err
	}
	client, logger, err := newClient()
	if err != nil {
		return err
	}
	result, err := client.CreateEnvelopeFromDocument(cmd.Context(), req)
	if err != nil {
		return explain(cmd, client, err)
	}
	if id := result.String("envelopeId"); id != "" {
		logger.Info("envelope created", "envelope_id", id, "status", result.String("status"))
	}
	return printResult(cmd, client, result)
}

func runEnvelopeStatus(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	result, err := client.GetEnvelopeStatus(cmd.Context(), args[0])
	if err != nil {
		return explain(cmd, client, err)
	}
	return printResult(cmd, client, result)
}

func runEnvelopeRecipients(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	tabs, _ := cmd.Flags().GetBool("tabs")
	result, err := client.GetEnvelopeRecipients(cmd.Context(), args[0], tabs, false)
	if err != nil {
		return explain(cmd, client, err)
	}
	return printResult(cmd, client, result)
}

func runEnvelopeVoid(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	reason, _ := cmd.Flags().GetString("reason")
	result, err := client.VoidEnvelope(cmd.Context(), args[0], reason)
	if err != nil {
		return explain(cmd, client, err)
	}
	return printResult(cmd, client, result)
}

func runEnvelopeDownload(cmd *cobra.Command, args []string) error {
	client, logger, err := newClient()
	if err != nil {
		return err
	}
	envelopeID := args[0]
	document, _ := cmd.Flags().GetString("document")
	certificate, _ := cmd.Flags().GetBool("certificate")
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = envelopeID + ".pdf"
	}

	var data []byte
	if document == "combined" {
		data, err = client.GetCombinedDocumentFromEnvelope(cmd.Context(), envelopeID, certificate)
	} else {
		data, err = client.GetDocumentFromEnvelope(cmd.Context(), envelopeID, document)
	}
	if err != nil {
		return explain(cmd, client, err)
	}
	if err := client.SaveDocument(output, data); err != nil {
		return err
	}
	logger.Info("document saved", "path", output, "bytes", len(data))
	return nil
}

// parseRange reads the from and to flags. to may be empty.
func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := dateparse.ParseAny(from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from %q: %w", from, err)
	}
	var end time.Time
	if to != "" {
		if end, err = dateparse.ParseAny(to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to %q: %w", to, err)
		}
	}
	return start, end, nil
}

func runEnvelopeList(cmd *cobra.Command, _ []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	status, _ := cmd.Flags().GetString("status")

	start, end, err := parseRange(from, to)
	if err != nil {
		return err
	}
	client, _, err := newClient()
	if err != nil {
		return err
	}
	result, err := client.ListEnvelopes(cmd.Context(), docusign.EnvelopeQuery{FromDate: start, ToDate: end, Status: status})
	if err != nil {
		return explain(cmd, client, err)
	}
	return printResult(cmd, client, result)
}
