package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"edkey/internal/domain"
)

func exportCmd() *cobra.Command {
	var (
		format     string
		exportPass string
	)
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Print a stored key as keystore JSON, PEM, encrypted PEM or hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			f, err := domain.ParseExportFormat(format)
			if err != nil {
				return err
			}
			if exportPass == "" {
				exportPass = passphrase
			}
			out, err := appCtx.Keyring.Export(args[0], passphrase, f, exportPass)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(domain.FormatKeystore), "keystore, pem, encrypted-pem or hex")
	cmd.Flags().StringVar(&exportPass, "export-passphrase", "", "passphrase sealing keystore/encrypted-pem output (default: --passphrase)")
	return cmd
}
