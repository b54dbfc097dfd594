package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"edkey/internal/domain"
)

func importCmd() *cobra.Command {
	var (
		hexKey       string
		pemPath      string
		pemPass      string
		phrase       string
		mnemonicPass string
	)
	cmd := &cobra.Command{
		Use:   "import <name>",
		Short: "Store an existing key given as hex, a PEM file or a mnemonic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			name := args[0]

			var (
				info domain.KeyInfo
				err  error
			)
			switch {
			case hexKey != "":
				info, err = appCtx.Keyring.ImportKey(name, passphrase, hexKey)
			case pemPath != "":
				var text []byte
				if text, err = os.ReadFile(pemPath); err != nil {
					return err
				}
				info, err = appCtx.Keyring.ImportPEM(name, passphrase, string(text), pemPass)
			case phrase != "":
				info, err = appCtx.Keyring.ImportMnemonic(name, passphrase, phrase, mnemonicPass)
			default:
				return errors.New("one of --hex, --pem or --mnemonic is required")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q (%s)\nFingerprint: %s\n", info.Name, info.Source, info.Fingerprint)
			return nil
		},
	}
	cmd.Flags().StringVar(&hexKey, "hex", "", "private key as hex (seed, seed+public, or DER)")
	cmd.Flags().StringVar(&pemPath, "pem", "", "path to a PKCS #8 PEM file")
	cmd.Flags().StringVar(&pemPass, "pem-passphrase", "", "passphrase of an ENCRYPTED PRIVATE KEY PEM")
	cmd.Flags().StringVar(&phrase, "mnemonic", "", "BIP-39 recovery phrase")
	cmd.Flags().StringVar(&mnemonicPass, "mnemonic-passphrase", "", "optional BIP-39 passphrase")
	cmd.MarkFlagsMutuallyExclusive("hex", "pem", "mnemonic")
	return cmd
}
