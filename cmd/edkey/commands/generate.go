package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <name>",
		Short: "Create a key from a fresh 24-word mnemonic and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			info, m, err := appCtx.Keyring.Generate(args[0], passphrase)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Key %q created.\n", info.Name)
			fmt.Fprintf(out, "Public key:  %s\n", info.PublicKey)
			fmt.Fprintf(out, "Fingerprint: %s\n", info.Fingerprint)
			fmt.Fprintf(out, "Recovery phrase (write it down, it is not stored):\n%s\n", m)
			return nil
		},
	}
}
