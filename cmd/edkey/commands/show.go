package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored key's public details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := appCtx.Keyring.Info(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:        %s\n", info.Name)
			fmt.Fprintf(out, "Public key:  %s\n", info.PublicKey)
			fmt.Fprintf(out, "Fingerprint: %s\n", info.Fingerprint)
			fmt.Fprintf(out, "Source:      %s\n", info.Source)
			fmt.Fprintf(out, "Created:     %s\n", info.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}
}
