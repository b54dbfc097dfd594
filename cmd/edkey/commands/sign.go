package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// readMessage returns arg, or the contents of file when set ("-" is stdin).
func readMessage(cmd *cobra.Command, args []string, file string) ([]byte, error) {
	switch {
	case file == "-":
		return io.ReadAll(cmd.InOrStdin())
	case file != "":
		return os.ReadFile(file)
	case len(args) > 0:
		return []byte(args[0]), nil
	default:
		return nil, fmt.Errorf("message argument or --file required")
	}
}

func signCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "sign <name> [message]",
		Short: "Sign a message with a stored key and print the hex signature",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			msg, err := readMessage(cmd, args[1:], file)
			if err != nil {
				return err
			}
			sig, err := appCtx.Keyring.Sign(args[0], passphrase, msg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(sig))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the message from a file (- for stdin)")
	return cmd
}

func verifyCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "verify <public-key|name> <signature> [message]",
		Short: "Check a hex signature against a public key or stored key",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := hex.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("signature: %w", err)
			}
			msg, err := readMessage(cmd, args[2:], file)
			if err != nil {
				return err
			}
			ok, err := appCtx.Keyring.Verify(args[0], msg, sig)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("signature does not verify")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the message from a file (- for stdin)")
	return cmd
}
