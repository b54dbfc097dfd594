package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func deriveCmd() *cobra.Command {
	var (
		phrase       string
		mnemonicPass string
		path         string
		timeout      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a child key from a mnemonic along a hardened path",
		Long: "Derive starts at the account key m/44'/3030'/0'/0' of the mnemonic and\n" +
			"walks --path from there. Every index is hardened.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if phrase == "" {
				return errors.New("--mnemonic is required")
			}
			indexes, err := parsePath(path)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			k, err := appCtx.Keyring.Derive(ctx, phrase, mnemonicPass, indexes)
			if err != nil {
				return err
			}
			defer k.Destroy()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Private key: %s\n", k.String())
			fmt.Fprintf(out, "Public key:  %s\n", k.PublicKey().String())
			fmt.Fprintf(out, "Chain code:  %x\n", k.ChainCode())
			return nil
		},
	}
	cmd.Flags().StringVar(&phrase, "mnemonic", "", "BIP-39 recovery phrase")
	cmd.Flags().StringVar(&mnemonicPass, "mnemonic-passphrase", "", "optional BIP-39 passphrase")
	cmd.Flags().StringVar(&path, "path", "", "child indexes below the account key, e.g. 0/1'/7")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long")
	return cmd
}

// parsePath reads "0/1'/7" style paths. A leading "m/" and hardening
// marks are accepted and ignored.
func parsePath(s string) ([]uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "m")
	s = strings.Trim(s, "/")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "/")
	out := make([]uint32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(p, "'hH")
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad path component %q: %w", p, err)
		}
		out = append(out, uint32(n))
	}
	return out, nil
}
