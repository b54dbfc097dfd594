package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"edkey/internal/app"
)

// PassphraseEnv is read when --passphrase is not given.
const PassphraseEnv = "EDKEY_PASSPHRASE"

var (
	home       string
	passphrase string
	logLevel   string
	appCtx     *app.App
)

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "edkey",
		Short:        "Ed25519 key management: generate, import, derive, export and sign",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".edkey")
			}
			if passphrase == "" {
				passphrase = os.Getenv(PassphraseEnv)
			}
			a, err := app.New(home, logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appCtx != nil {
				appCtx.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "keyring dir (default ~/.edkey)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting stored keys (or $"+PassphraseEnv+")")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		generateCmd(),
		importCmd(),
		exportCmd(),
		showCmd(),
		listCmd(),
		deleteCmd(),
		deriveCmd(),
		signCmd(),
		verifyCmd(),
	)
	return root
}

func requirePassphrase() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p or $%s)", PassphraseEnv)
	}
	return nil
}
