// Package commands defines the edkey CLI and wires dependencies for subcommands.
//
// Commands
//
//   - generate   Create a key from a fresh mnemonic and store it
//   - import     Store a key given as hex, PEM or a mnemonic
//   - export     Print a stored key as keystore JSON, PEM, encrypted PEM or hex
//   - show       Print a stored key's public details
//   - list       List stored keys
//   - delete     Remove a stored key
//   - derive     Derive a child key from a mnemonic along a hardened path
//   - sign       Sign a message with a stored key
//   - verify     Check a signature against a public key or stored key
//
// # Implementation
//
// The root command loads <home>/config.yaml and builds the logger, key store
// and keyring service before any subcommand runs. Results go to stdout and
// logs to stderr. Passphrases come from --passphrase or EDKEY_PASSPHRASE.
package commands
