// Package app wires application dependencies for the CLI.
//
// It loads Config from the keyring home, builds the logger, the file-backed
// key store and the keyring service, and exposes them via App for commands
// to use.
package app
