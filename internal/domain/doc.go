// Package domain defines the keyring's data models and the contracts between
// its layers. It contains plain types and interfaces only.
package domain
