// Package crypto exposes the Ed25519 primitives used by edkey.
//
// Contents
//
//   - Keypair construction from a 32-byte seed or a 64-byte secret
//     (KeyPairFromSeed, KeyPairFromSecret)
//   - Signing and verification (Sign, Verify)
//   - Random seed generation (GenerateSeed)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// The signature scheme itself is crypto/ed25519; this package only pins the
// sizes and error behaviour the rest of the module relies on. Callers should
// treat returned secrets as sensitive and Wipe them when practical.
package crypto
