// Package services implements the core use cases: structural extraction,
// semantic encoding, the linkage cascade and adapter training. Services
// depend on driven ports only, so every capability can be absent or faked
// in tests.
package services
