// Package domain contains the core business entities for lenslink:
// patterns, variations, resolution tiers, settings and run diagnostics.
// Domain types have no dependencies on adapters or infrastructure.
package domain
