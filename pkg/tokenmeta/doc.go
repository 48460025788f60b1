// Package tokenmeta provides per-token metadata URI resolution and
// configuration for an NFT collection, with pluggable configuration stores
// and document storage backends.
//
// It exposes a single Service interface that orchestrates URI resolution,
// collection-level and token-level configuration, bulk URI assignment, and
// optional metadata document publishing. Implementations of configuration
// stores (e.g., memory, Postgres) and document stores (e.g., memory,
// filesystem, S3) are provided under subpackages.
//
// # Resolution Precedence
//
// A token's URI is resolved in a fixed order: a non-empty explicit per-token
// URI wins outright; otherwise the token's own base path applies when one has
// been configured, falling back to the collection default; the decimal token
// identifier is appended only when the governing configuration asks for it.
// ResolveURI documents the exact rules.
package tokenmeta
