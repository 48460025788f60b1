package tokenmeta

import "strings"

// ResolveURI computes the metadata URI for a token from its stored
// configuration and the collection default. Precedence, first match wins:
//
//  1. A non-empty ExplicitURI is returned verbatim.
//  2. The effective base is cfg.BaseURI when the token carries its own base
//     path configuration, defaultBaseURI otherwise.
//  3. With UseIDInPath set, the decimal token identifier is appended,
//     inserting a "/" unless the base already ends with one.
//  4. Otherwise the effective base is returned unmodified. No separator or
//     other normalization is applied on this path.
func ResolveURI(id TokenID, cfg TokenURIConfig, defaultBaseURI string) string {
	if cfg.ExplicitURI != "" {
		return cfg.ExplicitURI
	}

	base := defaultBaseURI
	if cfg.IsConfigured {
		base = cfg.BaseURI
	}
	if !cfg.UseIDInPath {
		return base
	}

	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + id.String()
}
