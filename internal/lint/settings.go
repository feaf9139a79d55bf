package lint

// Settings are the host options shared by every rule.
type Settings struct {
	// StrictMode reports attribute values that cannot be resolved
	// statically.
	StrictMode bool `json:"strictMode" toml:"strict_mode"`
	// EnforceInRouteComponents reports relative paths inside route
	// modules too, where they could be resolved.
	EnforceInRouteComponents bool `json:"enforceInRouteComponents" toml:"enforce_in_route_components"`
	// AllowLinksToSelf lets "", "." and "./" through no-relative-paths.
	AllowLinksToSelf bool `json:"allowLinksToSelf" toml:"allow_links_to_self"`
	// ResolveConstants resolves identifiers bound to constant strings in
	// the same file.
	ResolveConstants bool `json:"resolveConstants" toml:"resolve_constants"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		AllowLinksToSelf: true,
		ResolveConstants: true,
	}
}
