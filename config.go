package spanx

// Config configures backend resolution.
type Config struct {
	// Enabled controls whether backend discovery is active. When disabled,
	// the resolver adopts the default backend without consulting the
	// registry.
	Enabled *bool `yaml:"enabled" default:"true" env:"SPANX_ENABLED"`

	// Backend pins resolution to a single registered backend name.
	// Empty means automatic discovery: adopt the single registered
	// candidate, or the default backend when there are zero or several.
	Backend string `yaml:"backend" env:"SPANX_BACKEND"`
}

// IsEnabled returns true if backend discovery is enabled.
// Defaults to true if unset.
func (c *Config) IsEnabled() bool {
	return c == nil || c.Enabled == nil || *c.Enabled
}
