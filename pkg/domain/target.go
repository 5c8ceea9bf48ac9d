package domain

// InstallConfig selects and configures the install strategy for one target.
type InstallConfig struct {
	// Strategy is the registered strategy name (e.g. "noop", "script", "binary").
	Strategy string `json:"strategy" yaml:"strategy" mapstructure:"strategy"`

	// Options are strategy-specific settings, decoded by the strategy itself.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

// Target represents a single remote endpoint to be prepared.
//
// The Features slice is the target's static declaration from inventory.
// Capabilities recorded during a run (like the agent feature) live in the
// FeatureStore, not here, so a Target value can be shared read-only across
// goroutines.
type Target struct {
	// Name uniquely identifies the target within one run.
	Name string `json:"name" yaml:"name"`

	// Transport is the transport kind used to reach the target (e.g. "ssh").
	Transport string `json:"transport,omitempty" yaml:"transport,omitempty"`

	// Remote flags targets that are assumed pre-provisioned; they skip
	// probing and installation entirely.
	Remote bool `json:"remote,omitempty" yaml:"remote,omitempty"`

	// Features are the capability markers declared for this target.
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`

	// Install configures how the agent gets installed when missing.
	Install InstallConfig `json:"install,omitempty" yaml:"install,omitempty"`

	// Vars holds host variables (address, port, credentials reference, ...)
	// interpreted by transports and strategies, not by the engine.
	Vars map[string]any `json:"vars,omitempty" yaml:"vars,omitempty"`
}

// HasFeature reports whether the target declares the given feature.
func (t *Target) HasFeature(name string) bool {
	for _, f := range t.Features {
		if f == name {
			return true
		}
	}
	return false
}

// StringVar returns a host variable as a string, or the fallback when the
// variable is absent or not a string.
func (t *Target) StringVar(key, fallback string) string {
	if v, ok := t.Vars[key].(string); ok {
		return v
	}
	return fallback
}
