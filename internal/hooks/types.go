package hooks

// Config is the top-level configuration loaded from .stepform.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig lists the hooks per lifecycle event.
type HooksConfig struct {
	OnComplete []*HookConfig `yaml:"on_complete"`
	OnSubmit   []*HookConfig `yaml:"on_submit"`
}

// HookConfig defines a single hook's configuration.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
	Stdin   bool   `yaml:"stdin"`   // pipe the answers JSON to the command
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30

// For returns the hooks registered for an event name.
func (c *Config) For(event string) []*HookConfig {
	if c == nil {
		return nil
	}
	switch event {
	case "complete":
		return c.Hooks.OnComplete
	case "submit":
		return c.Hooks.OnSubmit
	default:
		return nil
	}
}
