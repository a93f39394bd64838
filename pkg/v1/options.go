package v1

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	workspace string
	provider  string
	steps     int
}

// WithWorkspace forces a specific workspace directory instead of the
// nearest .sonda.
func WithWorkspace(dir string) Option {
	return func(c *clientConfig) {
		c.workspace = dir
	}
}

// WithProvider selects the model provider for evaluations.
func WithProvider(name string) Option {
	return func(c *clientConfig) {
		c.provider = name
	}
}

// WithSteps caps every run at a step budget.
func WithSteps(steps int) Option {
	return func(c *clientConfig) {
		c.steps = steps
	}
}
