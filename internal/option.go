package internal

// Option configures the Reviewdeck application before Run or RunMCP starts it.
type Option func(*application)

// application collects everything Run needs. Today that is just the config;
// options keep the signature stable if more knobs show up.
type application struct {
	config *Config
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
