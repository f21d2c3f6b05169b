package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	version string
	out     io.Writer
	outPath string
	logOut  io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithOutput sets where the check and feed commands write their result.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithOutputFile makes the feed command replace path instead of writing to
// the output writer. The file is only touched once the feed has rendered.
func WithOutputFile(path string) Option {
	return func(a *application) {
		a.outPath = path
	}
}

// WithLogOutput sets where structured logs go. Commands that own stdout
// (feed, mcp) log to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}
