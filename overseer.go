package overseer

import (
	"github.com/aretw0/overseer/internal/config"
	"github.com/aretw0/overseer/internal/session"
)

// Version of the library, bumped on release.
const Version = "0.3.0"

// Config is the full controller configuration.
type Config = config.Config

// Session is one live controller instance: bridge, poller, journal, and the
// control loops, wired from one Config.
type Session = session.Session

// Option configures a Session before wiring.
type Option = session.Option

// Re-exported session options for embedders.
var (
	WithLogger  = session.WithLogger
	WithBridge  = session.WithBridge
	WithJournal = session.WithJournal
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return config.Defaults()
}

// LoadConfig layers a YAML config file over the defaults. A missing file is
// not an error.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// New wires a session from the configuration. Call Start on the result before
// using any wait primitive or control loop.
func New(cfg Config, opts ...Option) (*Session, error) {
	return session.New(cfg, opts...)
}
