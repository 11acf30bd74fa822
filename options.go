package gdnative

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/gdnative/sys"
)

type config struct {
	logger      *zap.Logger
	level       zapcore.LevelEnabler
	auto        bool
	fatal       func(msg string)
	minCore     sys.Version
	checkEngine bool
}

func defaultConfig() config {
	return config{
		level:       zapcore.InfoLevel,
		auto:        true,
		minCore:     sys.RequiredCore,
		checkEngine: true,
	}
}

// Option configures a Library.
type Option func(*config)

// WithLogger tees everything the bindings log to l in addition to the
// engine's output.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithLogLevel sets the lowest level printed through the engine. The
// default is Info.
func WithLogLevel(level zapcore.LevelEnabler) Option {
	return func(c *config) { c.level = level }
}

// WithAutoRegistration controls whether classes collected with
// export.AutoRegister are registered before the script init hook runs.
// When disabled, classes in that set the hook did not add are reported
// at the end of script init.
func WithAutoRegistration(enabled bool) Option {
	return func(c *config) { c.auto = enabled }
}

// WithFatalHandler replaces the default handling of bugs in the bindings
// caught at the engine boundary, which logs at fatal level and exits.
func WithFatalHandler(fn func(msg string)) Option {
	return func(c *config) { c.fatal = fn }
}

// WithMinimumAPI sets the oldest core API version Load accepts.
func WithMinimumAPI(v sys.Version) Option {
	return func(c *config) { c.minCore = v }
}

// WithoutEngineVersionCheck skips the warning printed when the engine
// release is not the one the bindings target.
func WithoutEngineVersionCheck() Option {
	return func(c *config) { c.checkEngine = false }
}
