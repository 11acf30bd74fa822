// Package gdlog routes zap logging to the engine's output.
//
// The engine shows printed errors and warnings with a source location.
// Core fills it from the entry's caller, or from a Site attached with
// Field when the entry concerns user code, as dispatch failures do:
//
//	logger := gdlog.New(api, zapcore.InfoLevel)
//	logger.Error("method panicked", gdlog.Field(site), zap.Any("panic", r))
package gdlog
