package headless

import (
	"strings"

	"go.uber.org/zap"
)

// Level is the severity of a printed message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// LogEntry is one message printed through the engine.
type LogEntry struct {
	Level    Level
	Message  string
	Function string
	File     string
	Line     int
}

func (e *Engine) record(entry LogEntry) {
	e.logMu.Lock()
	e.logs = append(e.logs, entry)
	e.logMu.Unlock()

	fields := []zap.Field{
		zap.String("function", entry.Function),
		zap.String("file", entry.File),
		zap.Int("line", entry.Line),
	}
	switch entry.Level {
	case LevelError:
		e.logger.Error(entry.Message, fields...)
	case LevelWarning:
		e.logger.Warn(entry.Message, fields...)
	default:
		e.logger.Info(entry.Message)
	}
}

func (e *Engine) print(msg string) {
	e.record(LogEntry{Level: LevelInfo, Message: msg})
}

func (e *Engine) printWarning(desc, function, file string, line int) {
	e.record(LogEntry{Level: LevelWarning, Message: desc, Function: function, File: file, Line: line})
}

func (e *Engine) printError(desc, function, file string, line int) {
	e.record(LogEntry{Level: LevelError, Message: desc, Function: function, File: file, Line: line})
}

// Logs returns a copy of everything printed so far.
func (e *Engine) Logs() []LogEntry {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	return append([]LogEntry(nil), e.logs...)
}

// LogsAt returns the entries of one level.
func (e *Engine) LogsAt(level Level) []LogEntry {
	var out []LogEntry
	for _, l := range e.Logs() {
		if l.Level == level {
			out = append(out, l)
		}
	}
	return out
}

// Errors returns the messages printed at error level.
func (e *Engine) Errors() []string {
	var out []string
	for _, l := range e.LogsAt(LevelError) {
		out = append(out, l.Message)
	}
	return out
}

// HasLog reports whether any entry at level contains substr.
func (e *Engine) HasLog(level Level, substr string) bool {
	for _, l := range e.LogsAt(level) {
		if strings.Contains(l.Message, substr) {
			return true
		}
	}
	return false
}

// ClearLogs discards recorded entries.
func (e *Engine) ClearLogs() {
	e.logMu.Lock()
	e.logs = nil
	e.logMu.Unlock()
}
