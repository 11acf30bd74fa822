package gdlog

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SiteKey is the field key the engine core reads a Site from.
const SiteKey = "site"

// Site identifies a place in user source, such as where a method was
// registered. Engine log entries carrying a Site are attributed to it
// instead of the logging call.
type Site struct {
	File     string
	Line     int
	Function string
}

// Caller returns the site of the caller skip frames above Caller's caller.
func Caller(skip int) Site {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Site{}
	}
	s := Site{File: file, Line: line}
	if f := runtime.FuncForPC(pc); f != nil {
		s.Function = f.Name()
	}
	return s
}

// FuncSite returns the source position of a function value.
func FuncSite(fn any) Site {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return Site{}
	}
	f := runtime.FuncForPC(rv.Pointer())
	if f == nil {
		return Site{}
	}
	file, line := f.FileLine(f.Entry())
	return Site{File: file, Line: line, Function: f.Name()}
}

// IsZero reports whether s carries no position.
func (s Site) IsZero() bool { return s.File == "" && s.Function == "" }

func (s Site) String() string {
	if s.IsZero() {
		return "<unknown>"
	}
	if s.Function == "" {
		return fmt.Sprintf("%s:%d", filepath.Base(s.File), s.Line)
	}
	return fmt.Sprintf("%s:%d (%s)", filepath.Base(s.File), s.Line, s.Function)
}

func (s Site) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("file", s.File)
	enc.AddInt("line", s.Line)
	enc.AddString("function", s.Function)
	return nil
}

// Field attaches s to a log entry.
func Field(s Site) zap.Field { return zap.Object(SiteKey, s) }
