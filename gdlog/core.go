package gdlog

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/gdnative/sys"
)

// Core is a zapcore.Core that prints through the engine. Debug and Info
// entries go to print, Warn to print-warning and Error and above to
// print-error with the caller's function, file and line.
type Core struct {
	zapcore.LevelEnabler
	api    *sys.CoreAPI
	fields []zapcore.Field
}

// NewCore returns a core printing through api for levels enabled by enab.
func NewCore(api *sys.CoreAPI, enab zapcore.LevelEnabler) *Core {
	return &Core{LevelEnabler: enab, api: api}
}

// New builds a logger over NewCore that records callers.
func New(api *sys.CoreAPI, enab zapcore.LevelEnabler, opts ...zap.Option) *zap.Logger {
	return zap.New(NewCore(api, enab), append([]zap.Option{zap.AddCaller()}, opts...)...)
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(c.fields[:len(c.fields):len(c.fields)], fields...)
	return &clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	all := append(c.fields[:len(c.fields):len(c.fields)], fields...)
	site, rest := splitSite(all)
	msg := render(ent, rest)

	file, function, line := ent.Caller.File, ent.Caller.Function, ent.Caller.Line
	if !site.IsZero() {
		file, function, line = site.File, site.Function, site.Line
	}

	switch {
	case ent.Level >= zapcore.ErrorLevel:
		c.api.PrintError(msg, function, file, line)
	case ent.Level == zapcore.WarnLevel:
		c.api.PrintWarning(msg, function, file, line)
	default:
		c.api.Print(msg)
	}
	return nil
}

func (c *Core) Sync() error { return nil }

func splitSite(fields []zapcore.Field) (Site, []zapcore.Field) {
	var site Site
	rest := fields[:0:0]
	for _, f := range fields {
		if f.Key == SiteKey && f.Type == zapcore.ObjectMarshalerType {
			if s, ok := f.Interface.(Site); ok {
				site = s
				continue
			}
		}
		rest = append(rest, f)
	}
	return site, rest
}

// render formats the message followed by the fields as sorted key=value
// pairs.
func render(ent zapcore.Entry, fields []zapcore.Field) string {
	var b strings.Builder
	if ent.LoggerName != "" {
		b.WriteString(ent.LoggerName)
		b.WriteString(": ")
	}
	b.WriteString(ent.Message)
	if len(fields) == 0 {
		return b.String()
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, enc.Fields[k])
	}
	return b.String()
}
