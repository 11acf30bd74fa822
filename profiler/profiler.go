// Package profiler reports timings to the engine's built-in profiler.
//
// Samples are keyed by a Signature of the form file::line::tag. The engine
// keeps only microsecond precision, so shorter durations are truncated.
// Adding data before the library is loaded, or on an engine without the
// profiling entry, does nothing.
package profiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/sys"
)

// Signature names a profiled piece of code.
type Signature struct {
	sig string
}

// New builds a Signature from its parts. It panics if file or tag contains
// "::", which would make the signature ambiguous.
func New(file string, line int, tag string) Signature {
	if strings.Contains(file, "::") {
		panic("profiler: file name must not contain \"::\"")
	}
	if strings.Contains(tag, "::") {
		panic("profiler: tag must not contain \"::\"")
	}
	return Signature{sig: fmt.Sprintf("%s::%d::%s", file, line, tag)}
}

// FromSite builds a Signature for a source site.
func FromSite(site gdlog.Site, tag string) Signature {
	return New(site.File, site.Line, tag)
}

// Here builds a Signature for the line that calls it.
func Here(tag string) Signature {
	return FromSite(gdlog.Caller(1), tag)
}

// Raw wraps a preformatted signature without checking it.
func Raw(sig string) Signature { return Signature{sig: sig} }

func (s Signature) String() string { return s.sig }

// IsZero reports whether s was never set.
func (s Signature) IsZero() bool { return s.sig == "" }

// AddData adds one sample under s.
func (s Signature) AddData(d time.Duration) { AddData(s, d) }

// Profile times fn and adds the result under s.
func (s Signature) Profile(fn func()) {
	start := time.Now()
	fn()
	AddData(s, time.Since(start))
}

// AddData adds one sample under sig. Negative durations count as zero.
func AddData(sig Signature, d time.Duration) {
	api := sys.Bound()
	if api == nil || api.NativeScript11 == nil || api.NativeScript11.ProfilingAddData == nil {
		return
	}
	usec := d.Microseconds()
	if usec < 0 {
		usec = 0
	}
	api.NativeScript11.ProfilingAddData(sig.sig, uint64(usec))
}

// Profile times fn, adds the result under sig and returns what fn returned.
func Profile[R any](sig Signature, fn func() R) R {
	start := time.Now()
	r := fn()
	AddData(sig, time.Since(start))
	return r
}
