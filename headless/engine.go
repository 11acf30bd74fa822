package headless

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/resource"
	"github.com/wippyai/gdnative/sys"
)

// Handle kinds in the engine's table.
const (
	kindString resource.Kind = iota + 1
	kindNodePath
	kindVariant
	kindArray
	kindDictionary
	kindPool
	kindPoolAccess
	kindObject
	kindMethodBind
	kindClassTag
)

var kindNames = map[resource.Kind]string{
	kindString:     "String",
	kindNodePath:   "NodePath",
	kindVariant:    "Variant",
	kindArray:      "Array",
	kindDictionary: "Dictionary",
	kindPool:       "PoolArray",
	kindPoolAccess: "PoolAccess",
	kindObject:     "Object",
	kindMethodBind: "MethodBind",
	kindClassTag:   "ClassTag",
}

// Version is the engine version reported by Engine.get_version_info.
type Version struct {
	Major, Minor, Patch int
}

// Engine is an in-process implementation of the engine ABI. It keeps an
// object database with a small built-in class hierarchy, hosts NativeScript
// classes registered through the extension tables, and records everything
// printed through the logging functions.
//
// Like the real engine, an Engine does not serialize calls touching the same
// object from several goroutines.
type Engine struct {
	table *resource.Table

	core sys.CoreAPI
	ns   sys.NativeScriptAPI
	ns11 sys.NativeScript11API

	classes     map[string]*classInfo
	objects     map[uint64]*object
	nextID      uint64
	singletons  map[string]*object
	scripts     map[string]*scriptClass
	scriptOrder []string
	queue       []*object
	destroyed   map[uint64]int

	logMu  sync.Mutex
	logs   []LogEntry
	logger *zap.Logger

	profMu  sync.Mutex
	profile map[string][]uint64

	version      Version
	coreVersion  sys.Version
	nsVersion    sys.Version
	ns11Version  sys.Version
	noNS         bool
	noNS11       bool
	noCast       bool
	library      sys.Object
	libraryPath  string
	loadFailures []string
	mismatches   []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithCoreVersion sets the version in the core table header.
func WithCoreVersion(v sys.Version) Option {
	return func(e *Engine) { e.coreVersion = v }
}

// WithNativeScriptVersion sets the 1.0 extension header version.
func WithNativeScriptVersion(v sys.Version) Option {
	return func(e *Engine) { e.nsVersion = v }
}

// WithoutNativeScript omits the NativeScript extension.
func WithoutNativeScript() Option {
	return func(e *Engine) { e.noNS = true }
}

// WithoutNativeScript11 omits the NativeScript 1.1 extension.
func WithoutNativeScript11() Option {
	return func(e *Engine) { e.noNS11 = true }
}

// WithoutCastTo leaves the optional class-tag cast functions unset.
func WithoutCastTo() Option {
	return func(e *Engine) { e.noCast = true }
}

// WithEngineVersion sets the version reported to scripts.
func WithEngineVersion(v Version) Option {
	return func(e *Engine) { e.version = v }
}

// WithLogger mirrors everything printed through the engine to l.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine with the built-in classes registered.
func New(opts ...Option) *Engine {
	e := &Engine{
		table:       resource.NewTable(),
		classes:     make(map[string]*classInfo),
		objects:     make(map[uint64]*object),
		nextID:      1 << 10,
		singletons:  make(map[string]*object),
		scripts:     make(map[string]*scriptClass),
		destroyed:   make(map[uint64]int),
		profile:     make(map[string][]uint64),
		logger:      zap.NewNop(),
		version:     Version{Major: 3, Minor: 5, Patch: 1},
		coreVersion: sys.Version{Major: 1, Minor: 2},
		nsVersion:   sys.Version{Major: 1, Minor: 0},
		ns11Version: sys.Version{Major: 1, Minor: 1},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.registerBuiltins()
	e.fillCore()
	e.fillNativeScript()

	if !e.noNS {
		if !e.noNS11 {
			e.ns.Next = &e.ns11
		}
		e.core.Extensions = append(e.core.Extensions, &e.ns)
	}

	lib := e.construct(e.classes["GDNativeLibrary"])
	e.retainObject(lib)
	e.library = lib.handle
	return e
}

// API returns the core table to hand to the library.
func (e *Engine) API() *sys.CoreAPI { return &e.core }

// NativeScript returns the 1.0 extension table.
func (e *Engine) NativeScript() *sys.NativeScriptAPI { return &e.ns }

// InitOptions returns load options for a library at path. Version and
// loading errors reported through them are kept and printed as errors.
func (e *Engine) InitOptions(path string) *sys.InitOptions {
	e.libraryPath = path
	return &sys.InitOptions{
		ActiveLibraryPath: path,
		API:               &e.core,
		Library:           e.library,
		ReportVersionMismatch: func(_ sys.Object, what string, want, have sys.Version) {
			msg := fmt.Sprintf("%s: requested version %s, engine provides %s", what, want, have)
			e.mismatches = append(e.mismatches, msg)
			e.printError("GDNative version mismatch: "+msg, "report_version_mismatch", "gdnative.cpp", 0)
		},
		ReportLoadingError: func(_ sys.Object, what string) {
			e.loadFailures = append(e.loadFailures, what)
			e.printError("GDNative loading error: "+what, "report_loading_error", "gdnative.cpp", 0)
		},
	}
}

// VersionMismatches returns the mismatches reported through InitOptions.
func (e *Engine) VersionMismatches() []string { return append([]string(nil), e.mismatches...) }

// LoadingErrors returns the loading errors reported through InitOptions.
func (e *Engine) LoadingErrors() []string { return append([]string(nil), e.loadFailures...) }

func (e *Engine) put(kind resource.Kind, v any) uintptr {
	return uintptr(e.table.Insert(kind, v))
}

// lookup returns the value behind h or reports a bad handle.
func lookup[T any](e *Engine, kind resource.Kind, h uintptr) (T, bool) {
	v, ok := e.table.GetKind(resource.Handle(h), kind)
	if !ok {
		var zero T
		e.badHandle(kind, h)
		return zero, false
	}
	return v.(T), true
}

func (e *Engine) drop(kind resource.Kind, h uintptr) (any, bool) {
	if k, ok := e.table.KindOf(resource.Handle(h)); !ok || k != kind {
		e.badHandle(kind, h)
		return nil, false
	}
	v, err := e.table.Remove(resource.Handle(h))
	if err != nil {
		e.badHandle(kind, h)
		return nil, false
	}
	return v, true
}

func (e *Engine) badHandle(kind resource.Kind, h uintptr) {
	fn := "unknown"
	if pc, _, _, ok := runtime.Caller(3); ok {
		if f := runtime.FuncForPC(pc); f != nil {
			fn = f.Name()
		}
	}
	e.printError(fmt.Sprintf("invalid %s handle %#x", kindNames[kind], h), fn, "headless", 0)
}

// LiveHandles counts live handles by kind name, excluding objects, method
// binds and class tags. Tests use it to detect leaked values.
func (e *Engine) LiveHandles() map[string]int {
	out := make(map[string]int)
	e.table.Each(func(_ resource.Handle, k resource.Kind, _ any) bool {
		switch k {
		case kindObject, kindMethodBind, kindClassTag:
		default:
			out[kindNames[k]]++
		}
		return true
	})
	return out
}

// Close releases every handle.
func (e *Engine) Close() error {
	return e.table.Close()
}
