package gdnative

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/gdnative/api"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/export"
	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/sys"
	"github.com/wippyai/gdnative/wasmclass"
)

// Names of the engine entry points. A generated cgo shim exports one C
// function per name and forwards it to the Library method of the same role.
const (
	EntryInit            = "godot_gdnative_init"
	EntryTerminate       = "godot_gdnative_terminate"
	EntryScriptInit      = "godot_nativescript_init"
	EntryScriptTerminate = "godot_nativescript_terminate"
	EntryFrame           = "godot_nativescript_frame"
	EntryThreadEnter     = "godot_nativescript_thread_enter"
	EntryThreadExit      = "godot_nativescript_thread_exit"
)

// EntryPoints returns every entry point name in load order.
func EntryPoints() []string {
	return []string{
		EntryInit,
		EntryScriptInit,
		EntryFrame,
		EntryThreadEnter,
		EntryThreadExit,
		EntryScriptTerminate,
		EntryTerminate,
	}
}

// SupportedEngine is the engine release the bindings target. Releases with
// the same major and minor version and a patch at least as high are
// compatible.
var SupportedEngine = api.VersionInfo{Major: 3, Minor: 5, Patch: 1}

// Library is the Go side of a plugin. It holds the user hooks and drives
// the bindings' process-wide state through the engine lifecycle.
type Library struct {
	cfg config

	mu     sync.Mutex
	hooks  hooks
	loaded bool
	log    *zap.Logger
}

type hooks struct {
	init            func(*InitInfo)
	scriptInit      func(*export.InitHandle)
	scriptTerminate func(sys.Handle)
	terminate       func(*TerminateInfo)
	frame           func()
	threadEnter     func()
	threadExit      func()
}

// New creates a Library. Hooks are usually set from init functions before
// the engine loads the plugin.
func New(opts ...Option) *Library {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Library{cfg: cfg}
}

// OnInit runs fn at the end of Load, once the bindings are usable.
func (l *Library) OnInit(fn func(*InitInfo)) { l.setHook(func(h *hooks) { h.init = fn }) }

// OnScriptInit runs fn during script init to register classes.
func (l *Library) OnScriptInit(fn func(*export.InitHandle)) {
	l.setHook(func(h *hooks) { h.scriptInit = fn })
}

// OnScriptTerminate runs fn when the engine drops the library's classes.
func (l *Library) OnScriptTerminate(fn func(sys.Handle)) {
	l.setHook(func(h *hooks) { h.scriptTerminate = fn })
}

// OnTerminate runs fn at the start of Unload, while the bindings are
// still usable.
func (l *Library) OnTerminate(fn func(*TerminateInfo)) {
	l.setHook(func(h *hooks) { h.terminate = fn })
}

func (l *Library) OnFrame(fn func())       { l.setHook(func(h *hooks) { h.frame = fn }) }
func (l *Library) OnThreadEnter(fn func()) { l.setHook(func(h *hooks) { h.threadEnter = fn }) }
func (l *Library) OnThreadExit(fn func())  { l.setHook(func(h *hooks) { h.threadExit = fn }) }

func (l *Library) setHook(set func(*hooks)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	set(&l.hooks)
}

// Loaded reports whether Load succeeded and Unload has not run since.
func (l *Library) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Logger returns the logger printing through the engine, or a no-op
// logger while the library is not loaded.
func (l *Library) Logger() *zap.Logger {
	log, _ := l.state()
	return log
}

func (l *Library) state() (*zap.Logger, hooks) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded {
		return zap.NewNop(), l.hooks
	}
	return l.log, l.hooks
}

// Load binds the engine tables in opts and sets up the bindings. On a
// version mismatch or a missing table the engine is told through opts and
// the library declines to load. The returned error is for callers other
// than the C shim, which ignores it.
func (l *Library) Load(opts *sys.InitOptions) (err error) {
	if opts == nil {
		return errors.New(errors.PhaseLoad, errors.KindInvalidInput).Detail("nil init options").Build()
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Panic(errors.PhaseLoad, r, EntryInit)
			if opts.ReportLoadingError != nil {
				opts.ReportLoadingError(opts.Library, err.Error())
			}
		}
	}()

	if l.Loaded() {
		return errors.New(errors.PhaseLoad, errors.KindInvalidOp).Detail("library is already loaded").Build()
	}

	bound, err := sys.BindWith(opts.API, l.cfg.minCore)
	if err != nil {
		reportBindError(opts, err)
		return err
	}
	sys.Install(bound)

	log := l.newLogger(bound.Core)
	installLoggers(log)
	export.Setup(opts.Library, l.cfg.fatal)

	l.mu.Lock()
	l.loaded = true
	l.log = log
	hook := l.hooks.init
	l.mu.Unlock()

	if l.cfg.checkEngine {
		l.guard(log, EntryInit, func() { checkEngineVersion(log) })
	}
	if hook != nil {
		info := &InitInfo{
			InEditor:          opts.InEditor,
			ActiveLibraryPath: opts.ActiveLibraryPath,
			library:           opts.Library,
			report:            opts.ReportLoadingError,
		}
		l.guard(log, EntryInit, func() { hook(info) })
	}
	log.Debug("library loaded",
		zap.String("path", opts.ActiveLibraryPath),
		zap.Bool("editor", opts.InEditor),
		zap.Stringer("core", bound.Core.Version))
	return nil
}

func reportBindError(opts *sys.InitOptions, err error) {
	var ve *sys.VersionError
	if errors.As(err, &ve) && opts.ReportVersionMismatch != nil {
		opts.ReportVersionMismatch(opts.Library, ve.What, ve.Want, ve.Have)
		return
	}
	if opts.ReportLoadingError != nil {
		opts.ReportLoadingError(opts.Library, err.Error())
	}
}

// Unload runs the OnTerminate hook and releases every piece of
// process-wide state, so a later Load starts from scratch. It does nothing
// when the library is not loaded.
func (l *Library) Unload(opts *sys.TerminateOptions) {
	l.mu.Lock()
	if !l.loaded {
		l.mu.Unlock()
		return
	}
	log, hook := l.log, l.hooks.terminate
	l.mu.Unlock()

	if hook != nil {
		info := &TerminateInfo{}
		if opts != nil {
			info.InEditor = opts.InEditor
		}
		l.guard(log, EntryTerminate, func() { hook(info) })
	}

	l.guard(log, EntryTerminate, export.Cleanup)
	log.Debug("library unloaded")
	_ = log.Sync()
	installLoggers(zap.NewNop())
	sys.Uninstall()

	l.mu.Lock()
	l.loaded = false
	l.log = nil
	l.mu.Unlock()
}

// ScriptInit registers the library's classes under the engine's handle:
// the AutoRegister set first unless disabled, then whatever the
// OnScriptInit hook adds.
func (l *Library) ScriptInit(handle sys.Handle) {
	if !l.Loaded() {
		return
	}
	log, h := l.state()
	l.guard(log, EntryScriptInit, func() {
		if l.cfg.auto {
			export.RegisterAuto(export.NewInitHandle(handle, export.InitLevelAuto))
		}
		if h.scriptInit != nil {
			h.scriptInit(export.NewInitHandle(handle, export.InitLevelUser))
		}
		if !l.cfg.auto {
			reportMissingRegistration(log)
		}
		log.Debug("script init done", zap.Strings("classes", export.Registered()))
	})
}

func reportMissingRegistration(log *zap.Logger) {
	missing := export.MissingManualRegistration()
	if len(missing) == 0 {
		return
	}
	log.Warn("classes marked for automatic registration were not registered by script init",
		zap.Strings("classes", missing),
		zap.Error(errors.NewMissingClassesError(missing)))
}

// ScriptTerminate runs the OnScriptTerminate hook. The engine unregisters
// the classes itself.
func (l *Library) ScriptTerminate(handle sys.Handle) {
	if !l.Loaded() {
		return
	}
	log, h := l.state()
	if h.scriptTerminate != nil {
		l.guard(log, EntryScriptTerminate, func() { h.scriptTerminate(handle) })
	}
}

// Frame runs the OnFrame hook. The engine calls it once per frame on the
// main thread.
func (l *Library) Frame() { l.run(EntryFrame, func(h hooks) func() { return h.frame }) }

// ThreadEnter runs the OnThreadEnter hook on a thread the engine starts.
func (l *Library) ThreadEnter() {
	l.run(EntryThreadEnter, func(h hooks) func() { return h.threadEnter })
}

// ThreadExit runs the OnThreadExit hook on a thread about to stop.
func (l *Library) ThreadExit() {
	l.run(EntryThreadExit, func(h hooks) func() { return h.threadExit })
}

func (l *Library) run(entry string, pick func(hooks) func()) {
	if !l.Loaded() {
		return
	}
	log, h := l.state()
	if fn := pick(h); fn != nil {
		l.guard(log, entry, fn)
	}
}

// guard runs fn and keeps a panic from crossing the entry point. Bugs in
// the bindings go to the fatal handler.
func (l *Library) guard(log *zap.Logger, entry string, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*errors.Error); ok && e.Kind == errors.KindPlumbing {
			if l.cfg.fatal == nil {
				log.Fatal(e.Error(), zap.String("entry", entry))
				return
			}
			log.Error(e.Error(), zap.String("entry", entry))
			l.cfg.fatal(e.Error())
			return
		}
		log.Error("panic in entry point",
			zap.String("entry", entry),
			zap.Error(errors.Panic(errors.PhaseRuntime, r, entry)))
	}()
	fn()
}

func (l *Library) newLogger(core *sys.CoreAPI) *zap.Logger {
	cores := []zapcore.Core{gdlog.NewCore(core, l.cfg.level)}
	if l.cfg.logger != nil {
		cores = append(cores, l.cfg.logger.Core())
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func installLoggers(log *zap.Logger) {
	export.SetLogger(log)
	object.SetLogger(log)
	wasmclass.SetLogger(log)
}

func checkEngineVersion(log *zap.Logger) {
	info, err := api.EngineSingleton().Get().GetVersionInfo()
	if err != nil {
		log.Warn("cannot read the engine version", zap.Error(err))
		return
	}
	if !compatible(info) {
		log.Warn("engine version mismatches may lead to subtle bugs or crashes",
			zap.Stringer("engine", info),
			zap.String("supported", supportedRange()))
	}
}

func compatible(v api.VersionInfo) bool {
	s := SupportedEngine
	return v.Major == s.Major && v.Minor == s.Minor && v.Patch >= s.Patch
}

func supportedRange() string {
	s := SupportedEngine
	return fmt.Sprintf("~%d.%d.%d", s.Major, s.Minor, s.Patch)
}
