package export

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/internal/thread"
	"github.com/wippyai/gdnative/sys"
)

var (
	stateMu    sync.RWMutex
	library    sys.Object
	mainThread thread.ID
	fatalHook  func(msg string)
)

// Setup records the library object and the calling thread as the main
// thread. fatal replaces the default handler for unrecoverable errors,
// which logs at fatal level and exits.
func Setup(lib sys.Object, fatal func(msg string)) {
	stateMu.Lock()
	defer stateMu.Unlock()
	library = lib
	mainThread = thread.Current()
	fatalHook = fatal
}

// Library returns the library object recorded by Setup.
func Library() sys.Object {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return library
}

// IsMainThread reports whether the caller runs on the thread that called
// Setup.
func IsMainThread() bool {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return thread.Current() == mainThread
}

func fatal(msg string, fields ...zap.Field) {
	stateMu.RLock()
	hook := fatalHook
	stateMu.RUnlock()
	if hook == nil {
		Logger().Fatal(msg, fields...)
		return
	}
	Logger().Error(msg, fields...)
	hook(msg)
}

// containPanic handles a panic that reached a trampoline. Bugs in the
// bindings are fatal; anything else is logged at the user site.
func containPanic(r any, msg string, site gdlog.Site, fields ...zap.Field) {
	fields = append(fields, gdlog.Field(site))
	if e, ok := r.(*errors.Error); ok && e.Kind == errors.KindPlumbing {
		fatal(e.Error(), fields...)
		return
	}
	fields = append(fields, zap.Error(errors.Panic(errors.PhaseDispatch, r, site.String())))
	Logger().Error(msg, fields...)
}
