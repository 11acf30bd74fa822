package export

import (
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/profiler"
	"github.com/wippyai/gdnative/resource"
	"github.com/wippyai/gdnative/sys"
	"github.com/wippyai/gdnative/userdata"
)

// Every callback handed to the engine is one of the functions below. The
// method data selects the record to dispatch to.

func recordOf[T any](md uintptr, kind resource.Kind) (T, bool) {
	v, _ := handles.GetKind(slot(md), kind)
	r, ok := v.(T)
	if !ok {
		fatal("callback data does not refer to a live registration", zap.Uintptr("method_data", md))
	}
	return r, ok
}

// nilResult is returned in place of a result that could not be produced.
func nilResult() sys.Variant {
	if sys.Bound() == nil {
		return 0
	}
	return core.NilVariant().Handle()
}

func borrowArgs(args []sys.Variant) []core.Variant {
	out := make([]core.Variant, len(args))
	for i, a := range args {
		out[i] = core.VariantFromHandle(a)
	}
	return out
}

func createTrampoline(owner sys.Object, md uintptr) (ud sys.UserData) {
	sc, ok := recordOf[scriptClass](md, kindClass)
	if !ok {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			containPanic(r, "constructor panicked", gdlog.Site{}, zap.String("class", sc.className()))
			ud = 0
		}
	}()
	return sc.create(owner)
}

func destroyTrampoline(owner sys.Object, md uintptr, ud sys.UserData) {
	sc, ok := recordOf[scriptClass](md, kindClass)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			containPanic(r, "destructor panicked", gdlog.Site{}, zap.String("class", sc.className()))
		}
	}()
	if ud == 0 {
		return
	}
	sc.destroy(owner, ud)
}

// methodRecord is the method data of one registered method.
type methodRecord struct {
	class   string
	name    string
	site    gdlog.Site
	main    bool
	profile profiler.Signature
	invoke  func(owner sys.Object, ud sys.UserData, args []core.Variant) (core.Variant, error)
}

func (r *methodRecord) fields() []zap.Field {
	return []zap.Field{zap.String("class", r.class), zap.String("method", r.name)}
}

func methodTrampoline(owner sys.Object, md uintptr, ud sys.UserData, args []sys.Variant) (ret sys.Variant) {
	rec, ok := recordOf[*methodRecord](md, kindMethod)
	if !ok {
		return nilResult()
	}
	defer func() {
		if r := recover(); r != nil {
			containPanic(r, "method panicked", rec.site, rec.fields()...)
			ret = nilResult()
		}
	}()
	if rec.main && !IsMainThread() {
		fatal("method called off the main thread", append(rec.fields(), gdlog.Field(rec.site))...)
		return nilResult()
	}
	var start time.Time
	if !rec.profile.IsZero() {
		start = time.Now()
	}
	out, err := rec.invoke(owner, ud, borrowArgs(args))
	if !rec.profile.IsZero() {
		rec.profile.AddData(time.Since(start))
	}
	if err != nil {
		logCallError(rec.site, err, rec.fields()...)
		return nilResult()
	}
	return out.Handle()
}

// logCallError logs a call that failed without panicking.
func logCallError(site gdlog.Site, err error, fields ...zap.Field) {
	msg := "method returned an error"
	var (
		argErr     *ArgumentError
		storageErr *userdata.StorageError
	)
	switch {
	case errors.As(err, &argErr):
		msg = "invalid arguments"
	case errors.As(err, &storageErr):
		msg = "cannot access instance"
	}
	fields = append(fields, gdlog.Field(site), zap.Error(err))
	Logger().Error(msg, fields...)
}

// propertyRecord is the method data of both accessors of a property.
type propertyRecord struct {
	class string
	name  string
	site  gdlog.Site
	get   func(owner sys.Object, ud sys.UserData) (core.Variant, error)
	set   func(owner sys.Object, ud sys.UserData, v core.Variant) error
}

func (r *propertyRecord) fields() []zap.Field {
	return []zap.Field{zap.String("class", r.class), zap.String("property", r.name)}
}

func propertySetTrampoline(owner sys.Object, md uintptr, ud sys.UserData, v sys.Variant) {
	rec, ok := recordOf[*propertyRecord](md, kindProperty)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			containPanic(r, "property setter panicked", rec.site, rec.fields()...)
		}
	}()
	if err := rec.set(owner, ud, core.VariantFromHandle(v)); err != nil {
		logCallError(rec.site, err, rec.fields()...)
	}
}

func propertyGetTrampoline(owner sys.Object, md uintptr, ud sys.UserData) (ret sys.Variant) {
	rec, ok := recordOf[*propertyRecord](md, kindProperty)
	if !ok {
		return nilResult()
	}
	defer func() {
		if r := recover(); r != nil {
			containPanic(r, "property getter panicked", rec.site, rec.fields()...)
			ret = nilResult()
		}
	}()
	out, err := rec.get(owner, ud)
	if err != nil {
		logCallError(rec.site, err, rec.fields()...)
		return nilResult()
	}
	return out.Handle()
}
