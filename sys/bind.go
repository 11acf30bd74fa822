package sys

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/wippyai/gdnative/errors"
)

// Minimum table versions the bindings are written against.
var (
	RequiredCore           = Version{Major: 1, Minor: 1}
	RequiredNativeScript   = Version{Major: 1, Minor: 0}
	RequiredNativeScript11 = Version{Major: 1, Minor: 1}
)

// API is the set of tables selected at load time.
type API struct {
	Core           *CoreAPI
	NativeScript   *NativeScriptAPI
	NativeScript11 *NativeScript11API
}

// VersionError describes which table was too old or too new.
type VersionError struct {
	What string
	Want Version
	Have Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s %s required, engine provides %s", e.What, e.Want, e.Have)
}

// Bind selects the sub-tables the bindings need from the engine's core table
// and checks that every required function is present.
func Bind(core *CoreAPI) (*API, error) {
	return BindWith(core, RequiredCore)
}

// BindWith is Bind with an explicit minimum core version.
func BindWith(core *CoreAPI, minCore Version) (*API, error) {
	if core == nil {
		return nil, errors.MissingTable("core API")
	}
	if core.Type != APITypeCore {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Detail("expected core table, got %s", core.Type).
			Build()
	}
	if !core.Version.AtLeast(minCore) {
		return nil, versionMismatch("core", minCore, core.Version)
	}
	if err := checkFuncs("core", core); err != nil {
		return nil, err
	}

	var ns *NativeScriptAPI
	for _, ext := range core.Extensions {
		if ext == nil || ext.APIHeader().Type != APITypeNativeScript {
			continue
		}
		if t, ok := ext.(*NativeScriptAPI); ok {
			ns = t
			break
		}
	}
	if ns == nil {
		return nil, errors.MissingTable("nativescript extension")
	}
	if !ns.Version.AtLeast(RequiredNativeScript) {
		return nil, versionMismatch("nativescript", RequiredNativeScript, ns.Version)
	}
	if err := checkFuncs("nativescript", ns); err != nil {
		return nil, err
	}

	ns11 := ns.Next
	if ns11 == nil {
		return nil, versionMismatch("nativescript", RequiredNativeScript11, ns.Version)
	}
	if !ns11.Version.AtLeast(RequiredNativeScript11) {
		return nil, versionMismatch("nativescript", RequiredNativeScript11, ns11.Version)
	}
	if err := checkFuncs("nativescript 1.1", ns11); err != nil {
		return nil, err
	}

	return &API{Core: core, NativeScript: ns, NativeScript11: ns11}, nil
}

func versionMismatch(what string, want, have Version) error {
	err := errors.VersionMismatch(what, want, have)
	err.Cause = &VersionError{What: what, Want: want, Have: have}
	return err
}

func checkFuncs(table string, t any) error {
	missing := missingFuncs(reflect.ValueOf(t).Elem(), "")
	if len(missing) == 0 {
		return nil
	}
	return errors.New(errors.PhaseLoad, errors.KindMissingFunction).
		Detail("%s table lacks %s", table, strings.Join(missing, ", ")).
		Value(missing).
		Build()
}

// missingFuncs lists nil function fields not tagged optional, recursing into
// nested sub-tables.
func missingFuncs(v reflect.Value, prefix string) []string {
	var missing []string
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		fv := v.Field(i)
		switch f.Type.Kind() {
		case reflect.Func:
			if fv.IsNil() && f.Tag.Get("gd") != "optional" {
				missing = append(missing, prefix+f.Name)
			}
		case reflect.Struct:
			missing = append(missing, missingFuncs(fv, prefix+f.Name+".")...)
		}
	}
	return missing
}

var bound atomic.Pointer[API]

// Install publishes api as the process-wide table set. It is called once
// during load; readers never lock.
func Install(api *API) {
	bound.Store(api)
}

// Uninstall clears the process-wide table set.
func Uninstall() {
	bound.Store(nil)
}

// Bound returns the installed tables or nil.
func Bound() *API {
	return bound.Load()
}

// Get returns the installed tables. Calling it before load is a bug in the
// bindings and panics.
func Get() *API {
	api := bound.Load()
	if api == nil {
		errors.Plumbing("engine API used before it was bound")
	}
	return api
}
