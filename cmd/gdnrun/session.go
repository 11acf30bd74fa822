package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/headless"
	"github.com/wippyai/gdnative/internal/demo"
	"github.com/wippyai/gdnative/sys"
)

const scriptHandle sys.Handle = 1

// session owns the engine and the loaded demo library. The engine is not
// safe for concurrent use, so every operation runs on one locked thread.
type session struct {
	reqs    chan func()
	done    chan struct{}
	eng     *headless.Engine
	lib     *gdnative.Library
	objects map[string]sys.Object
}

func startSession(log *zap.Logger) (*session, error) {
	s := &session{
		reqs:    make(chan func()),
		done:    make(chan struct{}),
		objects: make(map[string]sys.Object),
	}
	started := make(chan error, 1)
	go s.loop(log, started)
	if err := <-started; err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) loop(log *zap.Logger, started chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(s.done)

	s.eng = headless.New()
	s.lib = gdnative.New(gdnative.WithLogger(log))
	demo.Install(s.lib)
	if err := s.lib.Load(s.eng.InitOptions("res://demo.gdnlib")); err != nil {
		_ = s.eng.Close()
		started <- fmt.Errorf("load demo library: %w", err)
		return
	}
	s.lib.ScriptInit(scriptHandle)
	started <- nil

	for fn := range s.reqs {
		fn()
	}

	for _, obj := range s.objects {
		s.drop(obj)
	}
	s.eng.TerminateScripts(scriptHandle)
	s.lib.Unload(nil)
	_ = s.eng.Close()
}

// do runs fn on the engine thread and waits for it.
func (s *session) do(fn func()) {
	ran := make(chan struct{})
	s.reqs <- func() {
		defer close(ran)
		fn()
	}
	<-ran
}

func (s *session) close() {
	close(s.reqs)
	<-s.done
}

func (s *session) classes() []headless.ScriptClassInfo {
	var out []headless.ScriptClassInfo
	s.do(func() { out = s.eng.ScriptClasses() })
	return out
}

// call invokes method on the session's instance of class, creating it on
// first use. Arguments are parsed as the method's declared types.
func (s *session) call(class, method string, raw []string) (string, error) {
	var (
		out string
		err error
	)
	s.do(func() { out, err = s.callLocked(class, method, raw) })
	return out, err
}

func (s *session) callLocked(class, method string, raw []string) (string, error) {
	info, ok := s.eng.ScriptClass(class)
	if !ok {
		return "", fmt.Errorf("unknown class %s", class)
	}
	m, ok := info.Method(method)
	if !ok {
		return "", fmt.Errorf("class %s has no method %s", class, method)
	}
	obj, ok := s.objects[class]
	if !ok {
		var err error
		obj, err = s.eng.Instantiate(class)
		if err != nil {
			return "", err
		}
		s.objects[class] = obj
	}

	args := make([]core.Variant, len(raw))
	for i, r := range raw {
		typ := sys.VariantNil
		if i < len(m.Args) {
			typ = m.Args[i].Type
		}
		v, err := parseArg(r, typ)
		if err != nil {
			core.DestroyAll(args[:i])
			return "", fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = v
	}
	defer core.DestroyAll(args)

	before := len(s.eng.Errors())
	res, err := s.eng.Call(obj, method, core.Handles(args)...)
	if err != nil {
		return "", err
	}
	v := core.VariantFromHandle(res)
	defer v.Destroy()
	if errs := s.eng.Errors(); len(errs) > before {
		return "", fmt.Errorf("%s", errs[len(errs)-1])
	}
	return v.String(), nil
}

func (s *session) drop(obj sys.Object) {
	if s.eng.RefCount(obj) > 0 {
		s.eng.Release(obj)
		return
	}
	s.eng.Free(obj)
}

// parseArg reads one command line argument as a variant of typ. Untyped
// arguments are guessed from their text.
func parseArg(text string, typ sys.VariantType) (core.Variant, error) {
	switch typ {
	case sys.VariantBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return core.Variant{}, err
		}
		return core.BoolVariant(b), nil
	case sys.VariantInt:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return core.Variant{}, err
		}
		return core.IntVariant(n), nil
	case sys.VariantReal:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return core.Variant{}, err
		}
		return core.FloatVariant(f), nil
	case sys.VariantString:
		return core.StringVariant(text), nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return core.IntVariant(n), nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return core.FloatVariant(f), nil
	}
	if b, err := strconv.ParseBool(text); err == nil {
		return core.BoolVariant(b), nil
	}
	return core.StringVariant(text), nil
}

func formatMethod(m headless.MethodInfo) string {
	params := make([]string, len(m.Args))
	for i, a := range m.Args {
		params[i] = a.Name + ": " + typeName(a.Type)
	}
	return m.Name + "(" + strings.Join(params, ", ") + ")"
}

func typeName(t sys.VariantType) string {
	if t == sys.VariantNil {
		return "any"
	}
	return t.String()
}
