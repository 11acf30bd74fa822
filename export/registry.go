package export

import (
	"reflect"
	"slices"
	"sync"

	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/resource"
	"github.com/wippyai/gdnative/sys"
	"github.com/wippyai/gdnative/userdata"
)

// Slot kinds in the handle table. Method data and user data handed to the
// engine are handles into it.
const (
	kindClass resource.Kind = iota + 1
	kindMethod
	kindProperty
	kindInstance
)

var handles = resource.NewTable()

func slot[H ~uintptr](h H) resource.Handle { return resource.Handle(h) }

// freeHandle is the FreeFunc of every registered callback.
func freeHandle(md uintptr) {
	_, _ = handles.Remove(slot(md))
}

// InitLevel records how a class came to be registered.
type InitLevel uint8

const (
	// InitLevelUser marks classes added by the library's script init hook.
	InitLevelUser InitLevel = 1 << iota
	// InitLevelAuto marks classes added from the AutoRegister set.
	InitLevelAuto
)

func (l InitLevel) String() string {
	switch l {
	case InitLevelUser:
		return "user"
	case InitLevelAuto:
		return "auto"
	case InitLevelUser | InitLevelAuto:
		return "user+auto"
	default:
		return "none"
	}
}

type classEntry struct {
	name   string
	base   string
	policy userdata.Policy
	tag    sys.TypeTag
	levels InitLevel
	tool   bool
	handle sys.Handle
}

type classRegistry struct {
	mu      sync.RWMutex
	byType  map[reflect.Type]*classEntry
	byName  map[string]reflect.Type
	dynamic map[string]*classEntry
}

var registry = newRegistry()

func newRegistry() *classRegistry {
	return &classRegistry{
		byType:  make(map[reflect.Type]*classEntry),
		byName:  make(map[string]reflect.Type),
		dynamic: make(map[string]*classEntry),
	}
}

type registerResult uint8

const (
	registeredNew registerResult = iota
	registeredLevel
	registeredAgain
)

// register claims e.name for t. A type registered before keeps its entry
// and gains e.levels.
func (r *classRegistry) register(t reflect.Type, e classEntry) (classEntry, registerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byType[t]; ok {
		if old.name != e.name {
			return classEntry{}, 0, errors.New(errors.PhaseRegister, errors.KindDuplicateClass).
				Class(e.name).
				GoType(t.String()).
				Detail("type is already registered as %s", old.name).
				Build()
		}
		res := registeredLevel
		if old.levels&e.levels != 0 {
			res = registeredAgain
		}
		old.levels |= e.levels
		return *old, res, nil
	}
	if other, taken := r.byName[e.name]; taken && other != t {
		return classEntry{}, 0, errors.DuplicateClass(e.name)
	}
	e.tag = issueTag(t, e.name)
	r.byType[t] = &e
	r.byName[e.name] = t
	return e, registeredNew, nil
}

// registerDynamic claims e.name for a class with no Go type. Dynamic
// classes map to a nil type in byName.
func (r *classRegistry) registerDynamic(e classEntry) (classEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[e.name]; taken {
		return classEntry{}, errors.DuplicateClass(e.name)
	}
	e.tag = issueTag(nil, e.name)
	r.dynamic[e.name] = &e
	r.byName[e.name] = nil
	return e, nil
}

func (r *classRegistry) forgetDynamic(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dynamic[name]; ok {
		delete(r.dynamic, name)
		delete(r.byName, name)
	}
}

// names returns every registered class name, sorted.
func (r *classRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// forget drops t, for classes the engine refused.
func (r *classRegistry) forget(t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byType[t]; ok {
		delete(r.byName, e.name)
		delete(r.byType, t)
	}
}

func (r *classRegistry) lookup(t reflect.Type) (classEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byType[t]
	if !ok {
		return classEntry{}, false
	}
	return *e, true
}

func (r *classRegistry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType = make(map[reflect.Type]*classEntry)
	r.byName = make(map[string]reflect.Type)
	r.dynamic = make(map[string]*classEntry)
}

// Registered returns the names of every class registered in this session.
func Registered() []string { return registry.names() }

// ClassName returns the name C is registered under. It reports false
// before C is registered.
func ClassName[C NativeClass]() (string, bool) {
	e, ok := registry.lookup(reflect.TypeFor[C]())
	return e.name, ok
}

// IsRegistered reports whether C was registered in this session.
func IsRegistered[C NativeClass]() bool {
	_, ok := registry.lookup(reflect.TypeFor[C]())
	return ok
}

// Type tags carry a high bit so a tag is never zero and tags issued here
// are told apart from those of other libraries.
const tagMagic = ^(^sys.TypeTag(0) >> 1)

type tagEntry struct {
	typ  reflect.Type
	name string
}

var tags struct {
	mu      sync.RWMutex
	entries []tagEntry
}

func issueTag(t reflect.Type, name string) sys.TypeTag {
	tags.mu.Lock()
	defer tags.mu.Unlock()
	tags.entries = append(tags.entries, tagEntry{typ: t, name: name})
	return tagMagic | sys.TypeTag(len(tags.entries)-1)
}

func tagInfo(tag sys.TypeTag) (tagEntry, bool) {
	if tag&tagMagic == 0 {
		return tagEntry{}, false
	}
	idx := int(tag &^ tagMagic)
	tags.mu.RLock()
	defer tags.mu.RUnlock()
	if idx >= len(tags.entries) {
		errors.Plumbing("type tag %#x was never issued", uintptr(tag))
	}
	return tags.entries[idx], true
}

// CheckTag reports whether tag is the type tag of C. Tags of other
// libraries report false.
func CheckTag[C NativeClass](tag sys.TypeTag) bool {
	e, ok := tagInfo(tag)
	return ok && e.typ == reflect.TypeFor[C]()
}

// checkOwnerTag verifies the script attached to owner is the class a
// trampoline was registered for.
func checkOwnerTag(owner sys.Object, want sys.TypeTag, class string) {
	ns11 := sys.Get().NativeScript11
	if ns11 == nil || ns11.GetTypeTag == nil {
		return
	}
	if got := ns11.GetTypeTag(owner); got != want {
		errors.Plumbing("type tag mismatch on %s: got %#x, want %#x", class, uintptr(got), uintptr(want))
	}
}

type autoEntry struct {
	typ  reflect.Type
	name string
	add  func(h *InitHandle)
}

var auto struct {
	mu      sync.Mutex
	entries []autoEntry
}

// AutoRegister adds C to the set registered by RegisterAuto. Call it from
// an init function next to the type:
//
//	func init() { export.AutoRegister[Player]() }
func AutoRegister[C NativeClass](with ...func(*ClassBuilder[C])) {
	addAuto[C](func(h *InitHandle) { AddClassWithLevel[C](h, InitLevelAuto, with...) })
}

// AutoRegisterTool is AutoRegister for tool classes.
func AutoRegisterTool[C NativeClass](with ...func(*ClassBuilder[C])) {
	addAuto[C](func(h *InitHandle) {
		addClass(h, "", true, InitLevelAuto, with)
	})
}

func addAuto[C NativeClass](add func(*InitHandle)) {
	auto.mu.Lock()
	defer auto.mu.Unlock()
	t := reflect.TypeFor[C]()
	for _, e := range auto.entries {
		if e.typ == t {
			return
		}
	}
	auto.entries = append(auto.entries, autoEntry{typ: t, name: classNameOf[C](), add: add})
}

func autoSet() []autoEntry {
	auto.mu.Lock()
	defer auto.mu.Unlock()
	return slices.Clone(auto.entries)
}

// RegisterAuto registers every class in the AutoRegister set.
func RegisterAuto(h *InitHandle) {
	for _, e := range autoSet() {
		e.add(h)
	}
}

// MissingManualRegistration lists classes in the AutoRegister set that
// the script init hook did not add itself. Libraries that do not register
// automatically report them at the end of init.
func MissingManualRegistration() []string {
	var missing []string
	for _, e := range autoSet() {
		entry, ok := registry.lookup(e.typ)
		if !ok || entry.levels&InitLevelUser == 0 {
			missing = append(missing, e.name)
		}
	}
	return missing
}

// Cleanup forgets every registered class and type tag. The loader calls it
// on unload so the next load starts from scratch. Callback data owned by
// the engine stays valid until the engine frees it.
func Cleanup() {
	registry.reset()
	tags.mu.Lock()
	tags.entries = nil
	tags.mu.Unlock()
	clearEmplaced()
	stateMu.Lock()
	library = 0
	fatalHook = nil
	stateMu.Unlock()
}
