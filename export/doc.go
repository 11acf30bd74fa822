// Package export registers Go types as script classes the engine can
// instance, call and inspect.
//
// A class is a struct embedding Extends with its base class. Methods,
// properties and signals are declared on a ClassBuilder, either in the
// type's Register method or in funcs passed to AddClass:
//
//	type Counter struct {
//		export.Extends[api.Node]
//		Count int64 `property:"count"`
//	}
//
//	func (c *Counter) Increment(by int64) int64 { c.Count += by; return c.Count }
//
//	func (*Counter) Register(b *export.ClassBuilder[Counter]) {
//		b.Fields()
//		b.Method("increment", (*Counter).Increment).WithDefault(0, 1).Done()
//		b.Signal("changed").WithParam("count", sys.VariantInt).Done()
//	}
//
//	export.AddClass[Counter](handle)
//
// Method funcs take the receiver first, then optionally a context.Context
// and a typed owner (object.TRef of the base class), then the arguments.
// Arguments and results are converted with package convert. A trailing
// *Varargs parameter receives whatever arguments remain. Results are
// borrowed; return Moved to hand a fresh engine value over.
//
// Every engine callback enters through a trampoline that contains panics,
// checks the script type tag and the storage policy of the instance, and
// logs failures with the site of the user func.
package export
