// Package sys describes the shape of the engine's C-ABI plugin interface.
//
// The engine hands the library a core function table at load time. The table
// carries a versioned header and a list of extension tables; the bindings use
// the core table plus NativeScript 1.0 and 1.1. Bind selects these by
// (type, major, minor) and reports a version mismatch when the engine is too
// old:
//
//	api, err := sys.Bind(opts.API)
//	if err != nil {
//		var ve *sys.VersionError
//		if errors.As(err, &ve) {
//			opts.ReportVersionMismatch(opts.Library, ve.What, ve.Want, ve.Have)
//		}
//		return
//	}
//	sys.Install(api)
//
// Handles are opaque and never dereferenced by the bindings. The raw C shim
// that fills these tables from the engine's header is generated separately.
package sys
