package gdnative

import (
	"fmt"

	"github.com/wippyai/gdnative/sys"
)

// InitInfo is the context handed to the OnInit hook.
type InitInfo struct {
	InEditor          bool
	ActiveLibraryPath string

	library sys.Object
	report  func(library sys.Object, what string)
}

// ReportLoadingError tells the engine the library failed to initialize.
// The message is shown to the user next to the library path.
func (i *InitInfo) ReportLoadingError(format string, args ...any) {
	if i.report == nil {
		return
	}
	i.report(i.library, fmt.Sprintf(format, args...))
}

// TerminateInfo is the context handed to the OnTerminate hook.
type TerminateInfo struct {
	InEditor bool
}
