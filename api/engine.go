package api

import (
	"fmt"

	"github.com/wippyai/gdnative/convert"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/sys"
)

// Engine is the engine's process-wide singleton.
type Engine struct{ Object }

func (Engine) ClassName() string { return "_Engine" }

// EngineSingleton returns the Engine singleton. It is never freed.
func EngineSingleton() object.TRef[Engine, object.Shared] {
	return object.Borrow[Engine, object.Shared](sys.Get().Core.GlobalGetSingleton("Engine"))
}

// VersionInfo is the engine version as reported by get_version_info.
type VersionInfo struct {
	Major  int
	Minor  int
	Patch  int
	Hex    int
	Status string
	Build  string
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d.%s", v.Major, v.Minor, v.Patch, v.Status)
}

// Version returns the major and minor version as an API version.
func (v VersionInfo) Version() sys.Version {
	return sys.Version{Major: uint32(v.Major), Minor: uint32(v.Minor)}
}

func (e Engine) GetVersionInfo() (VersionInfo, error) {
	v := invoke(e.Raw(), "_Engine", "get_version_info")
	defer v.Destroy()
	return convert.FromVariant[VersionInfo](v)
}

func (e Engine) IsEditorHint() bool {
	return toBool(invoke(e.Raw(), "_Engine", "is_editor_hint"))
}
