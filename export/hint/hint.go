// Package hint describes how the editor presents exported properties.
//
// Each hint maps to an engine hint code and a hint string in the format the
// editor parses, such as "0,100,5,or_greater" for a range.
package hint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/gdnative/sys"
)

// Hint is an editor hint for a property.
type Hint interface {
	Kind() sys.PropertyHint
	HintString() string
}

// None is the absence of a hint.
type None struct{}

func (None) Kind() sys.PropertyHint { return sys.HintNone }
func (None) HintString() string     { return "" }

// Range limits a numeric property to [Min, Max]. A zero Step leaves the
// editor's default step.
type Range struct {
	Min, Max  float64
	Step      float64
	OrGreater bool
	OrLesser  bool
}

func (Range) Kind() sys.PropertyHint { return sys.HintRange }

func (r Range) HintString() string { return r.format() }

func (r Range) format() string {
	var b strings.Builder
	b.WriteString(num(r.Min))
	b.WriteByte(',')
	b.WriteString(num(r.Max))
	if r.Step != 0 {
		b.WriteByte(',')
		b.WriteString(num(r.Step))
	}
	if r.OrGreater {
		b.WriteString(",or_greater")
	}
	if r.OrLesser {
		b.WriteString(",or_lesser")
	}
	return b.String()
}

func num(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// ExpRange is a Range edited on an exponential scale.
type ExpRange Range

func (ExpRange) Kind() sys.PropertyHint { return sys.HintExpRange }

func (r ExpRange) HintString() string { return Range(r).format() }

// Enum offers a fixed list of values. For integer properties the index of
// the chosen value is stored.
type Enum struct {
	Values []string
}

func (Enum) Kind() sys.PropertyHint { return sys.HintEnum }

func (e Enum) HintString() string { return strings.Join(e.Values, ",") }

// Flags edits an integer as a set of named bits.
type Flags struct {
	Values []string
}

func (Flags) Kind() sys.PropertyHint { return sys.HintFlags }

func (f Flags) HintString() string { return strings.Join(f.Values, ",") }

// ExpEasing edits a float as an easing curve.
type ExpEasing struct {
	Attenuation bool
	InOut       bool
}

func (ExpEasing) Kind() sys.PropertyHint { return sys.HintExpEasing }

func (e ExpEasing) HintString() string {
	var parts []string
	if e.Attenuation {
		parts = append(parts, "attenuation")
	}
	if e.InOut {
		parts = append(parts, "inout")
	}
	return strings.Join(parts, ",")
}

// File edits a string as a project file path, filtered by patterns like
// "*.png".
type File struct {
	Filters []string
}

func (File) Kind() sys.PropertyHint { return sys.HintFile }

func (f File) HintString() string { return strings.Join(f.Filters, ",") }

// GlobalFile is File for absolute paths outside the project.
type GlobalFile struct {
	Filters []string
}

func (GlobalFile) Kind() sys.PropertyHint { return sys.HintGlobalFile }

func (f GlobalFile) HintString() string { return strings.Join(f.Filters, ",") }

// SaveFile is File for a path that may not exist yet.
type SaveFile struct {
	Filters []string
}

func (SaveFile) Kind() sys.PropertyHint { return sys.HintSaveFile }

func (f SaveFile) HintString() string { return strings.Join(f.Filters, ",") }

type (
	// Dir edits a string as a project directory path.
	Dir struct{}
	// GlobalDir edits a string as an absolute directory path.
	GlobalDir struct{}
	// Multiline edits a string in a multi-line text box.
	Multiline struct{}
	// ColorNoAlpha edits a color without its alpha channel.
	ColorNoAlpha struct{}
	// Layers2DRender edits an integer as 2D render layers.
	Layers2DRender struct{}
	// Layers2DPhysics edits an integer as 2D physics layers.
	Layers2DPhysics struct{}
	// Layers3DRender edits an integer as 3D render layers.
	Layers3DRender struct{}
	// Layers3DPhysics edits an integer as 3D physics layers.
	Layers3DPhysics struct{}
)

func (Dir) Kind() sys.PropertyHint             { return sys.HintDir }
func (Dir) HintString() string                 { return "" }
func (GlobalDir) Kind() sys.PropertyHint       { return sys.HintGlobalDir }
func (GlobalDir) HintString() string           { return "" }
func (Multiline) Kind() sys.PropertyHint       { return sys.HintMultilineText }
func (Multiline) HintString() string           { return "" }
func (ColorNoAlpha) Kind() sys.PropertyHint    { return sys.HintColorNoAlpha }
func (ColorNoAlpha) HintString() string        { return "" }
func (Layers2DRender) Kind() sys.PropertyHint  { return sys.HintLayers2DRender }
func (Layers2DRender) HintString() string      { return "" }
func (Layers2DPhysics) Kind() sys.PropertyHint { return sys.HintLayers2DPhysics }
func (Layers2DPhysics) HintString() string     { return "" }
func (Layers3DRender) Kind() sys.PropertyHint  { return sys.HintLayers3DRender }
func (Layers3DRender) HintString() string      { return "" }
func (Layers3DPhysics) Kind() sys.PropertyHint { return sys.HintLayers3DPhysics }
func (Layers3DPhysics) HintString() string     { return "" }

// Placeholder shows Text in an empty string field.
type Placeholder struct {
	Text string
}

func (Placeholder) Kind() sys.PropertyHint { return sys.HintPlaceholderText }

func (p Placeholder) HintString() string { return p.Text }

// ResourceType restricts an object property to resources of the named
// classes.
type ResourceType struct {
	Types []string
}

func (ResourceType) Kind() sys.PropertyHint { return sys.HintResourceType }

func (r ResourceType) HintString() string { return strings.Join(r.Types, ",") }

// ArrayOf describes the element type of an array property and optionally a
// hint for each element.
type ArrayOf struct {
	Elem sys.VariantType
	Hint Hint
}

func (ArrayOf) Kind() sys.PropertyHint { return sys.HintTypeString }

func (a ArrayOf) HintString() string {
	h := a.Hint
	if h == nil {
		h = None{}
	}
	switch {
	case h.Kind() == sys.HintNone:
		return fmt.Sprintf("%d:%s", a.Elem, h.HintString())
	case a.Elem == sys.VariantArray && h.Kind() == sys.HintTypeString:
		return fmt.Sprintf("%d:%s", a.Elem, h.HintString())
	default:
		return fmt.Sprintf("%d/%d:%s", a.Elem, h.Kind(), h.HintString())
	}
}
