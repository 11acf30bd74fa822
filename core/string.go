package core

import (
	"github.com/wippyai/gdnative/sys"
)

// String is an owned engine string.
type String struct {
	h sys.String
}

// NewString creates an engine string from UTF-8 text.
func NewString(s string) String {
	return String{h: api().StringNew(s)}
}

// StringFromHandle takes ownership of a raw string handle.
func StringFromHandle(h sys.String) String {
	return String{h: h}
}

// Handle returns the raw handle. The String keeps ownership.
func (s String) Handle() sys.String { return s.h }

// Clone returns a new owned copy.
func (s String) Clone() String {
	return String{h: api().StringCopy(s.h)}
}

// Destroy releases the string. It must be called exactly once per owned value.
func (s String) Destroy() {
	if s.h != 0 {
		api().StringDestroy(s.h)
	}
}

// String returns the text as a Go string.
func (s String) String() string {
	if s.h == 0 {
		return ""
	}
	return api().StringUTF8(s.h)
}

// Len returns the length in characters.
func (s String) Len() int { return api().StringLength(s.h) }

// IsEmpty reports whether the string has no characters.
func (s String) IsEmpty() bool { return s.Len() == 0 }

func (s String) Equal(o String) bool { return api().StringEqual(s.h, o.h) }
func (s String) Less(o String) bool  { return api().StringLess(s.h, o.h) }
func (s String) Hash() uint32        { return api().StringHash(s.h) }

// Concat returns a new string with o appended.
func (s String) Concat(o String) String {
	return String{h: api().StringConcat(s.h, o.h)}
}

// Find returns the index of the first occurrence of what at or after from, or -1.
func (s String) Find(what String, from int) int {
	return api().StringFind(s.h, what.h, from)
}

func (s String) BeginsWith(prefix String) bool {
	return api().StringBeginsWith(s.h, prefix.h)
}

// ToVariant returns a new variant holding a copy of s.
func (s String) ToVariant() Variant {
	return Variant{h: api().VariantNewString(s.h)}
}

// VariantType reports the variant kind a String encodes to.
func (String) VariantType() VariantType { return TypeString }

// FromVariant replaces s with a new string decoded from v.
func (s *String) FromVariant(v Variant) error {
	out, ok := v.TryToGodotString()
	if !ok {
		return InvalidVariantType(v.Type(), TypeString)
	}
	*s = out
	return nil
}

// NodePath is an owned engine node path.
type NodePath struct {
	h sys.NodePath
}

// NewNodePath parses a node path.
func NewNodePath(path string) NodePath {
	s := NewString(path)
	defer s.Destroy()
	return NodePath{h: api().NodePathNew(s.h)}
}

// NodePathFromHandle takes ownership of a raw node path handle.
func NodePathFromHandle(h sys.NodePath) NodePath { return NodePath{h: h} }

func (p NodePath) Handle() sys.NodePath { return p.h }

func (p NodePath) Clone() NodePath {
	return NodePath{h: api().NodePathCopy(p.h)}
}

// Destroy releases the path. It must be called exactly once per owned value.
func (p NodePath) Destroy() {
	if p.h != 0 {
		api().NodePathDestroy(p.h)
	}
}

func (p NodePath) String() string {
	s := String{h: api().NodePathAsString(p.h)}
	defer s.Destroy()
	return s.String()
}

func (p NodePath) IsAbsolute() bool { return api().NodePathIsAbsolute(p.h) }
func (p NodePath) IsEmpty() bool    { return api().NodePathIsEmpty(p.h) }
func (p NodePath) NameCount() int   { return api().NodePathNameCount(p.h) }

// Name returns the i-th path segment.
func (p NodePath) Name(i int) string {
	s := String{h: api().NodePathName(p.h, i)}
	defer s.Destroy()
	return s.String()
}

func (p NodePath) Equal(o NodePath) bool { return api().NodePathEqual(p.h, o.h) }

func (p NodePath) ToVariant() Variant {
	return Variant{h: api().VariantNewNodePath(p.h)}
}

func (NodePath) VariantType() VariantType { return TypeNodePath }

func (p *NodePath) FromVariant(v Variant) error {
	out, ok := v.TryToNodePath()
	if !ok {
		return InvalidVariantType(v.Type(), TypeNodePath)
	}
	*p = out
	return nil
}

// RID is an engine resource id.
type RID struct {
	raw sys.RID
}

// RIDOf returns the resource id of an engine resource object.
func RIDOf(obj sys.Object) RID {
	return RID{raw: api().RIDNewWithResource(obj)}
}

// RIDFromRaw wraps a raw resource id.
func RIDFromRaw(r sys.RID) RID { return RID{raw: r} }

func (r RID) Raw() sys.RID          { return r.raw }
func (r RID) ID() uint64            { return r.raw.ID }
func (r RID) IsValid() bool         { return r.raw.ID != 0 }
func (r RID) Equal(o RID) bool      { return r.raw.ID == o.raw.ID }
func (r RID) Less(o RID) bool       { return r.raw.ID < o.raw.ID }
func (r RID) ToVariant() Variant    { return RIDVariant(r) }
func (RID) VariantType() VariantType { return TypeRID }

func (r *RID) FromVariant(v Variant) error {
	out, ok := v.TryToRID()
	if !ok {
		return InvalidVariantType(v.Type(), TypeRID)
	}
	*r = out
	return nil
}
