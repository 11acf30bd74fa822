package api

import (
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/ownership"
)

// Node is the base of the scene tree. Nodes are manually managed; freeing a
// node frees its children.
type Node struct{ Object }

func (Node) ClassName() string { return "Node" }

func (n Node) AsNode() Node { return n }

// NodeArg is accepted where the engine takes any node.
type NodeArg interface {
	AsNode() Node
}

// AddChild reparents child under n. The tree owns the child from then on.
func (n Node) AddChild(child NodeArg) {
	invokeVoid(n.Raw(), "Node", "add_child", core.ObjectVariant(child.AsNode().Raw()))
}

func (n Node) RemoveChild(child NodeArg) {
	invokeVoid(n.Raw(), "Node", "remove_child", core.ObjectVariant(child.AsNode().Raw()))
}

func (n Node) GetChildCount() int {
	return int(toInt(invoke(n.Raw(), "Node", "get_child_count")))
}

func (n Node) GetChild(i int) (object.TRef[Node, object.Shared], bool) {
	return toObject[Node](invoke(n.Raw(), "Node", "get_child", core.IntVariant(int64(i))))
}

// GetChildren returns borrowed views of the children in order.
func (n Node) GetChildren() []object.TRef[Node, object.Shared] {
	v := invoke(n.Raw(), "Node", "get_children")
	defer v.Destroy()
	arr, ok := v.TryToArray()
	if !ok {
		return nil
	}
	defer arr.Destroy()
	out := make([]object.TRef[Node, object.Shared], 0, arr.Len())
	for _, item := range arr.All() {
		if obj, ok := item.TryToObject(); ok {
			out = append(out, object.Borrow[Node, object.Shared](obj))
		}
	}
	return out
}

func (n Node) GetParent() (object.TRef[Node, object.Shared], bool) {
	return toObject[Node](invoke(n.Raw(), "Node", "get_parent"))
}

// QueueFree schedules the node for deletion at the end of the frame.
func (n Node) QueueFree() { invokeVoid(n.Raw(), "Node", "queue_free") }

func (n Node) IsQueuedForDeletion() bool {
	return toBool(invoke(n.Raw(), "Node", "is_queued_for_deletion"))
}

func (n Node) SetName(name string) {
	invokeVoid(n.Raw(), "Node", "set_name", core.StringVariant(name))
}

func (n Node) GetName() string { return toString(invoke(n.Raw(), "Node", "get_name")) }

// CanvasItem is the base of everything drawn in 2D.
type CanvasItem struct{ Node }

func (CanvasItem) ClassName() string { return "CanvasItem" }

func (c CanvasItem) Show() { invokeVoid(c.Raw(), "CanvasItem", "show") }
func (c CanvasItem) Hide() { invokeVoid(c.Raw(), "CanvasItem", "hide") }

func (c CanvasItem) IsVisible() bool {
	return toBool(invoke(c.Raw(), "CanvasItem", "is_visible"))
}

func (c CanvasItem) SetVisible(visible bool) {
	invokeVoid(c.Raw(), "CanvasItem", "set_visible", core.BoolVariant(visible))
}

// Node2D is a 2D node with a transform.
type Node2D struct{ CanvasItem }

func (Node2D) ClassName() string { return "Node2D" }

func (n Node2D) SetPosition(p geom.Vector2) {
	invokeVoid(n.Raw(), "Node2D", "set_position", core.Vector2Variant(p))
}

func (n Node2D) GetPosition() geom.Vector2 { return toVector2(invoke(n.Raw(), "Node2D", "get_position")) }

func (n Node2D) Translate(offset geom.Vector2) {
	invokeVoid(n.Raw(), "Node2D", "translate", core.Vector2Variant(offset))
}

// GetGlobalPosition sums the positions of n and its Node2D ancestors.
func (n Node2D) GetGlobalPosition() geom.Vector2 {
	return toVector2(invoke(n.Raw(), "Node2D", "get_global_position"))
}

func (n Node2D) SetRotation(radians float64) {
	invokeVoid(n.Raw(), "Node2D", "set_rotation", core.FloatVariant(radians))
}

func (n Node2D) GetRotation() float64 { return toFloat(invoke(n.Raw(), "Node2D", "get_rotation")) }

func toVector2(v core.Variant) geom.Vector2 {
	defer v.Destroy()
	out, _ := v.TryToVector2()
	return out
}

// QueueFree schedules a node reference for deletion at the end of the frame.
// It panics when T is not a Node class.
func QueueFree[T object.Manual, O ownership.Kind](r object.Ref[T, O]) {
	if !object.Inherits[T, Node]() {
		panic(errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Class(object.ClassName[T]()).
			Detail("%s is not a Node", object.ClassName[T]()).
			Build())
	}
	object.Wrap[Node](r.Raw()).QueueFree()
}
