package headless

import (
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/gdnative/sys"
)

type nodePath struct {
	path  string
	names []string
}

func parseNodePath(p string) nodePath {
	np := nodePath{path: p}
	trimmed := strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(trimmed, ':'); i >= 0 {
		trimmed = trimmed[:i]
	}
	for _, n := range strings.Split(trimmed, "/") {
		if n != "" {
			np.names = append(np.names, n)
		}
	}
	return np
}

func (e *Engine) newString(s string) sys.String {
	return sys.String(e.put(kindString, s))
}

func (e *Engine) stringOf(h sys.String) string {
	s, _ := lookup[string](e, kindString, uintptr(h))
	return s
}

func (e *Engine) newNodePath(p string) sys.NodePath {
	return sys.NodePath(e.put(kindNodePath, parseNodePath(p)))
}

func (e *Engine) nodePathOf(h sys.NodePath) nodePath {
	p, _ := lookup[nodePath](e, kindNodePath, uintptr(h))
	return p
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// runeIndex converts a byte offset into a character offset.
func runeIndex(s string, byteIdx int) int {
	if byteIdx < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:byteIdx])
}

func (e *Engine) fillStrings() {
	c := &e.core

	c.StringNew = e.newString
	c.StringCopy = func(s sys.String) sys.String { return e.newString(e.stringOf(s)) }
	c.StringDestroy = func(s sys.String) { e.drop(kindString, uintptr(s)) }
	c.StringUTF8 = e.stringOf
	c.StringLength = func(s sys.String) int { return utf8.RuneCountInString(e.stringOf(s)) }
	c.StringEqual = func(a, b sys.String) bool { return e.stringOf(a) == e.stringOf(b) }
	c.StringLess = func(a, b sys.String) bool { return e.stringOf(a) < e.stringOf(b) }
	c.StringHash = func(s sys.String) uint32 { return hashString(e.stringOf(s)) }
	c.StringConcat = func(a, b sys.String) sys.String { return e.newString(e.stringOf(a) + e.stringOf(b)) }
	c.StringBeginsWith = func(s, prefix sys.String) bool {
		return strings.HasPrefix(e.stringOf(s), e.stringOf(prefix))
	}
	c.StringFind = func(s, what sys.String, from int) int {
		str := []rune(e.stringOf(s))
		if from < 0 || from > len(str) {
			return -1
		}
		rest := string(str[from:])
		i := strings.Index(rest, e.stringOf(what))
		if i < 0 {
			return -1
		}
		return from + runeIndex(rest, i)
	}

	c.NodePathNew = func(p sys.String) sys.NodePath { return e.newNodePath(e.stringOf(p)) }
	c.NodePathCopy = func(p sys.NodePath) sys.NodePath {
		return sys.NodePath(e.put(kindNodePath, e.nodePathOf(p)))
	}
	c.NodePathDestroy = func(p sys.NodePath) { e.drop(kindNodePath, uintptr(p)) }
	c.NodePathAsString = func(p sys.NodePath) sys.String { return e.newString(e.nodePathOf(p).path) }
	c.NodePathIsAbsolute = func(p sys.NodePath) bool { return strings.HasPrefix(e.nodePathOf(p).path, "/") }
	c.NodePathNameCount = func(p sys.NodePath) int { return len(e.nodePathOf(p).names) }
	c.NodePathName = func(p sys.NodePath, i int) sys.String {
		names := e.nodePathOf(p).names
		if i < 0 || i >= len(names) {
			e.printError("index out of bounds", "node_path_get_name", "node_path.cpp", 0)
			return e.newString("")
		}
		return e.newString(names[i])
	}
	c.NodePathIsEmpty = func(p sys.NodePath) bool { return e.nodePathOf(p).path == "" }
	c.NodePathEqual = func(a, b sys.NodePath) bool { return e.nodePathOf(a).path == e.nodePathOf(b).path }
}
