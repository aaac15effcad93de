package converter

import "github.com/yuin/goldmark/ast"

type listKind byte

const (
	bulletList  listKind = '*'
	orderedList listKind = '#'
)

func kindOf(n *ast.List) listKind {
	if n.IsOrdered() {
		return orderedList
	}
	return bulletList
}

// pushList returns the enclosing-list stack seen by the children of a list.
// A list that sits directly in a list item extends the item's stack; any
// other list starts a new one.
func pushList(enclosing []listKind, kind listKind, nested bool) []listKind {
	if !nested {
		return []listKind{kind}
	}
	// Full slice expression so sibling lists never share a backing array.
	return append(enclosing[:len(enclosing):len(enclosing)], kind)
}

// listPrefix renders the marker run for an item, outermost list first. With
// no enclosing list it falls back to the item's own marker.
func listPrefix(enclosing []listKind, fallback listKind) string {
	if len(enclosing) == 0 {
		return string(rune(fallback))
	}
	prefix := make([]byte, len(enclosing))
	for i, kind := range enclosing {
		prefix[i] = byte(kind)
	}
	return string(prefix)
}
