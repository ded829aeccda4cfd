// Package islands walks a validated TemplateNode tree, replaces every
// registered-component node with a placeholder, and emits the forest of
// Island records that the hydration layer attaches behavior to at render
// time.
package islands

import (
	"fmt"
	"strconv"
	"strings"
)

// PathSegment is one step in the structural path from the tree root to a
// component node: the tag at that level and the child index taken.
type PathSegment struct {
	Tag   string
	Index int
}

// IslandID derives the deterministic island identifier for a component at a
// given structural path. Recompiling the same template reproduces identical
// IDs, so client-side state keyed by island ID survives recompilation.
func IslandID(tag string, path []PathSegment) string {
	parts := make([]string, 0, len(path))
	for _, seg := range path {
		parts = append(parts, fmt.Sprintf("%s:%d", seg.Tag, seg.Index))
	}
	return "island-" + strings.ToLower(tag) + "-" + hashPath(strings.Join(parts, "-"))
}

// hashPath reduces a path string to a short stable token: a 32-bit rolling
// multiply-and-add rendered in base-36. Cheap, deterministic, and stable
// across processes; not cryptographic and not required to be.
func hashPath(s string) string {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return strconv.FormatUint(uint64(h), 36)
}
