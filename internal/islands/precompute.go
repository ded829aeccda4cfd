package islands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/isleforge/isleforge/internal/types"
)

// positioningStyleProps are inline-style properties that duplicate
// positioning data; they are stripped from the merged style object whenever
// canonical positioning is present.
var positioningStyleProps = map[string]bool{
	"position": true,
	"left":     true,
	"top":      true,
	"right":    true,
	"bottom":   true,
	"width":    true,
	"height":   true,
	"zIndex":   true,
}

// Precompute splits CSS-shaped props out of the validated prop set into a
// style object merged with any pre-existing inline style, leaving the
// remaining functional props for the component. Both halves are stored on
// the island so hydration never repeats this work per render.
func Precompute(props map[string]any, hasPositioning bool) *types.Precomputed {
	styles := make(map[string]string)
	componentProps := make(map[string]any, len(props))

	if inline, ok := props["style"].(string); ok {
		for name, value := range parseInlineStyle(inline) {
			if hasPositioning && positioningStyleProps[name] {
				continue
			}
			styles[name] = value
		}
	}

	for name, value := range props {
		if name == "style" {
			continue
		}
		if IsCSSProp(name) {
			styles[name] = styleString(value)
			continue
		}
		componentProps[name] = value
	}

	return &types.Precomputed{
		Styles:         styles,
		ComponentProps: componentProps,
	}
}

// parseInlineStyle splits an inline style string into canonical-name
// declarations. Malformed declarations are skipped.
func parseInlineStyle(style string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		colon := strings.IndexByte(decl, ':')
		if colon <= 0 {
			continue
		}
		name := CanonicalAttrName(strings.TrimSpace(decl[:colon]))
		value := strings.TrimSpace(decl[colon+1:])
		if name == "" || value == "" {
			continue
		}
		out[name] = value
	}
	return out
}

func styleString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		// Bare numbers on sizing props are pixel values.
		if value == float64(int64(value)) {
			return fmt.Sprintf("%dpx", int64(value))
		}
		return fmt.Sprintf("%gpx", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// InlineStyleString renders a style map back into a deterministic inline
// style string for placeholder markup, restricted to an allow-list of
// properties that matter for the pre-hydration look.
func InlineStyleString(styles map[string]string, allowed map[string]bool) string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		if allowed == nil || allowed[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(kebabOf(name))
		b.WriteString(": ")
		b.WriteString(styles[name])
	}
	return b.String()
}
