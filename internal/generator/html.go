// Package generator renders a transformed TemplateNode tree into static
// HTML. It knows nothing about islands beyond rendering whatever attributes
// a placeholder node carries.
package generator

import (
	"sort"
	"strings"

	"github.com/isleforge/isleforge/internal/types"
)

// voidElements self-close when childless.
var voidElements = map[string]bool{
	"br": true, "hr": true, "img": true,
	"input": true, "meta": true, "link": true,
}

// attrNameOut maps canonical prop names back to their HTML serialization.
var attrNameOut = map[string]string{
	"className": "class",
	"classname": "class",
}

// Render produces the HTML string for a node tree. Text content and
// attribute values are escaped; root nodes concatenate their children.
func Render(node *types.TemplateNode) string {
	var b strings.Builder
	render(&b, node)
	return b.String()
}

func render(b *strings.Builder, node *types.TemplateNode) {
	switch node.Type {
	case types.NodeText:
		b.WriteString(EscapeHTML(node.Value))

	case types.NodeRoot:
		for _, c := range node.Children {
			render(b, c)
		}

	case types.NodeElement:
		tag := strings.ToLower(node.TagName)
		b.WriteByte('<')
		b.WriteString(tag)
		renderAttributes(b, node.Properties)

		if voidElements[tag] && len(node.Children) == 0 {
			b.WriteString(" />")
			return
		}

		b.WriteByte('>')
		for _, c := range node.Children {
			render(b, c)
		}
		b.WriteString("</")
		b.WriteString(tag)
		b.WriteByte('>')
	}
}

// renderAttributes writes attributes in sorted order so output is
// deterministic. The empty string renders as a bare boolean attribute.
func renderAttributes(b *strings.Builder, properties map[string]string) {
	if len(properties) == 0 {
		return
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := properties[name]
		out := name
		if mapped, ok := attrNameOut[name]; ok {
			out = mapped
		}

		b.WriteByte(' ')
		b.WriteString(out)
		if value == "" {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(EscapeHTML(value))
		b.WriteByte('"')
	}
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five HTML-significant characters.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// JoinClasses renders a class list as a single space-joined attribute value.
func JoinClasses(classes []string) string {
	return strings.Join(classes, " ")
}
