package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isleforge/isleforge/internal/types"
)

func textNode(v string) *types.TemplateNode {
	return &types.TemplateNode{Type: types.NodeText, Value: v}
}

func elemNode(tag string, props map[string]string, children ...*types.TemplateNode) *types.TemplateNode {
	return &types.TemplateNode{
		Type:       types.NodeElement,
		TagName:    tag,
		Properties: props,
		Children:   children,
	}
}

func TestRenderBasic(t *testing.T) {
	tree := elemNode("div", map[string]string{"class": "card"},
		elemNode("p", nil, textNode("hello")),
	)
	assert.Equal(t, `<div class="card"><p>hello</p></div>`, Render(tree))
}

func TestRenderRootConcatenatesChildren(t *testing.T) {
	root := &types.TemplateNode{
		Type: types.NodeRoot,
		Children: []*types.TemplateNode{
			elemNode("p", nil, textNode("a")),
			elemNode("p", nil, textNode("b")),
		},
	}
	assert.Equal(t, "<p>a</p><p>b</p>", Render(root))
}

func TestRenderEscapesText(t *testing.T) {
	out := Render(elemNode("p", nil, textNode(`<script>"x" & 'y'</script>`)))
	assert.Equal(t, "<p>&lt;script&gt;&quot;x&quot; &amp; &#039;y&#039;&lt;/script&gt;</p>", out)
}

func TestRenderEscapesAttributeValues(t *testing.T) {
	out := Render(elemNode("div", map[string]string{"title": `a "b" & <c>`}))
	assert.Equal(t, `<div title="a &quot;b&quot; &amp; &lt;c&gt;"></div>`, out)
}

func TestRenderAttributeOrderDeterministic(t *testing.T) {
	props := map[string]string{"id": "x", "class": "a", "title": "t"}
	expected := `<div class="a" id="x" title="t"></div>`
	for i := 0; i < 20; i++ {
		assert.Equal(t, expected, Render(elemNode("div", props)))
	}
}

func TestRenderBareBooleanAttribute(t *testing.T) {
	out := Render(elemNode("input", map[string]string{"disabled": ""}))
	assert.Equal(t, `<input disabled />`, out)
}

func TestRenderVoidElements(t *testing.T) {
	assert.Equal(t, `<br />`, Render(elemNode("br", nil)))
	assert.Equal(t, `<img src="a.png" />`, Render(elemNode("img", map[string]string{"src": "a.png"})))
}

func TestRenderClassNameSerializesAsClass(t *testing.T) {
	out := Render(elemNode("div", map[string]string{"className": "hero"}))
	assert.Equal(t, `<div class="hero"></div>`, out)
}

func TestRenderLowercasesTags(t *testing.T) {
	assert.Equal(t, "<div></div>", Render(elemNode("DIV", nil)))
}

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{`<>&"'`, "&lt;&gt;&amp;&quot;&#039;"},
		{"plain", "plain"},
		{"", ""},
		{"&amp;", "&amp;amp;"}, // already-escaped input escapes again
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, EscapeHTML(tt.in))
	}
}

func TestJoinClasses(t *testing.T) {
	assert.Equal(t, "a b c", JoinClasses([]string{"a", "b", "c"}))
	assert.Equal(t, "", JoinClasses(nil))
}

func TestOptimizeCollapsesWhitespace(t *testing.T) {
	in := "<div>\n    <p>hi</p>\n</div>"
	out := Optimize(in)
	assert.Contains(t, out, "<p>hi</p>")
	assert.Less(t, len(out), len(in))
}

func TestOptimizeKeepsQuotesAndEndTags(t *testing.T) {
	in := `<div class="card"><p>hi</p></div>`
	out := Optimize(in)
	assert.Contains(t, out, `class="card"`)
	assert.Contains(t, out, "</p>")
}

func TestOptimizeReturnsInputOnGarbage(t *testing.T) {
	// Minification must never fail a compilation; any error returns the
	// input unchanged, and plain text is passed through either way.
	in := "just text, no markup"
	assert.NotEmpty(t, Optimize(in))
}
