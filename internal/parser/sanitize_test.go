package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/isleforge/isleforge/internal/logging"
	"github.com/isleforge/isleforge/internal/registry"
)

func newTestSanitizer(t *testing.T) *Sanitizer {
	t.Helper()
	return NewSanitizer(registry.NewBuiltinRegistry(), 100*1024, logging.NewNopLogger())
}

// renderTree flattens a sanitized tree back to HTML for assertions.
func renderTree(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&b, c)
	}
	return b.String()
}

func TestSanitizerRemovesDangerousElements(t *testing.T) {
	s := newTestSanitizer(t)

	tests := []struct {
		name  string
		input string
		gone  string
	}{
		{"script removed with content", `<div>hi</div><script>alert(1)</script>`, "alert"},
		{"iframe removed", `<p>x</p><iframe src="https://evil.example"></iframe>`, "iframe"},
		{"object removed", `<object data="x"></object><p>keep</p>`, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := s.Parse(context.Background(), tt.input)
			require.NoError(t, err)
			assert.NotContains(t, renderTree(body), tt.gone)
		})
	}
}

func TestSanitizerUnwrapsUnknownElements(t *testing.T) {
	s := newTestSanitizer(t)

	body, err := s.Parse(context.Background(), `<marquee>still here</marquee>`)
	require.NoError(t, err)

	out := renderTree(body)
	assert.NotContains(t, out, "marquee")
	assert.Contains(t, out, "still here")
}

func TestSanitizerProtocolAllowList(t *testing.T) {
	s := newTestSanitizer(t)

	tests := []struct {
		name     string
		input    string
		keptAttr string // empty means the URL attribute must be dropped
	}{
		{"https kept", `<a href="https://example.com">x</a>`, "href="},
		{"mailto kept", `<a href="mailto:a@b.c">x</a>`, "href="},
		{"tel kept", `<a href="tel:+1555">x</a>`, "href="},
		{"hash placeholder kept", `<a href="#">x</a>`, "href="},
		{"relative kept", `<a href="/about">x</a>`, "href="},
		{"javascript dropped", `<a href="javascript:alert(1)">x</a>`, ""},
		{"data image kept", `<img src="data:image/png;base64,AAAA">`, "src="},
		{"data html dropped", `<img src="data:text/html,evil">`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := s.Parse(context.Background(), tt.input)
			require.NoError(t, err)

			out := renderTree(body)
			if tt.keptAttr != "" {
				assert.Contains(t, out, tt.keptAttr, "expected URL attribute to survive: %s", out)
			}
			assert.NotContains(t, out, "javascript:")
			assert.NotContains(t, out, "data:text/html")
		})
	}
}

func TestSanitizerDropsEventHandlersOnStandardTags(t *testing.T) {
	s := newTestSanitizer(t)

	body, err := s.Parse(context.Background(), `<div onclick="alert(1)" class="ok">x</div>`)
	require.NoError(t, err)

	out := renderTree(body)
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, `class="ok"`)
}

func TestSanitizerKeepsComponentEventProps(t *testing.T) {
	s := newTestSanitizer(t)

	body, err := s.Parse(context.Background(), `<ActionButton label="Go" onclick="count = count + 1"></ActionButton>`)
	require.NoError(t, err)

	out := renderTree(body)
	assert.Contains(t, out, "onclick")
	assert.Contains(t, out, `label="Go"`)
}

func TestSanitizerRejectsOversizedInput(t *testing.T) {
	s := NewSanitizer(registry.NewBuiltinRegistry(), 64, logging.NewNopLogger())

	_, err := s.Parse(context.Background(), strings.Repeat("a", 65))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template size")
	assert.Contains(t, err.Error(), "65")
	assert.Contains(t, err.Error(), "64")
}

func TestSanitizerWrapsMultipleRoots(t *testing.T) {
	s := newTestSanitizer(t)

	body, err := s.Parse(context.Background(), `<p>one</p><p>two</p>`)
	require.NoError(t, err)

	// Exactly one element child: the marked wrapper.
	var elements []*html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			elements = append(elements, c)
		}
	}
	require.Len(t, elements, 1)
	assert.Equal(t, "div", elements[0].Data)

	found := false
	for _, attr := range elements[0].Attr {
		if attr.Key == WrapperMarkerAttr {
			found = true
		}
	}
	assert.True(t, found, "wrapper should carry the marker attribute")
}

func TestSanitizerSingleRootNotWrapped(t *testing.T) {
	s := newTestSanitizer(t)

	body, err := s.Parse(context.Background(), `<div><p>one</p><p>two</p></div>`)
	require.NoError(t, err)

	out := renderTree(body)
	assert.NotContains(t, out, WrapperMarkerAttr)
}

func TestSanitizerStripsForgedWrapperMarker(t *testing.T) {
	s := newTestSanitizer(t)

	body, err := s.Parse(context.Background(), `<div data-if-wrapper="1"><p>a</p></div>`)
	require.NoError(t, err)

	out := renderTree(body)
	assert.NotContains(t, out, WrapperMarkerAttr)
}

func TestSanitizerUnescapesPreEscapedTemplates(t *testing.T) {
	s := newTestSanitizer(t)

	body, err := s.Parse(context.Background(), `&lt;p&gt;hello&lt;/p&gt;`)
	require.NoError(t, err)

	out := renderTree(body)
	assert.Contains(t, out, "<p>hello</p>")
}

func TestSanitizerUnwrapsFullDocument(t *testing.T) {
	s := newTestSanitizer(t)

	body, err := s.Parse(context.Background(),
		`<!DOCTYPE html><html><head><title>t</title></head><body><p>inner</p></body></html>`)
	require.NoError(t, err)

	out := renderTree(body)
	assert.Contains(t, out, "<p>inner</p>")
	assert.NotContains(t, out, "<title>")
}

func TestSanitizerDropsUnsafeStyleValues(t *testing.T) {
	s := newTestSanitizer(t)

	body, err := s.Parse(context.Background(),
		`<div style="background:url(javascript:alert(1))">x</div>`)
	require.NoError(t, err)
	assert.NotContains(t, renderTree(body), "javascript")
}
