package compiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/isleforge/isleforge/internal/generator"
	"github.com/isleforge/isleforge/internal/types"
)

// compileDefault produces the fixed-shape static skeleton: no islands, no
// custom markup. It always succeeds for well-formed inputs.
func (c *Compiler) compileDefault(req CompileRequest) *types.CompiledTemplate {
	return &types.CompiledTemplate{
		Mode:       types.ModeDefault,
		StaticHTML: c.buildSkeleton(req, ""),
		Islands:    []*types.Island{},
		CompiledAt: time.Now(),
		Errors:     []string{},
		Warnings:   []string{},
	}
}

// compileEnhanced is the default skeleton plus the profile's custom CSS
// injected as a style block. Its fallback is the plain default compilation,
// completing the degradation chain.
func (c *Compiler) compileEnhanced(req CompileRequest) *types.CompiledTemplate {
	return &types.CompiledTemplate{
		Mode:       types.ModeEnhanced,
		StaticHTML: c.buildSkeleton(req, req.CustomCSS),
		Islands:    []*types.Island{},
		Fallback:   c.compileDefault(req),
		CompiledAt: time.Now(),
		Errors:     []string{},
		Warnings:   []string{},
	}
}

// buildSkeleton renders the fixed default-mode page shell. customCSS, when
// present, is injected before </head>.
func (c *Compiler) buildSkeleton(req CompileRequest, customCSS string) string {
	title := req.Title
	if title == "" {
		title = "Profile"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString(fmt.Sprintf("<title>%s</title>\n", generator.EscapeHTML(title)))
	if req.Options.EnableSEOMetadata {
		b.WriteString(seoMetadata(req))
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(`<div class="profile">`)
	b.WriteString(fmt.Sprintf(`<h1 class="profile-title">%s</h1>`, generator.EscapeHTML(title)))
	if req.Description != "" {
		b.WriteString(fmt.Sprintf(`<p class="profile-description">%s</p>`, generator.EscapeHTML(req.Description)))
	}
	b.WriteString(`<div class="profile-body"></div>`)
	b.WriteString("</div>\n</body>\n</html>")

	html := b.String()
	if customCSS != "" {
		html = InjectCustomCSS(html, customCSS)
	}
	return html
}

// buildPage wraps advanced-mode body markup in the page shell, with custom
// CSS and optional SEO metadata in the head.
func (c *Compiler) buildPage(req CompileRequest, bodyHTML string) string {
	title := req.Title
	if title == "" {
		title = "Profile"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString(fmt.Sprintf("<title>%s</title>\n", generator.EscapeHTML(title)))
	if req.Options.EnableSEOMetadata {
		b.WriteString(seoMetadata(req))
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(bodyHTML)
	b.WriteString("\n</body>\n</html>")

	html := b.String()
	if req.CustomCSS != "" {
		html = InjectCustomCSS(html, req.CustomCSS)
	}
	return html
}

// InjectCustomCSS inserts a sanitized style block before </head>, or
// prepends it when the document has no head.
func InjectCustomCSS(html, css string) string {
	block := "<style>\n" + sanitizeCSS(css) + "\n</style>"
	if idx := strings.Index(html, "</head>"); idx >= 0 {
		return html[:idx] + block + "\n" + html[idx:]
	}
	return block + "\n" + html
}

// cssDenyList holds the tokens stripped from custom CSS: the style close
// tag, which would break out of the injected block, and script-smuggling
// constructs. Not a CSS engine: passthrough with a denylist.
var cssDenyList = []string{"</style", "<script", "javascript:", "expression(", "@import", "behavior:"}

// sanitizeCSS removes denylisted tokens case-insensitively until none
// remain. Removals must run to a fixed point across the whole list:
// stripping one token can splice its neighbors into another (for example
// "</sty</stylele" collapses into "</style" after one removal).
func sanitizeCSS(css string) string {
	for {
		lower := strings.ToLower(css)
		idx, length := -1, 0
		for _, banned := range cssDenyList {
			if i := strings.Index(lower, banned); i >= 0 && (idx < 0 || i < idx) {
				idx, length = i, len(banned)
			}
		}
		if idx < 0 {
			return css
		}
		css = css[:idx] + css[idx+length:]
	}
}

// seoMetadata renders the description and open-graph tags used when the
// caller opts in.
func seoMetadata(req CompileRequest) string {
	var b strings.Builder
	if req.Description != "" {
		b.WriteString(fmt.Sprintf("<meta name=\"description\" content=\"%s\">\n",
			generator.EscapeHTML(req.Description)))
		b.WriteString(fmt.Sprintf("<meta property=\"og:description\" content=\"%s\">\n",
			generator.EscapeHTML(req.Description)))
	}
	if req.Title != "" {
		b.WriteString(fmt.Sprintf("<meta property=\"og:title\" content=\"%s\">\n",
			generator.EscapeHTML(req.Title)))
	}
	return b.String()
}
