package parser

import (
	"strings"

	"github.com/isleforge/isleforge/internal/registry"
)

// Schema is the allow-list the sanitizer enforces: which tags survive, which
// attributes each tag may carry, and which URL protocols are acceptable.
// It is built once per registry generation, not per parse.
type Schema struct {
	// tags maps a lowercase tag name to its allowed attribute set.
	tags map[string]map[string]bool
	// dangerous tags are removed with their entire subtree.
	dangerous map[string]bool
}

// Global attributes permitted on every allowed standard tag.
var globalAttributes = []string{"class", "classname", "style", "id", "title", "role"}

// safeHTMLTags is the base vocabulary of standard tags with their tag-specific
// attributes. Tags absent from this table (and from the registry) are unknown
// and get unwrapped.
var safeHTMLTags = map[string][]string{
	"div": nil, "span": nil, "p": nil,
	"h1": nil, "h2": nil, "h3": nil, "h4": nil, "h5": nil, "h6": nil,
	"strong": nil, "em": nil, "b": nil, "i": nil, "u": nil, "s": nil,
	"blockquote": {"cite"}, "code": nil, "pre": nil,
	"ul": nil, "ol": {"start", "reversed"}, "li": {"value"},
	"br": nil, "hr": nil,
	"a":   {"href", "target", "rel"},
	"img": {"src", "alt", "width", "height", "loading"},
	"table": nil, "thead": nil, "tbody": nil, "tfoot": nil,
	"tr": nil, "td": {"colspan", "rowspan"}, "th": {"colspan", "rowspan", "scope"},
	"section": nil, "article": nil, "header": nil, "footer": nil,
	"nav": nil, "main": nil, "aside": nil,
	"figure": nil, "figcaption": nil,
	"button": {"type", "disabled"},
	"label":  {"for"},
	"input":  {"type", "name", "value", "placeholder", "disabled", "checked"},
}

// dangerousTags are removed together with everything below them.
var dangerousTags = []string{
	"script", "iframe", "object", "embed", "applet", "form",
	"meta", "link", "base", "frame", "frameset",
}

// positioningAttributes are the internal layout data-attributes every
// component tag may carry, across the historical formats.
var positioningAttributes = []string{
	"x", "y", "width", "height",
	"data-position", "data-x", "data-y", "data-width", "data-height",
	"data-z-index", "data-grid-column", "data-grid-row", "data-grid-span",
	"data-grid-breakpoint", "data-responsive",
}

// stylingAliases are CSS-shaped attribute names accepted on component tags
// and folded into the style precompute step.
var stylingAliases = []string{
	"background-color", "backgroundcolor", "color",
	"font-size", "fontsize", "font-weight", "fontweight", "font-family",
	"text-align", "textalign", "line-height",
	"padding", "margin", "border", "border-radius", "borderradius",
	"opacity", "box-shadow", "display", "gap",
}

// BuildSchema derives the sanitizer allow-list from the base HTML vocabulary
// plus every registered component tag (original case and lowercase), each
// granted its declared props, extra attributes, positioning data-attributes,
// and styling aliases.
func BuildSchema(reg *registry.ComponentRegistry) *Schema {
	s := &Schema{
		tags:      make(map[string]map[string]bool),
		dangerous: make(map[string]bool),
	}

	for _, tag := range dangerousTags {
		s.dangerous[tag] = true
	}

	for tag, attrs := range safeHTMLTags {
		set := make(map[string]bool)
		for _, a := range globalAttributes {
			set[a] = true
		}
		for _, a := range attrs {
			set[a] = true
		}
		s.tags[tag] = set
	}

	for name, comp := range reg.GetAll() {
		set := make(map[string]bool)
		for _, a := range globalAttributes {
			set[a] = true
		}
		for prop := range comp.Props {
			set[strings.ToLower(prop)] = true
		}
		for _, a := range comp.ExtraAttributes {
			set[strings.ToLower(a)] = true
		}
		for _, a := range positioningAttributes {
			set[a] = true
		}
		for _, a := range stylingAliases {
			set[a] = true
		}
		s.tags[strings.ToLower(name)] = set
	}

	return s
}

// AllowsTag reports whether a tag survives sanitization.
func (s *Schema) AllowsTag(tag string) bool {
	_, ok := s.tags[strings.ToLower(tag)]
	return ok
}

// IsDangerous reports whether a tag's entire subtree must be removed.
func (s *Schema) IsDangerous(tag string) bool {
	return s.dangerous[strings.ToLower(tag)]
}

// AllowsAttribute reports whether an attribute survives on a given tag.
// data-* attributes are broadly allowed on component tags because the
// positioning formats live there; the synthetic wrapper marker is always
// stripped from input so it cannot be forged.
func (s *Schema) AllowsAttribute(tag, attr string) bool {
	attr = strings.ToLower(attr)
	if attr == WrapperMarkerAttr {
		return false
	}
	set, ok := s.tags[strings.ToLower(tag)]
	if !ok {
		return false
	}
	if set[attr] {
		return true
	}
	return strings.HasPrefix(attr, "data-")
}

// allowedURL enforces the protocol allow-list for src/href values: http,
// https, mailto, tel, data:image/*, the literal placeholder "#", and
// scheme-less relative references (which carry no protocol to abuse).
func allowedURL(value string) bool {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" || v == "#" {
		return true
	}

	colon := strings.IndexByte(v, ':')
	if colon < 0 {
		return true
	}
	// A ':' after the first path/query/fragment separator is not a scheme.
	if slash := strings.IndexAny(v, "/?#"); slash >= 0 && slash < colon {
		return true
	}

	switch v[:colon] {
	case "http", "https", "mailto", "tel":
		return true
	case "data":
		return strings.HasPrefix(v, "data:image/")
	default:
		return false
	}
}

// safeStyleValue rejects inline style values that smuggle script or
// non-image resources; the style attribute otherwise passes through with
// arbitrary property names.
func safeStyleValue(value string) bool {
	v := strings.ToLower(value)
	if strings.Contains(v, "javascript:") ||
		strings.Contains(v, "expression(") ||
		strings.Contains(v, "vbscript:") ||
		strings.Contains(v, "@import") {
		return false
	}
	if strings.Contains(v, "url(") {
		// Only image data URLs and http(s) URLs inside url().
		rest := v[strings.Index(v, "url(")+4:]
		rest = strings.TrimLeft(rest, " '\"")
		if !strings.HasPrefix(rest, "http") && !strings.HasPrefix(rest, "data:image/") {
			return false
		}
	}
	return true
}
