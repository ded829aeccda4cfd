// Package parser turns untrusted template text into a sanitized HTML tree.
// It is the security boundary of the compiler: everything downstream assumes
// the tree only contains allow-listed tags, attributes, and URL protocols.
package parser

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/isleforge/isleforge/internal/errors"
	"github.com/isleforge/isleforge/internal/logging"
	"github.com/isleforge/isleforge/internal/registry"
)

// WrapperMarkerAttr marks the synthetic container the parser wraps around
// multi-rooted templates. The sanitizer strips it from input before wrapper
// synthesis, so a user template can never forge it and the normalizer can
// unwrap by marker instead of shape sniffing.
const WrapperMarkerAttr = "data-if-wrapper"

// Sanitizer parses and sanitizes untrusted template text against an
// allow-list schema derived from the component registry.
type Sanitizer struct {
	registry *registry.ComponentRegistry
	schema   *Schema
	maxSize  int
	logger   logging.Logger
}

// NewSanitizer builds a sanitizer for the given registry. maxSize bounds the
// input in bytes; oversized input is rejected before any parsing happens.
func NewSanitizer(reg *registry.ComponentRegistry, maxSize int, logger logging.Logger) *Sanitizer {
	return &Sanitizer{
		registry: reg,
		schema:   BuildSchema(reg),
		maxSize:  maxSize,
		logger:   logger.WithComponent("sanitizer"),
	}
}

// Parse sanitizes the input and returns the body-level container node whose
// children are the logical top level of the template. The returned tree
// contains only allow-listed constructs.
func (s *Sanitizer) Parse(ctx context.Context, input string) (*html.Node, error) {
	if len(input) > s.maxSize {
		return nil, errors.NewLimitError("E_TEMPLATE_SIZE", "template size", len(input), s.maxSize)
	}

	input = unescapeIfPreEscaped(input)
	input = RewriteSelfClosing(input, s.registry.IsRegistered)

	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return nil, errors.NewParseError("E_PARSE", "failed to parse template markup", err)
	}

	body := findBody(doc)
	if body == nil {
		return nil, errors.NewParseError("E_NO_BODY", "parsed document has no body", nil)
	}

	s.sanitizeChildren(ctx, body)
	s.wrapMultipleRoots(body)

	return body, nil
}

// unescapeIfPreEscaped detects templates stored in entity-escaped form
// (no raw '<' but escaped tags present) and unescapes them once. Templates
// containing real markup keep their entities intact.
func unescapeIfPreEscaped(input string) string {
	if !strings.Contains(input, "<") && strings.Contains(input, "&lt;") {
		return html.UnescapeString(input)
	}
	return input
}

// findBody descends a parsed document to its body element.
func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return body
}

// sanitizeChildren applies the allow-list to every child of n, recursively.
// Dangerous tags are removed with their subtree; merely unknown tags are
// unwrapped so their text content survives (fail-open for unrecognized
// markup, fail-closed for unsafe protocols and scripts).
func (s *Sanitizer) sanitizeChildren(ctx context.Context, n *html.Node) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling

		switch child.Type {
		case html.ElementNode:
			switch {
			case s.schema.IsDangerous(child.Data):
				s.logger.Debug(ctx, "removed dangerous element", "tag", child.Data)
				n.RemoveChild(child)
			case !s.schema.AllowsTag(child.Data):
				s.logger.Debug(ctx, "unwrapped unknown element", "tag", child.Data)
				promoted := child.FirstChild
				unwrapNode(n, child)
				// Continue from the promoted children so they get
				// sanitized too.
				if promoted != nil {
					next = promoted
				}
			default:
				s.sanitizeAttributes(ctx, child)
				s.sanitizeChildren(ctx, child)
			}
		case html.CommentNode:
			n.RemoveChild(child)
		}

		child = next
	}
}

// unwrapNode replaces a node with its children, preserving order.
func unwrapNode(parent, n *html.Node) {
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// sanitizeAttributes filters a node's attributes through the allow-list and
// the protocol/style value checks.
func (s *Sanitizer) sanitizeAttributes(ctx context.Context, n *html.Node) {
	isComponent := s.registry.IsRegistered(n.Data)

	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)

		// DOM event-handler attributes never pass on standard tags. On
		// component tags an on* name is a schema-validated prop (for
		// example onClick), not a live handler, so the allow-list decides.
		if strings.HasPrefix(key, "on") && !isComponent {
			continue
		}
		if !s.schema.AllowsAttribute(n.Data, key) {
			continue
		}
		if (key == "src" || key == "href") && !allowedURL(attr.Val) {
			s.logger.Debug(ctx, "dropped attribute with disallowed protocol",
				"tag", n.Data, "attr", key)
			continue
		}
		if key == "style" && !safeStyleValue(attr.Val) {
			s.logger.Debug(ctx, "dropped unsafe style value", "tag", n.Data)
			continue
		}
		kept = append(kept, attr)
	}
	n.Attr = kept
}

// wrapMultipleRoots guarantees one tree root: when the body holds more than
// one element (or leading text) it synthesizes a marked container div. The
// normalizer unwraps it later so the artifact never leaks into the AST.
func (s *Sanitizer) wrapMultipleRoots(body *html.Node) {
	var elements int
	var meaningful int
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			elements++
			meaningful++
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				meaningful++
			}
		}
	}
	if meaningful <= 1 {
		return
	}

	wrapper := &html.Node{
		Type: html.ElementNode,
		Data: "div",
		Attr: []html.Attribute{{Key: WrapperMarkerAttr, Val: "1"}},
	}

	for body.FirstChild != nil {
		c := body.FirstChild
		body.RemoveChild(c)
		wrapper.AppendChild(c)
	}
	body.AppendChild(wrapper)
}

// DescribeSchema returns a short human-readable summary, used by the CLI.
func (s *Sanitizer) DescribeSchema() string {
	return fmt.Sprintf("%d allowed tags (%d component tags registered)",
		len(s.schema.tags), s.registry.Count())
}

// RefreshSchema rebuilds the allow-list after the registry changed.
func (s *Sanitizer) RefreshSchema() {
	s.schema = BuildSchema(s.registry)
}
