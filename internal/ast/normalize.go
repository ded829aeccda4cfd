// Package ast converts the sanitizer's HTML tree into the portable
// TemplateNode shape and validates its structural properties against the
// configured hard limits.
package ast

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/isleforge/isleforge/internal/parser"
	"github.com/isleforge/isleforge/internal/types"
)

// Normalize converts the sanitized body node into a TemplateNode tree rooted
// at a root node. The synthetic wrapper div introduced for multi-rooted
// templates is stripped so it never appears as a phantom element. Pure
// transform: the input tree is not modified.
func Normalize(body *html.Node) *types.TemplateNode {
	root := &types.TemplateNode{Type: types.NodeRoot}

	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if node := normalizeNode(c); node != nil {
			root.Children = append(root.Children, node)
		}
	}

	unwrapSynthetic(root)
	return root
}

func normalizeNode(n *html.Node) *types.TemplateNode {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return &types.TemplateNode{Type: types.NodeText, Value: n.Data}

	case html.ElementNode:
		node := &types.TemplateNode{
			Type:    types.NodeElement,
			TagName: n.Data,
		}
		if len(n.Attr) > 0 {
			node.Properties = make(map[string]string, len(n.Attr))
			for _, attr := range n.Attr {
				node.Properties[strings.ToLower(attr.Key)] = attr.Val
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := normalizeNode(c); child != nil {
				node.Children = append(node.Children, child)
			}
		}
		return node

	default:
		return nil
	}
}

// unwrapSynthetic hoists the children of the marked wrapper div so the
// wrapper never leaks into the visible AST. Detection is by the private
// marker attribute the sanitizer strips from user input, not by shape.
func unwrapSynthetic(root *types.TemplateNode) {
	if len(root.Children) != 1 {
		return
	}
	only := root.Children[0]
	if only.Type != types.NodeElement || only.TagName != "div" {
		return
	}
	if _, marked := only.Properties[parser.WrapperMarkerAttr]; !marked {
		return
	}
	root.Children = only.Children
}
