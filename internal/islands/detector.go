package islands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/isleforge/isleforge/internal/errors"
	"github.com/isleforge/isleforge/internal/expression"
	"github.com/isleforge/isleforge/internal/generator"
	"github.com/isleforge/isleforge/internal/logging"
	"github.com/isleforge/isleforge/internal/registry"
	"github.com/isleforge/isleforge/internal/types"
)

// Attribute names the detector leaves on placeholder nodes.
const (
	islandAttr    = "data-island"
	componentAttr = "data-component"
)

// placeholderStyleAllowList restricts which CSS properties are rendered
// into the placeholder's inline style so the static markup looks right
// before hydration without carrying the full style object.
var placeholderStyleAllowList = map[string]bool{
	"backgroundColor": true, "color": true, "fontSize": true,
	"fontWeight": true, "textAlign": true, "padding": true,
	"margin": true, "borderRadius": true, "display": true,
	"opacity": true, "gap": true,
}

// eventConfigProps lists, per event-configuration component, the literal
// configuration attributes copied onto the placeholder so the static markup
// stays self-describing without JavaScript.
var eventConfigProps = map[string][]string{
	"KeyHandler":     {"key", "action"},
	"DebouncedInput": {"name", "debounce", "placeholder"},
}

// Detector walks a validated tree, replacing registered-component nodes
// with placeholders and emitting the island forest.
type Detector struct {
	registry   *registry.ComponentRegistry
	expr       *expression.Engine
	logger     logging.Logger
	maxIslands int
}

// NewDetector creates an island detector. maxIslands bounds the total
// number of islands a single template may produce.
func NewDetector(reg *registry.ComponentRegistry, engine *expression.Engine, maxIslands int, logger logging.Logger) *Detector {
	return &Detector{
		registry:   reg,
		expr:       engine,
		logger:     logger.WithComponent("islands"),
		maxIslands: maxIslands,
	}
}

// Transform produces the island forest and a new tree in which every
// component node has been replaced by a placeholder. The input tree is not
// mutated. Island IDs derive from the structural path, so identical input
// yields identical IDs.
func (d *Detector) Transform(ctx context.Context, root *types.TemplateNode, collector *errors.Collector) ([]*types.Island, *types.TemplateNode, error) {
	discovered := make([]*types.Island, 0)

	transformed := d.transformNode(ctx, root, nil, &discovered, collector)

	if len(discovered) > d.maxIslands {
		return nil, nil, errors.NewLimitError(
			"E_MAX_ISLANDS", "island count", len(discovered), d.maxIslands)
	}

	forest := RepairIslandTree(discovered, transformed)

	d.logger.Debug(ctx, "island detection complete",
		"islands", len(discovered), "roots", len(forest))

	return forest, transformed, nil
}

// transformNode copies one node, descending depth-first. Component nodes
// come back as placeholders; everything else is copied structurally.
func (d *Detector) transformNode(ctx context.Context, node *types.TemplateNode, path []PathSegment, discovered *[]*types.Island, collector *errors.Collector) *types.TemplateNode {
	if node.Type == types.NodeElement {
		if comp, ok := d.registry.Get(node.TagName); ok {
			return d.transformComponent(ctx, node, comp, path, discovered, collector)
		}
	}

	out := &types.TemplateNode{
		Type:    node.Type,
		TagName: node.TagName,
		Value:   node.Value,
	}
	if node.Properties != nil {
		out.Properties = make(map[string]string, len(node.Properties))
		for k, v := range node.Properties {
			out.Properties[k] = v
		}
	}
	for i, child := range node.Children {
		childPath := append(path, PathSegment{Tag: pathTag(node), Index: i})
		out.Children = append(out.Children, d.transformNode(ctx, child, childPath, discovered, collector))
	}
	return out
}

func pathTag(node *types.TemplateNode) string {
	if node.Type == types.NodeRoot {
		return "root"
	}
	return strings.ToLower(node.TagName)
}

// transformComponent handles one registered-component node: children first,
// then attribute canonicalization, positioning resolution, prop coercion,
// the style/prop precompute, and finally the placeholder swap.
func (d *Detector) transformComponent(ctx context.Context, node *types.TemplateNode, comp *types.ComponentRegistration, path []PathSegment, discovered *[]*types.Island, collector *errors.Collector) *types.TemplateNode {
	// Children first: nested components become placeholders and islands
	// before this island is assembled.
	children := make([]*types.TemplateNode, 0, len(node.Children))
	hasElementChildren := false
	for i, child := range node.Children {
		childPath := append(path, PathSegment{Tag: pathTag(node), Index: i})
		children = append(children, d.transformNode(ctx, child, childPath, discovered, collector))
		if child.Type == types.NodeElement {
			hasElementChildren = true
		}
	}

	id := IslandID(node.TagName, path)

	attrs := CanonicalizeAttrs(node.Properties)
	positioning := ResolvePositioning(attrs)

	props := CoerceProps(comp, attrs, hasElementChildren, collector)
	if positioning != nil {
		props["_positioning"] = positioning
	}

	d.checkExpressionProps(props, collector)

	precomputed := Precompute(props, positioning != nil)

	placeholder := d.buildPlaceholder(id, comp, node, precomputed, positioning, children)

	island := &types.Island{
		ID:          id,
		Component:   comp.Name,
		Props:       props,
		Placeholder: generator.Render(placeholder),
		Precomputed: precomputed,
	}
	*discovered = append(*discovered, island)

	return placeholder
}

// checkExpressionProps compile-checks the expression-bearing props so
// malformed handlers surface at compile time.
func (d *Detector) checkExpressionProps(props map[string]any, collector *errors.Collector) {
	for _, name := range []string{"onClick", "action", "where"} {
		if v, ok := props[name].(string); ok {
			d.expr.CheckHandler(v, collector)
		}
	}
}

// buildPlaceholder constructs the node standing in for the component in the
// static tree: island identifiers, positioning attributes, a restricted
// inline style, and for event-configuration components their literal config
// attributes.
func (d *Detector) buildPlaceholder(id string, comp *types.ComponentRegistration, original *types.TemplateNode, precomputed *types.Precomputed, positioning *types.Positioning, children []*types.TemplateNode) *types.TemplateNode {
	props := map[string]string{
		islandAttr:    id,
		componentAttr: comp.Name,
	}

	if positioning != nil {
		if payload, err := json.Marshal(positioning); err == nil {
			props["data-position"] = string(payload)
		}
	}

	if style := InlineStyleString(precomputed.Styles, placeholderStyleAllowList); style != "" {
		props["style"] = style
	}

	for _, name := range eventConfigProps[comp.Name] {
		if v, ok := precomputed.ComponentProps[name]; ok {
			props["data-"+kebabOf(name)] = fmt.Sprintf("%v", v)
		}
	}

	classes := []string{"island-placeholder"}
	if class, ok := original.Properties["class"]; ok {
		classes = append(classes, class)
	}
	props["class"] = generator.JoinClasses(classes)

	return &types.TemplateNode{
		Type:       types.NodeElement,
		TagName:    "div",
		Properties: props,
		Children:   children,
	}
}

// RepairIslandTree rebuilds parent->child island linkage from the final
// transformed tree. Discovery order cannot be trusted for nesting: a
// component's children may have been individually discovered as islands
// during recursion, so linkage must reflect final tree structure.
func RepairIslandTree(islands []*types.Island, transformed *types.TemplateNode) []*types.Island {
	byID := make(map[string]*types.Island, len(islands))
	for _, island := range islands {
		island.Children = nil
		byID[island.ID] = island
	}

	roots := make([]*types.Island, 0)
	attached := make(map[string]bool, len(islands))

	var walk func(node *types.TemplateNode, ancestor *types.Island)
	walk = func(node *types.TemplateNode, ancestor *types.Island) {
		current := ancestor

		if node.Type == types.NodeElement {
			if id, ok := node.Properties[islandAttr]; ok {
				if island, known := byID[id]; known && !attached[id] {
					attached[id] = true
					if ancestor != nil {
						ancestor.Children = append(ancestor.Children, island)
					} else {
						roots = append(roots, island)
					}
					current = island
				}
			}
		}

		for _, c := range node.Children {
			walk(c, current)
		}
	}
	walk(transformed, nil)

	// Anything not reachable in the tree (should not happen) stays a root
	// rather than being silently lost.
	for _, island := range islands {
		if !attached[island.ID] {
			roots = append(roots, island)
		}
	}

	return roots
}
