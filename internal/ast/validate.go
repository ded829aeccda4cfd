package ast

import (
	"fmt"

	"github.com/isleforge/isleforge/internal/config"
	"github.com/isleforge/isleforge/internal/errors"
	"github.com/isleforge/isleforge/internal/registry"
	"github.com/isleforge/isleforge/internal/types"
)

// Validator computes structural statistics for a normalized tree and
// enforces the hard limits, emitting soft warnings as thresholds approach.
type Validator struct {
	registry *registry.ComponentRegistry
	limits   config.LimitsConfig
}

// NewValidator creates a structural validator.
func NewValidator(reg *registry.ComponentRegistry, limits config.LimitsConfig) *Validator {
	return &Validator{registry: reg, limits: limits}
}

// Validate walks the tree once, filling stats and recording limit errors and
// threshold warnings into the collector. It returns the stats regardless of
// validity so callers can surface them either way.
func (v *Validator) Validate(root *types.TemplateNode, collector *errors.Collector) types.TemplateStats {
	stats := types.TemplateStats{
		ComponentCounts: make(map[string]int),
	}

	var walk func(n *types.TemplateNode, depth int)
	walk = func(n *types.TemplateNode, depth int) {
		stats.NodeCount++
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		if n.Type == types.NodeElement {
			if comp, ok := v.registry.Get(n.TagName); ok {
				stats.ComponentCounts[comp.Name]++
			}
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)

	totalComponents := 0
	for _, count := range stats.ComponentCounts {
		totalComponents += count
	}

	v.checkLimit(collector, "E_MAX_NODES", "node count", stats.NodeCount, v.limits.MaxNodes)
	v.checkLimit(collector, "E_MAX_DEPTH", "nesting depth", stats.MaxDepth, v.limits.MaxDepth)
	v.checkLimit(collector, "E_MAX_COMPONENTS", "component count", totalComponents, v.limits.MaxComponents)

	v.validateRelationships(root, collector)

	return stats
}

// checkLimit records a hard error above the limit and a soft warning above
// the warn-ratio threshold.
func (v *Validator) checkLimit(collector *errors.Collector, code, name string, observed, max int) {
	if observed > max {
		collector.AddError(errors.NewLimitError(code, name, observed, max))
		return
	}
	threshold := int(float64(max) * v.limits.WarnRatio)
	if threshold > 0 && observed > threshold {
		collector.AddWarning(fmt.Sprintf(
			"%s %d is approaching the limit of %d", name, observed, max))
	}
}

// validateRelationships checks the advisory tree-shape constraints: a child
// component outside its required parent, or a container with too few or too
// many children. Violations are warnings only; hard enforcement belongs to
// the authoring UI.
func (v *Validator) validateRelationships(root *types.TemplateNode, collector *errors.Collector) {
	var walk func(n *types.TemplateNode, parentComponent string)
	walk = func(n *types.TemplateNode, parentComponent string) {
		current := parentComponent

		if n.Type == types.NodeElement {
			if comp, ok := v.registry.Get(n.TagName); ok {
				current = comp.Name
				v.checkRelationship(n, comp, parentComponent, collector)
			}
		}

		for _, c := range n.Children {
			walk(c, current)
		}
	}
	walk(root, "")
}

func (v *Validator) checkRelationship(n *types.TemplateNode, comp *types.ComponentRegistration, parent string, collector *errors.Collector) {
	rel := comp.Relationship
	if rel == nil {
		return
	}

	if rel.RequiresParent != "" && parent != rel.RequiresParent {
		collector.AddWarning(fmt.Sprintf(
			"%s should be placed inside %s", comp.Name, rel.RequiresParent))
	}

	componentChildren := 0
	for _, c := range n.Children {
		if c.Type == types.NodeElement && v.registry.IsRegistered(c.TagName) {
			componentChildren++
		}
	}

	if rel.MinChildren > 0 && componentChildren < rel.MinChildren {
		collector.AddWarning(fmt.Sprintf(
			"%s expects at least %d child component(s), found %d",
			comp.Name, rel.MinChildren, componentChildren))
	}
	if rel.MaxChildren > 0 && componentChildren > rel.MaxChildren {
		collector.AddWarning(fmt.Sprintf(
			"%s accepts at most %d child component(s), found %d",
			comp.Name, rel.MaxChildren, componentChildren))
	}

	if len(rel.AcceptsOnly) > 0 {
		allowed := make(map[string]bool, len(rel.AcceptsOnly))
		for _, a := range rel.AcceptsOnly {
			allowed[a] = true
		}
		for _, c := range n.Children {
			if c.Type != types.NodeElement {
				continue
			}
			child, ok := v.registry.Get(c.TagName)
			if ok && !allowed[child.Name] {
				collector.AddWarning(fmt.Sprintf(
					"%s does not accept %s children", comp.Name, child.Name))
			}
		}
	}
}
