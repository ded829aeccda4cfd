// Package types provides common type definitions used throughout the
// isleforge compiler. This package contains shared types to avoid circular
// dependencies between packages.
package types

import "time"

// NodeType discriminates the three shapes a TemplateNode can take.
type NodeType string

const (
	NodeElement NodeType = "element"
	NodeText    NodeType = "text"
	NodeRoot    NodeType = "root"
)

// TemplateNode is the portable, serializable AST produced by the normalizer.
// Trees are treated as immutable once produced: transformation passes build
// new trees instead of mutating in place.
type TemplateNode struct {
	// Type is the node discriminator (element, text, or root)
	Type NodeType `json:"type"`
	// TagName is the element tag, lower- or original-case as authored
	TagName string `json:"tagName,omitempty"`
	// Properties holds the sanitized attribute set for element nodes
	Properties map[string]string `json:"properties,omitempty"`
	// Children holds child nodes for element and root nodes
	Children []*TemplateNode `json:"children,omitempty"`
	// Value holds the text content for text nodes
	Value string `json:"value,omitempty"`
}

// PropKind enumerates the schema types a component prop may declare.
type PropKind string

const (
	PropString PropKind = "string"
	PropNumber PropKind = "number"
	PropBool   PropKind = "boolean"
	PropEnum   PropKind = "enum"
)

// PropSchema declares the type, bounds, and default for one component prop.
// Owned by the component registry and immutable at compile time.
type PropSchema struct {
	Kind     PropKind `yaml:"kind" json:"kind" validate:"required,oneof=string number boolean enum"`
	Required bool     `yaml:"required,omitempty" json:"required,omitempty"`
	// Default is the fallback value applied when the prop is missing or
	// fails coercion. Stored as its natural Go type (string, float64, bool).
	Default any `yaml:"default,omitempty" json:"default,omitempty"`
	// Values lists the legal members for enum props
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`
	// Min and Max clamp numeric props when set
	Min *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// RelationshipKind classifies how a component participates in the tree.
type RelationshipKind string

const (
	RelationshipContainer RelationshipKind = "container"
	RelationshipParent    RelationshipKind = "parent"
	RelationshipChild     RelationshipKind = "child"
	RelationshipLeaf      RelationshipKind = "leaf"
	RelationshipText      RelationshipKind = "text"
)

// Relationship constrains the legal parent/child shape of a component.
// Enforcement is advisory at the compiler layer: violations produce warnings,
// hard enforcement belongs to the authoring UI.
type Relationship struct {
	Kind RelationshipKind `yaml:"kind" json:"kind"`
	// AcceptsChildren is true when any child is legal; AcceptsOnly narrows
	// it to a specific tag list when non-empty.
	AcceptsChildren bool     `yaml:"acceptsChildren" json:"acceptsChildren"`
	AcceptsOnly     []string `yaml:"acceptsOnly,omitempty" json:"acceptsOnly,omitempty"`
	RequiresParent  string   `yaml:"requiresParent,omitempty" json:"requiresParent,omitempty"`
	MinChildren     int      `yaml:"minChildren,omitempty" json:"minChildren,omitempty"`
	MaxChildren     int      `yaml:"maxChildren,omitempty" json:"maxChildren,omitempty"`
}

// ComponentRegistration defines one allowed component tag: its prop schemas
// and optional tree-shape constraints.
type ComponentRegistration struct {
	Name         string                `yaml:"name" json:"name" validate:"required"`
	Description  string                `yaml:"description,omitempty" json:"description,omitempty"`
	Props        map[string]PropSchema `yaml:"props" json:"props" validate:"dive"`
	Relationship *Relationship         `yaml:"relationship,omitempty" json:"relationship,omitempty"`
	// ExtraAttributes extends the parser allow-list beyond declared props,
	// for internal positioning and styling attributes.
	ExtraAttributes []string `yaml:"extraAttributes,omitempty" json:"extraAttributes,omitempty"`
}

// Positioning is the single canonical layout representation attached to an
// island after reconciling the historical input formats.
type Positioning struct {
	Mode   string  `json:"mode,omitempty"` // "absolute" or "grid"
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	ZIndex int     `json:"zIndex,omitempty"`
	// Grid placement, used when Mode == "grid"
	Column     int    `json:"column,omitempty"`
	Row        int    `json:"row,omitempty"`
	Span       int    `json:"span,omitempty"`
	Breakpoint string `json:"breakpoint,omitempty"`
	// Breakpoints holds per-breakpoint absolute placements for responsive
	// positioning; when set, the flat fields above are unused.
	Breakpoints map[string]*Positioning `json:"breakpoints,omitempty"`
}

// Precomputed caches the style/prop separation done at compile time so the
// hydration layer does not repeat it per render.
type Precomputed struct {
	Styles         map[string]string `json:"styles"`
	ComponentProps map[string]any    `json:"componentProps"`
}

// Island describes one interactive component instance extracted from a
// template. Islands form a forest whose roots are the top-level interactive
// components; IDs are deterministic for a given component type and tree path.
type Island struct {
	ID          string         `json:"id"`
	Component   string         `json:"component"`
	Props       map[string]any `json:"props"`
	Children    []*Island      `json:"children,omitempty"`
	Placeholder string         `json:"placeholder"`
	Precomputed *Precomputed   `json:"precomputed,omitempty"`
}

// CompileMode selects how much user-authored markup and CSS is honored.
type CompileMode string

const (
	ModeDefault  CompileMode = "default"
	ModeEnhanced CompileMode = "enhanced"
	ModeAdvanced CompileMode = "advanced"
)

// CompiledTemplate is one fully compiled rendering of a template. Fallback
// links form a singly-linked degradation chain (advanced -> enhanced ->
// default), each link independently renderable.
type CompiledTemplate struct {
	Mode       CompileMode       `json:"mode"`
	StaticHTML string            `json:"staticHTML"`
	Islands    []*Island         `json:"islands"`
	Fallback   *CompiledTemplate `json:"fallback,omitempty"`
	CompiledAt time.Time         `json:"compiledAt"`
	Errors     []string          `json:"errors"`
	Warnings   []string          `json:"warnings"`
}

// CompilationOptions carries the caller's per-request settings.
type CompilationOptions struct {
	Mode               CompileMode `json:"mode" validate:"omitempty,oneof=default enhanced advanced"`
	EnableOptimization bool        `json:"enableOptimization,omitempty"`
	EnableSEOMetadata  bool        `json:"enableSEOMetadata,omitempty"`
	// MaxIslands overrides the configured island limit when positive
	MaxIslands int `json:"maxIslands,omitempty" validate:"gte=0"`
}

// CompilationResult is the outward-facing result envelope. Success may be
// false while Compiled is still populated with a usable fallback.
type CompilationResult struct {
	Success  bool              `json:"success"`
	Compiled *CompiledTemplate `json:"compiled,omitempty"`
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings"`
}

// TemplateStats summarizes the structural shape of a validated template.
type TemplateStats struct {
	NodeCount       int            `json:"nodeCount"`
	MaxDepth        int            `json:"maxDepth"`
	ComponentCounts map[string]int `json:"componentCounts"`
}

// ValidationResult is the stats side channel obtainable without running a
// full compilation.
type ValidationResult struct {
	IsValid  bool          `json:"isValid"`
	Errors   []string      `json:"errors"`
	Warnings []string      `json:"warnings"`
	Stats    TemplateStats `json:"stats"`
}
