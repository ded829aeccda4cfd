package islands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/isleforge/isleforge/internal/errors"
	"github.com/isleforge/isleforge/internal/types"
)

// reservedPrefixes name attribute families that always pass through the
// coercion step untouched: internal fields and the data-attribute space.
var reservedPrefixes = []string{"_", "data-"}

// passthroughProps always survive regardless of schema.
var passthroughProps = map[string]bool{
	"className": true,
	"style":     true,
	"id":        true,
}

// CoerceProps validates the canonicalized attribute set against the
// component's prop schemas, coercing each declared prop by its kind and
// filling defaults for missing optional props. All issues are soft: they are
// recorded as warnings and resolved via defaults, never thrown, because the
// input is end-user content that must degrade gracefully.
//
// hasElementChildren suppresses the textual default content prop for
// text-like components whose body is already authored as child elements.
func CoerceProps(comp *types.ComponentRegistration, attrs map[string]string, hasElementChildren bool, collector *errors.Collector) map[string]any {
	props := make(map[string]any, len(attrs))

	schemaByLower := make(map[string]string, len(comp.Props))
	for name := range comp.Props {
		schemaByLower[strings.ToLower(name)] = name
	}

	for _, key := range sortedKeys(attrs) {
		value := attrs[key]

		schemaName, declared := schemaByLower[strings.ToLower(key)]
		if !declared {
			if passesThrough(key) {
				props[key] = value
				continue
			}
			collector.AddWarning(fmt.Sprintf(
				"%s: unknown prop %q dropped", comp.Name, key))
			continue
		}

		schema := comp.Props[schemaName]
		props[schemaName] = coerceValue(comp.Name, schemaName, schema, value, collector)
	}

	applyDefaults(comp, props, hasElementChildren, collector)
	return props
}

func passesThrough(key string) bool {
	if passthroughProps[key] {
		return true
	}
	// CSS-shaped props are accepted on any component; the precompute step
	// splits them into the island's style object.
	if IsCSSProp(key) {
		return true
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// coerceValue is the total coercion function: every schema kind has exactly
// one branch and every branch produces a value.
func coerceValue(component, name string, schema types.PropSchema, raw string, collector *errors.Collector) any {
	switch schema.Kind {
	case types.PropString:
		return raw

	case types.PropNumber:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			collector.AddWarning(fmt.Sprintf(
				"%s: prop %q value %q is not a number, using default", component, name, raw))
			return numberDefault(schema)
		}
		if schema.Min != nil && v < *schema.Min {
			collector.AddWarning(fmt.Sprintf(
				"%s: prop %q value %v clamped to minimum %v", component, name, v, *schema.Min))
			return *schema.Min
		}
		if schema.Max != nil && v > *schema.Max {
			collector.AddWarning(fmt.Sprintf(
				"%s: prop %q value %v clamped to maximum %v", component, name, v, *schema.Max))
			return *schema.Max
		}
		return v

	case types.PropBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "":
			return true
		case "false":
			return false
		default:
			if d, ok := schema.Default.(bool); ok {
				return d
			}
			return false
		}

	case types.PropEnum:
		for _, allowed := range schema.Values {
			if raw == allowed {
				return raw
			}
		}
		collector.AddWarning(fmt.Sprintf(
			"%s: prop %q value %q not in %v, using default", component, name, raw, schema.Values))
		if d, ok := schema.Default.(string); ok {
			return d
		}
		if len(schema.Values) > 0 {
			return schema.Values[0]
		}
		return ""

	default:
		collector.AddWarning(fmt.Sprintf(
			"%s: prop %q has unknown schema kind %q", component, name, schema.Kind))
		return raw
	}
}

func numberDefault(schema types.PropSchema) float64 {
	switch d := schema.Default.(type) {
	case float64:
		return d
	case int:
		return float64(d)
	default:
		if schema.Min != nil {
			return *schema.Min
		}
		return 0
	}
}

// applyDefaults fills missing props: required-without-default warns, optional
// props receive their schema default, and a text-like component with element
// children has its textual content default suppressed.
func applyDefaults(comp *types.ComponentRegistration, props map[string]any, hasElementChildren bool, collector *errors.Collector) {
	textLike := comp.Relationship != nil && comp.Relationship.Kind == types.RelationshipText

	for _, name := range sortedSchemaNames(comp.Props) {
		schema := comp.Props[name]
		if _, present := props[name]; present {
			continue
		}

		if schema.Required && schema.Default == nil {
			collector.AddWarning(fmt.Sprintf(
				"%s: required prop %q is missing", comp.Name, name))
			continue
		}
		if schema.Default == nil {
			continue
		}
		if textLike && hasElementChildren && name == "content" {
			continue
		}
		props[name] = schema.Default
	}
}

func sortedSchemaNames(schemas map[string]types.PropSchema) []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
