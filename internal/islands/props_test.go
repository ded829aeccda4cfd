package islands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isleforge/isleforge/internal/errors"
	"github.com/isleforge/isleforge/internal/registry"
	"github.com/isleforge/isleforge/internal/types"
)

func builtin(t *testing.T, name string) *types.ComponentRegistration {
	t.Helper()
	comp, ok := registry.NewBuiltinRegistry().Get(name)
	require.True(t, ok, "builtin %s missing", name)
	return comp
}

func warningsJoined(c *errors.Collector) string {
	return strings.Join(c.Warnings(), "\n")
}

func TestCoercePropsNumberClamping(t *testing.T) {
	comp := builtin(t, "ItemList")

	t.Run("above max clamps down", func(t *testing.T) {
		collector := errors.NewCollector()
		props := CoerceProps(comp, map[string]string{
			"source": "links", "limit": "150",
		}, false, collector)

		assert.Equal(t, float64(100), props["limit"])
		assert.Contains(t, warningsJoined(collector), "clamped to maximum")
	})

	t.Run("below min clamps up", func(t *testing.T) {
		collector := errors.NewCollector()
		props := CoerceProps(comp, map[string]string{
			"source": "links", "limit": "0",
		}, false, collector)

		assert.Equal(t, float64(1), props["limit"])
		assert.Contains(t, warningsJoined(collector), "clamped to minimum")
	})

	t.Run("non-numeric falls back to default", func(t *testing.T) {
		collector := errors.NewCollector()
		props := CoerceProps(comp, map[string]string{
			"source": "links", "limit": "lots",
		}, false, collector)

		assert.Equal(t, float64(20), props["limit"])
		assert.Contains(t, warningsJoined(collector), "not a number")
	})

	t.Run("in range passes unchanged", func(t *testing.T) {
		collector := errors.NewCollector()
		props := CoerceProps(comp, map[string]string{
			"source": "links", "limit": "42",
		}, false, collector)

		assert.Equal(t, float64(42), props["limit"])
		assert.Empty(t, collector.Warnings())
	})
}

func TestCoercePropsEnum(t *testing.T) {
	comp := builtin(t, "ActionButton")

	t.Run("valid value kept", func(t *testing.T) {
		collector := errors.NewCollector()
		props := CoerceProps(comp, map[string]string{
			"label": "Go", "variant": "ghost",
		}, false, collector)
		assert.Equal(t, "ghost", props["variant"])
	})

	t.Run("invalid value replaced with default", func(t *testing.T) {
		collector := errors.NewCollector()
		props := CoerceProps(comp, map[string]string{
			"label": "Go", "variant": "sparkly",
		}, false, collector)

		assert.Equal(t, "primary", props["variant"])
		assert.Contains(t, warningsJoined(collector), `"sparkly"`)
	})
}

func TestCoercePropsBool(t *testing.T) {
	comp := builtin(t, "ActionButton")

	tests := []struct {
		raw      string
		expected bool
	}{
		{"true", true},
		{"", true}, // bare attribute presence means true
		{"false", false},
		{"maybe", false}, // unparseable falls to schema default
	}

	for _, tt := range tests {
		t.Run("disabled="+tt.raw, func(t *testing.T) {
			collector := errors.NewCollector()
			props := CoerceProps(comp, map[string]string{
				"label": "Go", "disabled": tt.raw,
			}, false, collector)
			assert.Equal(t, tt.expected, props["disabled"])
		})
	}
}

func TestCoercePropsMissingRequiredWarns(t *testing.T) {
	comp := builtin(t, "ProfileImage")
	collector := errors.NewCollector()

	props := CoerceProps(comp, map[string]string{}, false, collector)

	assert.False(t, collector.HasErrors(), "missing props degrade, never fail")
	assert.Contains(t, warningsJoined(collector), `required prop "src" is missing`)
	assert.NotContains(t, props, "src")
	// Optional defaults still filled.
	assert.Equal(t, "cover", props["fit"])
	assert.Equal(t, false, props["rounded"])
}

func TestCoercePropsUnknownDropped(t *testing.T) {
	comp := builtin(t, "ActionButton")
	collector := errors.NewCollector()

	props := CoerceProps(comp, map[string]string{
		"label": "Go", "sparkle": "yes",
	}, false, collector)

	assert.NotContains(t, props, "sparkle")
	assert.Contains(t, warningsJoined(collector), `unknown prop "sparkle" dropped`)
}

func TestCoercePropsPassthrough(t *testing.T) {
	comp := builtin(t, "ActionButton")
	collector := errors.NewCollector()

	props := CoerceProps(comp, map[string]string{
		"label":      "Go",
		"className":  "hero",
		"id":         "cta",
		"data-test":  "x",
		"_internal":  "y",
	}, false, collector)

	assert.Equal(t, "hero", props["className"])
	assert.Equal(t, "cta", props["id"])
	assert.Equal(t, "x", props["data-test"])
	assert.Equal(t, "y", props["_internal"])
	assert.Empty(t, collector.Warnings())
}

func TestCoercePropsContentDefaultSuppressedWithChildren(t *testing.T) {
	comp := builtin(t, "ProfileText")

	t.Run("no children fills text default", func(t *testing.T) {
		collector := errors.NewCollector()
		props := CoerceProps(comp, map[string]string{}, false, collector)
		assert.Equal(t, "Add your text here", props["content"])
	})

	t.Run("element children suppress text default", func(t *testing.T) {
		collector := errors.NewCollector()
		props := CoerceProps(comp, map[string]string{}, true, collector)
		assert.NotContains(t, props, "content")
		// Other defaults are unaffected.
		assert.Equal(t, "left", props["align"])
	})

	t.Run("explicit content survives children", func(t *testing.T) {
		collector := errors.NewCollector()
		props := CoerceProps(comp, map[string]string{"content": "hi"}, true, collector)
		assert.Equal(t, "hi", props["content"])
	})
}

func TestCoercePropsCaseInsensitiveSchemaMatch(t *testing.T) {
	comp := builtin(t, "ActionButton")
	collector := errors.NewCollector()

	props := CoerceProps(comp, map[string]string{
		"label": "Go", "onClick": "count = count + 1",
	}, false, collector)

	assert.Equal(t, "count = count + 1", props["onClick"])
}
