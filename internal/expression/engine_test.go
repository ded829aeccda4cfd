package expression

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isleforge/isleforge/internal/config"
	"github.com/isleforge/isleforge/internal/errors"
)

func newTestEngine() *Engine {
	return NewEngine(config.DefaultConfig().Limits)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"single expression", "Hello {name}!", []string{"name"}},
		{"multiple expressions", "{a} and {b}", []string{"a", "b"}},
		{"computed declaration", "{@total = price * qty}", []string{"@total = price * qty"}},
		{"repeat directive", "{#repeat 5}item{/repeat}", []string{"#repeat 5", "/repeat"}},
		{"no expressions", "plain text", nil},
		{"whitespace trimmed", "{ name }", []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extract(tt.text))
		})
	}
}

func TestCanonicalVarName(t *testing.T) {
	assert.Equal(t, "count", CanonicalVarName("uv-count"))
	assert.Equal(t, "count", CanonicalVarName("uv_count"))
	assert.Equal(t, "count", CanonicalVarName("count"))
}

func TestValidateTextWellFormed(t *testing.T) {
	e := newTestEngine()
	collector := errors.NewCollector()

	computed := e.ValidateText("Total: {price * qty + tax}", collector)
	assert.Equal(t, 0, computed)
	assert.False(t, collector.HasErrors())
	assert.Empty(t, collector.Warnings())
}

func TestValidateTextMalformedIsWarning(t *testing.T) {
	e := newTestEngine()
	collector := errors.NewCollector()

	e.ValidateText("{price * }", collector)
	assert.False(t, collector.HasErrors(), "bad user expressions degrade, never fail")
	assert.NotEmpty(t, collector.Warnings())
}

func TestValidateTextCountsComputedDeclarations(t *testing.T) {
	e := newTestEngine()
	collector := errors.NewCollector()

	computed := e.ValidateText("{@a = 1 + 1} {@b = a * 2} {a}", collector)
	assert.Equal(t, 2, computed)
	assert.False(t, collector.HasErrors())
}

func TestValidateTextRepeatDirective(t *testing.T) {
	e := newTestEngine()

	t.Run("within limit", func(t *testing.T) {
		collector := errors.NewCollector()
		e.ValidateText("{#repeat 10}x{/repeat}", collector)
		assert.False(t, collector.HasErrors())
	})

	t.Run("over iteration limit", func(t *testing.T) {
		collector := errors.NewCollector()
		e.ValidateText("{#repeat 5000}x{/repeat}", collector)
		assert.True(t, collector.HasErrors())
		assert.Contains(t, collector.Errors()[0], "E_LOOP_ITER")
	})

	t.Run("non-numeric count is not a directive", func(t *testing.T) {
		collector := errors.NewCollector()
		e.ValidateText("{#repeat 1e9}x", collector)
		assert.False(t, collector.HasErrors())
	})
}

func TestValidateTextExpressionLengthLimit(t *testing.T) {
	limits := config.DefaultConfig().Limits
	limits.MaxExpressionLen = 20
	e := NewEngine(limits)

	collector := errors.NewCollector()
	e.ValidateText("{"+strings.Repeat("a+", 20)+"a}", collector)

	assert.True(t, collector.HasErrors())
	assert.Contains(t, collector.Errors()[0], "E_EXPR_LEN")
}

func TestValidateTextPrefixedVariables(t *testing.T) {
	e := newTestEngine()
	collector := errors.NewCollector()

	// The clobbering prefix is stripped before compilation, so prefixed and
	// unprefixed spellings share one cache slot.
	e.ValidateText("{uv-count}", collector)
	e.ValidateText("{count}", collector)

	assert.False(t, collector.HasErrors())
	assert.Equal(t, 1, e.CacheSize())
}

func TestCheckHandler(t *testing.T) {
	e := newTestEngine()

	t.Run("plain expression", func(t *testing.T) {
		collector := errors.NewCollector()
		e.CheckHandler("item.price > 100", collector)
		assert.False(t, collector.HasErrors())
		assert.Empty(t, collector.Warnings())
	})

	t.Run("assignment form", func(t *testing.T) {
		collector := errors.NewCollector()
		e.CheckHandler("count = count + 1", collector)
		assert.False(t, collector.HasErrors())
		assert.Empty(t, collector.Warnings())
	})

	t.Run("comparison is not an assignment", func(t *testing.T) {
		collector := errors.NewCollector()
		e.CheckHandler("count == 3", collector)
		assert.Empty(t, collector.Warnings())
	})

	t.Run("malformed warns", func(t *testing.T) {
		collector := errors.NewCollector()
		e.CheckHandler("count +", collector)
		assert.NotEmpty(t, collector.Warnings())
	})

	t.Run("empty is fine", func(t *testing.T) {
		collector := errors.NewCollector()
		e.CheckHandler("  ", collector)
		assert.Empty(t, collector.Warnings())
	})
}

func TestClearResetsCache(t *testing.T) {
	e := newTestEngine()
	collector := errors.NewCollector()

	e.ValidateText("{a + b}", collector)
	assert.Equal(t, 1, e.CacheSize())

	e.Clear()
	assert.Equal(t, 0, e.CacheSize())
}

func TestEnforceComputedLimit(t *testing.T) {
	limits := config.DefaultConfig().Limits
	limits.MaxComputedVars = 10
	limits.WarnRatio = 0.7
	e := NewEngine(limits)

	t.Run("under threshold is silent", func(t *testing.T) {
		collector := errors.NewCollector()
		e.EnforceComputedLimit(5, collector)
		assert.False(t, collector.HasErrors())
		assert.Empty(t, collector.Warnings())
	})

	t.Run("near limit warns", func(t *testing.T) {
		collector := errors.NewCollector()
		e.EnforceComputedLimit(8, collector)
		assert.False(t, collector.HasErrors())
		assert.NotEmpty(t, collector.Warnings())
	})

	t.Run("over limit errors", func(t *testing.T) {
		collector := errors.NewCollector()
		e.EnforceComputedLimit(11, collector)
		assert.True(t, collector.HasErrors())
		assert.Contains(t, collector.Errors()[0], "E_COMPUTED_VARS")
	})
}
