package cache

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isleforge/isleforge/internal/types"
)

func okResult(html string) *types.CompilationResult {
	return &types.CompilationResult{
		Success:  true,
		Compiled: &types.CompiledTemplate{Mode: types.ModeAdvanced, StaticHTML: html},
	}
}

func compileCounting(counter *int, result *types.CompilationResult) func() (*types.CompilationResult, error) {
	return func() (*types.CompilationResult, error) {
		*counter++
		return result, nil
	}
}

func TestCacheMissThenHit(t *testing.T) {
	tc := NewTemplateCache(10, time.Minute, "v2")
	compiles := 0

	first, err := tc.GetCompiledTemplateWithMetrics("content", compileCounting(&compiles, okResult("<p>a</p>")))
	require.NoError(t, err)
	second, err := tc.GetCompiledTemplateWithMetrics("content", compileCounting(&compiles, okResult("other")))
	require.NoError(t, err)

	assert.Equal(t, 1, compiles, "second call must be served from cache")
	assert.Same(t, first, second)

	stats := tc.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0.5, stats.HitRate)
	assert.Equal(t, 1, stats.CacheSize)
}

func TestCacheKeyContentAddressed(t *testing.T) {
	tc := NewTemplateCache(10, time.Minute, "v2")

	a := tc.Key("hello world")
	b := tc.Key("hello world!")

	assert.NotEqual(t, a, b, "one changed character must change the key")
	assert.True(t, strings.HasPrefix(a, "v2-"))
	assert.Len(t, a, len("v2-")+16)

	// Same content, same key, every time.
	assert.Equal(t, a, tc.Key("hello world"))
}

func TestCacheVersionInvalidates(t *testing.T) {
	v1 := NewTemplateCache(10, time.Minute, "v1")
	v2 := NewTemplateCache(10, time.Minute, "v2")
	assert.NotEqual(t, v1.Key("same content"), v2.Key("same content"))
}

func TestCacheNeverStoresFailures(t *testing.T) {
	tc := NewTemplateCache(10, time.Minute, "v2")
	compiles := 0

	failed := &types.CompilationResult{Success: false}
	for i := 0; i < 3; i++ {
		result, err := tc.GetCompiledTemplateWithMetrics("bad", compileCounting(&compiles, failed))
		require.NoError(t, err)
		assert.False(t, result.Success)
	}

	assert.Equal(t, 3, compiles, "failed results must be recompiled every time")
	assert.Equal(t, 0, tc.GetStats().CacheSize)
}

func TestCacheCompileErrorPropagates(t *testing.T) {
	tc := NewTemplateCache(10, time.Minute, "v2")

	_, err := tc.GetCompiledTemplateWithMetrics("x", func() (*types.CompilationResult, error) {
		return nil, fmt.Errorf("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, tc.GetStats().CacheSize)
}

func TestCacheTTLExpiry(t *testing.T) {
	tc := NewTemplateCache(10, 10*time.Millisecond, "v2")
	compiles := 0

	_, err := tc.GetCompiledTemplateWithMetrics("x", compileCounting(&compiles, okResult("a")))
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, err = tc.GetCompiledTemplateWithMetrics("x", compileCounting(&compiles, okResult("a")))
	require.NoError(t, err)
	assert.Equal(t, 2, compiles, "expired entry must be recompiled")
}

func TestCacheLRUEviction(t *testing.T) {
	tc := NewTemplateCache(2, time.Minute, "v2")
	compiles := 0

	fill := func(content string) {
		_, err := tc.GetCompiledTemplateWithMetrics(content, compileCounting(&compiles, okResult(content)))
		require.NoError(t, err)
	}

	fill("a")
	fill("b")
	// Touch "a" so "b" becomes least recently used.
	fill("a")
	require.Equal(t, 2, compiles)

	// Inserting "c" evicts "b".
	fill("c")
	assert.Equal(t, int64(1), tc.GetEvictions())

	fill("a") // still cached
	assert.Equal(t, 3, compiles)
	fill("b") // evicted, recompiles
	assert.Equal(t, 4, compiles)
}

func TestCacheClear(t *testing.T) {
	tc := NewTemplateCache(10, time.Minute, "v2")
	compiles := 0

	_, err := tc.GetCompiledTemplateWithMetrics("x", compileCounting(&compiles, okResult("a")))
	require.NoError(t, err)

	tc.Clear()

	stats := tc.GetStats()
	assert.Equal(t, 0, stats.CacheSize)
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)

	_, err = tc.GetCompiledTemplateWithMetrics("x", compileCounting(&compiles, okResult("a")))
	require.NoError(t, err)
	assert.Equal(t, 2, compiles)
}

func TestCacheStatsAverageCompileTime(t *testing.T) {
	tc := NewTemplateCache(10, time.Minute, "v2")

	_, err := tc.GetCompiledTemplateWithMetrics("x", func() (*types.CompilationResult, error) {
		time.Sleep(2 * time.Millisecond)
		return okResult("a"), nil
	})
	require.NoError(t, err)

	stats := tc.GetStats()
	assert.Greater(t, stats.AvgCompilationMs, 0.0)
	assert.Equal(t, 10, stats.MaxCacheSize)
}

func TestCacheConcurrentAccess(t *testing.T) {
	tc := NewTemplateCache(50, time.Minute, "v2")

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				content := fmt.Sprintf("template-%d", i%10)
				_, err := tc.GetCompiledTemplateWithMetrics(content, func() (*types.CompilationResult, error) {
					return okResult(content), nil
				})
				assert.NoError(t, err)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	stats := tc.GetStats()
	assert.Equal(t, int64(800), stats.Hits+stats.Misses)
	assert.LessOrEqual(t, stats.CacheSize, 10)
}
