// Package compiler orchestrates the compilation pipeline: the mode state
// machine (default / enhanced / advanced), the parser-to-generator sequence
// for advanced templates, graceful fallback between modes, and the cached
// and batch entry points.
package compiler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/isleforge/isleforge/internal/ast"
	"github.com/isleforge/isleforge/internal/cache"
	"github.com/isleforge/isleforge/internal/config"
	"github.com/isleforge/isleforge/internal/errors"
	"github.com/isleforge/isleforge/internal/expression"
	"github.com/isleforge/isleforge/internal/generator"
	"github.com/isleforge/isleforge/internal/islands"
	"github.com/isleforge/isleforge/internal/logging"
	"github.com/isleforge/isleforge/internal/parser"
	"github.com/isleforge/isleforge/internal/registry"
	"github.com/isleforge/isleforge/internal/types"
)

// CompileRequest carries everything one compilation needs: the untrusted
// template text, the profile's custom CSS, page metadata for the skeleton,
// and the caller's options.
type CompileRequest struct {
	Template    string
	CustomCSS   string
	Title       string
	Description string
	Options     types.CompilationOptions
}

// Compiler sequences the pipeline stages. Safe for concurrent use: each
// compilation carries its own collector, and the shared cache guards itself.
type Compiler struct {
	cfg       *config.Config
	registry  *registry.ComponentRegistry
	sanitizer *parser.Sanitizer
	validator *ast.Validator
	expr      *expression.Engine
	cache     *cache.TemplateCache
	logger    logging.Logger
}

// New creates a compiler wired to the given registry and configuration.
func New(cfg *config.Config, reg *registry.ComponentRegistry, logger logging.Logger) *Compiler {
	return &Compiler{
		cfg:       cfg,
		registry:  reg,
		sanitizer: parser.NewSanitizer(reg, cfg.Limits.MaxTemplateSize, logger),
		validator: ast.NewValidator(reg, cfg.Limits),
		expr:      expression.NewEngine(cfg.Limits),
		cache:     cache.NewTemplateCache(cfg.Cache.MaxEntries, cfg.Cache.TTL, cfg.Cache.Version),
		logger:    logger.WithComponent("compiler"),
	}
}

// Registry exposes the component registry backing this compiler.
func (c *Compiler) Registry() *registry.ComponentRegistry {
	return c.registry
}

// RefreshSchema rebuilds the sanitizer allow-list and drops cached results
// after a registry change.
func (c *Compiler) RefreshSchema() {
	c.sanitizer.RefreshSchema()
	c.cache.Clear()
}

// Compile runs the mode state machine for one request.
func (c *Compiler) Compile(ctx context.Context, req CompileRequest) *types.CompilationResult {
	trace := uuid.NewString()
	log := c.logger.With("trace", trace, "mode", string(req.Options.Mode))

	// The expression cache is process-scoped; reset it so programs from the
	// previous compilation never leak into this one.
	c.expr.Clear()

	mode := req.Options.Mode
	if mode == "" {
		mode = types.ModeDefault
	}

	preflightErrs, preflightWarns := c.ValidateModeCompatibility(req.Template, mode)

	switch mode {
	case types.ModeDefault:
		compiled := c.compileDefault(req)
		return &types.CompilationResult{
			Success:  true,
			Compiled: compiled,
			Errors:   []string{},
			Warnings: preflightWarns,
		}

	case types.ModeEnhanced:
		compiled := c.compileEnhanced(req)
		return &types.CompilationResult{
			Success:  true,
			Compiled: compiled,
			Errors:   []string{},
			Warnings: preflightWarns,
		}

	case types.ModeAdvanced:
		if len(preflightErrs) > 0 {
			return c.fallbackResult(ctx, req, preflightErrs, preflightWarns, log)
		}
		return c.compileAdvanced(ctx, req, preflightWarns, log)

	default:
		err := errors.NewModeError("E_MODE", fmt.Sprintf("unknown compile mode %q", mode))
		return c.fallbackResult(ctx, req, []string{err.Error()}, preflightWarns, log)
	}
}

// CompileCached wraps Compile with the content-addressed cache. The key
// covers every compilation input, so changing one character of any of them
// changes the key.
func (c *Compiler) CompileCached(ctx context.Context, req CompileRequest) (*types.CompilationResult, error) {
	content := fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%s\x00%v\x00%v\x00%d",
		req.Options.Mode, req.Template, req.CustomCSS, req.Title, req.Description,
		req.Options.EnableOptimization, req.Options.EnableSEOMetadata, req.Options.MaxIslands)

	return c.cache.GetCompiledTemplateWithMetrics(content, func() (*types.CompilationResult, error) {
		return c.Compile(ctx, req), nil
	})
}

// CacheStats returns the compilation cache metrics.
func (c *Compiler) CacheStats() cache.Stats {
	return c.cache.GetStats()
}

// ClearTemplateCache drops every cached compilation.
func (c *Compiler) ClearTemplateCache() {
	c.cache.Clear()
}

// ValidateModeCompatibility is the pre-flight check: advanced without a
// template is an error; default with a template present is a non-blocking
// warning that the template will be ignored.
func (c *Compiler) ValidateModeCompatibility(template string, mode types.CompileMode) (errs []string, warnings []string) {
	errs = []string{}
	warnings = []string{}

	switch mode {
	case types.ModeAdvanced:
		if template == "" {
			errs = append(errs, errors.NewModeError(
				"E_MODE_TEMPLATE", "advanced mode requires a non-empty custom template").Error())
		}
	case types.ModeDefault:
		if template != "" {
			warnings = append(warnings,
				"default mode ignores the custom template; use advanced mode to render it")
		}
	}
	return errs, warnings
}

// ValidateTemplate is the stats side channel: it parses, normalizes, and
// structurally validates a template without running the full compilation.
func (c *Compiler) ValidateTemplate(ctx context.Context, template string) *types.ValidationResult {
	collector := errors.NewCollector()

	body, err := c.sanitizer.Parse(ctx, template)
	if err != nil {
		return &types.ValidationResult{
			IsValid:  false,
			Errors:   []string{err.Error()},
			Warnings: []string{},
			Stats:    types.TemplateStats{ComponentCounts: map[string]int{}},
		}
	}

	root := ast.Normalize(body)
	stats := c.validator.Validate(root, collector)

	return &types.ValidationResult{
		IsValid:  !collector.HasErrors(),
		Errors:   collector.Errors(),
		Warnings: collector.Warnings(),
		Stats:    stats,
	}
}

// compileAdvanced runs the full pipeline. Any hard failure, including an
// unexpected panic, degrades to an enhanced-mode fallback rather than
// leaving the caller with nothing renderable.
func (c *Compiler) compileAdvanced(ctx context.Context, req CompileRequest, preflightWarns []string, log logging.Logger) (result *types.CompilationResult) {
	start := time.Now()
	collector := errors.NewCollector()
	for _, w := range preflightWarns {
		collector.AddWarning(w)
	}

	defer func() {
		if r := recover(); r != nil {
			err := errors.NewInternalError("E_PANIC",
				fmt.Sprintf("unexpected compiler failure: %v", r), nil)
			log.Error(ctx, err, "advanced compilation panicked")
			result = c.fallbackResult(ctx, req, append(collector.Errors(), err.Error()), collector.Warnings(), log)
		}
	}()

	body, err := c.sanitizer.Parse(ctx, req.Template)
	if err != nil {
		collector.AddError(err)
		return c.fallbackResult(ctx, req, collector.Errors(), collector.Warnings(), log)
	}

	root := ast.Normalize(body)

	c.validateExpressions(root, collector)
	c.validator.Validate(root, collector)
	if collector.HasErrors() {
		return c.fallbackResult(ctx, req, collector.Errors(), collector.Warnings(), log)
	}

	maxIslands := c.cfg.Limits.MaxIslands
	if req.Options.MaxIslands > 0 && req.Options.MaxIslands < maxIslands {
		maxIslands = req.Options.MaxIslands
	}

	detector := islands.NewDetector(c.registry, c.expr, maxIslands, c.logger)
	forest, transformed, err := detector.Transform(ctx, root, collector)
	if err != nil {
		collector.AddError(err)
		return c.fallbackResult(ctx, req, collector.Errors(), collector.Warnings(), log)
	}
	// The transform records hard errors (handler expression limits, island
	// cap) on the collector rather than returning them.
	if collector.HasErrors() {
		return c.fallbackResult(ctx, req, collector.Errors(), collector.Warnings(), log)
	}

	bodyHTML := generator.Render(transformed)
	html := c.buildPage(req, bodyHTML)
	if req.Options.EnableOptimization {
		html = generator.Optimize(html)
	}

	if elapsed := time.Since(start); elapsed > c.cfg.Limits.CompileBudget {
		collector.AddWarning(fmt.Sprintf(
			"compilation took %v, over the %v budget", elapsed.Round(time.Millisecond), c.cfg.Limits.CompileBudget))
	}

	compiled := &types.CompiledTemplate{
		Mode:       types.ModeAdvanced,
		StaticHTML: html,
		Islands:    forest,
		Fallback:   c.compileEnhanced(req),
		CompiledAt: time.Now(),
		Errors:     collector.Errors(),
		Warnings:   collector.Warnings(),
	}

	log.Info(ctx, "advanced compilation complete",
		"islands", len(forest), "duration", time.Since(start))

	return &types.CompilationResult{
		Success:  true,
		Compiled: compiled,
		Errors:   collector.Errors(),
		Warnings: collector.Warnings(),
	}
}

// validateExpressions walks text nodes and expression-bearing attributes,
// compile-checking the embedded sub-language and enforcing its limits.
func (c *Compiler) validateExpressions(root *types.TemplateNode, collector *errors.Collector) {
	computed := 0
	var walk func(n *types.TemplateNode)
	walk = func(n *types.TemplateNode) {
		if n.Type == types.NodeText {
			computed += c.expr.ValidateText(n.Value, collector)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
	c.expr.EnforceComputedLimit(computed, collector)
}

// fallbackResult produces the failure envelope: success false, the
// underlying errors, a warning that a fallback was used, and a failed
// advanced CompiledTemplate whose Fallback is a fully usable enhanced
// compilation.
func (c *Compiler) fallbackResult(ctx context.Context, req CompileRequest, errs, warnings []string, log logging.Logger) *types.CompilationResult {
	warnings = append(warnings,
		"advanced compilation failed; an enhanced-mode fallback was generated")

	fallback := c.compileEnhanced(req)

	log.Warn(ctx, nil, "advanced compilation degraded to enhanced fallback",
		"errors", len(errs))

	return &types.CompilationResult{
		Success: false,
		Compiled: &types.CompiledTemplate{
			Mode:       types.ModeAdvanced,
			StaticHTML: "",
			Islands:    []*types.Island{},
			Fallback:   fallback,
			CompiledAt: time.Now(),
			Errors:     errs,
			Warnings:   warnings,
		},
		Errors:   errs,
		Warnings: warnings,
	}
}
