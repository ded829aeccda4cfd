// Package expression validates the reactive expression sub-language embedded
// in templates: {variable} interpolations, {@name = expr} computed variable
// declarations, {#repeat n} loop directives, and handler expressions carried
// on component props. Runtime evaluation belongs to the hydration layer; the
// compiler only proves expressions are well-formed and within limits.
package expression

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/isleforge/isleforge/internal/config"
	"github.com/isleforge/isleforge/internal/errors"
)

// clobberPrefix guards variable names against DOM clobbering in the hosting
// page; authored references carry it, canonical names do not.
const clobberPrefix = "uv-"

var (
	// exprPattern matches a single {...} expression in text content.
	exprPattern = regexp.MustCompile(`\{([^{}]+)\}`)
	// computedPattern matches a computed variable declaration {@name = expr}.
	computedPattern = regexp.MustCompile(`^@\s*([A-Za-z_][A-Za-z0-9_-]*)\s*=\s*(.+)$`)
	// repeatPattern matches a loop directive {#repeat n}.
	repeatPattern = regexp.MustCompile(`^#repeat\s+(\d+)$`)
)

// Engine compile-checks expressions and caches the compiled programs. The
// cache is process-scoped and must be reset at the start of each compilation
// via Clear, never left as an ambient accumulating global.
type Engine struct {
	limits   config.LimitsConfig
	programs map[string]*vm.Program
	mutex    sync.Mutex
}

// NewEngine creates an expression engine bound to the configured limits.
func NewEngine(limits config.LimitsConfig) *Engine {
	return &Engine{
		limits:   limits,
		programs: make(map[string]*vm.Program),
	}
}

// Clear resets the compiled-program cache. Called at the start of every
// compilation so one template's programs never leak into the next.
func (e *Engine) Clear() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.programs = make(map[string]*vm.Program)
}

// CacheSize reports the number of cached compiled programs.
func (e *Engine) CacheSize() int {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return len(e.programs)
}

// CanonicalVarName strips the DOM-clobbering-prevention prefix from a
// variable reference. Unprefixed names pass through unchanged.
func CanonicalVarName(name string) string {
	name = strings.TrimPrefix(name, clobberPrefix)
	return strings.TrimPrefix(name, "uv_")
}

// Extract returns the raw expression bodies found in a text value.
func Extract(text string) []string {
	matches := exprPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// ValidateText checks every expression embedded in a text value, recording
// limit violations as errors and malformed expressions as warnings (the
// input is end-user content; one bad expression must not break the page).
// It returns the number of computed variable declarations seen.
func (e *Engine) ValidateText(text string, collector *errors.Collector) int {
	computed := 0
	for _, body := range Extract(text) {
		if len(body) > e.limits.MaxExpressionLen {
			collector.AddError(errors.NewLimitError(
				"E_EXPR_LEN", "expression length", len(body), e.limits.MaxExpressionLen))
			continue
		}

		if m := repeatPattern.FindStringSubmatch(body); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 0 {
				collector.AddWarning(fmt.Sprintf("invalid repeat count in {%s}", body))
				continue
			}
			if n > e.limits.MaxLoopIterations {
				collector.AddError(errors.NewLimitError(
					"E_LOOP_ITER", "loop iteration count", n, e.limits.MaxLoopIterations))
			}
			continue
		}

		if m := computedPattern.FindStringSubmatch(body); m != nil {
			computed++
			e.checkExpression(m[2], collector)
			continue
		}

		// Closing directive forms carry no expression.
		if strings.HasPrefix(body, "/") || strings.HasPrefix(body, "#") {
			continue
		}

		e.checkExpression(body, collector)
	}
	return computed
}

// assignPattern matches the handler assignment form "name = expr". The
// runtime executes the assignment; the compiler only checks the right side.
var assignPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)\s*=([^=].*)$`)

// CheckHandler validates an event-handler or filter expression carried on a
// component prop. Handlers may be plain expressions or single assignments.
func (e *Engine) CheckHandler(expression string, collector *errors.Collector) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return
	}
	if len(expression) > e.limits.MaxExpressionLen {
		collector.AddError(errors.NewLimitError(
			"E_EXPR_LEN", "expression length", len(expression), e.limits.MaxExpressionLen))
		return
	}
	if m := assignPattern.FindStringSubmatch(expression); m != nil {
		e.checkExpression(m[2], collector)
		return
	}
	e.checkExpression(expression, collector)
}

// checkExpression compile-checks one expression body, caching the program.
// Variable references are normalized before compilation so prefixed and
// unprefixed forms share one cache slot.
func (e *Engine) checkExpression(body string, collector *errors.Collector) {
	body = CanonicalVarName(strings.TrimSpace(body))
	if body == "" {
		return
	}

	e.mutex.Lock()
	_, cached := e.programs[body]
	e.mutex.Unlock()
	if cached {
		return
	}

	program, err := expr.Compile(body, expr.AllowUndefinedVariables())
	if err != nil {
		collector.AddWarning(fmt.Sprintf("invalid expression {%s}: %v", body, err))
		return
	}

	e.mutex.Lock()
	e.programs[body] = program
	e.mutex.Unlock()
}

// EnforceComputedLimit records a hard error when the number of computed
// variable declarations across the template exceeds the limit.
func (e *Engine) EnforceComputedLimit(total int, collector *errors.Collector) {
	if total > e.limits.MaxComputedVars {
		collector.AddError(errors.NewLimitError(
			"E_COMPUTED_VARS", "computed variable count", total, e.limits.MaxComputedVars))
		return
	}
	threshold := int(float64(e.limits.MaxComputedVars) * e.limits.WarnRatio)
	if threshold > 0 && total > threshold {
		collector.AddWarning(fmt.Sprintf(
			"computed variable count %d is approaching the limit of %d",
			total, e.limits.MaxComputedVars))
	}
}
