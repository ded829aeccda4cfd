package islands

import (
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/isleforge/isleforge/internal/types"
)

// Positioning defaults applied when legacy formats omit dimensions.
const (
	defaultWidth  = 200
	defaultHeight = 150
	defaultZIndex = 1
)

// positioningAttrNames are the attributes consumed by positioning
// resolution; they are removed from the prop set once a canonical form is
// chosen so no island carries more than one representation.
var positioningAttrNames = []string{
	"data-position",
	"data-x", "data-y", "data-width", "data-height", "data-z-index",
	"data-grid-column", "data-grid-row", "data-grid-span", "data-grid-breakpoint",
	"data-responsive",
	"x", "y", "width", "height",
}

// positionStrategy attempts to read one historical positioning format.
// Strategies are tried in priority order; the first match wins.
type positionStrategy func(attrs map[string]string) (*types.Positioning, bool)

var positionStrategies = []positionStrategy{
	parseStructuredPayload,
	parseLegacyAbsolute,
	parseLegacyGrid,
	parseSimpleXY,
}

// ResolvePositioning reconciles the historical positioning formats into one
// canonical form and strips the consumed attributes from the map. Returns
// nil when the node carries no positioning data at all.
func ResolvePositioning(attrs map[string]string) *types.Positioning {
	var resolved *types.Positioning
	for _, strategy := range positionStrategies {
		if pos, ok := strategy(attrs); ok {
			resolved = pos
			break
		}
	}
	if resolved == nil {
		return nil
	}
	for _, name := range positioningAttrNames {
		delete(attrs, name)
	}
	return resolved
}

// parseStructuredPayload reads the current format: a JSON payload in
// data-position, HTML-entity-unescaped, used verbatim.
func parseStructuredPayload(attrs map[string]string) (*types.Positioning, bool) {
	payload, ok := attrs["data-position"]
	if !ok || strings.TrimSpace(payload) == "" {
		return nil, false
	}
	var pos types.Positioning
	if err := json.Unmarshal([]byte(html.UnescapeString(payload)), &pos); err != nil {
		return nil, false
	}
	return &pos, true
}

// parseLegacyAbsolute reads the oldest format: absolute pixel data
// attributes with documented default fill-ins.
func parseLegacyAbsolute(attrs map[string]string) (*types.Positioning, bool) {
	x, okX := numAttr(attrs, "data-x")
	y, okY := numAttr(attrs, "data-y")
	if !okX && !okY {
		return nil, false
	}

	pos := &types.Positioning{
		Mode:   "absolute",
		X:      x,
		Y:      y,
		Width:  defaultWidth,
		Height: defaultHeight,
		ZIndex: defaultZIndex,
	}
	if w, ok := numAttr(attrs, "data-width"); ok {
		pos.Width = w
	}
	if h, ok := numAttr(attrs, "data-height"); ok {
		pos.Height = h
	}
	if z, ok := numAttr(attrs, "data-z-index"); ok {
		pos.ZIndex = int(z)
	}
	return pos, true
}

// parseLegacyGrid reads the grid-era format.
func parseLegacyGrid(attrs map[string]string) (*types.Positioning, bool) {
	col, okC := numAttr(attrs, "data-grid-column")
	row, okR := numAttr(attrs, "data-grid-row")
	if !okC && !okR {
		return nil, false
	}

	pos := &types.Positioning{
		Mode:   "grid",
		Column: int(col),
		Row:    int(row),
		Span:   1,
	}
	if span, ok := numAttr(attrs, "data-grid-span"); ok && span > 0 {
		pos.Span = int(span)
	}
	if bp, ok := attrs["data-grid-breakpoint"]; ok {
		pos.Breakpoint = bp
	}
	return pos, true
}

// parseSimpleXY reads plain x/y attributes, optionally with dimensions and
// a responsive flag. With the flag set the placement becomes the desktop
// breakpoint of a responsive shape instead of a flat absolute one.
func parseSimpleXY(attrs map[string]string) (*types.Positioning, bool) {
	x, okX := numAttr(attrs, "x")
	y, okY := numAttr(attrs, "y")
	if !okX && !okY {
		return nil, false
	}

	abs := &types.Positioning{
		Mode:   "absolute",
		X:      x,
		Y:      y,
		Width:  defaultWidth,
		Height: defaultHeight,
		ZIndex: defaultZIndex,
	}
	if w, ok := numAttr(attrs, "width"); ok {
		abs.Width = w
	}
	if h, ok := numAttr(attrs, "height"); ok {
		abs.Height = h
	}

	if responsive(attrs) {
		return &types.Positioning{
			Breakpoints: map[string]*types.Positioning{"desktop": abs},
		}, true
	}
	return abs, true
}

func responsive(attrs map[string]string) bool {
	v, ok := attrs["data-responsive"]
	if !ok {
		return false
	}
	return v == "" || strings.EqualFold(v, "true") || v == "1"
}

func numAttr(attrs map[string]string, name string) (float64, bool) {
	raw, ok := attrs[name]
	if !ok {
		return 0, false
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
