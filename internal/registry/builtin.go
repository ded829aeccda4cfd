package registry

import "github.com/isleforge/isleforge/internal/types"

func num(v float64) *float64 { return &v }

// BuiltinRegistrations returns the default component vocabulary. A hosting
// application usually extends this set from a registry YAML file; the
// builtins cover the component kinds every profile template relies on.
func BuiltinRegistrations() []*types.ComponentRegistration {
	return []*types.ComponentRegistration{
		{
			Name:        "ProfileText",
			Description: "Rich text block with reactive variable interpolation",
			Props: map[string]types.PropSchema{
				"content":  {Kind: types.PropString, Default: "Add your text here"},
				"align":    {Kind: types.PropEnum, Values: []string{"left", "center", "right", "justify"}, Default: "left"},
				"fontSize": {Kind: types.PropNumber, Min: num(8), Max: num(96), Default: float64(16)},
			},
			Relationship: &types.Relationship{
				Kind:            types.RelationshipText,
				AcceptsChildren: true,
			},
		},
		{
			Name:        "ProfileImage",
			Description: "Image with sizing and alt text",
			Props: map[string]types.PropSchema{
				"src":      {Kind: types.PropString, Required: true},
				"alt":      {Kind: types.PropString, Default: ""},
				"width":    {Kind: types.PropNumber, Min: num(16), Max: num(1920)},
				"height":   {Kind: types.PropNumber, Min: num(16), Max: num(1920)},
				"rounded":  {Kind: types.PropBool, Default: false},
				"fit":      {Kind: types.PropEnum, Values: []string{"cover", "contain", "fill"}, Default: "cover"},
			},
			Relationship: &types.Relationship{Kind: types.RelationshipLeaf},
		},
		{
			Name:        "ActionButton",
			Description: "Clickable button bound to an event handler expression",
			Props: map[string]types.PropSchema{
				"label":    {Kind: types.PropString, Required: true, Default: "Click"},
				"variant":  {Kind: types.PropEnum, Values: []string{"primary", "secondary", "ghost"}, Default: "primary"},
				"onClick":  {Kind: types.PropString},
				"disabled": {Kind: types.PropBool, Default: false},
			},
			Relationship: &types.Relationship{Kind: types.RelationshipLeaf},
		},
		{
			Name:        "LinkGrid",
			Description: "Responsive grid of link cards",
			Props: map[string]types.PropSchema{
				"columns": {Kind: types.PropNumber, Min: num(1), Max: num(6), Default: float64(3)},
				"gap":     {Kind: types.PropNumber, Min: num(0), Max: num(64), Default: float64(12)},
			},
			Relationship: &types.Relationship{
				Kind:            types.RelationshipContainer,
				AcceptsChildren: true,
				AcceptsOnly:     []string{"LinkCard"},
				MinChildren:     1,
			},
		},
		{
			Name:        "LinkCard",
			Description: "Single link tile inside a LinkGrid",
			Props: map[string]types.PropSchema{
				"title": {Kind: types.PropString, Required: true},
				"href":  {Kind: types.PropString, Required: true},
				"icon":  {Kind: types.PropString},
			},
			Relationship: &types.Relationship{
				Kind:           types.RelationshipChild,
				RequiresParent: "LinkGrid",
			},
		},
		{
			Name:        "ItemList",
			Description: "Loop over a data source with an optional filter expression",
			Props: map[string]types.PropSchema{
				"source": {Kind: types.PropString, Required: true},
				"where":  {Kind: types.PropString},
				"limit":  {Kind: types.PropNumber, Min: num(1), Max: num(100), Default: float64(20)},
				"empty":  {Kind: types.PropString, Default: "Nothing here yet"},
			},
			Relationship: &types.Relationship{
				Kind:            types.RelationshipParent,
				AcceptsChildren: true,
			},
		},
		{
			Name:        "KeyHandler",
			Description: "Binds a keyboard shortcut to an action expression",
			Props: map[string]types.PropSchema{
				"key":    {Kind: types.PropString, Required: true},
				"action": {Kind: types.PropString, Required: true},
			},
			Relationship: &types.Relationship{Kind: types.RelationshipLeaf},
		},
		{
			Name:        "DebouncedInput",
			Description: "Text input writing to a reactive variable after a debounce interval",
			Props: map[string]types.PropSchema{
				"name":        {Kind: types.PropString, Required: true},
				"placeholder": {Kind: types.PropString, Default: ""},
				"debounce":    {Kind: types.PropNumber, Min: num(0), Max: num(5000), Default: float64(300)},
			},
			Relationship: &types.Relationship{Kind: types.RelationshipLeaf},
		},
	}
}

// NewBuiltinRegistry creates a registry preloaded with the default
// component vocabulary.
func NewBuiltinRegistry() *ComponentRegistry {
	r := NewComponentRegistry()
	for _, reg := range BuiltinRegistrations() {
		r.Register(reg)
	}
	return r
}
