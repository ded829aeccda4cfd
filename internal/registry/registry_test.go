package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isleforge/isleforge/internal/types"
)

func TestRegisterAndGet(t *testing.T) {
	r := NewComponentRegistry()
	comp := &types.ComponentRegistration{Name: "ActionButton"}

	r.Register(comp)

	got, ok := r.Get("ActionButton")
	require.True(t, ok)
	assert.Same(t, comp, got)
	assert.True(t, r.IsRegistered("ActionButton"))
	assert.Equal(t, 1, r.Count())
}

func TestGetCaseInsensitive(t *testing.T) {
	r := NewComponentRegistry()
	r.Register(&types.ComponentRegistration{Name: "ActionButton"})

	// HTML parsing lowercases tags, so lookup must resolve both spellings.
	for _, name := range []string{"ActionButton", "actionbutton", "ACTIONBUTTON"} {
		got, ok := r.Get(name)
		require.True(t, ok, "lookup %q failed", name)
		assert.Equal(t, "ActionButton", got.Name)
	}
}

func TestGetMissing(t *testing.T) {
	r := NewComponentRegistry()
	_, ok := r.Get("Nope")
	assert.False(t, ok)
	assert.False(t, r.IsRegistered("Nope"))
}

func TestRemove(t *testing.T) {
	r := NewComponentRegistry()
	r.Register(&types.ComponentRegistration{Name: "ActionButton"})
	r.Remove("ActionButton")

	assert.False(t, r.IsRegistered("ActionButton"))
	assert.False(t, r.IsRegistered("actionbutton"))
	assert.Equal(t, 0, r.Count())
}

func TestReplace(t *testing.T) {
	r := NewComponentRegistry()
	r.Register(&types.ComponentRegistration{Name: "Old"})

	r.Replace([]*types.ComponentRegistration{
		{Name: "NewOne"},
		{Name: "NewTwo"},
	})

	assert.False(t, r.IsRegistered("Old"))
	assert.True(t, r.IsRegistered("NewOne"))
	assert.True(t, r.IsRegistered("newtwo"))
	assert.Equal(t, 2, r.Count())
}

func TestWatchReceivesEvents(t *testing.T) {
	r := NewComponentRegistry()
	ch := r.Watch()
	defer r.UnWatch(ch)

	r.Register(&types.ComponentRegistration{Name: "A"})
	event := <-ch
	assert.Equal(t, EventTypeAdded, event.Type)
	assert.Equal(t, "A", event.Component.Name)

	r.Register(&types.ComponentRegistration{Name: "A"})
	event = <-ch
	assert.Equal(t, EventTypeUpdated, event.Type)

	r.Remove("A")
	event = <-ch
	assert.Equal(t, EventTypeRemoved, event.Type)
}

func TestBuiltinRegistry(t *testing.T) {
	r := NewBuiltinRegistry()

	for _, name := range []string{
		"ProfileText", "ProfileImage", "ActionButton", "LinkGrid",
		"LinkCard", "ItemList", "KeyHandler", "DebouncedInput",
	} {
		assert.True(t, r.IsRegistered(name), "builtin %s missing", name)
	}

	// Spot-check a schema detail downstream coercion relies on.
	grid, ok := r.Get("LinkGrid")
	require.True(t, ok)
	require.NotNil(t, grid.Relationship)
	assert.Equal(t, []string{"LinkCard"}, grid.Relationship.AcceptsOnly)

	card, ok := r.Get("LinkCard")
	require.True(t, ok)
	assert.Equal(t, "LinkGrid", card.Relationship.RequiresParent)
}
