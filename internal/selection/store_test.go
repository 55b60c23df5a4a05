package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreDefaults(t *testing.T) {
	persist := NewMemoryPersistence()

	store, err := NewStore(persist)
	require.NoError(t, err)

	state := store.State()
	assert.Equal(t, DefaultOperator, state.Active)
	assert.Equal(t, []string{DefaultOperator}, state.Comparison)

	// The default is written through immediately.
	saved, found, err := persist.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, DefaultOperator, saved.Active)
}

func TestNewStoreLoadsPersisted(t *testing.T) {
	persist := NewMemoryPersistence()
	require.NoError(t, persist.Save(State{Active: "KZK", Comparison: []string{"KZK", "LUZ"}}))

	store, err := NewStore(persist)
	require.NoError(t, err)

	state := store.State()
	assert.Equal(t, "KZK", state.Active)
	assert.Equal(t, []string{"KZK", "LUZ"}, state.Comparison)
}

func TestSetActive(t *testing.T) {
	persist := NewMemoryPersistence()
	store, err := NewStore(persist)
	require.NoError(t, err)

	require.NoError(t, store.SetActive("KZK"))
	assert.Equal(t, "KZK", store.State().Active)

	saved, _, _ := persist.Load()
	assert.Equal(t, "KZK", saved.Active)

	// Clearing persists an empty active operator.
	require.NoError(t, store.SetActive(""))
	assert.Empty(t, store.State().Active)
	saved, _, _ = persist.Load()
	assert.Empty(t, saved.Active)
}

func TestToggleComparison(t *testing.T) {
	store, err := NewStore(NewMemoryPersistence())
	require.NoError(t, err)

	require.NoError(t, store.ToggleComparison("KZK"))
	assert.Equal(t, []string{"LUZ", "KZK"}, store.State().Comparison, "insertion order preserved")

	require.NoError(t, store.ToggleComparison("LUZ"))
	assert.Equal(t, []string{"KZK"}, store.State().Comparison)
}

func TestToggleNeverEmptiesSet(t *testing.T) {
	store, err := NewStore(NewMemoryPersistence())
	require.NoError(t, err)
	require.Equal(t, []string{DefaultOperator}, store.State().Comparison)

	// Removing the only member leaves the set unchanged.
	require.NoError(t, store.ToggleComparison(DefaultOperator))
	assert.Equal(t, []string{DefaultOperator}, store.State().Comparison)
}

func TestSubscribeNotifiedAfterMutation(t *testing.T) {
	store, err := NewStore(NewMemoryPersistence())
	require.NoError(t, err)

	var seen []State
	store.Subscribe(func(s State) { seen = append(seen, s) })

	require.NoError(t, store.SetActive("KZK"))
	require.NoError(t, store.ToggleComparison("KZK"))

	require.Len(t, seen, 2)
	assert.Equal(t, "KZK", seen[0].Active)
	assert.Equal(t, []string{"LUZ", "KZK"}, seen[1].Comparison)

	// A no-op toggle does not notify.
	seen = nil
	require.NoError(t, store.SetActive("KZK"))
	assert.Empty(t, seen)
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	store, err := NewStore(NewMemoryPersistence())
	require.NoError(t, err)

	state := store.State()
	state.Comparison[0] = "mutated"
	assert.Equal(t, []string{DefaultOperator}, store.State().Comparison)
}

type failingPersistence struct{ loadErr, saveErr error }

func (f failingPersistence) Load() (State, bool, error) { return State{}, false, f.loadErr }
func (f failingPersistence) Save(State) error           { return f.saveErr }

func TestNewStorePersistenceErrors(t *testing.T) {
	_, err := NewStore(failingPersistence{loadErr: errors.New("boom")})
	assert.Error(t, err)

	_, err = NewStore(failingPersistence{saveErr: errors.New("boom")})
	assert.Error(t, err)
}
