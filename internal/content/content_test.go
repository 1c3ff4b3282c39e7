package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicebound/internal/content"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/enhance"
	"github.com/cory-johannsen/dicebound/internal/game/hand"
)

func TestDefault_LoadsAndValidates(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(c.Charms), 30)
	assert.GreaterOrEqual(t, len(c.Bosses), 28)
	assert.GreaterOrEqual(t, len(c.Runes), 24)
	assert.Len(t, c.Pouches, 8)
	assert.Equal(t, hand.StandardTable(), c.Hands)
}

func TestDefault_EveryCharmKindIsCatalogued(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)
	kinds := map[charm.Kind]bool{}
	for _, d := range c.Charms {
		kinds[d.Kind] = true
	}
	for _, k := range charm.Kinds {
		assert.True(t, kinds[k], "kind %s has no charm", k)
	}
}

func TestDefault_FoolAndTransmute(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)
	fool, ok := c.Runes["fool"]
	require.True(t, ok)
	assert.Equal(t, enhance.Fool, fool.Kind)
	assert.False(t, fool.NeedsDice())
	tr := c.Runes["transmute"]
	assert.Equal(t, 2, tr.MinDice)
	assert.Equal(t, 2, tr.MaxDice)
}

func TestLists_AreSorted(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)
	list := c.BossList()
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
	assert.NotEmpty(t, c.CharmsByRarity(charm.Common))
	assert.Len(t, c.PouchList(), 8)
	assert.Len(t, c.RuneList(), len(c.Runes))
}

func TestLoadDirectory_OverridesAndAdds(t *testing.T) {
	dir := t.TempDir()
	data := `
charms:
  - id: pebble
    name: Boulder
    cost: 9
    rarity: rare
    kind: flat_chips
    chips: 90
hands:
  pair: {base: 20, mono: 1, rainbow: 0.5}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(data), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.yaml"), nil, 0o644))

	c, err := content.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, "Boulder", c.Charms["pebble"].Name)
	assert.Equal(t, 20, c.Hands[hand.Pair].Base)
	assert.Equal(t, 250, c.Hands[hand.FiveOfAKind].Base)
}

func TestLoadDirectory_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("charms:\n  - id: x\n    colour: red\n"), 0o644))
	_, err := content.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_InvalidDefinitionRejected(t *testing.T) {
	dir := t.TempDir()
	data := "bosses:\n  - {id: the_void, name: The Void, difficulty: 1, kind: swallow}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(data), 0o644))
	_, err := content.LoadDirectory(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "the_void")
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	_, err := content.LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
