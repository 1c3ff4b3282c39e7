// Package content loads the static game catalogues: charms, runes, boss
// effects, pouches, and the hand table.
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dicebound/internal/game/boss"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/enhance"
	"github.com/cory-johannsen/dicebound/internal/game/hand"
)

//go:embed data/*.yaml
var embedded embed.FS

// DiceGrant adds Count dice of Color to the starting bag.
type DiceGrant struct {
	Color dice.Color `yaml:"color"`
	Count int        `yaml:"count"`
}

// Pouch is a starting-loadout choice.
type Pouch struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Hands       int         `yaml:"hands"`
	Discards    int         `yaml:"discards"`
	Coins       int         `yaml:"coins"`
	Dice        []DiceGrant `yaml:"dice"`
	RandomDice  int         `yaml:"random_dice"`
	Charms      int         `yaml:"charms"`
}

// Validate checks the pouch invariants.
func (p *Pouch) Validate() error {
	var errs []string
	if p.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if p.Hands < 0 || p.Discards < 0 || p.Coins < 0 || p.RandomDice < 0 || p.Charms < 0 {
		errs = append(errs, "bonuses must be >= 0")
	}
	for _, g := range p.Dice {
		if !g.Color.Valid() || g.Count <= 0 {
			errs = append(errs, fmt.Sprintf("invalid dice grant %s x%d", g.Color, g.Count))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("pouch %q: %s", p.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Catalogue holds every static definition keyed by id.
type Catalogue struct {
	Charms  map[string]*charm.Def
	Runes   map[string]*enhance.Def
	Bosses  map[string]*boss.Def
	Pouches map[string]*Pouch
	Hands   hand.Table
}

type files struct {
	Charms  []*charm.Def   `yaml:"charms"`
	Runes   []*enhance.Def `yaml:"runes"`
	Bosses  []*boss.Def    `yaml:"bosses"`
	Pouches []*Pouch       `yaml:"pouches"`
	Hands   hand.Table     `yaml:"hands"`
}

func newCatalogue() *Catalogue {
	return &Catalogue{
		Charms:  make(map[string]*charm.Def),
		Runes:   make(map[string]*enhance.Def),
		Bosses:  make(map[string]*boss.Def),
		Pouches: make(map[string]*Pouch),
		Hands:   hand.StandardTable(),
	}
}

// Default returns the embedded catalogue.
//
// Postcondition: Returns a validated Catalogue or a non-nil error.
func Default() (*Catalogue, error) {
	c := newCatalogue()
	if err := c.load(embedded, "data"); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDirectory returns the embedded catalogue overlaid with every *.yaml file
// in dir. Definitions in dir replace embedded ones with the same id; a hands
// table replaces rows per hand type.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a validated Catalogue or a non-nil error.
func LoadDirectory(dir string) (*Catalogue, error) {
	c := newCatalogue()
	if err := c.load(embedded, "data"); err != nil {
		return nil, err
	}
	if err := c.load(os.DirFS(dir), "."); err != nil {
		return nil, fmt.Errorf("content dir %q: %w", dir, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalogue) load(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("reading content dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.ToSlash(filepath.Join(dir, e.Name()))
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		var f files
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, d := range f.Charms {
			c.Charms[d.ID] = d
		}
		for _, d := range f.Runes {
			c.Runes[d.ID] = d
		}
		for _, d := range f.Bosses {
			c.Bosses[d.ID] = d
		}
		for _, p := range f.Pouches {
			c.Pouches[p.ID] = p
		}
		for h, row := range f.Hands {
			c.Hands[h] = row
		}
	}
	return nil
}

// Validate checks every definition and the cross-catalogue requirements.
//
// Postcondition: Returns nil, or an error naming every violation.
func (c *Catalogue) Validate() error {
	var errs []error
	for _, id := range sortedKeys(c.Charms) {
		errs = append(errs, c.Charms[id].Validate())
	}
	for _, id := range sortedKeys(c.Runes) {
		errs = append(errs, c.Runes[id].Validate())
	}
	for _, id := range sortedKeys(c.Bosses) {
		errs = append(errs, c.Bosses[id].Validate())
	}
	for _, id := range sortedKeys(c.Pouches) {
		errs = append(errs, c.Pouches[id].Validate())
	}
	errs = append(errs, c.Hands.Validate())
	if len(c.Bosses) == 0 {
		errs = append(errs, errors.New("boss catalogue is empty"))
	}
	if len(c.Runes) == 0 {
		errs = append(errs, errors.New("rune catalogue is empty"))
	}
	if len(c.CharmsByRarity(charm.Common)) == 0 {
		errs = append(errs, errors.New("charm catalogue has no common charms"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("content validation failed: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CharmList returns every charm definition sorted by id.
func (c *Catalogue) CharmList() []*charm.Def {
	out := make([]*charm.Def, 0, len(c.Charms))
	for _, id := range sortedKeys(c.Charms) {
		out = append(out, c.Charms[id])
	}
	return out
}

// CharmsByRarity returns the charm definitions of rarity r sorted by id.
func (c *Catalogue) CharmsByRarity(r charm.Rarity) []*charm.Def {
	var out []*charm.Def
	for _, d := range c.CharmList() {
		if d.Rarity == r {
			out = append(out, d)
		}
	}
	return out
}

// RuneList returns every rune definition sorted by id.
func (c *Catalogue) RuneList() []*enhance.Def {
	out := make([]*enhance.Def, 0, len(c.Runes))
	for _, id := range sortedKeys(c.Runes) {
		out = append(out, c.Runes[id])
	}
	return out
}

// BossList returns every boss definition sorted by id.
func (c *Catalogue) BossList() []*boss.Def {
	out := make([]*boss.Def, 0, len(c.Bosses))
	for _, id := range sortedKeys(c.Bosses) {
		out = append(out, c.Bosses[id])
	}
	return out
}

// PouchList returns every pouch sorted by id.
func (c *Catalogue) PouchList() []*Pouch {
	out := make([]*Pouch, 0, len(c.Pouches))
	for _, id := range sortedKeys(c.Pouches) {
		out = append(out, c.Pouches[id])
	}
	return out
}
