// Package loader is the content-pack collaborator named in spec §6: it
// walks a directory of per-creature JSON files (the shape produced by
// normalizing an upstream bestiary pack), parses each into the engine's
// descriptor shape, and resolves the `{enemy_id, quantity}` pairs a
// simulation request names into repeated descriptors. The engine itself
// depends only on the resulting []engine.CreatureDescriptor — never on
// this package. internal/api is the host boundary that loads a Bestiary
// at startup and calls Resolve on every incoming request.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pf2e-sim/combat-engine/internal/engine"
)

// Bestiary holds creature descriptors indexed by enemy ID (the JSON
// file's base name, e.g. "goblin-warrior.json" -> "goblin-warrior").
type Bestiary struct {
	entries map[string]engine.CreatureDescriptor
}

// EnemyRef is one {enemy_id, quantity} pair from a simulation request
// (spec §6: "the host must resolve each enemy_id to one enemy descriptor
// and pass quantity copies into the engine").
type EnemyRef struct {
	EnemyID  string `json:"enemy_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// NewBestiary returns an empty Bestiary, for callers that want a usable
// zero-value when Load fails (e.g. the bestiary directory is absent) and
// would rather serve "unknown enemy_id" errors than refuse to start.
func NewBestiary() *Bestiary {
	return &Bestiary{entries: make(map[string]engine.CreatureDescriptor)}
}

// Load walks dir non-recursively and parses every *.json file into a
// CreatureDescriptor keyed by its file name. A file that fails to parse
// is skipped and reported, mirroring the original bestiary conversion
// script's "NOTE: the following files had errors" behavior rather than
// aborting the whole load.
func Load(dir string) (*Bestiary, []error) {
	var warnings []error

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("loader: reading bestiary dir %q: %w", dir, err)}
	}

	b := &Bestiary{entries: make(map[string]engine.CreatureDescriptor)}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("loader: reading %s: %w", entry.Name(), err))
			continue
		}

		var desc engine.CreatureDescriptor
		if err := json.Unmarshal(data, &desc); err != nil {
			warnings = append(warnings, fmt.Errorf("loader: decoding %s: %w", entry.Name(), err))
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		b.entries[id] = desc
	}

	return b, warnings
}

// Lookup returns the descriptor registered under enemyID.
func (b *Bestiary) Lookup(enemyID string) (engine.CreatureDescriptor, bool) {
	desc, ok := b.entries[enemyID]
	return desc, ok
}

// Resolve expands a list of {enemy_id, quantity} refs into a flat list of
// descriptors, one copy per requested quantity, in the order the refs
// were given. An unknown enemy_id is reported but does not abort
// resolution of the remaining refs.
func (b *Bestiary) Resolve(refs []EnemyRef) (descriptors []engine.CreatureDescriptor, warnings []error) {
	for _, ref := range refs {
		desc, ok := b.Lookup(ref.EnemyID)
		if !ok {
			warnings = append(warnings, fmt.Errorf("loader: unknown enemy_id %q", ref.EnemyID))
			continue
		}
		qty := ref.Quantity
		if qty <= 0 {
			qty = 1
		}
		for i := 0; i < qty; i++ {
			copy := desc
			if qty > 1 {
				copy.Name = fmt.Sprintf("%s #%d", desc.Name, i+1)
			}
			descriptors = append(descriptors, copy)
		}
	}
	return descriptors, warnings
}

// Len returns the number of creature descriptors currently loaded.
func (b *Bestiary) Len() int { return len(b.entries) }
