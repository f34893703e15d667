package engine

import "sort"

// DefaultMaxRounds is the round-cap mitigation from spec §5 / §9's resolved
// open question: "the spec recommends a 1,000-round fuse producing a
// draw winner to prevent pathological loops."
const DefaultMaxRounds = 1000

// Encounter holds the combined combatant roster for one fight (§3, §4.4).
type Encounter struct {
	Players   []*Creature
	Enemies   []*Creature
	Creatures []*Creature // union, sorted by (initiative desc, team desc)

	Round  int
	Winner string // "players" | "enemies" | "draw" | ""

	MaxRounds int

	// Simulation is a non-owning back-reference used by creatures to
	// reach the shared log and PRNG (§9).
	Simulation *Simulation
}

// NewEncounter constructs an Encounter per §4.4: concatenate players and
// enemies, position players along x=0 and enemies along x=10 (y
// incrementing per creature), join each to the encounter (rolling
// initiative), then sort by initiative desc with team-2 winning ties.
func NewEncounter(players, enemies []*Creature, sim *Simulation) *Encounter {
	enc := &Encounter{
		Players:    players,
		Enemies:    enemies,
		Simulation: sim,
		MaxRounds:  DefaultMaxRounds,
	}

	for i, p := range players {
		p.X, p.Y = 0, i
		p.JoinEncounter(enc, sim.Rng)
	}
	for i, e := range enemies {
		e.X, e.Y = 10, i
		e.JoinEncounter(enc, sim.Rng)
	}

	enc.Creatures = make([]*Creature, 0, len(players)+len(enemies))
	enc.Creatures = append(enc.Creatures, players...)
	enc.Creatures = append(enc.Creatures, enemies...)

	sort.SliceStable(enc.Creatures, func(i, j int) bool {
		a, b := enc.Creatures[i], enc.Creatures[j]
		if a.Initiative != b.Initiative {
			return a.Initiative > b.Initiative
		}
		return a.Team > b.Team // team 2 (enemy) wins ties
	})

	return enc
}

// CheckWinner implements §4.4's win detection.
func (e *Encounter) CheckWinner() string {
	if len(e.Players) == 0 {
		return "enemies"
	}
	if len(e.Enemies) == 0 {
		return "players"
	}
	return ""
}

// RemoveCreature removes a creature from its side list and the combined
// list (§4.4). The round loop tolerates this because it iterates a
// round-start snapshot and re-checks IsDead before each turn (§9).
func (e *Encounter) RemoveCreature(c *Creature) {
	switch c.Team {
	case 1:
		e.Players = removeFromSlice(e.Players, c)
	case 2:
		e.Enemies = removeFromSlice(e.Enemies, c)
	}
	e.Creatures = removeFromSlice(e.Creatures, c)
}

func removeFromSlice(list []*Creature, target *Creature) []*Creature {
	for i, c := range list {
		if c == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// RunEncounter implements §4.4's round loop.
func (e *Encounter) RunEncounter() string {
	e.Simulation.Logf("Party: %s", creatureNames(e.Players))
	e.Simulation.Logf("Enemies: %s", creatureNames(e.Enemies))
	e.Simulation.Logf("Initiative order: %s", creatureNames(e.Creatures))

	for {
		if w := e.CheckWinner(); w != "" {
			e.Winner = w
			e.Simulation.Rounds = e.Round
			return e.Winner
		}
		if e.Round >= e.MaxRounds {
			e.Winner = "draw"
			e.Simulation.Rounds = e.Round
			return e.Winner
		}

		e.Round++
		snapshot := append([]*Creature(nil), e.Creatures...)
		for _, c := range snapshot {
			if e.CheckWinner() != "" {
				break
			}
			if c.IsDead {
				continue
			}
			c.TakeTurn()
		}
	}
}

func creatureNames(list []*Creature) string {
	if len(list) == 0 {
		return "(none)"
	}
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}
