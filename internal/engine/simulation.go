package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// Simulation owns one Encounter run plus its append-only log (§3, §4.5).
// Nothing outlives the run: Creatures, Actions, and the Encounter are all
// built fresh from input descriptors and discarded at the end.
type Simulation struct {
	ID string // additive: not in spec.md; a per-run UUID that is not copied into Result and that nothing else in this module reads

	Rng *Random
	Log []string

	Rounds        int
	PlayersKilled int
	TotalPlayers  int
	Winner        string

	encounter *Encounter
}

// NewSimulation constructs a Simulation with its own isolated PRNG, so that
// a host running many simulations concurrently never shares random state
// across them (§5).
func NewSimulation(seed int64, seeded bool) *Simulation {
	var rng *Random
	if seeded {
		rng = NewSeededRandom(seed)
	} else {
		rng = NewRandom()
	}
	return &Simulation{
		ID:  uuid.NewString(),
		Rng: rng,
		Log: make([]string, 0, 64),
	}
}

// Logf appends a formatted line to the simulation's log. Passing the
// Simulation explicitly (rather than coupling to a global sink) lets
// parallel simulations coexist (§9).
func (s *Simulation) Logf(format string, args ...interface{}) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

// Run builds the Encounter from already-constructed Creatures, then runs
// the encounter to completion, recording the result fields.
func (s *Simulation) Run(players, enemies []*Creature) string {
	s.TotalPlayers = len(players)
	s.encounter = NewEncounter(players, enemies, s)
	s.Winner = s.encounter.RunEncounter()
	return s.Winner
}

// Result is the per-run record surfaced to the Driver (§4.5).
type Result struct {
	SimNum        int      `json:"sim_num"`
	Winner        string   `json:"winner"`
	Rounds        int      `json:"rounds"`
	PlayersKilled int      `json:"players_killed"`
	TotalPlayers  int      `json:"total_players"`
	Log           []string `json:"log"`
}

func (s *Simulation) ToResult(simNum int) Result {
	return Result{
		SimNum:        simNum,
		Winner:        s.Winner,
		Rounds:        s.Rounds,
		PlayersKilled: s.PlayersKilled,
		TotalPlayers:  s.TotalPlayers,
		Log:           s.Log,
	}
}
