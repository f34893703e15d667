package engine

// newTestCreature builds a minimal Creature suitable for unit tests that
// don't care about skills/defenses beyond hit points and AC.
func newTestCreature(name string, team, maxHP, ac int) *Creature {
	return NewCreature(name, 1, team, Attributes{}, nil, 2, 2, 2, 2, ac, maxHP, 25)
}

// newTestPair wires two creatures (one per side) into a Simulation +
// Encounter so Action.Apply / Creature methods that need c.rng()/c.logf()
// have a live back-reference, without going through a full round loop.
func newTestPair(player, enemy *Creature) *Simulation {
	sim := NewSimulation(1, true)
	sim.encounter = NewEncounter([]*Creature{player}, []*Creature{enemy}, sim)
	return sim
}
