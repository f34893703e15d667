package engine

import "math"

// Attributes holds the six ability modifiers (§3).
type Attributes struct {
	Strength     int
	Dexterity    int
	Constitution int
	Intelligence int
	Wisdom       int
	Charisma     int
}

func (a Attributes) byName(name string) int {
	switch name {
	case "strength":
		return a.Strength
	case "dexterity":
		return a.Dexterity
	case "constitution":
		return a.Constitution
	case "intelligence":
		return a.Intelligence
	case "wisdom":
		return a.Wisdom
	case "charisma":
		return a.Charisma
	default:
		return 0
	}
}

// skillGoverningAttribute maps each of the seventeen skills to the
// attribute that governs it when no explicit skill modifier is supplied
// (§3: "seventeen skill modifiers, defaulting to their governing attribute
// when unset"). Grounded on original_source/.../enemy.py's per-skill
// fallback block.
var skillGoverningAttribute = map[string]string{
	"acrobatics":    "dexterity",
	"arcana":        "intelligence",
	"athletics":     "strength",
	"crafting":      "intelligence",
	"deception":     "charisma",
	"diplomacy":     "charisma",
	"intimidation":  "charisma",
	"lore":          "intelligence",
	"medicine":      "wisdom",
	"nature":        "wisdom",
	"occultism":     "intelligence",
	"performance":   "charisma",
	"religion":      "wisdom",
	"society":       "intelligence",
	"stealth":       "dexterity",
	"survival":      "wisdom",
	"thievery":      "dexterity",
}

// Creature is a combatant (§3). It is created fresh for one simulation and
// discarded at the end of the run; nothing persists across runs.
type Creature struct {
	Name       string
	Level      int
	Team       int // 1 = player, 2 = enemy
	Attributes Attributes
	Skills     map[string]int
	Fortitude  int
	Reflex     int
	Will       int
	Perception int

	ArmorClass       int
	MaxHitPoints     int
	CurrentHitPoints int
	Speed            int

	SpellAttackBonus int
	SpellDC          int

	Immunities  map[string]bool
	Weaknesses  map[string]int
	Resistances map[string]int

	Actions []Action

	X, Y int

	NumActions   int
	MultiAttack  int
	ShieldRaised bool
	ShieldBonus  int
	Initiative   int
	IsDead       bool
	SneakAttack  bool

	// Players only.
	Ancestry string
	Class    string

	// Enemies only.
	Traits []string

	// Encounter is a non-owning back-reference set by JoinEncounter (§9:
	// "model as a non-owning handle"). The Encounter owns the creature
	// list; this is never a second strong ownership edge.
	Encounter *Encounter
}

// NewCreature builds a Creature with every missing skill resolved to its
// governing attribute (§3 invariant: "skills are never null at runtime").
func NewCreature(name string, level, team int, attrs Attributes, skills map[string]int, fort, reflex, will, perception, ac, maxHP, speed int) *Creature {
	resolved := make(map[string]int, len(skillGoverningAttribute))
	for skill, governing := range skillGoverningAttribute {
		if v, ok := skills[skill]; ok {
			resolved[skill] = v
		} else {
			resolved[skill] = attrs.byName(governing)
		}
	}

	return &Creature{
		Name:             name,
		Level:            level,
		Team:             team,
		Attributes:       attrs,
		Skills:           resolved,
		Fortitude:        fort,
		Reflex:           reflex,
		Will:             will,
		Perception:       perception,
		ArmorClass:       ac,
		MaxHitPoints:     maxHP,
		CurrentHitPoints: maxHP,
		Speed:            speed,
		Immunities:       map[string]bool{},
		Weaknesses:       map[string]int{},
		Resistances:      map[string]int{},
	}
}

// JoinEncounter attaches the creature to an encounter and rolls initiative:
// d20 + max(perception, stealth) (§4.3).
func (c *Creature) JoinEncounter(enc *Encounter, rng *Random) {
	c.Encounter = enc
	stealth := c.Skills["stealth"]
	best := c.Perception
	if stealth > best {
		best = stealth
	}
	c.Initiative = RollD20(rng) + best
}

func (c *Creature) rng() *Random {
	if c.Encounter == nil || c.Encounter.Simulation == nil {
		panic(errNoEncounter)
	}
	return c.Encounter.Simulation.Rng
}

func (c *Creature) logf(format string, args ...interface{}) {
	if c.Encounter == nil || c.Encounter.Simulation == nil {
		panic(errNoEncounter)
	}
	c.Encounter.Simulation.Logf(format, args...)
}

// Opponents returns the opposing side's living creatures.
func (c *Creature) Opponents() []*Creature {
	if c.Encounter == nil {
		panic(errNoEncounter)
	}
	if c.Team == 1 {
		return c.Encounter.Enemies
	}
	return c.Encounter.Players
}

// Allies returns this creature's own side's living creatures, self included.
func (c *Creature) Allies() []*Creature {
	if c.Encounter == nil {
		panic(errNoEncounter)
	}
	if c.Team == 1 {
		return c.Encounter.Players
	}
	return c.Encounter.Enemies
}

func (c *Creature) isImmune(damageType string) bool {
	return c.Immunities[damageType]
}

func (c *Creature) isResistant(damageType string) bool {
	if _, ok := c.Resistances["all-damage"]; ok {
		return true
	}
	_, ok := c.Resistances[damageType]
	return ok
}

func (c *Creature) isWeak(damageType string) bool {
	_, ok := c.Weaknesses[damageType]
	return ok
}

// distanceTo computes Euclidean distance in square coordinates, multiplied
// by 5ft, rounded to the nearest 5ft (§4.3 Distance).
func (c *Creature) distanceTo(o *Creature) float64 {
	dx := float64(c.X - o.X)
	dy := float64(c.Y - o.Y)
	d := math.Sqrt(dx*dx+dy*dy) * 5
	return math.Round(d/5) * 5
}

func (c *Creature) inMelee() bool {
	for _, o := range c.Opponents() {
		if c.distanceTo(o) <= 5 {
			return true
		}
	}
	return false
}

// rangedAction is implemented by Strike and Spell, the two variants
// PickTarget applies to.
type rangedAction interface {
	Action
	ActionRange() int
	ActionDamageType() string
}

// PickTarget implements §4.3 Targeting.
func (c *Creature) PickTarget(action Action) *Creature {
	ra, ok := action.(rangedAction)
	if !ok {
		return nil
	}
	opponents := c.Opponents()
	if len(opponents) == 0 {
		return nil
	}

	var inRange []*Creature
	for _, o := range opponents {
		if c.distanceTo(o) <= float64(ra.ActionRange()) {
			inRange = append(inRange, o)
		}
	}

	candidates := opponents
	restrictDistance := true
	if len(inRange) > 0 {
		candidates = inRange
		restrictDistance = false
	}

	var best *Creature
	bestWeight := negInf
	damageType := ra.ActionDamageType()
	for _, cand := range candidates {
		w := float64(cand.MaxHitPoints-cand.CurrentHitPoints) * float64(c.Level)
		if restrictDistance {
			w -= c.distanceTo(cand) / 5
		}

		if damageType == "vitality" && !hasTrait(cand.Traits, "undead") {
			w = negInf
		} else if cand.isImmune(damageType) {
			w -= 100
		} else if cand.isResistant(damageType) {
			w *= 0.5
		} else if cand.isWeak(damageType) {
			w *= 2
		}

		if w > bestWeight {
			bestWeight = w
			best = cand
		}
	}
	return best
}

// mostHurtAlly finds the ally (self included) with the fewest current hit
// points, for Heal targeting (§4.2, heal.py's _pick_target).
func (c *Creature) mostHurtAlly() *Creature {
	allies := c.Allies()
	var best *Creature
	bestHP := math.MaxInt64
	for _, a := range allies {
		if a.CurrentHitPoints < bestHP {
			bestHP = a.CurrentHitPoints
			best = a
		}
	}
	return best
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// MoveTo implements §4.3 Movement: repeated Stride actions, stepping one
// square at a time toward the target, until within actionRange or out of
// actions.
func (c *Creature) MoveTo(target *Creature, actionRange int) {
	for c.NumActions > 0 && c.distanceTo(target) > float64(actionRange) {
		remaining := c.Speed
		diagonals := 0

		for remaining > 0 && c.distanceTo(target) > float64(actionRange) {
			dx := target.X - c.X
			dy := target.Y - c.Y
			gapX := abs(dx) > 1
			gapY := abs(dy) > 1

			if gapX && gapY {
				diagonals++
				cost := 5
				if diagonals%2 == 0 {
					cost = 10
				}
				if cost == 10 && remaining <= 10 {
					break // disallow the second diagonal when only 10ft remain
				}
				if remaining < cost {
					break
				}
				c.X += sign(dx)
				c.Y += sign(dy)
				remaining -= cost
			} else if gapX {
				if remaining < 5 {
					break
				}
				c.X += sign(dx)
				remaining -= 5
			} else if gapY {
				if remaining < 5 {
					break
				}
				c.Y += sign(dy)
				remaining -= 5
			} else {
				break // in range
			}
		}

		c.NumActions--
	}
}

func clampMin1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// TakeDamage applies §4.3's damage-intake pipeline.
func (c *Creature) TakeDamage(amount int, damageType string) {
	if damageType == "vitality" && !hasTrait(c.Traits, "undead") {
		return // silently dropped
	}

	if c.Team == 2 { // only enemies carry immunity/weakness/resistance maps
		if c.isImmune(damageType) {
			c.logf("%s is immune to %s damage.", c.Name, damageType)
			return
		}
		if w, ok := c.Weaknesses[damageType]; ok {
			amount += w
		} else if r, ok := c.Resistances["all-damage"]; ok {
			amount = clampMin1(amount - r)
		} else if r, ok := c.Resistances[damageType]; ok {
			amount = clampMin1(amount - r)
		}
	}

	c.CurrentHitPoints -= amount
	if c.CurrentHitPoints <= 0 {
		c.CurrentHitPoints = 0
		c.die()
	}
}

// Heal restores hit points, capped at MaxHitPoints.
func (c *Creature) Heal(amount int) {
	c.CurrentHitPoints += amount
	if c.CurrentHitPoints > c.MaxHitPoints {
		c.CurrentHitPoints = c.MaxHitPoints
	}
}

// BasicSave rolls a save against dc and returns the degree of success
// (§4.2 Basic save).
func (c *Creature) BasicSave(save SaveType, dc int) Degree {
	var mod int
	switch save {
	case SaveFortitude:
		mod = c.Fortitude
	case SaveReflex:
		mod = c.Reflex
	case SaveWill:
		mod = c.Will
	default:
		panic(errUnknownSaveType)
	}

	rng := c.rng()
	roll := RollD20(rng)
	total := roll + mod
	return DegreeOfSuccess(roll, total, dc)
}

// die transitions the creature to dead and removes it from its encounter
// (§4.3 Death).
func (c *Creature) die() {
	c.IsDead = true
	c.CurrentHitPoints = 0
	if c.Encounter != nil {
		if c.Team == 1 {
			c.Encounter.Simulation.PlayersKilled++
		}
		c.Encounter.RemoveCreature(c)
	}
}

func (c *Creature) removeAction(a Action) {
	for i, existing := range c.Actions {
		if existing == a {
			c.Actions = append(c.Actions[:i], c.Actions[i+1:]...)
			return
		}
	}
}

// TakeTurn implements §4.3's turn loop.
func (c *Creature) TakeTurn() {
	if c.IsDead || len(c.Actions) == 0 {
		c.logf("%s has no actions available and passes.", c.Name)
		return
	}

	if c.ShieldRaised {
		c.ArmorClass -= c.ShieldBonus
		c.ShieldRaised = false
		c.ShieldBonus = 0
	}

	c.NumActions = 3
	c.MultiAttack = 0

	for c.NumActions > 0 && c.Encounter.CheckWinner() == "" {
		inMelee := c.inMelee()

		var best Action
		bestWeight := negInf
		for _, a := range c.Actions {
			w := a.Weight(c, c.NumActions, inMelee)
			if w > bestWeight {
				bestWeight = w
				best = a
			}
		}

		if best == nil || bestWeight == negInf {
			c.logf("%s has no legal action remaining and passes.", c.Name)
			break
		}

		cost := best.Cost()
		best.Apply(c)
		if c.IsDead {
			break
		}
		c.NumActions -= cost
	}
}
