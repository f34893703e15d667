package engine

import (
	"math"
	"strings"
)

// SaveType is one of the three saving throws, or "none" for spells that
// don't call for one.
type SaveType string

const (
	SaveFortitude SaveType = "fortitude"
	SaveReflex    SaveType = "reflex"
	SaveWill      SaveType = "will"
	SaveNone      SaveType = "none"
)

// AreaShape is the shape of an area spell, gating the distance-bucket term
// in its weight formula (§4.2).
type AreaShape string

const (
	AreaBurst     AreaShape = "burst"
	AreaCone      AreaShape = "cone"
	AreaEmanation AreaShape = "emanation"
	AreaLine      AreaShape = "line"
)

// Area describes a spell's area of effect.
type Area struct {
	Shape AreaShape
	Size  int
}

// negInf is shorthand for "never pick this action" (§4.2's legality gate).
const negInf = math.Inf(-1)

// Action is the polymorphic action value of spec §3/§4.2: every variant
// exposes Weight (selection score) and Apply (state mutation), dispatched
// on a tag rather than a runtime type switch in the hot loop (§9).
type Action interface {
	Name() string
	Cost() int
	// Weight scores this action for the acting creature c, given how many
	// action points remain this turn and whether any opponent is within
	// melee (5ft) range. Returns negative infinity when illegal.
	Weight(c *Creature, actionsRemaining int, inMelee bool) float64
	// Apply resolves the action: targeting, movement, attack/save rolls,
	// damage, and slot/flag bookkeeping. It is the sole mutator of
	// encounter state for this action.
	Apply(c *Creature)
}

func hasTrait(traits []string, trait string) bool {
	for _, t := range traits {
		if t == trait {
			return true
		}
	}
	return false
}

func deadlyDie(traits []string) (Die, bool) {
	for _, t := range traits {
		switch t {
		case "deadly-d6":
			return D6, true
		case "deadly-d8":
			return D8, true
		case "deadly-d10":
			return D10, true
		}
	}
	return Die{}, false
}

// anyValidDamageTarget implements the §4.2 legality gate: "damage type
// invalid (all plausible targets immune, or vitality damage with no undead
// target among enemies — players are not undead)".
func anyValidDamageTarget(c *Creature, damageType string) bool {
	opponents := c.Opponents()
	if len(opponents) == 0 {
		return false
	}
	if damageType == "vitality" {
		for _, o := range opponents {
			if hasTrait(o.Traits, "undead") {
				return true
			}
		}
		return false
	}
	for _, o := range opponents {
		if !o.isImmune(damageType) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------
// Strike
// -----------------------------------------------------------------------

// Strike is a weapon attack (§3, §4.2).
type Strike struct {
	NameField    string
	AttackBonus  int
	Damage       DamageExpr
	DamageType   string
	Range        int // feet; 5 = melee
	Traits       []string
	baseWeight   float64
}

// NewStrike constructs a Strike and precomputes its base weight. Cost is
// always 1 (§3).
func NewStrike(name string, attackBonus int, dmg DamageExpr, damageType string, rng int, traits []string) *Strike {
	if rng <= 0 {
		rng = 5
	}
	s := &Strike{
		NameField:   strings.TrimSpace(name),
		AttackBonus: attackBonus,
		Damage:      dmg,
		DamageType:  damageType,
		Range:       rng,
		Traits:      traits,
	}
	s.baseWeight = float64(dmg.Dice*dmg.Sides+dmg.Bonus) + float64(attackBonus) + float64(rng)/10.0
	return s
}

func (s *Strike) Name() string              { return s.NameField }
func (s *Strike) Cost() int                  { return 1 }
func (s *Strike) ranged() bool               { return s.Range > 5 }
func (s *Strike) ActionRange() int           { return s.Range }
func (s *Strike) ActionDamageType() string   { return s.DamageType }

func (s *Strike) Weight(c *Creature, actionsRemaining int, inMelee bool) float64 {
	if s.Cost() > actionsRemaining {
		return negInf
	}
	if !anyValidDamageTarget(c, s.DamageType) {
		return negInf
	}
	if inMelee && s.ranged() {
		return 0
	}

	perAttack := 5.0
	if hasTrait(s.Traits, "agile") {
		perAttack = 4.0
	}
	penalty := perAttack * float64(c.MultiAttack)
	effective := s.baseWeight - penalty
	if penalty >= 8 {
		effective *= 0.5
	}
	return effective
}

func (s *Strike) Apply(c *Creature) {
	target := c.PickTarget(s)
	if target == nil {
		c.logf("%s finds no valid target for %s and holds.", c.Name, s.NameField)
		return
	}

	c.MoveTo(target, s.Range)
	if target.IsDead {
		return
	}

	rng := c.rng()
	perAttack := 5
	if hasTrait(s.Traits, "agile") {
		perAttack = 4
	}
	penalty := perAttack * c.MultiAttack
	roll := RollD20(rng)
	total := roll + s.AttackBonus - penalty
	if total < 1 {
		total = 1
	}
	c.MultiAttack++

	deg := DegreeOfSuccess(roll, total, target.ArmorClass)
	if deg <= Failure {
		c.logf("%s's %s misses %s.", c.Name, s.NameField, target.Name)
		return
	}

	dmg := s.Damage.Roll(rng)
	if c.SneakAttack && hasTrait(s.Traits, "finesse") {
		dmg += rng.RollDie(6)
	}

	if deg == CriticalSuccess {
		dmg *= 2
		if die, ok := deadlyDie(s.Traits); ok {
			dmg += die.Roll(rng)
		}
	}

	c.logf("%s's %s hits %s for %d %s damage (%s).", c.Name, s.NameField, target.Name, dmg, s.DamageType, deg)
	target.TakeDamage(dmg, s.DamageType)
}

// -----------------------------------------------------------------------
// Spell
// -----------------------------------------------------------------------

// Spell is a prepared spell, cantrip, or targeted/area attack spell
// (§3, §4.2).
type Spell struct {
	NameField  string
	Slots      int
	Level      int // 0 = cantrip
	Damage     DamageExpr
	DamageType string
	Range      int
	Save       SaveType
	Targets    int
	Area       *Area
	CostField  int
	SpellAttackBonus int
	baseWeight float64
}

func isAutoHit(name string) bool {
	n := strings.ToLower(name)
	return n == "force barrage" || n == "force bolt"
}

// NewSpell constructs a Spell and precomputes its base weight per §4.2.
func NewSpell(name string, slots, level int, dmg DamageExpr, damageType string, rng int, area *Area, save SaveType, targets, cost, spellAttackBonus int) *Spell {
	sp := &Spell{
		NameField:        strings.TrimSpace(name),
		Slots:            slots,
		Level:            level,
		Damage:           dmg,
		DamageType:       damageType,
		Range:            rng,
		Save:             save,
		Targets:          targets,
		Area:             area,
		CostField:        cost,
		SpellAttackBonus: spellAttackBonus,
	}

	areaSize := 0
	if area != nil {
		areaSize = area.Size
	}
	weight := float64(dmg.Dice*dmg.Sides+dmg.Bonus) + 3*float64(areaSize) + float64(targets)
	if rng > 0 {
		weight += float64(rng) / 5.0
	}
	if area != nil {
		switch area.Shape {
		case AreaBurst, AreaEmanation:
			weight += float64(area.Size) / 5.0
		case AreaCone:
			weight += float64(area.Size) / 10.0
		case AreaLine:
			weight += float64(area.Size) / 30.0
		}
	}
	sp.baseWeight = weight
	return sp
}

func (sp *Spell) Name() string            { return sp.NameField }
func (sp *Spell) Cost() int                { return sp.CostField }
func (sp *Spell) isArea() bool             { return sp.Area != nil && sp.Targets == 0 }
func (sp *Spell) ranged() bool             { return sp.Range > 5 }
func (sp *Spell) ActionRange() int         { return sp.Range }
func (sp *Spell) ActionDamageType() string { return sp.DamageType }

func (sp *Spell) Weight(c *Creature, actionsRemaining int, inMelee bool) float64 {
	if sp.Cost() > actionsRemaining || sp.Slots == 0 {
		return negInf
	}
	if !anyValidDamageTarget(c, sp.DamageType) {
		return negInf
	}

	var weight float64
	if sp.Level == 0 {
		weight = sp.baseWeight * 1.5
	} else {
		weight = sp.baseWeight * float64(sp.Slots)
	}

	if isAutoHit(sp.NameField) {
		weight += 20
	} else {
		weight += float64(sp.SpellAttackBonus)
	}
	return weight
}

func (sp *Spell) consumeSlot() {
	if sp.Level == 0 {
		return // cantrips never decrement (resolved open question)
	}
	sp.Slots--
}

func (sp *Spell) Apply(c *Creature) {
	if sp.isArea() {
		sp.applyArea(c)
	} else {
		sp.applyTargeted(c)
	}
	sp.consumeSlot()
	if sp.Level != 0 && sp.Slots <= 0 {
		c.removeAction(sp)
	}
}

func (sp *Spell) applyTargeted(c *Creature) {
	target := c.PickTarget(sp)
	if target == nil {
		c.logf("%s finds no valid target for %s and holds.", c.Name, sp.NameField)
		return
	}

	c.MoveTo(target, sp.Range)
	if target.IsDead {
		return
	}
	if c.NumActions < sp.Cost() {
		c.logf("%s cannot afford to cast %s after moving.", c.Name, sp.NameField)
		return
	}

	rng := c.rng()
	var deg Degree
	var roll int
	if isAutoHit(sp.NameField) {
		deg = Success
	} else {
		roll = RollD20(rng)
		total := roll + sp.SpellAttackBonus
		if total < 1 {
			total = 1
		}
		deg = DegreeOfSuccess(roll, total, target.ArmorClass)
	}

	if deg <= Failure {
		c.logf("%s's %s misses %s.", c.Name, sp.NameField, target.Name)
		return
	}

	dmg := sp.Damage.Roll(rng)
	if deg == CriticalSuccess {
		dmg *= 2
	}

	c.logf("%s casts %s at %s for %d %s damage (%s).", c.Name, sp.NameField, target.Name, dmg, sp.DamageType, deg)
	target.TakeDamage(dmg, sp.DamageType)
}

// applyArea implements §4.2's area-spell resolution.
func (sp *Spell) applyArea(c *Creature) {
	opponents := c.Opponents()
	if len(opponents) == 0 {
		return
	}

	n := sp.numAreaTargets()
	if n > len(opponents) {
		n = len(opponents)
	}
	idx := c.rng().SampleIndices(len(opponents), n)

	rng := c.rng()
	dmg := sp.Damage.Roll(rng)
	c.logf("%s casts %s, a %d-foot %s dealing %d %s damage.", c.Name, sp.NameField, sp.Area.Size, sp.Area.Shape, dmg, sp.DamageType)

	for _, i := range idx {
		target := opponents[i]
		deg := target.BasicSave(sp.Save, c.SpellDC)
		var taken int
		switch deg {
		case CriticalSuccess:
			taken = 0
		case Success:
			taken = dmg / 2
		case Failure:
			taken = dmg
		case CriticalFailure:
			taken = dmg * 2
		}
		c.logf("%s's save against %s: %s, takes %d damage.", target.Name, sp.NameField, deg, taken)
		target.TakeDamage(taken, sp.DamageType)
	}
}

func (sp *Spell) numAreaTargets() int {
	if sp.Area == nil {
		return 0
	}
	switch sp.Area.Shape {
	case AreaCone:
		return sp.Area.Size / 10
	case AreaLine:
		return sp.Area.Size / 30
	default: // burst, emanation
		return sp.Area.Size / 5
	}
}

// -----------------------------------------------------------------------
// Heal
// -----------------------------------------------------------------------

// Heal restores hit points to the most-hurt ally (§3, §4.2). Grounded on
// original_source/backend/simulation/mechanics/heal.py.
type Heal struct {
	Slots int
	Bonus int
	Range int
}

// NewHeal constructs a Heal action with the fixed values from heal.py:
// bonus 8, range 30, cost 2.
func NewHeal(slots int) *Heal {
	return &Heal{Slots: slots, Bonus: 8, Range: 30}
}

func (h *Heal) Name() string { return "Heal" }
func (h *Heal) Cost() int    { return 2 }

func (h *Heal) Weight(c *Creature, actionsRemaining int, inMelee bool) float64 {
	if h.Slots <= 0 || h.Cost() > actionsRemaining {
		return negInf
	}
	ally := c.mostHurtAlly()
	if ally == nil {
		return negInf
	}
	return 25.0 - float64(ally.CurrentHitPoints)
}

func (h *Heal) Apply(c *Creature) {
	ally := c.mostHurtAlly()
	if ally == nil {
		return
	}
	c.MoveTo(ally, h.Range)
	if c.NumActions < h.Cost() {
		return
	}

	amount := c.rng().RollDie(8) + h.Bonus
	c.logf("%s channels healing light into %s, restoring %d hit points.", c.Name, ally.Name, amount)
	ally.Heal(amount)

	h.Slots--
	if h.Slots <= 0 {
		c.removeAction(h)
	}
}

// -----------------------------------------------------------------------
// Raise Shield
// -----------------------------------------------------------------------

// RaiseShield raises the creature's shield, adding its AC bonus for the
// rest of the turn cycle (§3, §4.2). Per the resolved open question, an
// item shield and the spell Shield unify to max(item_ac_bonus, 1).
type RaiseShield struct {
	ACBonus int
}

func NewRaiseShield(itemACBonus int) *RaiseShield {
	bonus := itemACBonus
	if bonus < 1 {
		bonus = 1
	}
	return &RaiseShield{ACBonus: bonus}
}

func (r *RaiseShield) Name() string { return "Raise Shield" }
func (r *RaiseShield) Cost() int    { return 1 }

func (r *RaiseShield) Weight(c *Creature, actionsRemaining int, inMelee bool) float64 {
	if c.ShieldRaised || r.Cost() > actionsRemaining {
		return negInf
	}
	return 10.0
}

func (r *RaiseShield) Apply(c *Creature) {
	c.ShieldRaised = true
	c.ShieldBonus = r.ACBonus
	c.ArmorClass += r.ACBonus
	c.logf("%s raises their shield.", c.Name)
}
