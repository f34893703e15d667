package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// This file implements §6's creature descriptor shape: the input contract
// between the engine and everything outside it (the application shell,
// the bestiary content-pack loader). Construction errors here (§7.1) fail
// only the specific sub-object, never the whole simulation, except for a
// malformed Creature itself, which does kill the simulation (the caller
// must surface that failure before the Driver runs).

// FlexInt unmarshals a field that may be given as either a JSON number or
// a string with a leading integer token (e.g. "20 feet", "3 actions"),
// matching the leniency of the original Python descriptor parser.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var asInt int
	if err := json.Unmarshal(data, &asInt); err == nil {
		*f = FlexInt(asInt)
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("flexint: %w", err)
	}
	asString = strings.TrimSpace(asString)
	if asString == "" || strings.EqualFold(asString, "none") || strings.EqualFold(asString, "n/a") || strings.EqualFold(asString, "melee") {
		*f = 0
		return nil
	}
	token := strings.Fields(asString)[0]
	n, err := strconv.Atoi(token)
	if err != nil {
		return fmt.Errorf("flexint: cannot parse leading integer from %q", asString)
	}
	*f = FlexInt(n)
	return nil
}

// AttackDescriptor is the wire shape of one Strike (§6).
type AttackDescriptor struct {
	Name        string   `json:"name" validate:"required"`
	AttackBonus int      `json:"attackBonus"`
	Damage      string   `json:"damage" validate:"required,dicenotation"`
	DamageType  string   `json:"damageType" validate:"required,damagetype"`
	Range       FlexInt  `json:"range,omitempty"`
	Traits      []string `json:"traits,omitempty"`
}

// AreaDescriptor is the wire shape of a spell's area of effect (§6).
type AreaDescriptor struct {
	Type  string  `json:"type" validate:"omitempty,areashape"`
	Value FlexInt `json:"value"`
}

// SpellDescriptor is the wire shape of one Spell (§6).
type SpellDescriptor struct {
	Name       string          `json:"name" validate:"required"`
	Slots      int             `json:"slots"`
	Level      int             `json:"level"`
	DamageRoll string          `json:"damage_roll" validate:"required,dicenotation"`
	DamageType string          `json:"damage_type" validate:"required,damagetype"`
	Range      FlexInt         `json:"range"`
	Area       *AreaDescriptor `json:"area,omitempty"`
	Save       string          `json:"save,omitempty" validate:"omitempty,savetype"`
	Targets    FlexInt         `json:"targets,omitempty"`
	Actions    string          `json:"actions"`
}

// ActionsDescriptor groups a creature's owned actions (§6).
type ActionsDescriptor struct {
	Attacks     []AttackDescriptor `json:"attacks,omitempty" validate:"omitempty,dive"`
	Spells      []SpellDescriptor  `json:"spells,omitempty" validate:"omitempty,dive"`
	Heals       *int               `json:"heals,omitempty"`
	Shield      *int               `json:"shield,omitempty"`
	SneakAttack *bool              `json:"sneak_attack,omitempty"`
}

// Defenses groups AC and saves (§6).
type Defenses struct {
	ArmorClass int `json:"armor_class"`
	Saves      struct {
		Fortitude int `json:"fortitude"`
		Reflex    int `json:"reflex"`
		Will      int `json:"will"`
	} `json:"saves"`
}

// AttributeModifierDescriptor is the wire shape of the six attributes (§6).
type AttributeModifierDescriptor struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// CreatureDescriptor is the full input shape of §6, shared by players and
// enemies; the player/enemy-only fields are all optional here. The side a
// descriptor belongs to is set by which SimulationRequest array (Party or
// Enemies) holds it; nothing checks that its side-specific fields match.
type CreatureDescriptor struct {
	Name               string                      `json:"name" validate:"required"`
	Level              int                         `json:"level"`
	Perception         int                         `json:"perception"`
	MaxHitPoints       int                         `json:"max_hit_points"`
	Speed              int                         `json:"speed"`
	Defenses           Defenses                    `json:"defenses"`
	AttributeModifiers AttributeModifierDescriptor `json:"attribute_modifiers"`
	Skills             map[string]int              `json:"skills,omitempty"`
	SpellAttackBonus   *int                        `json:"spell_attack_bonus,omitempty"`
	SpellDC            *int                        `json:"spell_dc,omitempty"`
	Actions            ActionsDescriptor           `json:"actions"`

	// Player-only.
	Ancestry string `json:"ancestry,omitempty"`
	Class    string `json:"class,omitempty"`

	// Enemy-only.
	Traits      []string       `json:"traits,omitempty"`
	Immunities  []string       `json:"immunities,omitempty" validate:"omitempty,dive,damagetype"`
	Weaknesses  map[string]int `json:"weaknesses,omitempty" validate:"omitempty,dive,min=1"`
	// "all-damage" is a legal Resistances key (a catch-all, not a damage
	// type) so keys aren't constrained to damagetype here; only the
	// amount is.
	Resistances map[string]int `json:"resistances,omitempty" validate:"omitempty,dive,min=1"`
}

// ParseCreature builds a Creature from its descriptor (§6). team must be
// 1 (player) or 2 (enemy). Malformed individual attacks/spells are
// dropped with an error appended to the returned slice (§7.1); a
// fundamentally malformed creature (unparseable required fields) returns
// a nil Creature and a non-empty error slice, which the caller must treat
// as fatal to the whole simulation.
func ParseCreature(desc CreatureDescriptor, team int) (*Creature, []error) {
	var errs []error

	if strings.TrimSpace(desc.Name) == "" {
		errs = append(errs, fmt.Errorf("creature descriptor missing name"))
		return nil, errs
	}

	attrs := Attributes{
		Strength:     desc.AttributeModifiers.Strength,
		Dexterity:    desc.AttributeModifiers.Dexterity,
		Constitution: desc.AttributeModifiers.Constitution,
		Intelligence: desc.AttributeModifiers.Intelligence,
		Wisdom:       desc.AttributeModifiers.Wisdom,
		Charisma:     desc.AttributeModifiers.Charisma,
	}

	c := NewCreature(
		desc.Name, desc.Level, team, attrs, desc.Skills,
		desc.Defenses.Saves.Fortitude, desc.Defenses.Saves.Reflex, desc.Defenses.Saves.Will,
		desc.Perception, desc.Defenses.ArmorClass, desc.MaxHitPoints, desc.Speed,
	)

	if desc.SpellAttackBonus != nil {
		c.SpellAttackBonus = *desc.SpellAttackBonus
	}
	if desc.SpellDC != nil {
		c.SpellDC = *desc.SpellDC
	}
	c.Ancestry = desc.Ancestry
	c.Class = desc.Class
	c.Traits = desc.Traits
	if desc.Actions.SneakAttack != nil {
		c.SneakAttack = *desc.Actions.SneakAttack
	}

	for _, t := range desc.Immunities {
		c.Immunities[t] = true
	}
	for t, v := range desc.Weaknesses {
		c.Weaknesses[t] = v
	}
	for t, v := range desc.Resistances {
		c.Resistances[t] = v
	}

	for _, atk := range desc.Actions.Attacks {
		strike, err := parseAttack(atk)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.Actions = append(c.Actions, strike)
	}

	for _, sp := range desc.Actions.Spells {
		spell, err := parseSpell(sp, c.SpellAttackBonus)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.Actions = append(c.Actions, spell)
	}

	if desc.Actions.Heals != nil && *desc.Actions.Heals > 0 {
		c.Actions = append(c.Actions, NewHeal(*desc.Actions.Heals))
	}

	if desc.Actions.Shield != nil && *desc.Actions.Shield > 0 {
		c.Actions = append(c.Actions, NewRaiseShield(*desc.Actions.Shield))
	}

	return c, errs
}

func parseAttack(atk AttackDescriptor) (*Strike, error) {
	dmg, err := ParseDamageExpr(atk.Damage)
	if err != nil {
		return nil, fmt.Errorf("attack %q: %w", atk.Name, err)
	}
	rng := int(atk.Range)
	if rng == 0 {
		rng = 5
	}
	return NewStrike(atk.Name, atk.AttackBonus, dmg, atk.DamageType, rng, atk.Traits), nil
}

func parseSpell(sp SpellDescriptor, spellAttackBonus int) (*Spell, error) {
	dmg, err := ParseDamageExpr(sp.DamageRoll)
	if err != nil {
		return nil, fmt.Errorf("spell %q: %w", sp.Name, err)
	}

	rng := int(sp.Range)
	if rng == 0 {
		rng = 5
	}

	var area *Area
	if sp.Area != nil && sp.Area.Type != "" {
		area = &Area{Shape: AreaShape(sp.Area.Type), Size: int(sp.Area.Value)}
	}

	save := SaveType(strings.ToLower(strings.TrimSpace(sp.Save)))
	if save == "" {
		save = SaveNone
	}

	cost := 1
	if fields := strings.Fields(sp.Actions); len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil {
			cost = n
		}
	}

	return NewSpell(sp.Name, sp.Slots, sp.Level, dmg, sp.DamageType, rng, area, save, int(sp.Targets), cost, spellAttackBonus), nil
}

// SimulationRequest is §6's entry-point request shape: an ordered list of
// player descriptors plus a resolved list of enemy descriptors (the host
// has already expanded enemy_id/quantity pairs into repeated descriptors,
// per §6: "the host must resolve each enemy_id to one enemy descriptor
// and pass quantity copies into the engine").
type SimulationRequest struct {
	Party   []CreatureDescriptor `json:"party"`
	Enemies []CreatureDescriptor `json:"enemies"`
}

// BuildCreatures parses every descriptor in the request into fresh
// Creature objects. A malformed creature descriptor is a fatal
// construction error for the whole simulation (§7.1); malformed
// individual actions are dropped and reported alongside.
func BuildCreatures(req SimulationRequest) (players, enemies []*Creature, warnings []error, err error) {
	for _, pd := range req.Party {
		c, errs := ParseCreature(pd, 1)
		if c == nil {
			return nil, nil, nil, fmt.Errorf("fatal: player %q: %v", pd.Name, errs)
		}
		warnings = append(warnings, errs...)
		players = append(players, c)
	}
	for _, ed := range req.Enemies {
		c, errs := ParseCreature(ed, 2)
		if c == nil {
			return nil, nil, nil, fmt.Errorf("fatal: enemy %q: %v", ed.Name, errs)
		}
		warnings = append(warnings, errs...)
		enemies = append(enemies, c)
	}
	return players, enemies, warnings, nil
}
