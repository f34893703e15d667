package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIntAcceptsNumberOrLeadingIntegerString(t *testing.T) {
	var f FlexInt

	require.NoError(t, json.Unmarshal([]byte(`20`), &f))
	assert.Equal(t, FlexInt(20), f)

	require.NoError(t, json.Unmarshal([]byte(`"20 feet"`), &f))
	assert.Equal(t, FlexInt(20), f)

	require.NoError(t, json.Unmarshal([]byte(`"melee"`), &f))
	assert.Equal(t, FlexInt(0), f)

	require.NoError(t, json.Unmarshal([]byte(`"none"`), &f))
	assert.Equal(t, FlexInt(0), f)

	assert.Error(t, json.Unmarshal([]byte(`"nonsense"`), &f))
}

func TestParseCreatureFatalOnMissingName(t *testing.T) {
	c, errs := ParseCreature(CreatureDescriptor{}, 1)
	assert.Nil(t, c)
	assert.NotEmpty(t, errs)
}

func TestParseCreatureDropsMalformedActionButSurvives(t *testing.T) {
	desc := CreatureDescriptor{
		Name:  "Bandit",
		Level: 2,
		Actions: ActionsDescriptor{
			Attacks: []AttackDescriptor{
				{Name: "Good Sword", Damage: "1d6+2", DamageType: "slashing"},
				{Name: "Bad Sword", Damage: "not-dice", DamageType: "slashing"},
			},
		},
	}

	c, errs := ParseCreature(desc, 2)

	require.NotNil(t, c)
	assert.Len(t, errs, 1, "exactly the malformed attack should be reported")
	assert.Len(t, c.Actions, 1, "the well-formed attack must still be attached")
}

func TestBuildCreaturesFatalOnMalformedPlayer(t *testing.T) {
	req := SimulationRequest{
		Party:   []CreatureDescriptor{{}},
		Enemies: []CreatureDescriptor{{Name: "Goblin"}},
	}

	_, _, _, err := BuildCreatures(req)
	assert.Error(t, err)
}

func TestBuildCreaturesParsesPartyAndEnemies(t *testing.T) {
	req := SimulationRequest{
		Party: []CreatureDescriptor{
			{Name: "Fighter", Level: 1, MaxHitPoints: 20, Defenses: Defenses{ArmorClass: 16}},
		},
		Enemies: []CreatureDescriptor{
			{Name: "Goblin", Level: 1, MaxHitPoints: 10, Defenses: Defenses{ArmorClass: 12}},
		},
	}

	players, enemies, warnings, err := BuildCreatures(req)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, players, 1)
	require.Len(t, enemies, 1)
	assert.Equal(t, 1, players[0].Team)
	assert.Equal(t, 2, enemies[0].Team)
}

func TestParseSpellDefaultsActionCostToOne(t *testing.T) {
	sp, err := parseSpell(SpellDescriptor{
		Name:       "Electric Arc",
		DamageRoll: "1d4",
		DamageType: "electricity",
		Actions:    "",
	}, 6)

	require.NoError(t, err)
	assert.Equal(t, 1, sp.Cost())
}

func TestParseSpellParsesLeadingActionCount(t *testing.T) {
	sp, err := parseSpell(SpellDescriptor{
		Name:       "Fireball",
		DamageRoll: "6d6",
		DamageType: "fire",
		Actions:    "2 actions",
	}, 8)

	require.NoError(t, err)
	assert.Equal(t, 2, sp.Cost())
}
