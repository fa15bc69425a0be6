package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquipmentUsesSeparateSlotsField(t *testing.T) {
	c := &Container{
		Kind:     ContainerEquipment,
		Username: "alice",
		Slots:    []Slot{{Key: "sword", Count: 1}, EmptySlot()},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"equipments"`)
	assert.NotContains(t, string(data), `"slots"`)

	decoded, err := DecodeContainer(ContainerEquipment, data)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}

func TestDecodeContainerRejectsUnknownKind(t *testing.T) {
	_, err := DecodeContainer("wardrobe", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownContainerKind)
}

func TestSlotClear(t *testing.T) {
	s := Slot{Key: "token", Count: 50}
	s.Clear()

	assert.True(t, s.IsEmpty())
	assert.Equal(t, EmptySlot(), s)
}

func TestQuestProgressStage(t *testing.T) {
	q := &QuestProgress{Quests: []QuestStage{{Key: "tutorial", Stage: 2}, {Key: "pirate", Stage: 7}}}

	stage, ok := q.Stage(TutorialQuestKey)
	assert.True(t, ok)
	assert.Equal(t, 2, stage)

	_, ok = q.Stage("missing")
	assert.False(t, ok)
}
