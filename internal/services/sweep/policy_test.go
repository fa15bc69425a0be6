package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/gamedb-go/internal/model"
)

func TestPolicyApply(t *testing.T) {
	policy := NewPolicy([]string{"bronzehelmet", "partyhat"})

	tests := []struct {
		name     string
		slot     model.Slot
		want     model.Slot
		wantTier string
	}{
		{name: "token always cleared", slot: model.Slot{Key: "token", Count: 50}, want: model.EmptySlot(), wantTier: "token"},
		{name: "single token cleared", slot: model.Slot{Key: "token", Count: 1}, want: model.EmptySlot(), wantTier: "token"},
		{name: "small gold kept", slot: model.Slot{Key: "gold", Count: 100}, want: model.Slot{Key: "gold", Count: 100}},
		{name: "gold at limit kept", slot: model.Slot{Key: "gold", Count: GoldLimit}, want: model.Slot{Key: "gold", Count: GoldLimit}},
		{name: "gold over limit cleared", slot: model.Slot{Key: "gold", Count: GoldLimit + 1}, want: model.EmptySlot(), wantTier: "gold_limit"},
		{name: "denylisted single item cleared", slot: model.Slot{Key: "partyhat", Count: 1}, want: model.EmptySlot(), wantTier: "denylist"},
		{name: "allowlisted stack kept", slot: model.Slot{Key: "arrow", Count: 5000}, want: model.Slot{Key: "arrow", Count: 5000}},
		{name: "large stack cleared", slot: model.Slot{Key: "logs", Count: 101}, want: model.EmptySlot(), wantTier: "stack_limit"},
		{name: "stack at limit kept", slot: model.Slot{Key: "logs", Count: StackLimit}, want: model.Slot{Key: "logs", Count: StackLimit}},
		{name: "empty slot untouched", slot: model.EmptySlot(), want: model.EmptySlot()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := tt.slot
			tier := policy.Apply(&slot)
			assert.Equal(t, tt.want, slot)
			assert.Equal(t, tt.wantTier, tier)
		})
	}
}

func TestPolicyFallthrough(t *testing.T) {
	var seen []string
	policy := Policy{Tiers: []Tier{
		{Name: "first", Match: func(model.Slot) bool { seen = append(seen, "first"); return false }},
		{Name: "second", Match: func(model.Slot) bool { seen = append(seen, "second"); return true }, Fallthrough: true},
		{Name: "third", Match: func(model.Slot) bool { seen = append(seen, "third"); return true }},
	}}

	slot := model.Slot{Key: "sword", Count: 1}
	assert.Equal(t, "second", policy.Apply(&slot))
	// The third tier sees an already cleared slot and is skipped
	assert.Equal(t, []string{"first", "second"}, seen)
	assert.True(t, slot.IsEmpty())
}

func TestPolicyStopsOnMatch(t *testing.T) {
	calls := 0
	policy := Policy{Tiers: []Tier{
		{Name: "stop", Match: func(model.Slot) bool { return true }},
		{Name: "never", Match: func(model.Slot) bool { calls++; return true }},
	}}

	slot := model.Slot{Key: "sword", Count: 1}
	assert.Equal(t, "stop", policy.Apply(&slot))
	assert.Zero(t, calls)
}
