package sweep

import (
	"slices"

	"github.com/mcoot/gamedb-go/internal/model"
)

// Item keys and limits used by the container policy
const (
	GoldKey  = "gold"
	TokenKey = "token"

	// GoldLimit is the largest gold stack left in place
	GoldLimit = 4_000_000
	// StackLimit is the largest stack of a non-allowlisted item left in place
	StackLimit = 100
)

// Allowlist is exempt from the stack limit
var Allowlist = []string{GoldKey, TokenKey, "flask", "arrow", "shardt1", "shardt2"}

// Tier is one step of the slot policy. A matching tier clears the slot and
// stops evaluation unless Fallthrough is set; a tier that does not match
// always passes the slot on.
type Tier struct {
	Name        string
	Match       func(slot model.Slot) bool
	Fallthrough bool
}

// Policy is an ordered list of tiers applied to every slot
type Policy struct {
	Tiers []Tier
}

// NewPolicy builds the container policy:
//
//  1. token: cleared, stop.
//  2. gold above GoldLimit: cleared, stop. Smaller gold stacks continue.
//  3. denylisted items: cleared, continue.
//  4. anything off the allowlist above StackLimit: cleared.
func NewPolicy(denylist []string) Policy {
	denied := make(map[string]struct{}, len(denylist))
	for _, key := range denylist {
		denied[key] = struct{}{}
	}

	return Policy{Tiers: []Tier{
		{
			Name:  "token",
			Match: func(slot model.Slot) bool { return slot.Key == TokenKey },
		},
		{
			Name:  "gold_limit",
			Match: func(slot model.Slot) bool { return slot.Key == GoldKey && slot.Count > GoldLimit },
		},
		{
			Name: "denylist",
			Match: func(slot model.Slot) bool {
				_, ok := denied[slot.Key]
				return ok
			},
			Fallthrough: true,
		},
		{
			Name: "stack_limit",
			Match: func(slot model.Slot) bool {
				return !slices.Contains(Allowlist, slot.Key) && slot.Count > StackLimit
			},
		},
	}}
}

// Apply runs the tiers over slot, clearing it in place. It returns the name
// of the first tier that cleared it, or "" if the slot was left alone.
// Empty slots are never matched.
func (p Policy) Apply(slot *model.Slot) string {
	cleared := ""
	for _, tier := range p.Tiers {
		if slot.IsEmpty() {
			break
		}
		if !tier.Match(*slot) {
			continue
		}
		slot.Clear()
		if cleared == "" {
			cleared = tier.Name
		}
		if !tier.Fallthrough {
			break
		}
	}
	return cleared
}
