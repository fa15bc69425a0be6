package model

import (
	"encoding/json"
	"fmt"
)

// ContainerKind names one of the per-player item containers
type ContainerKind string

const (
	ContainerInventory ContainerKind = "inventory"
	ContainerBank      ContainerKind = "bank"
	ContainerEquipment ContainerKind = "equipment"
)

// ContainerKinds lists every container kind in sweep order
var ContainerKinds = []ContainerKind{ContainerInventory, ContainerBank, ContainerEquipment}

// Valid reports whether k is a known container kind
func (k ContainerKind) Valid() bool {
	switch k {
	case ContainerInventory, ContainerBank, ContainerEquipment:
		return true
	}
	return false
}

// SlotsField is the name of the persisted slot sequence field.
// Equipment stores the same shape under a different name.
func (k ContainerKind) SlotsField() string {
	if k == ContainerEquipment {
		return "equipments"
	}
	return "slots"
}

// Empty slot marker values
const (
	EmptySlotKey   = ""
	EmptySlotCount = -1
)

// Slot is one position in a container
type Slot struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// EmptySlot returns a cleared slot
func EmptySlot() Slot {
	return Slot{Key: EmptySlotKey, Count: EmptySlotCount}
}

// IsEmpty reports whether the slot holds nothing
func (s Slot) IsEmpty() bool {
	return s.Key == EmptySlotKey
}

// Clear empties the slot in place
func (s *Slot) Clear() {
	s.Key = EmptySlotKey
	s.Count = EmptySlotCount
}

// Container is an ordered slot sequence owned by one player.
// Slot indices are stable and never reordered.
type Container struct {
	Kind     ContainerKind
	Username string
	Slots    []Slot
}

// Clone returns a deep copy
func (c *Container) Clone() *Container {
	out := &Container{Kind: c.Kind, Username: c.Username, Slots: make([]Slot, len(c.Slots))}
	copy(out.Slots, c.Slots)
	return out
}

// MarshalJSON writes the slot sequence under the kind-specific field name
func (c *Container) MarshalJSON() ([]byte, error) {
	doc := map[string]any{"username": c.Username}
	doc[c.Kind.SlotsField()] = c.Slots
	return json.Marshal(doc)
}

// DecodeContainer parses a persisted container document of the given kind
func DecodeContainer(kind ContainerKind, data []byte) (*Container, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContainerKind, kind)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	c := &Container{Kind: kind, Slots: []Slot{}}
	if raw, ok := doc["username"]; ok {
		if err := json.Unmarshal(raw, &c.Username); err != nil {
			return nil, err
		}
	}
	if raw, ok := doc[kind.SlotsField()]; ok {
		if err := json.Unmarshal(raw, &c.Slots); err != nil {
			return nil, err
		}
	}
	return c, nil
}
