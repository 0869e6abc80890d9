package card

import "fmt"

// GroupID is a generational handle to a Group in a Store.
type GroupID struct {
	index uint32
	gen   uint32
}

// Valid reports whether the handle was ever issued.
func (id GroupID) Valid() bool { return id.gen != 0 }

func (id GroupID) String() string {
	if !id.Valid() {
		return "group(none)"
	}
	return fmt.Sprintf("group(%d.%d)", id.index, id.gen)
}

type cardSlot struct {
	gen  uint32
	card *Card
}

type groupSlot struct {
	gen   uint32
	group *Group
}

// Store is the arena owning every live card and group. Handles to freed slots
// stop resolving, so weak references never dangle.
type Store struct {
	cards      []cardSlot
	freeCards  []uint32
	groups     []groupSlot
	freeGroups []uint32
}

// NewStore creates an empty arena.
func NewStore() *Store {
	return &Store{}
}

// NewCard allocates a card.
func (s *Store) NewCard(info Info) *Card {
	var idx uint32
	if n := len(s.freeCards); n > 0 {
		idx = s.freeCards[n-1]
		s.freeCards = s.freeCards[:n-1]
	} else {
		idx = uint32(len(s.cards))
		s.cards = append(s.cards, cardSlot{})
	}
	slot := &s.cards[idx]
	slot.gen++
	c := newCard(ID{index: idx, gen: slot.gen}, info)
	slot.card = c
	return c
}

// Card resolves a handle. It returns nil once the card has been freed.
func (s *Store) Card(id ID) *Card {
	if !id.Valid() || int(id.index) >= len(s.cards) {
		return nil
	}
	slot := s.cards[id.index]
	if slot.gen != id.gen {
		return nil
	}
	return slot.card
}

// FreeCard releases the slot. Outstanding handles become invalid.
func (s *Store) FreeCard(id ID) bool {
	if s.Card(id) == nil {
		return false
	}
	slot := &s.cards[id.index]
	slot.card = nil
	// Bump on free as well so a stale handle never matches a reused slot.
	slot.gen++
	s.freeCards = append(s.freeCards, id.index)
	return true
}

// Cards returns every live card in allocation order.
func (s *Store) Cards() []*Card {
	out := make([]*Card, 0, len(s.cards))
	for _, slot := range s.cards {
		if slot.card != nil {
			out = append(out, slot.card)
		}
	}
	return out
}

// NewGroup allocates an empty group.
func (s *Store) NewGroup() *Group {
	var idx uint32
	if n := len(s.freeGroups); n > 0 {
		idx = s.freeGroups[n-1]
		s.freeGroups = s.freeGroups[:n-1]
	} else {
		idx = uint32(len(s.groups))
		s.groups = append(s.groups, groupSlot{})
	}
	slot := &s.groups[idx]
	slot.gen++
	g := &Group{ID: GroupID{index: idx, gen: slot.gen}}
	slot.group = g
	return g
}

// Group resolves a group handle.
func (s *Store) Group(id GroupID) *Group {
	if !id.Valid() || int(id.index) >= len(s.groups) {
		return nil
	}
	slot := s.groups[id.index]
	if slot.gen != id.gen {
		return nil
	}
	return slot.group
}

// FreeGroup releases a group slot.
func (s *Store) FreeGroup(id GroupID) bool {
	if s.Group(id) == nil {
		return false
	}
	slot := &s.groups[id.index]
	slot.group = nil
	slot.gen++
	s.freeGroups = append(s.freeGroups, id.index)
	return true
}
