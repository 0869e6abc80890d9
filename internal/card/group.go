package card

import (
	"math"
	"sort"
)

// Direction is a horizontal direction inside the card strip.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
)

func (d Direction) String() string {
	if d == DirLeft {
		return "left"
	}
	return "right"
}

// FanLaw maps a signed slot distance from the group center to a horizontal
// offset measured in card widths. The first len(Weights) slots use the
// decreasing weights; every slot beyond packs linearly with PackStep.
type FanLaw struct {
	Weights  []float64
	PackStep float64
}

// DefaultFanLaw returns the fan law used when no configuration overrides it.
func DefaultFanLaw() FanLaw {
	return FanLaw{
		Weights:  []float64{0.9, 0.55, 0.3, 0.18},
		PackStep: 0.08,
	}
}

// Offset returns the offset for distance d (in cards).
func (f FanLaw) Offset(d float64) float64 {
	sign := 1.0
	if d < 0 {
		sign = -1
		d = -d
	}
	sum := 0.0
	for _, w := range f.Weights {
		if d <= 0 {
			break
		}
		step := math.Min(d, 1)
		sum += step * w
		d -= step
	}
	if d > 0 {
		sum += d * f.PackStep
	}
	return sign * sum
}

// Group is an ordered, horizontally fanned stack of cards. Index 0 is the
// leftmost card.
type Group struct {
	ID GroupID

	cards  []ID
	active ID
	fan    float64

	// X and Y are the group center in shell coordinates.
	X float64
	Y float64
	// LeftExtent and RightExtent are the distances from X to the outermost
	// card edges, derived during Layout.
	LeftExtent  float64
	RightExtent float64
}

// Len returns the number of member cards.
func (g *Group) Len() int { return len(g.cards) }

// Empty reports whether the group has no members left.
func (g *Group) Empty() bool { return len(g.cards) == 0 }

// Cards returns a copy of the member list, left to right.
func (g *Group) Cards() []ID {
	out := make([]ID, len(g.cards))
	copy(out, g.cards)
	return out
}

// Active returns the active card.
func (g *Group) Active() ID { return g.active }

// ActiveIndex returns the index of the active card, or -1.
func (g *Group) ActiveIndex() int { return g.IndexOf(g.active) }

// IndexOf returns the position of id in the group, or -1.
func (g *Group) IndexOf(id ID) int {
	for i, c := range g.cards {
		if c == id {
			return i
		}
	}
	return -1
}

// Contains reports membership.
func (g *Group) Contains(id ID) bool { return g.IndexOf(id) >= 0 }

// At returns the card at index i, or the zero ID when out of range.
func (g *Group) At(i int) ID {
	if i < 0 || i >= len(g.cards) {
		return ID{}
	}
	return g.cards[i]
}

// FanPosition returns the current fan offset.
func (g *Group) FanPosition() float64 { return g.fan }

// SetActive makes a member the active card and resets the fan.
func (g *Group) SetActive(id ID) bool {
	if !g.Contains(id) {
		return false
	}
	g.active = id
	g.fan = 0
	return true
}

// AddToGroup inserts the card right of the active card and activates it.
func (g *Group) AddToGroup(id ID) {
	if g.Contains(id) {
		g.SetActive(id)
		return
	}
	at := g.ActiveIndex() + 1
	g.insert(at, id)
	g.active = id
	g.fan = 0
}

// AddToFront inserts the card as the leftmost member.
func (g *Group) AddToFront(id ID, activate bool) {
	if g.Contains(id) {
		return
	}
	g.insert(0, id)
	if activate || !g.active.Valid() {
		g.active = id
	}
	g.clampFan()
}

// AddToBack appends the card as the rightmost member.
func (g *Group) AddToBack(id ID, activate bool) {
	if g.Contains(id) {
		return
	}
	g.insert(len(g.cards), id)
	if activate || !g.active.Valid() {
		g.active = id
	}
	g.clampFan()
}

func (g *Group) insert(at int, id ID) {
	if at < 0 {
		at = 0
	}
	if at > len(g.cards) {
		at = len(g.cards)
	}
	g.cards = append(g.cards, ID{})
	copy(g.cards[at+1:], g.cards[at:])
	g.cards[at] = id
}

// Remove drops a member. When the active card leaves, its left neighbour
// becomes active, falling back to the right neighbour.
func (g *Group) Remove(id ID) bool {
	idx := g.IndexOf(id)
	if idx < 0 {
		return false
	}
	g.cards = append(g.cards[:idx], g.cards[idx+1:]...)
	if g.active == id {
		switch {
		case len(g.cards) == 0:
			g.active = ID{}
		case idx > 0:
			g.active = g.cards[idx-1]
		default:
			g.active = g.cards[0]
		}
	}
	g.clampFan()
	return true
}

// MoveActiveCard swaps the active card with its neighbour in dir. It returns
// false at the group boundary so the caller can migrate the card instead.
func (g *Group) MoveActiveCard(dir Direction) bool {
	idx := g.ActiveIndex()
	if idx < 0 {
		return false
	}
	target := idx - 1
	if dir == DirRight {
		target = idx + 1
	}
	if target < 0 || target >= len(g.cards) {
		return false
	}
	g.cards[idx], g.cards[target] = g.cards[target], g.cards[idx]
	g.clampFan()
	return true
}

// AdjustHorizontally moves the fan by delta cards. Positive values bring
// cards right of the active one toward the center.
func (g *Group) AdjustHorizontally(delta float64) {
	g.fan += delta
	g.clampFan()
}

// Flick snaps the fan to the next whole card in the flick direction and
// returns the resulting fan position.
func (g *Group) Flick(velocity float64) float64 {
	switch {
	case velocity > 0:
		g.fan = math.Floor(g.fan) + 1
	case velocity < 0:
		g.fan = math.Ceil(g.fan) - 1
	default:
		g.fan = math.Round(g.fan)
	}
	g.clampFan()
	return g.fan
}

// AtEdge reports whether fanning further in dir would leave the valid range.
func (g *Group) AtEdge(dir Direction) bool {
	idx := g.ActiveIndex()
	if idx < 0 {
		return true
	}
	pos := float64(idx) + g.fan
	if dir == DirRight {
		return pos >= float64(len(g.cards)-1)
	}
	return pos <= 0
}

// Settle rounds the fan to the nearest card, makes that card active and
// returns whether the active card changed.
func (g *Group) Settle() bool {
	idx := g.ActiveIndex()
	if idx < 0 {
		g.fan = 0
		return false
	}
	target := idx + int(math.Round(g.fan))
	if target < 0 {
		target = 0
	}
	if target > len(g.cards)-1 {
		target = len(g.cards) - 1
	}
	g.fan = 0
	if target == idx {
		return false
	}
	g.active = g.cards[target]
	return true
}

// clampFan keeps the fan inside [-(N-1), N-1] and within the span of cards
// reachable from the active one.
func (g *Group) clampFan() {
	n := len(g.cards)
	if n <= 1 {
		g.fan = 0
		return
	}
	limit := float64(n - 1)
	idx := g.ActiveIndex()
	lo, hi := -limit, limit
	if idx >= 0 {
		lo = math.Max(lo, -float64(idx))
		hi = math.Min(hi, float64(n-1-idx))
	}
	if g.fan < lo {
		g.fan = lo
	}
	if g.fan > hi {
		g.fan = hi
	}
}

// Layout computes member offsets relative to X using the fan law and updates
// the group extents. widthOf returns the scaled width of a member.
func (g *Group) Layout(widthOf func(ID) float64, law FanLaw) map[ID]float64 {
	offsets := make(map[ID]float64, len(g.cards))
	idx := g.ActiveIndex()
	if idx < 0 {
		g.LeftExtent, g.RightExtent = 0, 0
		return offsets
	}
	ref := widthOf(g.active)
	left, right := 0.0, 0.0
	for i, id := range g.cards {
		d := float64(i-idx) - g.fan
		off := law.Offset(d) * ref
		offsets[id] = off
		half := widthOf(id) / 2
		left = math.Max(left, half-off)
		right = math.Max(right, off+half)
	}
	g.LeftExtent, g.RightExtent = left, right
	return offsets
}

// StackOrder returns members bottom to top: the active card is raised last
// and the others are ordered by their distance from it.
func (g *Group) StackOrder() []ID {
	idx := g.ActiveIndex()
	out := g.Cards()
	sort.SliceStable(out, func(a, b int) bool {
		da := absInt(g.IndexOf(out[a]) - idx)
		db := absInt(g.IndexOf(out[b]) - idx)
		return da > db
	})
	return out
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
