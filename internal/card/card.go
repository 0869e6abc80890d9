package card

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes grouped application cards from modal dialogs.
type Kind int

const (
	// KindNormal is a regular application card owned by a Group.
	KindNormal Kind = iota
	// KindModalChild overlays its parent card and is never grouped.
	KindModalChild
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindModalChild:
		return "modal"
	default:
		return "unknown"
	}
}

// ModalAccept is the accept-input state of a modal parent.
type ModalAccept int

const (
	ModalNone ModalAccept = iota
	ModalLaunchedNotAccepting
	ModalLaunchedAccepting
)

func (m ModalAccept) String() string {
	switch m {
	case ModalNone:
		return "none"
	case ModalLaunchedNotAccepting:
		return "launched-not-accepting"
	case ModalLaunchedAccepting:
		return "launched-accepting"
	default:
		return "unknown"
	}
}

// ID is a generational handle into a Store. The zero ID never refers to a card.
type ID struct {
	index uint32
	gen   uint32
}

// Valid reports whether the handle was ever issued.
func (id ID) Valid() bool { return id.gen != 0 }

func (id ID) String() string {
	if !id.Valid() {
		return "card(none)"
	}
	return fmt.Sprintf("card(%d.%d)", id.index, id.gen)
}

// ParseID parses the text form of an ID, either "card(3.1)" or "3.1".
func ParseID(s string) (ID, error) {
	raw := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "card("), ")")
	idx, gen, ok := strings.Cut(raw, ".")
	if !ok {
		return ID{}, fmt.Errorf("invalid card id %q", s)
	}
	i, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return ID{}, fmt.Errorf("invalid card id %q: %w", s, err)
	}
	g, err := strconv.ParseUint(gen, 10, 32)
	if err != nil || g == 0 {
		return ID{}, fmt.Errorf("invalid card id %q: bad generation", s)
	}
	return ID{index: uint32(i), gen: uint32(g)}, nil
}

// Transform is the visual placement of a card in shell coordinates.
type Transform struct {
	X        float64
	Y        float64
	Scale    float64
	Rotation float64
}

// Size is the bounding size of a card at scale 1.
type Size struct {
	Width  float64
	Height float64
}

// Info describes a card at creation time.
type Info struct {
	Name               string
	ProcessID          string
	AppID              string
	LaunchingAppID     string
	LaunchingProcessID string
	Kind               Kind
	Size               Size
	Fullscreen         bool
}

// Card is one managed surface.
type Card struct {
	ID                 ID
	Name               string
	ProcessID          string
	AppID              string
	LaunchingAppID     string
	LaunchingProcessID string
	Kind               Kind

	Transform Transform
	Size      Size
	// Attached cards are positioned by their group; detached cards are
	// positioned independently (entry animations, reorder drag, modals).
	Attached bool

	Focused        bool
	Maximized      bool
	Loading        bool
	Added          bool
	Removed        bool
	PreparePending bool
	Visible        bool
	SafeToDelete   bool
	Fullscreen     bool
	Shadow         bool

	Group GroupID

	ModalParent   ID
	ModalChild    ID
	IsModalParent bool
	ModalAccept   ModalAccept
}

func newCard(id ID, info Info) *Card {
	return &Card{
		ID:                 id,
		Name:               info.Name,
		ProcessID:          info.ProcessID,
		AppID:              info.AppID,
		LaunchingAppID:     info.LaunchingAppID,
		LaunchingProcessID: info.LaunchingProcessID,
		Kind:               info.Kind,
		Size:               info.Size,
		Fullscreen:         info.Fullscreen,
		Transform:          Transform{Scale: 1},
		Attached:           true,
	}
}

// Label returns a human-readable name for logs.
func (c *Card) Label() string {
	if c.Name != "" {
		return c.Name
	}
	if c.AppID != "" {
		return c.AppID
	}
	return c.ID.String()
}

// LaunchedBy reports whether c was launched from the given card, matching on
// launching process id first and falling back to launching app id.
func (c *Card) LaunchedBy(parent *Card) bool {
	if parent == nil {
		return false
	}
	if c.LaunchingProcessID != "" && c.LaunchingProcessID == parent.ProcessID {
		return true
	}
	return c.LaunchingAppID != "" && c.LaunchingAppID == parent.AppID
}

// ClearModal drops every modal link held by the card.
func (c *Card) ClearModal() {
	c.ModalParent = ID{}
	c.ModalChild = ID{}
	c.IsModalParent = false
	c.ModalAccept = ModalNone
}

// ScaledWidth returns the card width at its current scale.
func (c *Card) ScaledWidth() float64 {
	return c.Size.Width * c.Transform.Scale
}
