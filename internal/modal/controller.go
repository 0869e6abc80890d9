package modal

import "github.com/1broseidon/cardwm/internal/card"

// Controller holds the modal bookkeeping of the card manager.
type Controller struct {
	state           State
	parent          card.ID
	child           card.ID
	pending         Dismissal
	inProgress      bool
	lastAddWasModal bool
}

// NewController returns an inactive controller.
func NewController() *Controller {
	return &Controller{}
}

// CheckAdd runs the eligibility checks in order. It never mutates anything.
func (c *Controller) CheckAdd(child, active *card.Card) AddResult {
	if active == nil || !active.Maximized {
		return NoMaximizedCard
	}
	if !child.LaunchedBy(active) {
		return ParentDifferent
	}
	return NoErr
}

// Link records child as the modal of parent after a successful CheckAdd and
// places the child over its parent.
func (c *Controller) Link(child, parent *card.Card) {
	child.ModalParent = parent.ID
	child.Attached = false
	child.Group = card.GroupID{}
	Place(child, parent)

	parent.IsModalParent = true
	parent.ModalChild = child.ID
	parent.ModalAccept = card.ModalLaunchedNotAccepting

	c.state = StateLaunching
	c.parent = parent.ID
	c.child = child.ID
	c.lastAddWasModal = true
}

// Accept marks the modal as shown and accepting input.
func (c *Controller) Accept(parent *card.Card) {
	if parent != nil {
		parent.ModalAccept = card.ModalLaunchedAccepting
	}
	if c.state == StateLaunching {
		c.state = StateActive
	}
}

// Begin starts a dismissal. It returns false while another dismissal is
// still being processed; the first trigger wins.
func (c *Controller) Begin(reason Reason) (Dismissal, bool) {
	if c.inProgress {
		return Dismissal{}, false
	}
	d := DismissalFor(reason)
	c.inProgress = true
	c.pending = d
	c.state = StateDismissing
	return d, true
}

// InProgress reports whether a dismissal is being processed.
func (c *Controller) InProgress() bool { return c.inProgress }

// Pending returns the dismissal being processed.
func (c *Controller) Pending() Dismissal { return c.pending }

// End clears all bookkeeping and releases the dismissal guard.
func (c *Controller) End() {
	c.state = StateInactive
	c.parent = card.ID{}
	c.child = card.ID{}
	c.pending = Dismissal{}
	c.inProgress = false
}

// Active reports whether a modal is launching or shown.
func (c *Controller) Active() bool {
	return c.state == StateLaunching || c.state == StateActive
}

func (c *Controller) State() State { return c.state }

// Parent returns the modal parent, or the zero ID.
func (c *Controller) Parent() card.ID { return c.parent }

func (c *Controller) Child() card.ID { return c.child }

func (c *Controller) LastAddWasModal() bool { return c.lastAddWasModal }

// NoteNormalAdd records that the most recent add was not a modal.
func (c *Controller) NoteNormalAdd() { c.lastAddWasModal = false }

// Place centers child over parent.
func Place(child, parent *card.Card) {
	child.Transform = card.Transform{
		X:     parent.Transform.X,
		Y:     parent.Transform.Y,
		Scale: parent.Transform.Scale,
	}
}

// Unlink clears the modal links between parent and child. Either may be nil.
func Unlink(parent, child *card.Card) {
	if parent != nil {
		parent.IsModalParent = false
		parent.ModalChild = card.ID{}
		parent.ModalAccept = card.ModalNone
	}
	if child != nil {
		child.ModalParent = card.ID{}
	}
}
