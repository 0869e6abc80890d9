// Package modal tracks the parent/child relationship of modal dialog cards
// and the policy applied when a modal is rejected or dismissed.
package modal

// AddResult is the outcome of a modal add eligibility check.
type AddResult int

const (
	NoErr AddResult = iota
	NoMaximizedCard
	ParentDifferent
)

func (r AddResult) String() string {
	switch r {
	case NoErr:
		return "no-error"
	case NoMaximizedCard:
		return "no-maximized-card"
	case ParentDifferent:
		return "parent-different"
	default:
		return "unknown"
	}
}

// Reason says why a modal went away. Each reason maps to one Dismissal.
type Reason int

const (
	// DismissedInternally: home button or minimize request while the modal is up.
	DismissedInternally Reason = iota + 1
	// DismissedExternally: the owning application closed the modal.
	DismissedExternally
	// ParentDismissed: the maximized parent is being removed.
	ParentDismissed
	// ActiveCardsSwitched: the user navigated to another card.
	ActiveCardsSwitched
	// AddInitCheckFailed: rejected before it ever became visible.
	AddInitCheckFailed
)

func (r Reason) String() string {
	switch r {
	case DismissedInternally:
		return "dismissed-internally"
	case DismissedExternally:
		return "dismissed-externally"
	case ParentDismissed:
		return "parent-dismissed"
	case ActiveCardsSwitched:
		return "active-cards-switched"
	case AddInitCheckFailed:
		return "add-init-check-failed"
	default:
		return "none"
	}
}

// Restore is what happens to the parent card after dismissal.
type Restore int

const (
	RestoreNone Restore = iota
	// RestoreActive makes the parent the active card without maximizing it.
	RestoreActive
	// RestoreMaximized makes the parent active and keeps it maximized.
	RestoreMaximized
)

// Reset selects when modal bookkeeping is cleared.
type Reset int

const (
	// ResetClear clears bookkeeping once the dismissal animation completes.
	ResetClear Reset = iota
	// ResetForce clears bookkeeping immediately.
	ResetForce
)

// Dismissal is the single value carried through the dismissal pipeline.
type Dismissal struct {
	Reason  Reason
	Animate bool
	Restore Restore
	Reset   Reset
}

var policies = map[Reason]Dismissal{
	DismissedInternally: {Reason: DismissedInternally, Animate: true, Restore: RestoreActive, Reset: ResetClear},
	DismissedExternally: {Reason: DismissedExternally, Animate: false, Restore: RestoreMaximized, Reset: ResetClear},
	ParentDismissed:     {Reason: ParentDismissed, Animate: false, Restore: RestoreNone, Reset: ResetForce},
	ActiveCardsSwitched: {Reason: ActiveCardsSwitched, Animate: true, Restore: RestoreNone, Reset: ResetClear},
	AddInitCheckFailed:  {Reason: AddInitCheckFailed, Animate: false, Restore: RestoreNone, Reset: ResetForce},
}

// DismissalFor returns the policy for reason.
func DismissalFor(reason Reason) Dismissal {
	if d, ok := policies[reason]; ok {
		return d
	}
	return Dismissal{Reason: reason, Reset: ResetForce}
}

// State is the modal bookkeeping state.
type State int

const (
	StateInactive State = iota
	// StateLaunching: the child passed the add check but the host has not added it yet.
	StateLaunching
	StateActive
	StateDismissing
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateLaunching:
		return "launching"
	case StateActive:
		return "active"
	case StateDismissing:
		return "dismissing"
	default:
		return "unknown"
	}
}
