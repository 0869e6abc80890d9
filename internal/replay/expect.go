package replay

import (
	"errors"
	"fmt"
	"slices"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/platform"
)

// none matches an unset card reference in expectations.
const none = "none"

// Expect lists the checks of a step. Empty fields are not checked; card
// fields take a card name or "none".
type Expect struct {
	State           string `yaml:"state,omitempty"`
	Active          string `yaml:"active,omitempty"`
	Maximized       string `yaml:"maximized,omitempty"`
	Focused         string `yaml:"focused,omitempty"`
	DirectRendering string `yaml:"direct_rendering,omitempty"`
	Modal           string `yaml:"modal,omitempty"`
	ModalParent     string `yaml:"modal_parent,omitempty"`
	// Handled is the return value of the step's input call.
	Handled *bool `yaml:"handled,omitempty"`
	Groups  *int  `yaml:"groups,omitempty"`
	// Strip lists the cards of every group in strip order.
	Strip    [][]string `yaml:"strip,omitempty"`
	Visible  []string   `yaml:"visible,omitempty"`
	Hidden   []string   `yaml:"hidden,omitempty"`
	Gone     []string   `yaml:"gone,omitempty"`
	Closed   []string   `yaml:"closed,omitempty"`
	Feedback string     `yaml:"feedback,omitempty"`
	// Dismissed lists every modal dismissal reason so far.
	Dismissed []string `yaml:"dismissed,omitempty"`
}

func (r *runner) check(e *Expect) error {
	var errs []error
	mismatch := func(what string, got, want any) {
		errs = append(errs, fmt.Errorf("%s: got %v, want %v", what, got, want))
	}
	eqID := func(what, want string, got card.ID) {
		if want != "" && r.name(got) != want {
			mismatch(what, r.name(got), want)
		}
	}

	if e.State != "" && r.m.State().String() != e.State {
		mismatch("state", r.m.State(), e.State)
	}
	eqID("active", e.Active, r.m.ActiveWindow())
	eqID("maximized", e.Maximized, r.m.MaximizedWindow())
	eqID("focused", e.Focused, r.host.Focused())
	eqID("direct_rendering", e.DirectRendering, r.m.DirectRenderingWindow())
	eqID("modal_parent", e.ModalParent, r.m.ModalParent())
	if e.Modal != "" && r.m.ModalState().String() != e.Modal {
		mismatch("modal", r.m.ModalState(), e.Modal)
	}
	if e.Handled != nil {
		if r.handled == nil {
			errs = append(errs, errors.New("handled: step made no input call"))
		} else if *r.handled != *e.Handled {
			mismatch("handled", *r.handled, *e.Handled)
		}
	}
	if e.Groups != nil && len(r.m.Groups()) != *e.Groups {
		mismatch("groups", len(r.m.Groups()), *e.Groups)
	}
	if e.Strip != nil {
		if got := r.strip(); !slices.EqualFunc(got, e.Strip, slices.Equal[[]string]) {
			mismatch("strip", got, e.Strip)
		}
	}
	for _, name := range e.Visible {
		if c := r.lookup(name); c == nil || !c.Visible {
			errs = append(errs, fmt.Errorf("visible: %s is not visible", name))
		}
	}
	for _, name := range e.Hidden {
		if c := r.lookup(name); c != nil && c.Visible {
			errs = append(errs, fmt.Errorf("hidden: %s is visible", name))
		}
	}
	for _, name := range e.Gone {
		if r.lookup(name) != nil {
			errs = append(errs, fmt.Errorf("gone: %s still exists", name))
		}
	}
	if e.Closed != nil {
		var got []string
		for _, c := range r.host.CommandsFor(platform.OpClose) {
			got = append(got, r.name(c.Card))
		}
		if !slices.Equal(got, e.Closed) {
			mismatch("closed", got, e.Closed)
		}
	}
	if e.Feedback != "" {
		last := none
		if n := len(r.feedback); n > 0 {
			last = r.feedback[n-1]
		}
		if last != e.Feedback {
			mismatch("feedback", last, e.Feedback)
		}
	}
	if e.Dismissed != nil && !slices.Equal(r.dismissed, e.Dismissed) {
		mismatch("dismissed", r.dismissed, e.Dismissed)
	}
	return errors.Join(errs...)
}

// strip returns card names per group in strip order.
func (r *runner) strip() [][]string {
	out := [][]string{}
	for _, gid := range r.m.Groups() {
		g := r.m.Group(gid)
		names := []string{}
		for _, id := range g.Cards() {
			names = append(names, r.name(id))
		}
		out = append(out, names)
	}
	return out
}

// lookup returns the live card registered under name, or nil.
func (r *runner) lookup(name string) *card.Card {
	id, ok := r.names[name]
	if !ok {
		return nil
	}
	return r.m.Card(id)
}
