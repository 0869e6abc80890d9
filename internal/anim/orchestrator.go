// Package anim schedules card and group animations as one aggregate unit of
// running work. Tween math is left to an optional Animator; the orchestrator
// only tracks time, commits final values and reports a single completion.
package anim

import (
	"fmt"
	"time"

	"github.com/1broseidon/cardwm/internal/card"
)

// TargetKind selects which animation map a key belongs to.
type TargetKind int

const (
	TargetCard TargetKind = iota
	TargetGroup
	// TargetDeleted holds exit animations of cards being removed.
	TargetDeleted
)

// Key identifies the animated object. At most one animation runs per key.
type Key struct {
	Kind  TargetKind
	Card  card.ID
	Group card.GroupID
}

func CardKey(id card.ID) Key { return Key{Kind: TargetCard, Card: id} }

func GroupKey(id card.GroupID) Key { return Key{Kind: TargetGroup, Group: id} }

func DeletedKey(id card.ID) Key { return Key{Kind: TargetDeleted, Card: id} }

func (k Key) String() string {
	switch k.Kind {
	case TargetCard:
		return "card:" + k.Card.String()
	case TargetGroup:
		return "group:" + k.Group.String()
	case TargetDeleted:
		return "deleted:" + k.Card.String()
	default:
		return fmt.Sprintf("key(%d)", k.Kind)
	}
}

// Animation is one unit of running work.
type Animation struct {
	Duration time.Duration
	// Apply commits the final property values. It is not called when the
	// animation is canceled or replaced.
	Apply func()
	// Done is invoked after Apply with completed=true, or with false when the
	// animation is canceled or superseded.
	Done func(completed bool)
}

// Animator receives start/stop notifications so a renderer can tween.
type Animator interface {
	Started(key Key, d time.Duration)
	Stopped(key Key, completed bool)
}

type entry struct {
	key     Key
	anim    Animation
	elapsed time.Duration
}

// Orchestrator is the in-flight set. It is not safe for concurrent use.
type Orchestrator struct {
	running    map[Key]*entry
	order      []Key
	onFinished func()
	animator   Animator
}

// New creates an orchestrator. onFinished fires whenever the in-flight set
// drains to empty after at least one animation completed.
func New(onFinished func(), animator Animator) *Orchestrator {
	return &Orchestrator{
		running:    make(map[Key]*entry),
		onFinished: onFinished,
		animator:   animator,
	}
}

// Start schedules a. A running animation for the same key is canceled first
// so two animations never race on the same property.
func (o *Orchestrator) Start(key Key, a Animation) {
	if _, ok := o.running[key]; ok {
		o.Cancel(key)
	}
	o.running[key] = &entry{key: key, anim: a}
	o.order = append(o.order, key)
	if o.animator != nil {
		o.animator.Started(key, a.Duration)
	}
}

// Cancel stops the animation for key without committing it.
func (o *Orchestrator) Cancel(key Key) bool {
	e, ok := o.running[key]
	if !ok {
		return false
	}
	o.remove(key)
	if o.animator != nil {
		o.animator.Stopped(key, false)
	}
	if e.anim.Done != nil {
		e.anim.Done(false)
	}
	return true
}

// Running reports whether key has an animation in flight.
func (o *Orchestrator) Running(key Key) bool {
	_, ok := o.running[key]
	return ok
}

// Busy reports whether any animation is in flight.
func (o *Orchestrator) Busy() bool { return len(o.running) > 0 }

// Len returns the number of in-flight animations.
func (o *Orchestrator) Len() int { return len(o.running) }

// Keys returns the in-flight keys in start order.
func (o *Orchestrator) Keys() []Key {
	out := make([]Key, len(o.order))
	copy(out, o.order)
	return out
}

// Advance moves every animation forward by dt and completes those that
// reached their duration.
func (o *Orchestrator) Advance(dt time.Duration) {
	var done []*entry
	for _, key := range o.order {
		e := o.running[key]
		e.elapsed += dt
		if e.elapsed >= e.anim.Duration {
			done = append(done, e)
		}
	}
	o.complete(done)
}

// FinishAll completes every in-flight animation immediately.
func (o *Orchestrator) FinishAll() {
	done := make([]*entry, 0, len(o.order))
	for _, key := range o.order {
		done = append(done, o.running[key])
	}
	o.complete(done)
}

func (o *Orchestrator) complete(done []*entry) {
	if len(done) == 0 {
		return
	}
	for _, e := range done {
		o.remove(e.key)
	}
	for _, e := range done {
		if o.animator != nil {
			o.animator.Stopped(e.key, true)
		}
		if e.anim.Apply != nil {
			e.anim.Apply()
		}
		if e.anim.Done != nil {
			e.anim.Done(true)
		}
	}
	if len(o.running) == 0 && o.onFinished != nil {
		o.onFinished()
	}
}

func (o *Orchestrator) remove(key Key) {
	delete(o.running, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			return
		}
	}
}
