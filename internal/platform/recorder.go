package platform

import (
	"fmt"
	"sync"

	"github.com/1broseidon/cardwm/internal/card"
)

// Op names a host command.
type Op string

const (
	OpResizeSync      Op = "resize-sync"
	OpResizeAsync     Op = "resize-async"
	OpFlipSync        Op = "flip-sync"
	OpFlipAsync       Op = "flip-async"
	OpFocus           Op = "focus"
	OpClose           Op = "close"
	OpDirectRendering Op = "direct-rendering"
)

// Command is one recorded host request.
type Command struct {
	Op     Op
	Card   card.ID
	Width  int
	Height int
	Seq    uint64
	Flag   bool
}

func (c Command) String() string {
	switch c.Op {
	case OpResizeAsync, OpFlipAsync:
		return fmt.Sprintf("%s %s %dx%d seq=%d", c.Op, c.Card, c.Width, c.Height, c.Seq)
	case OpResizeSync, OpFlipSync:
		return fmt.Sprintf("%s %s %dx%d", c.Op, c.Card, c.Width, c.Height)
	case OpFocus, OpDirectRendering:
		return fmt.Sprintf("%s %s %t", c.Op, c.Card, c.Flag)
	default:
		return fmt.Sprintf("%s %s", c.Op, c.Card)
	}
}

// RecordingHost is an in-memory WindowHost. It records every command and
// keeps async requests pending until the caller acknowledges them, which
// makes host round-trips deterministic in replays and tests.
type RecordingHost struct {
	mu       sync.Mutex
	commands []Command
	pending  []Command
	direct   map[card.ID]bool
	focused  card.ID
}

var _ WindowHost = (*RecordingHost)(nil)

// NewRecordingHost creates an empty recording host.
func NewRecordingHost() *RecordingHost {
	return &RecordingHost{direct: make(map[card.ID]bool)}
}

func (h *RecordingHost) record(c Command) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = append(h.commands, c)
	switch c.Op {
	case OpResizeAsync, OpFlipAsync:
		h.pending = append(h.pending, c)
	case OpDirectRendering:
		h.direct[c.Card] = c.Flag
	case OpFocus:
		if c.Flag {
			h.focused = c.Card
		} else if h.focused == c.Card {
			h.focused = card.ID{}
		}
	}
}

func (h *RecordingHost) ResizeEventSync(id card.ID, width, height int) error {
	h.record(Command{Op: OpResizeSync, Card: id, Width: width, Height: height})
	return nil
}

func (h *RecordingHost) ResizeEventAsync(id card.ID, width, height int, seq uint64) error {
	h.record(Command{Op: OpResizeAsync, Card: id, Width: width, Height: height, Seq: seq})
	return nil
}

func (h *RecordingHost) FlipEventSync(id card.ID, width, height int) error {
	h.record(Command{Op: OpFlipSync, Card: id, Width: width, Height: height})
	return nil
}

func (h *RecordingHost) FlipEventAsync(id card.ID, width, height int, seq uint64) error {
	h.record(Command{Op: OpFlipAsync, Card: id, Width: width, Height: height, Seq: seq})
	return nil
}

func (h *RecordingHost) Focus(id card.ID, focused bool) error {
	h.record(Command{Op: OpFocus, Card: id, Flag: focused})
	return nil
}

func (h *RecordingHost) Close(id card.ID) error {
	h.record(Command{Op: OpClose, Card: id})
	return nil
}

func (h *RecordingHost) SetDirectRendering(id card.ID, enabled bool) error {
	h.record(Command{Op: OpDirectRendering, Card: id, Flag: enabled})
	return nil
}

// Commands returns a copy of every recorded command.
func (h *RecordingHost) Commands() []Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Command, len(h.commands))
	copy(out, h.commands)
	return out
}

// CommandsFor returns the recorded commands of one op.
func (h *RecordingHost) CommandsFor(op Op) []Command {
	var out []Command
	for _, c := range h.Commands() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// TakePending removes and returns every unacknowledged async request.
func (h *RecordingHost) TakePending() []Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.pending
	h.pending = nil
	return out
}

// DirectRendering reports the last direct-rendering state sent for id.
func (h *RecordingHost) DirectRendering(id card.ID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.direct[id]
}

// Focused returns the card that last received host focus.
func (h *RecordingHost) Focused() card.ID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focused
}

// Reset clears the command log.
func (h *RecordingHost) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = nil
	h.pending = nil
}
