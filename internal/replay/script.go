// Package replay runs scripted card scenarios against a recording host.
//
// A script is a YAML document with an optional config override and a list
// of steps. Each step performs one manager operation and may carry an
// expect block that is checked once the step settled:
//
//	name: modal over parent
//	steps:
//	  - open: {name: mail}
//	  - open: {name: compose, kind: modal, launched_by: mail}
//	    expect: {modal: active, modal_parent: mail}
//	  - dismiss_modal
//	  - expect: {state: maximize, focused: mail}
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Script is a parsed replay file.
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Config is merged over the default configuration.
	Config yaml.Node `yaml:"config,omitempty"`
	Steps  []Step    `yaml:"steps"`
}

// CardSpec describes a card to create.
type CardSpec struct {
	Name string `yaml:"name"`
	App  string `yaml:"app,omitempty"`
	PID  string `yaml:"pid,omitempty"`
	// LaunchedBy names an earlier card; the new card records it as its
	// launcher.
	LaunchedBy string  `yaml:"launched_by,omitempty"`
	Kind       string  `yaml:"kind,omitempty"`
	Width      float64 `yaml:"width,omitempty"`
	Height     float64 `yaml:"height,omitempty"`
	Fullscreen bool    `yaml:"fullscreen,omitempty"`
}

// Point is a screen position.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// TapSpec taps at a point, or at the center of a card when Card is set.
type TapSpec struct {
	Card string  `yaml:"card,omitempty"`
	At   *Point  `yaml:"at,omitempty"`
	Hold bool    `yaml:"hold,omitempty"`
	DX   float64 `yaml:"dx,omitempty"`
	DY   float64 `yaml:"dy,omitempty"`
}

// FlickSpec is a flick with velocity in pixels per second.
type FlickSpec struct {
	VX   float64 `yaml:"vx"`
	VY   float64 `yaml:"vy"`
	From TapSpec `yaml:"from"`
}

// DragSpec presses at From, moves by DX/DY over Samples pointer moves and
// releases.
type DragSpec struct {
	From    TapSpec `yaml:"from"`
	DX      float64 `yaml:"dx"`
	DY      float64 `yaml:"dy"`
	Samples int     `yaml:"samples,omitempty"`
	// Release false leaves the pointer down.
	Release *bool `yaml:"release,omitempty"`
}

// SizeSpec is a screen size.
type SizeSpec struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Step is one scripted operation. Exactly one action field is set, except
// for expect-only steps.
type Step struct {
	Open         *CardSpec  `yaml:"open,omitempty"`
	Create       *CardSpec  `yaml:"create,omitempty"`
	Prepare      string     `yaml:"prepare,omitempty"`
	Add          string     `yaml:"add,omitempty"`
	Remove       string     `yaml:"remove,omitempty"`
	SafeToDelete string     `yaml:"safe_to_delete,omitempty"`
	Timeout      string     `yaml:"timeout,omitempty"`
	Focus        string     `yaml:"focus,omitempty"`
	Maximize     bool       `yaml:"maximize,omitempty"`
	Minimize     bool       `yaml:"minimize,omitempty"`
	Navigate     string     `yaml:"navigate,omitempty"`
	Tap          *TapSpec   `yaml:"tap,omitempty"`
	Flick        *FlickSpec `yaml:"flick,omitempty"`
	Drag         *DragSpec  `yaml:"drag,omitempty"`
	Resize       *SizeSpec  `yaml:"resize,omitempty"`
	DismissModal bool       `yaml:"dismiss_modal,omitempty"`
	PhoneCall    bool       `yaml:"phone_call,omitempty"`
	Launcher     *bool      `yaml:"launcher,omitempty"`
	TouchToShare bool       `yaml:"touch_to_share,omitempty"`
	Settle       bool       `yaml:"settle,omitempty"`

	// Result is the expected modal add result of open and prepare steps.
	Result string `yaml:"result,omitempty"`
	// NoSettle checks expectations before animations finish and host
	// requests are acknowledged.
	NoSettle bool    `yaml:"no_settle,omitempty"`
	Expect   *Expect `yaml:"expect,omitempty"`
}

// bareSteps are actions that take no argument and may be written as a
// plain list item.
var bareSteps = map[string]func(*Step){
	"maximize":       func(s *Step) { s.Maximize = true },
	"minimize":       func(s *Step) { s.Minimize = true },
	"dismiss_modal":  func(s *Step) { s.DismissModal = true },
	"phone_call":     func(s *Step) { s.PhoneCall = true },
	"touch_to_share": func(s *Step) { s.TouchToShare = true },
	"settle":         func(s *Step) { s.Settle = true },
}

// UnmarshalYAML accepts "- settle" as shorthand for "- settle: true".
func (s *Step) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		set, ok := bareSteps[n.Value]
		if !ok {
			return fmt.Errorf("line %d: unknown step %q", n.Line, n.Value)
		}
		set(s)
		return nil
	}
	type plain Step
	return n.Decode((*plain)(s))
}

// Action names the operation of a step, or "expect" for check-only steps.
func (s *Step) Action() string {
	actions := s.actions()
	switch len(actions) {
	case 0:
		return "expect"
	case 1:
		return actions[0]
	default:
		return fmt.Sprint(actions)
	}
}

func (s *Step) actions() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(s.Open != nil, "open")
	add(s.Create != nil, "create")
	add(s.Prepare != "", "prepare")
	add(s.Add != "", "add")
	add(s.Remove != "", "remove")
	add(s.SafeToDelete != "", "safe_to_delete")
	add(s.Timeout != "", "timeout")
	add(s.Focus != "", "focus")
	add(s.Maximize, "maximize")
	add(s.Minimize, "minimize")
	add(s.Navigate != "", "navigate")
	add(s.Tap != nil, "tap")
	add(s.Flick != nil, "flick")
	add(s.Drag != nil, "drag")
	add(s.Resize != nil, "resize")
	add(s.DismissModal, "dismiss_modal")
	add(s.PhoneCall, "phone_call")
	add(s.Launcher != nil, "launcher")
	add(s.TouchToShare, "touch_to_share")
	add(s.Settle, "settle")
	return out
}

// Validate checks the structure of the script.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return errors.New("script has no steps")
	}
	var errs []error
	for i := range s.Steps {
		st := &s.Steps[i]
		n := len(st.actions())
		switch {
		case n > 1:
			errs = append(errs, fmt.Errorf("step %d: more than one action: %s", i+1, st.Action()))
		case n == 0 && st.Expect == nil:
			errs = append(errs, fmt.Errorf("step %d: no action", i+1))
		}
		if st.Result != "" && st.Open == nil && st.Prepare == "" {
			errs = append(errs, fmt.Errorf("step %d: result only applies to open and prepare", i+1))
		}
		for _, spec := range []*CardSpec{st.Open, st.Create} {
			if spec != nil && spec.Name == "" {
				errs = append(errs, fmt.Errorf("step %d: card needs a name", i+1))
			}
		}
	}
	return errors.Join(errs...)
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty script")
		}
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}
