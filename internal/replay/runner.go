package replay

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/cardwm"
	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/modal"
	"github.com/1broseidon/cardwm/internal/platform"
)

// settleRounds bounds the animation and acknowledgement rounds of a settle.
const settleRounds = 50

// Result is the outcome of a replay.
type Result struct {
	Name     string          `json:"name"`
	Steps    int             `json:"steps"`
	Commands []string        `json:"commands"`
	Snapshot cardwm.Snapshot `json:"snapshot"`
}

// StepError reports the step a replay failed at.
type StepError struct {
	Step   int
	Action string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Action, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type runner struct {
	m    *cardwm.Manager
	host *platform.RecordingHost
	log  *zap.Logger

	names     map[string]card.ID
	ids       map[card.ID]string
	handled   *bool
	feedback  []string
	dismissed []string
}

// Run executes s against a fresh manager and recording host. Invariants are
// enforced strictly; a violation fails the step it happened in.
func Run(s *Script, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg, err := scriptConfig(s)
	if err != nil {
		return nil, err
	}
	cfg.Debug.StrictInvariants = true

	r := &runner{
		host:  platform.NewRecordingHost(),
		log:   logger.Named("replay"),
		names: make(map[string]card.ID),
		ids:   make(map[card.ID]string),
	}
	r.m = cardwm.New(cardwm.Options{
		Config: cfg,
		Host:   r.host,
		Logger: logger.Named("cardwm"),
		Signals: cardwm.Signals{
			Feedback: func(f cardwm.Feedback) { r.feedback = append(r.feedback, f.String()) },
			ModalDismissed: func(_ card.ID, reason modal.Reason) {
				r.dismissed = append(r.dismissed, reason.String())
			},
		},
	})

	for i := range s.Steps {
		st := &s.Steps[i]
		if err := r.step(st); err != nil {
			return r.result(s, i), &StepError{Step: i + 1, Action: st.Action(), Err: err}
		}
	}
	return r.result(s, len(s.Steps)), nil
}

func scriptConfig(s *Script) (*config.Config, error) {
	if s.Config.Kind == 0 {
		return config.DefaultConfig(), nil
	}
	data, err := yaml.Marshal(&s.Config)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid script config: %w", err)
	}
	return cfg, nil
}

func (r *runner) result(s *Script, steps int) *Result {
	cmds := r.host.Commands()
	out := &Result{
		Name:     s.Name,
		Steps:    steps,
		Commands: make([]string, 0, len(cmds)),
		Snapshot: r.m.Snapshot(),
	}
	for _, c := range cmds {
		out.Commands = append(out.Commands, r.describe(c))
	}
	return out
}

func (r *runner) step(st *Step) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	r.handled = nil

	if err := r.act(st); err != nil {
		return err
	}
	if !st.NoSettle {
		if err := r.settle(); err != nil {
			return err
		}
	}
	if st.Expect != nil {
		return r.check(st.Expect)
	}
	return nil
}

func (r *runner) act(st *Step) error {
	switch {
	case st.Open != nil:
		id, err := r.create(st.Open)
		if err != nil {
			return err
		}
		ok, err := r.prepare(id, st.Result)
		if err != nil || !ok {
			return err
		}
		return r.m.AddWindow(id)
	case st.Create != nil:
		_, err := r.create(st.Create)
		return err
	case st.Prepare != "":
		id, err := r.ref(st.Prepare)
		if err != nil {
			return err
		}
		_, err = r.prepare(id, st.Result)
		return err
	case st.Add != "":
		return r.withCard(st.Add, r.m.AddWindow)
	case st.Remove != "":
		return r.withCard(st.Remove, r.m.RemoveWindow)
	case st.SafeToDelete != "":
		return r.withCard(st.SafeToDelete, r.m.WindowSafeToDelete)
	case st.Timeout != "":
		return r.withCard(st.Timeout, r.m.AddWindowTimedOut)
	case st.Focus != "":
		return r.withCard(st.Focus, r.m.FocusWindow)
	case st.Maximize:
		r.m.MaximizeActiveWindow()
	case st.Minimize:
		r.m.MinimizeActiveWindow()
	case st.Navigate != "":
		key, ok := cardwm.ParseNavKey(st.Navigate)
		if !ok {
			return fmt.Errorf("unknown navigation key %q", st.Navigate)
		}
		r.setHandled(r.m.HandleNavigationEvent(key))
	case st.Tap != nil:
		p, err := r.point(st.Tap)
		if err != nil {
			return err
		}
		if st.Tap.Hold {
			r.setHandled(r.m.TapAndHold(p))
		} else {
			r.setHandled(r.m.Tap(p))
		}
	case st.Flick != nil:
		p, err := r.point(&st.Flick.From)
		if err != nil {
			return err
		}
		r.setHandled(r.m.Flick(cardwm.FlickEvent{
			Velocity: platform.Point{X: st.Flick.VX, Y: st.Flick.VY},
			Hotspot:  p,
		}))
	case st.Drag != nil:
		return r.drag(st.Drag)
	case st.Resize != nil:
		return r.m.Resize(st.Resize.Width, st.Resize.Height)
	case st.DismissModal:
		r.setHandled(r.m.DismissModalDialog())
	case st.PhoneCall:
		r.m.IncomingPhoneCall()
	case st.Launcher != nil:
		r.m.LauncherVisible(*st.Launcher)
	case st.TouchToShare:
		r.m.TouchToShare()
	}
	return nil
}

func (r *runner) setHandled(v bool) { r.handled = &v }

func (r *runner) create(spec *CardSpec) (card.ID, error) {
	if _, dup := r.names[spec.Name]; dup {
		return card.ID{}, fmt.Errorf("card %q already exists", spec.Name)
	}
	info := card.Info{
		Name:       spec.Name,
		ProcessID:  spec.PID,
		AppID:      spec.App,
		Size:       card.Size{Width: spec.Width, Height: spec.Height},
		Fullscreen: spec.Fullscreen,
	}
	if info.ProcessID == "" {
		info.ProcessID = "pid-" + spec.Name
	}
	if info.AppID == "" {
		info.AppID = "app." + spec.Name
	}
	switch spec.Kind {
	case "", "normal":
	case "modal":
		info.Kind = card.KindModalChild
	default:
		return card.ID{}, fmt.Errorf("unknown card kind %q", spec.Kind)
	}
	if spec.LaunchedBy != "" {
		parent := r.lookup(spec.LaunchedBy)
		if parent == nil {
			return card.ID{}, fmt.Errorf("launched_by: unknown card %q", spec.LaunchedBy)
		}
		info.LaunchingProcessID = parent.ProcessID
	}

	id := r.m.CreateCard(info)
	r.names[spec.Name] = id
	r.ids[id] = spec.Name
	return id, nil
}

// prepare runs PrepareAddWindow and reports whether the card was accepted.
// A rejection is an error unless want names it.
func (r *runner) prepare(id card.ID, want string) (bool, error) {
	res, err := r.m.PrepareAddWindow(id)
	if err != nil {
		return false, err
	}
	if want == "" {
		want = modal.NoErr.String()
	}
	if res.String() != want {
		return false, fmt.Errorf("add result: got %s, want %s", res, want)
	}
	return res == modal.NoErr, nil
}

func (r *runner) ref(name string) (card.ID, error) {
	if id, ok := r.names[name]; ok {
		return id, nil
	}
	return r.m.FindCard(name)
}

func (r *runner) withCard(name string, fn func(card.ID) error) error {
	id, err := r.ref(name)
	if err != nil {
		return err
	}
	return fn(id)
}

// point resolves a tap position: a card's center or an explicit point,
// plus the offset.
func (r *runner) point(t *TapSpec) (platform.Point, error) {
	var p platform.Point
	switch {
	case t.Card != "":
		id, err := r.ref(t.Card)
		if err != nil {
			return p, err
		}
		c := r.m.Card(id)
		p = platform.Point{X: c.Transform.X, Y: c.Transform.Y}
	case t.At != nil:
		p = platform.Point{X: t.At.X, Y: t.At.Y}
	default:
		return p, fmt.Errorf("position needs card or at")
	}
	p.X += t.DX
	p.Y += t.DY
	return p, nil
}

func (r *runner) drag(d *DragSpec) error {
	from, err := r.point(&d.From)
	if err != nil {
		return err
	}
	samples := d.Samples
	if samples <= 0 {
		samples = 4
	}
	handled := r.m.PointerDown(cardwm.PointerEvent{Pos: from, Origin: from})
	pos := from
	for i := 1; i <= samples; i++ {
		frac := float64(i) / float64(samples)
		pos = platform.Point{X: from.X + d.DX*frac, Y: from.Y + d.DY*frac}
		handled = r.m.PointerMove(cardwm.PointerEvent{Pos: pos, Origin: from}) || handled
	}
	if d.Release == nil || *d.Release {
		handled = r.m.PointerUp(cardwm.PointerEvent{Pos: pos, Origin: from})
	}
	r.setHandled(handled)
	return nil
}

// settle finishes animations and acknowledges async host requests until the
// manager is idle.
func (r *runner) settle() error {
	for i := 0; i < settleRounds; i++ {
		r.m.FinishAnimations()
		pending := r.host.TakePending()
		for _, cmd := range pending {
			r.m.AsyncFlipCompleted(cmd.Card, cmd.Seq)
		}
		if err := r.m.CheckInvariants(); err != nil {
			return err
		}
		if !r.m.Animating() && len(pending) == 0 {
			return nil
		}
	}
	return fmt.Errorf("manager did not settle after %d rounds", settleRounds)
}

func (r *runner) name(id card.ID) string {
	if !id.Valid() {
		return none
	}
	if n, ok := r.ids[id]; ok {
		return n
	}
	return id.String()
}

func (r *runner) describe(c platform.Command) string {
	name := r.name(c.Card)
	switch c.Op {
	case platform.OpResizeSync, platform.OpResizeAsync, platform.OpFlipSync, platform.OpFlipAsync:
		return fmt.Sprintf("%s %s %dx%d", c.Op, name, c.Width, c.Height)
	case platform.OpFocus, platform.OpDirectRendering:
		return fmt.Sprintf("%s %s %t", c.Op, name, c.Flag)
	default:
		return fmt.Sprintf("%s %s", c.Op, name)
	}
}

// WriteText prints the host command log and the final state.
func (res *Result) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d steps\n", res.Name, res.Steps)
	fmt.Fprintln(&b, "host commands:")
	for _, c := range res.Commands {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	s := res.Snapshot
	fmt.Fprintf(&b, "state: %s\n", s.State)
	if s.ActiveCard != "" {
		fmt.Fprintf(&b, "active: %s\n", s.ActiveCard)
	}
	if s.Maximized != "" {
		fmt.Fprintf(&b, "maximized: %s\n", s.Maximized)
	}
	fmt.Fprintf(&b, "modal: %s\n", s.Modal.State)
	for _, g := range s.Groups {
		marker := " "
		if g.Active {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s [%s]\n", marker, g.ID, strings.Join(g.Cards, " "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
