package config

import (
	"fmt"
	"time"
)

// Screen describes the display the shell runs on when it cannot be detected.
type Screen struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// GestureStrip is the height of the bottom strip that accepts
	// minimize flicks while a card is maximized.
	GestureStrip int `yaml:"gesture_strip"`
}

// Layout holds the card strip geometry.
type Layout struct {
	ActiveScale    float64 `yaml:"active_scale"`     // Scale of cards in the active group.
	NonActiveScale float64 `yaml:"non_active_scale"` // Scale of cards in other groups.
	GroupSpacing   float64 `yaml:"group_spacing"`    // Gap between group extents, in pixels.
	YOffset        float64 `yaml:"y_offset"`         // Vertical offset of minimized groups.
	// FanWeights are the spacing weights of the first fan slots, in card widths.
	FanWeights []float64 `yaml:"fan_weights"`
	// FanPackStep is the spacing of every slot beyond len(FanWeights).
	FanPackStep float64 `yaml:"fan_pack_step"`
}

// Animation holds durations in milliseconds.
type Animation struct {
	MaximizeMS  int `yaml:"maximize_ms"`
	MinimizeMS  int `yaml:"minimize_ms"`
	FocusMS     int `yaml:"focus_ms"`
	SlideMS     int `yaml:"slide_ms"`
	CardEnterMS int `yaml:"card_enter_ms"`
	CardExitMS  int `yaml:"card_exit_ms"`
	ModalMS     int `yaml:"modal_ms"`
	ReorderMS   int `yaml:"reorder_ms"`
}

// Gestures holds the pointer heuristics.
type Gestures struct {
	// AxisLockDistance is how far a pointer must travel before the drag
	// locks to the horizontal or vertical axis.
	AxisLockDistance float64 `yaml:"axis_lock_distance"`
	// ReorderZoneWidth is the drag distance that moves a card one slot.
	ReorderZoneWidth float64 `yaml:"reorder_zone_width"`
	// FlickMinVelocity is the minimum speed (px/s) that counts as a flick.
	FlickMinVelocity float64 `yaml:"flick_min_velocity"`
	// CloseDistance is the upward drag that throws a card away on release.
	CloseDistance float64 `yaml:"close_distance"`
	// GroupSwitchFraction is the fraction of the active card width a pan
	// must cover to switch to the neighbouring group on release.
	GroupSwitchFraction float64 `yaml:"group_switch_fraction"`
}

// Timeouts holds host round-trip limits.
type Timeouts struct {
	AddWindowMS int `yaml:"add_window_ms"`
}

// Hotkeys maps navigation keys to X11 key sequences.
type Hotkeys struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
	Up    string `yaml:"up"`
	Down  string `yaml:"down"`
	Home  string `yaml:"home"`
	Back  string `yaml:"back"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`
	// Format is console or json.
	Format string `yaml:"format,omitempty"`
	// File is an optional log file path; empty logs to stderr.
	File string `yaml:"file,omitempty"`
}

// Debug toggles developer checks.
type Debug struct {
	// StrictInvariants turns invariant violations into panics.
	StrictInvariants bool `yaml:"strict_invariants"`
}

// Daemon configures the event loop.
type Daemon struct {
	FrameIntervalMS int  `yaml:"frame_interval_ms"`
	X11             bool `yaml:"x11"`
	WatchConfig     bool `yaml:"watch_config"`
	QueueSize       int  `yaml:"queue_size"`
}

// Config is the effective configuration.
type Config struct {
	Screen    Screen        `yaml:"screen"`
	Layout    Layout        `yaml:"layout"`
	Animation Animation     `yaml:"animation"`
	Gestures  Gestures      `yaml:"gestures"`
	Timeouts  Timeouts      `yaml:"timeouts"`
	Hotkeys   Hotkeys       `yaml:"hotkeys"`
	Logging   LoggingConfig `yaml:"logging"`
	Debug     Debug         `yaml:"debug"`
	Daemon    Daemon        `yaml:"daemon"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Screen: Screen{Width: 1024, Height: 768, GestureStrip: 48},
		Layout: Layout{
			ActiveScale:    0.6,
			NonActiveScale: 0.55,
			GroupSpacing:   40,
			YOffset:        -20,
			FanWeights:     []float64{0.9, 0.55, 0.3, 0.18},
			FanPackStep:    0.08,
		},
		Animation: Animation{
			MaximizeMS:  250,
			MinimizeMS:  250,
			FocusMS:     200,
			SlideMS:     180,
			CardEnterMS: 300,
			CardExitMS:  220,
			ModalMS:     150,
			ReorderMS:   120,
		},
		Gestures: Gestures{
			AxisLockDistance:    8,
			ReorderZoneWidth:    120,
			FlickMinVelocity:    400,
			CloseDistance:       150,
			GroupSwitchFraction: 0.5,
		},
		Timeouts: Timeouts{AddWindowMS: 10000},
		Hotkeys: Hotkeys{
			Left:  "Mod4-Left",
			Right: "Mod4-Right",
			Up:    "Mod4-Up",
			Down:  "Mod4-Down",
			Home:  "Mod4-Home",
			Back:  "Mod4-Escape",
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Daemon: Daemon{
			FrameIntervalMS: 16,
			X11:             true,
			WatchConfig:     true,
			QueueSize:       256,
		},
	}
}

// ValidationError points at the offending config path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if c.Screen.Width < 1 || c.Screen.Height < 1 {
		return &ValidationError{Path: "screen", Err: fmt.Errorf("width and height must be >= 1")}
	}
	if c.Screen.GestureStrip < 0 {
		return &ValidationError{Path: "screen.gesture_strip", Err: fmt.Errorf("gesture_strip must be >= 0")}
	}
	if c.Layout.ActiveScale <= 0 || c.Layout.ActiveScale > 1 {
		return &ValidationError{Path: "layout.active_scale", Err: fmt.Errorf("active_scale must be in (0, 1]")}
	}
	if c.Layout.NonActiveScale <= 0 || c.Layout.NonActiveScale > c.Layout.ActiveScale {
		return &ValidationError{Path: "layout.non_active_scale", Err: fmt.Errorf("non_active_scale must be in (0, active_scale]")}
	}
	if c.Layout.GroupSpacing < 0 {
		return &ValidationError{Path: "layout.group_spacing", Err: fmt.Errorf("group_spacing must be >= 0")}
	}
	if len(c.Layout.FanWeights) == 0 {
		return &ValidationError{Path: "layout.fan_weights", Err: fmt.Errorf("fan_weights must not be empty")}
	}
	for i, w := range c.Layout.FanWeights {
		if w <= 0 {
			return &ValidationError{Path: fmt.Sprintf("layout.fan_weights[%d]", i), Err: fmt.Errorf("weights must be > 0")}
		}
		if i > 0 && w > c.Layout.FanWeights[i-1] {
			return &ValidationError{Path: fmt.Sprintf("layout.fan_weights[%d]", i), Err: fmt.Errorf("weights must not increase")}
		}
	}
	if c.Layout.FanPackStep <= 0 {
		return &ValidationError{Path: "layout.fan_pack_step", Err: fmt.Errorf("fan_pack_step must be > 0")}
	}
	for path, ms := range map[string]int{
		"animation.maximize_ms":   c.Animation.MaximizeMS,
		"animation.minimize_ms":   c.Animation.MinimizeMS,
		"animation.focus_ms":      c.Animation.FocusMS,
		"animation.slide_ms":      c.Animation.SlideMS,
		"animation.card_enter_ms": c.Animation.CardEnterMS,
		"animation.card_exit_ms":  c.Animation.CardExitMS,
		"animation.modal_ms":      c.Animation.ModalMS,
		"animation.reorder_ms":    c.Animation.ReorderMS,
	} {
		if ms < 0 {
			return &ValidationError{Path: path, Err: fmt.Errorf("duration must be >= 0")}
		}
	}
	if c.Gestures.AxisLockDistance <= 0 {
		return &ValidationError{Path: "gestures.axis_lock_distance", Err: fmt.Errorf("axis_lock_distance must be > 0")}
	}
	if c.Gestures.ReorderZoneWidth <= 0 {
		return &ValidationError{Path: "gestures.reorder_zone_width", Err: fmt.Errorf("reorder_zone_width must be > 0")}
	}
	if c.Gestures.FlickMinVelocity < 0 {
		return &ValidationError{Path: "gestures.flick_min_velocity", Err: fmt.Errorf("flick_min_velocity must be >= 0")}
	}
	if c.Gestures.GroupSwitchFraction <= 0 || c.Gestures.GroupSwitchFraction > 1 {
		return &ValidationError{Path: "gestures.group_switch_fraction", Err: fmt.Errorf("group_switch_fraction must be in (0, 1]")}
	}
	if c.Timeouts.AddWindowMS < 0 {
		return &ValidationError{Path: "timeouts.add_window_ms", Err: fmt.Errorf("add_window_ms must be >= 0")}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: console, json")}
	}
	if c.Daemon.FrameIntervalMS < 1 {
		return &ValidationError{Path: "daemon.frame_interval_ms", Err: fmt.Errorf("frame_interval_ms must be >= 1")}
	}
	if c.Daemon.QueueSize < 1 {
		return &ValidationError{Path: "daemon.queue_size", Err: fmt.Errorf("queue_size must be >= 1")}
	}
	return nil
}

// Ms converts a millisecond setting to a duration.
func Ms(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// AddWindowTimeout returns the add-window timeout; zero disables it.
func (c *Config) AddWindowTimeout() time.Duration {
	return Ms(c.Timeouts.AddWindowMS)
}

// FrameInterval returns the animation tick interval.
func (c *Config) FrameInterval() time.Duration {
	return Ms(c.Daemon.FrameIntervalMS)
}
