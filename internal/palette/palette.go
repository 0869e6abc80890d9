// Package palette shows a card switcher in an external dmenu-style launcher
// (rofi, fuzzel, wofi or dmenu).
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Item is one row of the switcher.
type Item struct {
	Label string
	// Card is the card reference passed back to the daemon; empty for headers.
	Card     string
	Icon     string
	IsHeader bool
	IsActive bool
}

// Backend shows a palette and returns the selected item.
type Backend interface {
	Show(prompt string, items []Item) (Item, error)
	Name() string
}

// backends in detection order.
var backends = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// DetectBackend returns the first available palette backend found in PATH.
func DetectBackend() (string, error) {
	for _, name := range backends {
		if _, err := lookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(backends, ", "))
}

// NewBackend creates a backend by name. "auto" or empty detects one.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	kind, ok := kinds[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(backends, ", "))
	}
	if _, err := lookPath(name); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", name)
	}
	return &lineBackend{command: name, kind: kind}, nil
}
