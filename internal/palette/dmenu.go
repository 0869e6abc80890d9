package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type backendKind int

const (
	kindRofi backendKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

var kinds = map[string]backendKind{
	"rofi":   kindRofi,
	"fuzzel": kindFuzzel,
	"wofi":   kindWofi,
	"dmenu":  kindDmenu,
}

// indexOutput reports whether the backend prints the selected row index
// instead of its text.
func (k backendKind) indexOutput() bool { return k == kindRofi || k == kindFuzzel }

// lineBackend drives any launcher that reads rows on stdin and prints the
// selection on stdout.
type lineBackend struct {
	command string
	kind    backendKind
	// run is swapped in tests.
	run func(cmd *exec.Cmd) ([]byte, error)
}

func (b *lineBackend) Name() string { return b.command }

func (b *lineBackend) Show(prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}
	rows := b.rows(items)

	cmd := exec.Command(b.command, b.args(prompt, items)...)
	cmd.Stdin = strings.NewReader(strings.Join(rows, "\n") + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	run := b.run
	if run == nil {
		run = (*exec.Cmd).Output
	}
	out, err := run(cmd)
	selection := strings.TrimSpace(string(out))
	if err != nil {
		var exitErr *exec.ExitError
		// Escape exits 1 with no output.
		if selection == "" && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", b.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", b.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return b.parseSelection(selection, items, rows)
}

func (b *lineBackend) args(prompt string, items []Item) []string {
	var args []string
	switch b.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-p", prompt, "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		var active []string
		for i, it := range items {
			if it.IsActive {
				active = append(active, strconv.Itoa(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","), "-selected-row", active[0])
		}
	case kindFuzzel:
		args = []string{"--dmenu", "--index", "--prompt", prompt + " "}
	case kindWofi:
		args = []string{"--dmenu", "--prompt", prompt}
	case kindDmenu:
		args = []string{"-i", "-p", prompt}
	}
	return args
}

// rows renders items for the backend. Text-matching backends get unique
// labels so the selection maps back to one item.
func (b *lineBackend) rows(items []Item) []string {
	out := make([]string, len(items))
	seen := make(map[string]int)
	for i, it := range items {
		if b.kind == kindRofi {
			out[i] = formatRofi(it)
			continue
		}
		label := it.Label
		if it.IsHeader {
			label = "-- " + label + " --"
		}
		if !b.kind.indexOutput() {
			seen[label]++
			if n := seen[label]; n > 1 {
				label = fmt.Sprintf("%s (%d)", label, n)
			}
		}
		out[i] = label
	}
	return out
}

// formatRofi renders a row with rofi's dmenu row options.
func formatRofi(it Item) string {
	label := html.EscapeString(it.Label)
	if it.IsHeader {
		label = "<b>" + label + "</b>"
	}
	var opts []string
	if it.Icon != "" {
		opts = append(opts, "icon\x1f"+it.Icon)
	}
	if it.IsHeader {
		opts = append(opts, "nonselectable\x1ftrue")
	}
	if len(opts) == 0 {
		return label
	}
	return label + "\x00" + strings.Join(opts, "\x1f")
}

func (b *lineBackend) parseSelection(selection string, items []Item, rows []string) (Item, error) {
	idx := -1
	if b.kind.indexOutput() {
		i, err := strconv.Atoi(selection)
		if err != nil {
			return Item{}, fmt.Errorf("%s returned invalid index %q", b.command, selection)
		}
		idx = i
	} else {
		for i, row := range rows {
			if row == selection {
				idx = i
				break
			}
		}
	}
	if idx < 0 || idx >= len(items) {
		return Item{}, fmt.Errorf("%s returned unknown selection %q", b.command, selection)
	}
	if items[idx].IsHeader {
		return Item{}, ErrCancelled
	}
	return items[idx], nil
}
