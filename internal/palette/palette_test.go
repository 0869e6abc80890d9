package palette

import (
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/cardwm/internal/cardwm"
	"github.com/1broseidon/cardwm/internal/ipc"
)

func sampleItems() []Item {
	return CardItems(&ipc.GroupsData{
		ActiveGroup: "group-1",
		Groups: []cardwm.GroupSnapshot{
			{ID: "group-1", Active: true, ActiveCard: "card-2", Cards: []string{"card-1", "card-2"}},
			{ID: "group-2", ActiveCard: "card-3", Cards: []string{"card-3", "card-4"}},
		},
		Cards: []cardwm.CardSnapshot{
			{ID: "card-1", Name: "term", AppID: "xterm"},
			{ID: "card-2", Name: "term", AppID: "xterm"},
			{ID: "card-3", Name: "mail"},
			{ID: "card-4", Name: "gone", Removed: true},
		},
	})
}

func TestCardItems(t *testing.T) {
	items := sampleItems()
	require.Len(t, items, 5)

	assert.True(t, items[0].IsHeader)
	assert.Equal(t, "Group 1", items[0].Label)
	assert.Equal(t, "term  [xterm]", items[1].Label)
	assert.Equal(t, "card-1", items[1].Card)
	assert.Equal(t, "xterm", items[1].Icon)
	assert.False(t, items[1].IsActive)
	assert.True(t, items[2].IsActive)
	assert.True(t, items[3].IsHeader)
	assert.Equal(t, "mail", items[4].Label)
	assert.False(t, items[4].IsActive, "active card of an inactive group")
}

func TestFormatRofi(t *testing.T) {
	header := formatRofi(Item{Label: "A & B", IsHeader: true})
	assert.Equal(t, "<b>A &amp; B</b>\x00nonselectable\x1ftrue", header)

	row := formatRofi(Item{Label: "term", Icon: "xterm"})
	assert.Equal(t, 1, strings.Count(row, "\x00"))
	assert.Equal(t, "term\x00icon\x1fxterm", row)

	assert.Equal(t, "plain", formatRofi(Item{Label: "plain"}))
}

func TestRows_DisambiguatesTextBackends(t *testing.T) {
	items := sampleItems()

	dmenu := &lineBackend{command: "dmenu", kind: kindDmenu}
	rows := dmenu.rows(items)
	assert.Equal(t, "-- Group 1 --", rows[0])
	assert.Equal(t, "term  [xterm]", rows[1])
	assert.Equal(t, "term  [xterm] (2)", rows[2])

	fuzzel := &lineBackend{command: "fuzzel", kind: kindFuzzel}
	assert.Equal(t, "term  [xterm]", fuzzel.rows(items)[2], "index backends keep labels")
}

func TestArgs(t *testing.T) {
	items := sampleItems()
	rofi := &lineBackend{command: "rofi", kind: kindRofi}
	args := rofi.args("cards", items)
	assert.Contains(t, args, "-format")
	assert.Equal(t, []string{"-a", "2", "-selected-row", "2"}, args[len(args)-4:])

	dmenu := &lineBackend{command: "dmenu", kind: kindDmenu}
	assert.Equal(t, []string{"-i", "-p", "cards"}, dmenu.args("cards", items))
}

func TestShow(t *testing.T) {
	tests := []struct {
		name    string
		kind    backendKind
		out     string
		err     error
		want    string
		wantErr error
	}{
		{"rofi index", kindRofi, "4\n", nil, "card-3", nil},
		{"fuzzel index", kindFuzzel, "1", nil, "card-1", nil},
		{"dmenu text", kindDmenu, "term  [xterm] (2)\n", nil, "card-2", nil},
		{"header selected", kindRofi, "0", nil, "", ErrCancelled},
		{"empty output", kindDmenu, "", nil, "", ErrCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdin string
			b := &lineBackend{command: "fake", kind: tt.kind, run: func(cmd *exec.Cmd) ([]byte, error) {
				data, _ := io.ReadAll(cmd.Stdin)
				stdin = string(data)
				return []byte(tt.out), tt.err
			}}
			item, err := b.Show("cards", sampleItems())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Card)
			assert.Equal(t, 5, strings.Count(stdin, "\n"))
		})
	}

	b := &lineBackend{command: "fake", kind: kindRofi, run: func(*exec.Cmd) ([]byte, error) {
		return []byte("17"), nil
	}}
	_, err := b.Show("cards", sampleItems())
	assert.ErrorContains(t, err, "unknown selection")

	b.run = func(*exec.Cmd) ([]byte, error) { return nil, errors.New("boom") }
	_, err = b.Show("cards", sampleItems())
	assert.ErrorContains(t, err, "fake failed")

	_, err = b.Show("cards", nil)
	assert.ErrorContains(t, err, "no items")
}

func TestNewBackend(t *testing.T) {
	orig := lookPath
	defer func() { lookPath = orig }()
	lookPath = func(name string) (string, error) {
		if name == "wofi" || name == "dmenu" {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}

	b, err := NewBackend("auto")
	require.NoError(t, err)
	assert.Equal(t, "wofi", b.Name())

	b, err = NewBackend(" DMENU ")
	require.NoError(t, err)
	assert.Equal(t, "dmenu", b.Name())

	_, err = NewBackend("rofi")
	assert.ErrorContains(t, err, "not found in PATH")

	_, err = NewBackend("zenity")
	assert.ErrorContains(t, err, "unknown palette backend")

	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	_, err = DetectBackend()
	assert.ErrorContains(t, err, "no palette backend")
}
