package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/cardwm/internal/cardwm"
	"github.com/1broseidon/cardwm/internal/ipc"
)

// fakeController records calls and serves a fixed snapshot.
type fakeController struct {
	snap      cardwm.Snapshot
	groups    ipc.GroupsData
	focused   []string
	keys      []string
	modes     []string
	handled   int // navigate calls that report handled; -1 means always
	dismissed bool
	err       error
	// settleAfter is the number of GetStatus calls before animations stop.
	settleAfter int
	statusCalls int
}

func (f *fakeController) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.statusCalls++
	snap := f.snap
	if f.statusCalls <= f.settleAfter {
		snap.Animations = 1
	}
	return &ipc.StatusData{UptimeSeconds: 42, DaemonRunning: true, Snapshot: snap}, nil
}

func (f *fakeController) ListGroups() (*ipc.GroupsData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.groups, nil
}

func (f *fakeController) Focus(ref string) error {
	f.focused = append(f.focused, ref)
	return f.err
}

func (f *fakeController) Navigate(key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.keys = append(f.keys, key)
	return f.handled < 0 || len(f.keys) <= f.handled, nil
}

func (f *fakeController) Maximize() error {
	f.modes = append(f.modes, "maximize")
	return f.err
}

func (f *fakeController) Minimize() error {
	f.modes = append(f.modes, "minimize")
	return f.err
}

func (f *fakeController) DismissModal() (bool, error) {
	return f.dismissed, f.err
}

func newFake() *fakeController {
	return &fakeController{
		snap: cardwm.Snapshot{
			State:       "maximize",
			ActiveCard:  "card-1",
			ActiveGroup: "group-1",
			Maximized:   "card-1",
			Modal:       cardwm.ModalSnapshot{State: "none"},
			Cards: []cardwm.CardSnapshot{
				{ID: "card-1", Name: "term", Group: "group-1", Maximized: true},
				{ID: "card-2", Name: "editor", Group: "group-1"},
				{ID: "card-3", Name: "browser", Group: "group-2"},
			},
		},
		groups: ipc.GroupsData{
			ActiveGroup: "group-1",
			Groups: []cardwm.GroupSnapshot{
				{ID: "group-1", Active: true, ActiveCard: "card-1", Cards: []string{"card-2", "card-1"}},
				{ID: "group-2", ActiveCard: "card-3", Cards: []string{"card-3"}},
			},
			Cards: []cardwm.CardSnapshot{
				{ID: "card-1", Name: "term", Maximized: true},
				{ID: "card-2", Name: "editor"},
				{ID: "card-3", Name: "browser", Loading: true},
			},
		},
		handled: -1,
	}
}

func TestHandleCardStatus(t *testing.T) {
	f := newFake()
	s := NewServer(f, nil)

	_, out, err := s.handleCardStatus(context.Background(), nil, CardStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, "maximize", out.State)
	assert.Equal(t, "card-1", out.Maximized)
	assert.Equal(t, 3, out.CardCount)
	assert.Equal(t, int64(42), out.UptimeSeconds)
	assert.Empty(t, out.Cards)

	_, out, err = s.handleCardStatus(context.Background(), nil, CardStatusInput{IncludeCards: true})
	require.NoError(t, err)
	assert.Len(t, out.Cards, 3)

	f.err = errors.New("connection refused")
	_, _, err = s.handleCardStatus(context.Background(), nil, CardStatusInput{})
	assert.ErrorContains(t, err, "failed to query daemon")
}

func TestHandleListGroups(t *testing.T) {
	s := NewServer(newFake(), nil)

	_, out, err := s.handleListGroups(context.Background(), nil, ListGroupsInput{})
	require.NoError(t, err)
	require.Len(t, out.Groups, 2)
	assert.Equal(t, "group-1", out.ActiveGroup)

	first := out.Groups[0]
	assert.True(t, first.Active)
	require.Len(t, first.Cards, 2)
	assert.Equal(t, "editor", first.Cards[0].Name, "cards keep strip order")
	assert.True(t, first.Cards[1].Maximized)
	assert.True(t, out.Groups[1].Cards[0].Loading)
}

func TestHandleFocusCard(t *testing.T) {
	f := newFake()
	s := NewServer(f, nil)

	_, out, err := s.handleFocusCard(context.Background(), nil, FocusCardInput{Card: " editor "})
	require.NoError(t, err)
	assert.Equal(t, []string{"editor"}, f.focused)
	assert.Equal(t, "card-1", out.Card)
	assert.Equal(t, "maximize", out.State)

	_, _, err = s.handleFocusCard(context.Background(), nil, FocusCardInput{})
	assert.ErrorContains(t, err, "card is required")
}

func TestHandleNavigateCards(t *testing.T) {
	tests := []struct {
		name        string
		input       NavigateCardsInput
		handled     int
		wantKeys    int
		wantHandled int
		wantErr     string
	}{
		{"single press", NavigateCardsInput{Key: "left"}, -1, 1, 1, ""},
		{"repeated press", NavigateCardsInput{Key: "Right", Count: 3}, -1, 3, 3, ""},
		{"stops when unhandled", NavigateCardsInput{Key: "right", Count: 5}, 2, 3, 2, ""},
		{"invalid key", NavigateCardsInput{Key: "sideways"}, -1, 0, 0, "invalid key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			f.handled = tt.handled
			s := NewServer(f, nil)

			_, out, err := s.handleNavigateCards(context.Background(), nil, tt.input)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, f.keys, tt.wantKeys)
			assert.Equal(t, tt.wantHandled, out.Handled)
			assert.Equal(t, "card-1", out.ActiveCard)
		})
	}
}

func TestHandleSetCardMode(t *testing.T) {
	f := newFake()
	s := NewServer(f, nil)

	for _, mode := range []string{"maximize", "MINIMIZE"} {
		_, _, err := s.handleSetCardMode(context.Background(), nil, SetCardModeInput{Mode: mode})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"maximize", "minimize"}, f.modes)

	_, _, err := s.handleSetCardMode(context.Background(), nil, SetCardModeInput{Mode: "fullscreen"})
	assert.ErrorContains(t, err, "invalid mode")
}

func TestHandleWaitForSettled(t *testing.T) {
	f := newFake()
	f.settleAfter = 2
	s := NewServer(f, nil)
	s.settlePoll = time.Millisecond

	_, out, err := s.handleWaitForSettled(context.Background(), nil, WaitForSettledInput{Timeout: 5})
	require.NoError(t, err)
	assert.True(t, out.Settled)
	assert.Equal(t, 3, f.statusCalls)

	f = newFake()
	f.settleAfter = 1 << 30
	s = NewServer(f, nil)
	s.settlePoll = time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = s.handleWaitForSettled(ctx, nil, WaitForSettledInput{Timeout: 60})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServer_ToolsOverSession(t *testing.T) {
	f := newFake()
	f.dismissed = true
	s := NewServer(f, nil)
	ctx := context.Background()

	serverT, clientT := mcpsdk.NewInMemoryTransports()
	ss, err := s.Connect(ctx, serverT)
	require.NoError(t, err)
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: "dismiss_modal"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	var out DismissModalOutput
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	assert.True(t, out.Dismissed)

	res, err = cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "set_card_mode",
		Arguments: map[string]any{"mode": "sideways"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError, "handler errors are reported in the result")
}
