package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

func (s *Server) handleCardStatus(_ context.Context, _ *mcpsdk.CallToolRequest, args CardStatusInput) (*mcpsdk.CallToolResult, CardStatusOutput, error) {
	status, err := s.ctl.GetStatus()
	if err != nil {
		return nil, CardStatusOutput{}, fmt.Errorf("failed to query daemon: %w", err)
	}
	snap := status.Snapshot
	out := CardStatusOutput{
		State:           snap.State,
		ActiveCard:      snap.ActiveCard,
		ActiveGroup:     snap.ActiveGroup,
		Maximized:       snap.Maximized,
		ModalState:      snap.Modal.State,
		ModalParent:     snap.Modal.Parent,
		Animating:       snap.Animations > 0,
		UptimeSeconds:   status.UptimeSeconds,
		CardCount:       len(snap.Cards),
		DirectRendering: snap.DirectRendering,
	}
	if args.IncludeCards {
		out.Cards = snap.Cards
	}
	return nil, out, nil
}

func (s *Server) handleListGroups(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListGroupsInput) (*mcpsdk.CallToolResult, ListGroupsOutput, error) {
	data, err := s.ctl.ListGroups()
	if err != nil {
		return nil, ListGroupsOutput{}, fmt.Errorf("failed to list groups: %w", err)
	}

	cards := make(map[string]CardInfo, len(data.Cards))
	for _, c := range data.Cards {
		cards[c.ID] = CardInfo{
			ID:        c.ID,
			Name:      c.Name,
			AppID:     c.AppID,
			Maximized: c.Maximized,
			Loading:   c.Loading,
		}
	}

	out := ListGroupsOutput{
		ActiveGroup: data.ActiveGroup,
		Groups:      make([]GroupInfo, 0, len(data.Groups)),
	}
	for _, g := range data.Groups {
		info := GroupInfo{
			ID:         g.ID,
			Active:     g.Active,
			ActiveCard: g.ActiveCard,
			Cards:      make([]CardInfo, 0, len(g.Cards)),
		}
		for _, id := range g.Cards {
			if c, ok := cards[id]; ok {
				info.Cards = append(info.Cards, c)
			}
		}
		out.Groups = append(out.Groups, info)
	}
	return nil, out, nil
}

func (s *Server) handleFocusCard(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusCardInput) (*mcpsdk.CallToolResult, FocusCardOutput, error) {
	ref := strings.TrimSpace(args.Card)
	if ref == "" {
		return nil, FocusCardOutput{}, fmt.Errorf("card is required")
	}
	if err := s.ctl.Focus(ref); err != nil {
		return nil, FocusCardOutput{}, err
	}
	s.log.Debug("focus_card", zap.String("card", ref))

	out := FocusCardOutput{Card: ref}
	if status, err := s.ctl.GetStatus(); err == nil {
		out.State = status.Snapshot.State
		if status.Snapshot.ActiveCard != "" {
			out.Card = status.Snapshot.ActiveCard
		}
	}
	return nil, out, nil
}

var navKeys = map[string]bool{
	"left": true, "right": true, "up": true, "down": true, "home": true, "back": true,
}

func (s *Server) handleNavigateCards(_ context.Context, _ *mcpsdk.CallToolRequest, args NavigateCardsInput) (*mcpsdk.CallToolResult, NavigateCardsOutput, error) {
	key := strings.ToLower(strings.TrimSpace(args.Key))
	if !navKeys[key] {
		return nil, NavigateCardsOutput{}, fmt.Errorf("invalid key %q (want left, right, up, down, home or back)", args.Key)
	}
	count := args.Count
	if count <= 0 {
		count = 1
	}

	var out NavigateCardsOutput
	for i := 0; i < count; i++ {
		handled, err := s.ctl.Navigate(key)
		if err != nil {
			return nil, NavigateCardsOutput{}, err
		}
		if !handled {
			break
		}
		out.Handled++
	}
	if status, err := s.ctl.GetStatus(); err == nil {
		out.State = status.Snapshot.State
		out.ActiveCard = status.Snapshot.ActiveCard
	}
	return nil, out, nil
}

func (s *Server) handleSetCardMode(_ context.Context, _ *mcpsdk.CallToolRequest, args SetCardModeInput) (*mcpsdk.CallToolResult, SetCardModeOutput, error) {
	var err error
	switch strings.ToLower(strings.TrimSpace(args.Mode)) {
	case "maximize":
		err = s.ctl.Maximize()
	case "minimize":
		err = s.ctl.Minimize()
	default:
		return nil, SetCardModeOutput{}, fmt.Errorf("invalid mode %q (want maximize or minimize)", args.Mode)
	}
	if err != nil {
		return nil, SetCardModeOutput{}, err
	}

	var out SetCardModeOutput
	if status, err := s.ctl.GetStatus(); err == nil {
		out.State = status.Snapshot.State
		out.Maximized = status.Snapshot.Maximized
	}
	return nil, out, nil
}

func (s *Server) handleDismissModal(_ context.Context, _ *mcpsdk.CallToolRequest, _ DismissModalInput) (*mcpsdk.CallToolResult, DismissModalOutput, error) {
	dismissed, err := s.ctl.DismissModal()
	if err != nil {
		return nil, DismissModalOutput{}, err
	}
	return nil, DismissModalOutput{Dismissed: dismissed}, nil
}

func (s *Server) handleWaitForSettled(ctx context.Context, _ *mcpsdk.CallToolRequest, args WaitForSettledInput) (*mcpsdk.CallToolResult, WaitForSettledOutput, error) {
	timeout := time.Duration(args.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.settlePoll)
	defer ticker.Stop()

	for {
		status, err := s.ctl.GetStatus()
		if err != nil {
			return nil, WaitForSettledOutput{}, err
		}
		if status.Snapshot.Animations == 0 {
			return nil, WaitForSettledOutput{Settled: true, State: status.Snapshot.State}, nil
		}
		select {
		case <-ctx.Done():
			return nil, WaitForSettledOutput{}, ctx.Err()
		case <-deadline.C:
			return nil, WaitForSettledOutput{State: status.Snapshot.State}, nil
		case <-ticker.C:
		}
	}
}
