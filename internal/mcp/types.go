package mcp

import "github.com/1broseidon/cardwm/internal/cardwm"

// CardStatusInput is the input for the card_status tool.
type CardStatusInput struct {
	IncludeCards bool `json:"include_cards,omitempty" jsonschema:"When true, include every card in the result (default: false)"`
}

// CardStatusOutput is the output for the card_status tool.
type CardStatusOutput struct {
	State           string                `json:"state"`
	ActiveCard      string                `json:"active_card,omitempty"`
	ActiveGroup     string                `json:"active_group,omitempty"`
	Maximized       string                `json:"maximized,omitempty"`
	ModalState      string                `json:"modal_state"`
	ModalParent     string                `json:"modal_parent,omitempty"`
	Animating       bool                  `json:"animating"`
	UptimeSeconds   int64                 `json:"uptime_seconds"`
	CardCount       int                   `json:"card_count"`
	Cards           []cardwm.CardSnapshot `json:"cards,omitempty"`
	DirectRendering string                `json:"direct_rendering,omitempty"`
}

// ListGroupsInput is the input for the list_groups tool.
type ListGroupsInput struct{}

// GroupInfo describes one card group in strip order.
type GroupInfo struct {
	ID         string     `json:"id"`
	Active     bool       `json:"active"`
	ActiveCard string     `json:"active_card"`
	Cards      []CardInfo `json:"cards"`
}

// CardInfo is the per-card summary reported by list_groups.
type CardInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	AppID     string `json:"app_id,omitempty"`
	Maximized bool   `json:"maximized"`
	Loading   bool   `json:"loading"`
}

// ListGroupsOutput is the output for the list_groups tool.
type ListGroupsOutput struct {
	ActiveGroup string      `json:"active_group,omitempty"`
	Groups      []GroupInfo `json:"groups"`
}

// FocusCardInput is the input for the focus_card tool.
type FocusCardInput struct {
	Card string `json:"card" jsonschema:"Card reference: an id such as card-3, or a card name"`
}

// FocusCardOutput is the output for the focus_card tool.
type FocusCardOutput struct {
	Card  string `json:"card"`
	State string `json:"state"`
}

// NavigateCardsInput is the input for the navigate_cards tool.
type NavigateCardsInput struct {
	Key   string `json:"key" jsonschema:"Navigation key: left, right, up, down, home or back"`
	Count int    `json:"count,omitempty" jsonschema:"Number of times to press the key (default: 1)"`
}

// NavigateCardsOutput is the output for the navigate_cards tool.
type NavigateCardsOutput struct {
	Handled    int    `json:"handled"`
	ActiveCard string `json:"active_card,omitempty"`
	State      string `json:"state"`
}

// SetCardModeInput is the input for the set_card_mode tool.
type SetCardModeInput struct {
	Mode string `json:"mode" jsonschema:"Target mode: maximize or minimize"`
}

// SetCardModeOutput is the output for the set_card_mode tool.
type SetCardModeOutput struct {
	State     string `json:"state"`
	Maximized string `json:"maximized,omitempty"`
}

// DismissModalInput is the input for the dismiss_modal tool.
type DismissModalInput struct{}

// DismissModalOutput is the output for the dismiss_modal tool.
type DismissModalOutput struct {
	Dismissed bool `json:"dismissed"`
}

// WaitForSettledInput is the input for the wait_for_settled tool.
type WaitForSettledInput struct {
	Timeout int `json:"timeout,omitempty" jsonschema:"Timeout in seconds (default: 10)"`
}

// WaitForSettledOutput is the output for the wait_for_settled tool.
type WaitForSettledOutput struct {
	Settled bool   `json:"settled"`
	State   string `json:"state"`
}
