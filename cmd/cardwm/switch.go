package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/cardwm/internal/palette"
)

func newSwitchCmd(opts *globalOptions) *cobra.Command {
	var backendName string
	cmd := &cobra.Command{
		Use:   "switch",
		Short: "Pick a card from a launcher and focus it",
		Long: `Show every card in a dmenu-style launcher and focus the selected one.

Backends: rofi, fuzzel, wofi, dmenu. The default picks the first one found
in PATH.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			client := opts.client()
			data, err := client.ListGroups()
			if err != nil {
				return err
			}
			items := palette.CardItems(data)
			if len(items) == 0 {
				return fmt.Errorf("no cards")
			}
			backend, err := palette.NewBackend(backendName)
			if err != nil {
				return err
			}
			item, err := backend.Show("cards", items)
			if errors.Is(err, palette.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			return client.Focus(item.Card)
		},
	}
	cmd.Flags().StringVar(&backendName, "backend", "auto", "launcher backend (auto, rofi, fuzzel, wofi, dmenu)")
	return cmd
}
