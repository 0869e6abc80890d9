package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFocusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "focus <card>",
		Short: "Bring a card to the front",
		Long:  "Focus and maximize a card. The card is an id such as card-3 or a card name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return opts.client().Focus(args[0])
		},
	}
}

func newNavigateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "navigate <left|right|up|down|home|back>",
		Short:     "Send a navigation key to the card manager",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"left", "right", "up", "down", "home", "back"},
		RunE: func(cmd *cobra.Command, args []string) error {
			handled, err := opts.client().Navigate(args[0])
			if err != nil {
				return err
			}
			if !handled {
				fmt.Fprintln(cmd.ErrOrStderr(), "not handled")
			}
			return nil
		},
	}
}

func newMaximizeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "maximize",
		Short: "Maximize the active card",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return opts.client().Maximize()
		},
	}
}

func newMinimizeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "minimize",
		Short: "Minimize the maximized card",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return opts.client().Minimize()
		},
	}
}

func newDismissModalCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss-modal",
		Short: "Dismiss the modal dialog card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dismissed, err := opts.client().DismissModal()
			if err != nil {
				return err
			}
			if !dismissed {
				fmt.Fprintln(cmd.ErrOrStderr(), "no modal to dismiss")
			}
			return nil
		},
	}
}

func newReloadCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask the daemon to reload its config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.client().Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
			return nil
		},
	}
}

func newLauncherCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "launcher <show|hide>",
		Short:     "Report launcher visibility to the daemon",
		Long:      "Shells call this when their launcher overlay opens or closes. Direct rendering stays off while the launcher covers the cards.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"show", "hide"},
		RunE: func(_ *cobra.Command, args []string) error {
			switch args[0] {
			case "show":
				return opts.client().SetLauncherVisible(true)
			case "hide":
				return opts.client().SetLauncherVisible(false)
			default:
				return fmt.Errorf("invalid launcher state %q (want show or hide)", args[0])
			}
		},
	}
}
