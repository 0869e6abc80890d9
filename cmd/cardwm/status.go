package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/1broseidon/cardwm/internal/ipc"
)

// outputFormat resolves --output: auto is text on a terminal, JSON otherwise.
func outputFormat(flag string, w io.Writer) (string, error) {
	switch flag {
	case "", "auto":
		if isTerminal(w) {
			return "text", nil
		}
		return "json", nil
	case "text", "json":
		return flag, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want auto, text or json)", flag)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			format, err := outputFormat(output, w)
			if err != nil {
				return err
			}
			status, err := opts.client().GetStatus()
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(w, status)
			}
			return printStatus(w, status)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "auto", "output format: auto, text or json")
	return cmd
}

func printStatus(w io.Writer, status *ipc.StatusData) error {
	s := status.Snapshot
	dash := func(v string) string {
		if v == "" {
			return "-"
		}
		return v
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "daemon_running:\t%v\n", status.DaemonRunning)
	fmt.Fprintf(tw, "uptime_seconds:\t%d\n", status.UptimeSeconds)
	fmt.Fprintf(tw, "state:\t%s\n", s.State)
	fmt.Fprintf(tw, "active_card:\t%s\n", dash(s.ActiveCard))
	fmt.Fprintf(tw, "maximized:\t%s\n", dash(s.Maximized))
	fmt.Fprintf(tw, "modal:\t%s\n", s.Modal.State)
	fmt.Fprintf(tw, "direct_rendering:\t%s\n", dash(s.DirectRendering))
	fmt.Fprintf(tw, "animations:\t%d\n", s.Animations)
	fmt.Fprintf(tw, "screen:\t%dx%d\n", s.Screen[0], s.Screen[1])
	fmt.Fprintf(tw, "groups:\t%d\n", len(s.Groups))
	fmt.Fprintf(tw, "cards:\t%d\n", len(s.Cards))
	return tw.Flush()
}

func newGroupsCmd(opts *globalOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List card groups in strip order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			format, err := outputFormat(output, w)
			if err != nil {
				return err
			}
			data, err := opts.client().ListGroups()
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(w, data)
			}
			return printGroups(w, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "auto", "output format: auto, text or json")
	return cmd
}

func printGroups(w io.Writer, data *ipc.GroupsData) error {
	names := make(map[string]string, len(data.Cards))
	for _, c := range data.Cards {
		label := c.ID
		if c.Name != "" {
			label = fmt.Sprintf("%s(%s)", c.ID, c.Name)
		}
		if c.Maximized {
			label += "*"
		}
		names[c.ID] = label
	}
	if len(data.Groups) == 0 {
		_, err := fmt.Fprintln(w, "no groups")
		return err
	}
	for _, g := range data.Groups {
		marker := " "
		if g.Active {
			marker = ">"
		}
		cards := make([]string, 0, len(g.Cards))
		for _, id := range g.Cards {
			label, ok := names[id]
			if !ok {
				label = id
			}
			if id == g.ActiveCard {
				label = "[" + label + "]"
			}
			cards = append(cards, label)
		}
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", marker, g.ID, strings.Join(cards, " ")); err != nil {
			return err
		}
	}
	return nil
}
