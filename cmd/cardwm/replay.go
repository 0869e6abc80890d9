package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/replay"
)

func newReplayCmd(opts *globalOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>...",
		Short: "Run scripted card scenarios without a display",
		Long: `Run replay scripts against an in-memory window host and print the host
commands issued and the final card state. A failed expectation stops the
script and exits non-zero.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			format, err := outputFormat(output, w)
			if err != nil {
				return err
			}
			logger := opts.logger(config.LoggingConfig{Level: "warn"})
			defer func() { _ = logger.Sync() }()

			var failed int
			for _, path := range args {
				s, err := replay.Load(path)
				if err != nil {
					return err
				}
				res, runErr := replay.Run(s, logger)
				if res != nil {
					if format == "json" {
						err = writeJSON(w, res)
					} else {
						err = res.WriteText(w)
					}
					if err != nil {
						return err
					}
				}
				if runErr != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, runErr)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scripts failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "auto", "output format: auto, text or json")
	return cmd
}
