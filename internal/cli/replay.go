package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoobzio/actionz/internal/config"
	"github.com/zoobzio/actionz/internal/replay"
)

func newReplayCmd(a *app) *cobra.Command {
	var (
		format string
		output string
		tail   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Replay a scripted interaction against a rate adapter on a simulated clock",
		Example: "  actionz replay typing.yaml\n" +
			"  actionz replay pointer.toml --format msgpack --output pointer.msgpack",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			script, err := config.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading script: %w", err)
			}

			records, err := replay.Run(script, replay.Options{Logger: a.logger, Tail: tail})
			if err != nil {
				return err
			}

			w := a.out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return replay.Write(w, format, records)
		},
	}

	cmd.Flags().StringVar(&format, "format", replay.FormatJSONLines, "Transcript format: jsonl|msgpack")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Transcript file, - for stdout")
	cmd.Flags().DurationVar(&tail, "tail", replay.DefaultTail, "Simulated time to keep running after the last step")
	return cmd
}
