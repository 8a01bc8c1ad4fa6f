package main

import (
	"codeberg.org/miketth/evkeys/pkg/evkeys"
	"codeberg.org/miketth/evkeys/pkg/inputdev"
	"codeberg.org/miketth/evkeys/pkg/translate"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"io"
	"os"
)

var translateCmd = &cobra.Command{
	Use:   "translate [capture]",
	Short: "Translate a captured raw event stream",
	Long: `Translate raw input_event records, as read from /dev/input/eventN, from a file
or from stdin when no file (or '-') is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		var src *inputdev.Replay
		if len(args) == 0 || args[0] == "-" {
			src = inputdev.NewReplay("stdin", io.NopCloser(cmd.InOrStdin()))
		} else {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open capture: %w", err)
			}
			src = inputdev.NewReplay(args[0], file)
		}

		recorder := evkeys.NewRecorder(translate.New(loadKeymap(cmd.Context(), cfg, log)), cmd.OutOrStdout(), log)
		err = recorder.ProcessDevice(cmd.Context(), src)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	},
}
