package main

import (
	"codeberg.org/miketth/evkeys/pkg/config"
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"codeberg.org/miketth/evkeys/pkg/keymapstore"
	"codeberg.org/miketth/evkeys/pkg/layout"
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"io"
	"text/tabwriter"
)

var keymapCmd = &cobra.Command{
	Use:   "keymap",
	Short: "Inspect and save keymaps",
}

var keymapShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the keymap that would be used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		return printKeymap(cmd.OutOrStdout(), loadKeymap(cmd.Context(), cfg, log))
	},
}

var keymapSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Load the system keymap and save it under name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		table, err := layout.Load(cmd.Context(), dumpkeysSource(cfg))
		if err != nil {
			return err
		}

		store, err := keymapstore.Open(cfg.Keymap.Backend, cfg.Keymap.Store, log)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetKeymap(args[0], table); err != nil {
			return fmt.Errorf("save keymap: %w", err)
		}

		log.Infow("saved keymap", "name", args[0], "keys", len(table.Entries()), "store", cfg.Keymap.Store)
		return nil
	},
}

var keymapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved keymaps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := keymapstore.Open(cfg.Keymap.Backend, cfg.Keymap.Store, log)
		if err != nil {
			return err
		}
		defer store.Close()

		names, err := store.ListKeymaps()
		if err != nil {
			return fmt.Errorf("list keymaps: %w", err)
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	keymapCmd.AddCommand(keymapShowCmd, keymapSaveCmd, keymapListCmd)
}

func setup(cmd *cobra.Command) (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, log, nil
}

func dumpkeysSource(cfg *config.Config) layout.Source {
	return layout.Dumpkeys{Path: cfg.Dumpkeys.Path, Args: cfg.Dumpkeys.Args}
}

// loadKeymap always returns a usable table: a saved keymap, the system keymap or the
// built-in US keymap, in that order of preference.
func loadKeymap(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) *keymap.Table {
	if cfg.ForceUSKeymap {
		log.Debug("using built-in US keymap")
		return keymap.Default()
	}

	if cfg.Keymap.Name != "" {
		table, err := loadStoredKeymap(cfg, log)
		if err == nil {
			log.Infow("using saved keymap", "name", cfg.Keymap.Name)
			return table
		}
		log.Warnw("failed to load saved keymap, trying system keymap", "name", cfg.Keymap.Name, "error", err)
	}

	table, err := layout.Load(ctx, dumpkeysSource(cfg))
	if err != nil {
		log.Warnw("failed to load system keymap, falling back onto built-in US keymap", "error", err)
		return keymap.Default()
	}

	return table
}

func loadStoredKeymap(cfg *config.Config, log *zap.SugaredLogger) (*keymap.Table, error) {
	store, err := keymapstore.Open(cfg.Keymap.Backend, cfg.Keymap.Store, log)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.GetKeymap(cfg.Keymap.Name)
}

func printKeymap(w io.Writer, table *keymap.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tBASE\tSHIFT\tALTGR")
	for _, e := range table.Entries() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Code, printable(e.Base), printable(e.Shift), printable(e.AltGr))
	}
	return tw.Flush()
}

func printable(r rune) string {
	if r == 0 {
		return "-"
	}
	return fmt.Sprintf("%c (U+%04X)", r, r)
}

