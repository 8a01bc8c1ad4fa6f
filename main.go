package main

import (
	"codeberg.org/miketth/evkeys/pkg/config"
	"codeberg.org/miketth/evkeys/pkg/evkeys"
	"codeberg.org/miketth/evkeys/pkg/inputdev"
	"codeberg.org/miketth/evkeys/pkg/privdrop"
	"codeberg.org/miketth/evkeys/pkg/translate"
	"context"
	"errors"
	"fmt"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("error: %+v", err)
	}
}

var (
	flagConfig        string
	flagDevices       []string
	flagOutput        string
	flagPIDFile       string
	flagForceUSKeymap bool
	flagKeymap        string
	flagDebug         bool
)

var rootCmd = &cobra.Command{
	Use:   "evkeys",
	Short: "Translate keyboard input events into text",
	Long: `evkeys reads key events from evdev keyboards and writes them as text.

Modifier combinations are written as <CTRL>+x, function keys as <Enter>, <F1>, ...,
unknown keycodes as <E-xx>, and a literal '<' key as <<.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecord(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.DefaultPath(), "config file (toml or yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagForceUSKeymap, "force-us-keymap", "u", false, "use the built-in US keymap instead of the system one")
	rootCmd.PersistentFlags().StringVarP(&flagKeymap, "keymap", "k", "", "use a keymap saved with 'evkeys keymap save'")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.Flags().StringArrayVarP(&flagDevices, "event-device", "e", nil, "event device to read, can be repeated (default: auto-detect)")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "file to append text to (default: stdout)")
	rootCmd.Flags().StringVarP(&flagPIDFile, "pid-file", "p", "", "write the process id to this file")

	rootCmd.AddCommand(translateCmd, keymapCmd)
}

// loadConfig reads the config file and lets explicitly set flags override it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("event-device") {
		cfg.Devices = flagDevices
	}
	if flags.Changed("output") {
		cfg.Output = flagOutput
	}
	if flags.Changed("pid-file") {
		cfg.PIDFile = flagPIDFile
	}
	if flags.Changed("force-us-keymap") {
		cfg.ForceUSKeymap = flagForceUSKeymap
	}
	if flags.Changed("keymap") {
		cfg.Keymap.Name = flagKeymap
	}
	if flags.Changed("debug") {
		cfg.Debug = flagDebug
	}

	return cfg, nil
}

func runRecord(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the keymap is complete before any device is read
	table := loadKeymap(ctx, cfg, log)

	devices, err := openDevices(cfg.Devices)
	if err != nil {
		return err
	}

	sink, err := openOutput(cfg)
	if err != nil {
		closeAll(devices)
		return err
	}
	defer sink.Close()

	if cfg.PIDFile != "" {
		if err := os.WriteFile(cfg.PIDFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644); err != nil {
			closeAll(devices)
			return fmt.Errorf("write pid file: %w", err)
		}
	}

	if cfg.DropPrivileges {
		if err := privdrop.Drop(cfg.User); err != nil {
			closeAll(devices)
			return fmt.Errorf("drop privileges: %w", err)
		}
	}

	recorder := evkeys.NewRecorder(translate.New(table), sink, log)

	sources := make(chan evkeys.EventSource, len(devices))
	for _, d := range devices {
		sources <- d
	}
	if !cfg.WatchHotplug {
		close(sources)
	}

	log.Infow("started evkeys", "devices", len(devices))

	errChan := make(chan error, 3)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := recorder.Run(ctx, sources)
		if err == nil {
			err = errors.New("all devices are gone")
		}
		errChan <- fmt.Errorf("record: %w", err)
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	if cfg.WatchHotplug {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := inputdev.Watch(ctx, inputdev.DevInput, sources, log)
			if err != nil {
				errChan <- fmt.Errorf("watch devices: %w", err)
			}
		}()
	}

	err = <-errChan
	switch {
	case errors.Is(err, context.Canceled):
		log.Info("shutting down")
		stop()
		wg.Wait()
		return nil
	case err != nil:
		stop()
		wg.Wait()
		return err
	}

	return nil
}

func openDevices(paths []string) ([]*inputdev.Device, error) {
	if len(paths) == 0 {
		devices, err := inputdev.Discover()
		if err != nil {
			return nil, fmt.Errorf("discover keyboards: %w", err)
		}
		if len(devices) == 0 {
			return nil, errors.New("could not find a keyboard, pass one with --event-device (reading input devices usually needs root)")
		}
		return devices, nil
	}

	devices := make([]*inputdev.Device, 0, len(paths))
	for _, path := range paths {
		d, err := inputdev.Open(path)
		if err != nil {
			closeAll(devices)
			return nil, err
		}
		devices = append(devices, d)
	}

	return devices, nil
}

func closeAll(devices []*inputdev.Device) {
	for _, d := range devices {
		d.Close()
	}
}

func openOutput(cfg *config.Config) (io.WriteCloser, error) {
	if cfg.StdoutOutput() {
		return nopCloser{os.Stdout}, nil
	}

	file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return file, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Translating key events")

	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stderr"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
