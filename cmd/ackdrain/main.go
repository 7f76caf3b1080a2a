package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	log "go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanet-platform/ackdrain/internal/app"
	"github.com/yanet-platform/ackdrain/internal/monitoring/logger"
)

func main() {
	// Create a new command with the application name and the exec function.
	var configPath string
	cmd := &cobra.Command{
		Use:   path.Base(os.Args[0]),
		Short: "ackdrain",
		Long: "Runs a fixed set of workers. The first worker to finish stops the " +
			"others, which acknowledge before the process exits. SIGINT or SIGTERM " +
			"stops every worker immediately.",
		Run: func(cmd *cobra.Command, args []string) {
			if err := exec(configPath); err != nil {
				fmt.Println(err.Error())
				os.Exit(1)
			}
		},
	}

	// Add a flag to specify the path to the config file. Without it the
	// built-in worker plan is used.
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or TOML config file.")

	// Execute the command. If an error occurs, print it and exit with a
	// non-zero status code.
	if err := cmd.Execute(); err != nil {
		fmt.Printf("ERROR: %s\n", err.Error())
		os.Exit(1)
	}
}

// loggerShutdownTimeout bounds the time spent exporting buffered log records
// on exit.
const loggerShutdownTimeout = 5 * time.Second

func exec(configPath string) error {
	// Create a base context.
	ctx := context.Background()

	// Load the application configuration from the specified config path.
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	xlog, err := logger.New(ctx, config.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	// Flush the export pipeline once the run is over, the process exits right
	// after.
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), loggerShutdownTimeout)
		defer cancel()
		if err := xlog.Shutdown(shutdownCtx); err != nil {
			fmt.Println(err.Error())
		}
	}()
	logger := xlog.Logger

	logger.Info("starting ackdrain", log.Any("config", config))

	// Subscribe to the operator interrupt once. Only the first signal is
	// forwarded to the application.
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	interrupt := make(chan struct{})
	finished := make(chan struct{})

	ackdrain := app.New(config, clock.New(), logger)

	wg := errgroup.Group{}

	// Add a goroutine that waits for an interruption signal.
	wg.Go(func() error {
		select {
		case <-finished:
		case s := <-ch:
			logger.Info("received signal", log.Stringer("signal", s))
			close(interrupt)
		}
		return nil
	})

	// Add a goroutine that runs the main application logic.
	wg.Go(func() error {
		defer close(finished)
		return ackdrain.Run(ctx, interrupt)
	})

	// Wait for all goroutines in the group to complete.
	return wg.Wait()
}
