package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/polemica/polemica/config"
	"github.com/polemica/polemica/errors"
	"github.com/polemica/polemica/logger"
	"github.com/polemica/polemica/server"
)

// ServerCmd starts the Polemica canvas sync server
var ServerCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "Start the canvas sync server",
	Long:    `Launch the Polemica server: WebSocket canvas synchronization, the canvas REST API, and AI enrichment.`,
	RunE:    runServer,
}

var (
	serverPort   int
	serverDBPath string
)

func init() {
	ServerCmd.Flags().IntVar(&serverPort, "port", 0, "Listen port (overrides config)")
	ServerCmd.Flags().StringVar(&serverDBPath, "db-path", "", "Custom database path (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	port := serverPort
	if port == 0 {
		port = config.GetServerPort()
	}

	database, err := openDatabase(serverDBPath)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	srv := server.NewCanvasServer(database, cfg, logger.Logger)

	// Watch the project config so AI settings apply without a restart
	if configPath := config.GetViper().ConfigFileUsed(); configPath != "" {
		watcher, err := config.NewWatcher(configPath)
		if err != nil {
			logger.Warnw("Config watcher unavailable", "path", configPath, "error", err)
		} else {
			srv.SetConfigWatcher(watcher)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(port)
	}()

	// Wait for shutdown signal (Ctrl+C) or a listener failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
		return srv.Stop()
	}
}
