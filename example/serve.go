package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/retcpkit/pkg/retcpkit"
)

// serveCmd запускает эхо-сервер и работает до сигнала завершения.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the echo server until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		server := retcpkit.NewEchoServer(cfg.Address(), retcpkit.EchoConfig{
			MaxConnections: cfg.Server.MaxConnections,
			BufferSize:     cfg.Session.BufferSize,
			Logger:         logger,
		})

		done, err := server.Start(context.Background())
		if err != nil {
			return err
		}

		logger.Info("Echo server is running. Press Ctrl+C to stop.", "address", cfg.Address())

		// Ожидаем сигнал завершения
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("Received shutdown signal")

		if err := server.Stop(); err != nil {
			return err
		}
		<-done

		logger.Info("Echo server stopped successfully")
		return nil
	},
}
