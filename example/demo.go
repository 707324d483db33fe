package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/retcpkit/pkg/retcpkit"
)

var demoInterval time.Duration

// demoCmd - долгоживущий демо-клиент: периодически отправляет сообщения,
// пока супервизор сессии переживает перезапуски сервера.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Periodically send messages while the supervisor keeps the session alive",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSessionFromConfig(retcpkit.Hooks{
			OnDataReceived: func(data []byte) {
				fmt.Printf("Echo: %s\n", data)
			},
		})
		if err != nil {
			return err
		}
		defer session.Close()

		if err := session.Start(); err != nil {
			return err
		}

		logger.Info("Demo client is running. Press Ctrl+C to stop.", "endpoint", session.Endpoint())

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		ticker := time.NewTicker(demoInterval)
		defer ticker.Stop()

		seq := 0
		for {
			select {
			case <-ticker.C:
				seq++
				payload := []byte(fmt.Sprintf("demo message #%d", seq))
				if err := session.Send(payload); err != nil {
					// Сессия не подключена или отправка сорвалась -
					// супервизор переподключится, сообщение не повторяем
					logger.Warn("Send skipped", "seq", seq, "error", err)
				}
			case <-sigChan:
				logger.Info("Received shutdown signal")
				return session.Stop()
			}
		}
	},
}

func init() {
	demoCmd.Flags().DurationVar(&demoInterval, "interval", 2*time.Second, "interval between messages")
}
