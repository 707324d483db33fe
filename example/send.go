package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/retcpkit/pkg/retcpkit"
)

var (
	sendMessage string
	sendTimeout time.Duration
)

// sendCmd - одноразовый демо-клиент: процесс владеет единственной сессией
// с явными запуском и остановкой, отправляет одно сообщение и печатает эхо.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one message through a session and print the echo",
	RunE: func(cmd *cobra.Command, args []string) error {
		connectedCh := make(chan struct{})
		echoCh := make(chan []byte, 1)

		session, err := newSessionFromConfig(retcpkit.Hooks{
			OnConnected: func() {
				select {
				case <-connectedCh:
				default:
					close(connectedCh)
				}
			},
			OnDataReceived: func(data []byte) {
				// Копируем: буфер чтения переиспользуется сессией
				echo := append([]byte(nil), data...)
				select {
				case echoCh <- echo:
				default:
				}
			},
		})
		if err != nil {
			return err
		}
		defer session.Close()

		if err := session.Start(); err != nil {
			return err
		}

		select {
		case <-connectedCh:
		case <-time.After(sendTimeout):
			return fmt.Errorf("timeout connecting to %s", session.Endpoint())
		}

		if err := session.Send([]byte(sendMessage)); err != nil {
			return fmt.Errorf("send failed: %w", err)
		}

		select {
		case echo := <-echoCh:
			fmt.Printf("Echo: %s\n", echo)
		case <-time.After(sendTimeout):
			return fmt.Errorf("timeout waiting for echo from %s", session.Endpoint())
		}

		return session.Stop()
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendMessage, "message", "m", "hello", "message to send")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 10*time.Second, "connect and echo wait timeout")
}

// newSessionFromConfig создает сессию из загруженной конфигурации
// с логгирующими обработчиками, дополненными переданным расширением.
func newSessionFromConfig(ext retcpkit.Hooks) (*retcpkit.Session, error) {
	base := retcpkit.Hooks{
		OnConnected: func() {
			logger.Info("Connected", "endpoint", cfg.Address())
		},
		OnDisconnected: func() {
			logger.Info("Disconnected", "endpoint", cfg.Address())
		},
		OnAfterSend: func(data []byte) {
			logger.Debug("Sent", "bytes", len(data))
		},
		OnError: func(phase string, err error) {
			logger.Warn("Session error", "phase", phase, "error", err)
		},
	}

	return retcpkit.NewSession(cfg.Endpoint.Host, cfg.Endpoint.Port, retcpkit.Config{
		ReconnectInterval: cfg.GetReconnectInterval(),
		ConnectTimeout:    cfg.GetConnectTimeout(),
		BufferSize:        cfg.Session.BufferSize,
		Logger:            logger,
		Hooks:             base.Chain(ext),
	})
}
