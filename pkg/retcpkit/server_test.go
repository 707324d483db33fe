package retcpkit

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialEcho подключается к серверу напрямую, без Session.
func dialEcho(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// TestEchoServerRoundTrip проверяет, что сервер возвращает байты без изменений.
func TestEchoServerRoundTrip(t *testing.T) {
	server, _, _ := startEchoServer(t, EchoConfig{})

	conn := dialEcho(t, server.Addr())

	payload := []byte("echo me back")
	_, err := conn.Write(payload)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, len(payload))
	n, err := readFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[:n])
}

// TestEchoServerConcurrentClients проверяет одновременную работу нескольких
// клиентов: каждый получает обратно ровно свои данные.
func TestEchoServerConcurrentClients(t *testing.T) {
	server, _, _ := startEchoServer(t, EchoConfig{})

	const clients = 8
	errCh := make(chan error, clients)

	for i := 0; i < clients; i++ {
		go func(id int) {
			conn, err := net.DialTimeout("tcp", server.Addr(), 2*time.Second)
			if err != nil {
				errCh <- err
				return
			}
			defer conn.Close()

			payload := []byte{byte(id), byte(id + 1), byte(id + 2)}
			if _, err := conn.Write(payload); err != nil {
				errCh <- err
				return
			}

			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			buf := make([]byte, len(payload))
			if _, err := readFull(conn, buf); err != nil {
				errCh <- err
				return
			}
			if string(buf) != string(payload) {
				errCh <- assert.AnError
				return
			}
			errCh <- nil
		}(i)
	}

	for i := 0; i < clients; i++ {
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("Timeout waiting for clients")
		}
	}
}

// TestEchoServerMaxConnections проверяет лимит одновременных подключений:
// лишние подключения закрываются сервером.
func TestEchoServerMaxConnections(t *testing.T) {
	server, _, _ := startEchoServer(t, EchoConfig{MaxConnections: 1})

	first := dialEcho(t, server.Addr())

	// Убеждаемся, что первое соединение обслуживается
	_, err := first.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, first.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 1)
	_, err = readFull(first, buf)
	require.NoError(t, err)
	assert.EqualValues(t, 1, server.ConnectionCount())

	// Второе подключение должно быть отклонено: чтение вернет EOF
	second := dialEcho(t, server.Addr())
	require.NoError(t, second.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = second.Read(buf)
	assert.Error(t, err, "rejected connection must be closed by the server")
}

// TestEchoServerStop проверяет остановку: повторный Start невозможен,
// активные соединения закрываются, Stop идемпотентен по результату.
func TestEchoServerStop(t *testing.T) {
	server := NewEchoServer("127.0.0.1:0", EchoConfig{Logger: newTestLogger()})
	done, err := server.Start(context.Background())
	require.NoError(t, err)

	_, err = server.Start(context.Background())
	assert.ErrorIs(t, err, ErrServerAlreadyStarted)

	conn := dialEcho(t, server.Addr())

	require.NoError(t, server.Stop())
	<-done
	assert.False(t, server.IsRunning())

	// Соединение закрыто сервером
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	assert.Error(t, err)

	// Сервер уже остановлен
	assert.ErrorIs(t, server.Stop(), ErrServerNotStarted)
}

// TestEchoServerContextCancel проверяет автоматическую остановку сервера
// при завершении родительского контекста.
func TestEchoServerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	server := NewEchoServer("127.0.0.1:0", EchoConfig{Logger: newTestLogger()})
	done, err := server.Start(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for server to stop after context cancel")
	}
	assert.False(t, server.IsRunning())
}

// readFull читает ровно len(buf) байт из conn.
func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
