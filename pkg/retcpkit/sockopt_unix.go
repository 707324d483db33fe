//go:build unix

package retcpkit

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// listenControl устанавливает SO_REUSEADDR на сокете listener до bind.
// Позволяет перезапускать сервер на том же порту, не дожидаясь выхода
// предыдущих соединений из TIME_WAIT.
func listenControl(network, address string, c syscall.RawConn) error {
	var sockErr error
	if err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}); err != nil {
		return err
	}
	return sockErr
}
