//go:build !unix

package retcpkit

import "syscall"

// listenControl на не-unix платформах не настраивает опции сокета.
func listenControl(network, address string, c syscall.RawConn) error {
	return nil
}
