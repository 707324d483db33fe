package retcpkit

import (
	"context"
	"net"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument возвращается при некорректных параметрах конструктора
	// или пустом payload при отправке
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotConnected возвращается при попытке отправки без установленного соединения
	ErrNotConnected = errors.New("session not connected")

	// ErrConnectTimeout возвращается когда попытка подключения превысила таймаут
	ErrConnectTimeout = errors.New("connect timeout")

	// ErrConnectFailed возвращается при неудачной попытке подключения к серверу
	ErrConnectFailed = errors.New("connect failed")

	// ErrIOFailure возвращается при ошибке чтения или записи на живом соединении
	ErrIOFailure = errors.New("i/o failure")

	// ErrSessionClosed возвращается при любой операции после Close()
	ErrSessionClosed = errors.New("session closed")

	// ErrServerNotStarted возвращается при попытке остановить незапущенный сервер
	ErrServerNotStarted = errors.New("server not started")

	// ErrServerAlreadyStarted возвращается при попытке запустить уже работающий сервер
	ErrServerAlreadyStarted = errors.New("server already started")
)

// classifyDialError переводит ошибку dial в ошибку таксономии сессии.
// Таймаут (по контексту или по net.Error) превращается в ErrConnectTimeout,
// всё остальное - в ErrConnectFailed. Исходная ошибка сохраняется в тексте.
func classifyDialError(err error, addr string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(ErrConnectTimeout, "dial %s: %v", addr, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrapf(ErrConnectTimeout, "dial %s: %v", addr, err)
	}
	return errors.Wrapf(ErrConnectFailed, "dial %s: %v", addr, err)
}
