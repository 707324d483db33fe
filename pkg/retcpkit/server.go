package retcpkit

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// EchoConfig содержит параметры конфигурации эхо-сервера.
type EchoConfig struct {
	// MaxConnections ограничивает максимальное количество одновременных подключений.
	// 0 или отрицательное значение означает отсутствие ограничения.
	MaxConnections int

	// BufferSize размер буфера чтения для каждого соединения (в байтах).
	// Если 0, используется DefaultBufferSize (4096 байт).
	BufferSize int

	// Logger используется для логгирования событий сервера.
	// Если nil, используется NoopLogger (без логгирования).
	Logger Logger
}

// EchoServer - TCP сервер, который возвращает каждому клиенту все полученные
// байты без изменений. Принимает неограниченное количество одновременных
// подключений (опционально с лимитом), логгирует подключение и отключение
// с адресом клиента и закрывает соединение при отключении клиента или
// ошибке потока.
//
// Сервер служит парным компонентом для Session и используется в тестах
// и демонстрационных командах.
type EchoServer struct {
	// Конфигурация
	address string
	config  EchoConfig

	// Состояние сервера
	listener  net.Listener
	running   atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}

	// Управление соединениями
	connections sync.Map       // map[net.Conn]struct{}
	acceptWg    sync.WaitGroup // для ожидания завершения acceptLoop
	connWg      sync.WaitGroup // для ожидания завершения всех соединений
	connCount   atomic.Int64

	// Logger
	logger Logger
}

// NewEchoServer создает новый эхо-сервер с указанными адресом и конфигурацией.
//
// Параметры:
//   - address: адрес для прослушивания в формате "host:port" (например, ":4782";
//     ":0" выбирает свободный порт, см. Addr)
//   - config: конфигурация сервера
//
// Возвращает:
//   - Новый экземпляр сервера
func NewEchoServer(address string, config EchoConfig) *EchoServer {
	if config.Logger == nil {
		config.Logger = NewNoopLogger()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}

	return &EchoServer{
		address: address,
		config:  config,
		logger:  config.Logger,
	}
}

// Start запускает эхо-сервер и начинает принимать подключения.
//
// Параметры:
//   - ctx: контекст для управления жизненным циклом сервера
//     (при завершении сервер автоматически останавливается)
//
// Возвращает:
//   - <-chan struct{}: канал, который закрывается при полной остановке сервера
//   - error: ошибка запуска или nil при успехе
//
// Listener создается с опцией SO_REUSEADDR на unix-платформах, чтобы
// перезапуск сервера не упирался в TIME_WAIT.
func (s *EchoServer) Start(ctx context.Context) (<-chan struct{}, error) {
	if s.running.Load() {
		return nil, ErrServerAlreadyStarted
	}

	var startErr error
	s.startOnce.Do(func() {
		s.ctx, s.cancel = context.WithCancel(ctx)
		s.done = make(chan struct{})

		lc := net.ListenConfig{Control: listenControl}
		listener, err := lc.Listen(s.ctx, "tcp", s.address)
		if err != nil {
			startErr = errors.Wrap(err, "failed to start listener")
			return
		}

		s.listener = listener
		s.running.Store(true)

		s.logger.Info("Echo server started on %s", listener.Addr())

		s.acceptWg.Add(1)
		go s.acceptLoop()

		// Монитор контекста для автоматической остановки
		go func() {
			<-s.ctx.Done()
			_ = s.Stop()
		}()
	})

	if startErr != nil {
		return nil, startErr
	}

	return s.done, nil
}

// acceptLoop принимает новые подключения в отдельной горутине.
func (s *EchoServer) acceptLoop() {
	defer s.acceptWg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-s.ctx.Done():
				return
			default:
				s.logger.Error("Accept error: %v", err)
				continue
			}
		}

		// Проверяем лимит подключений
		if s.config.MaxConnections > 0 && s.connCount.Load() >= int64(s.config.MaxConnections) {
			s.logger.Warn("Max connections reached, rejecting connection from %s", conn.RemoteAddr())
			conn.Close()
			continue
		}

		s.logger.Info("New connection from %s", conn.RemoteAddr())

		s.connWg.Add(1)
		s.connCount.Add(1)
		s.connections.Store(conn, struct{}{})

		go s.echoLoop(conn)
	}
}

// echoLoop обслуживает одно соединение: каждый прочитанный блок байт
// отправляется обратно клиенту без изменений. Завершается при отключении
// клиента или ошибке потока.
func (s *EchoServer) echoLoop(conn net.Conn) {
	defer func() {
		conn.Close()
		s.connections.Delete(conn)
		s.connCount.Add(-1)
		s.connWg.Done()
		s.logger.Info("Connection closed from %s", conn.RemoteAddr())
	}()

	buf := make([]byte, s.config.BufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if werr := writeAll(conn, buf[:n]); werr != nil {
				if !errors.Is(werr, net.ErrClosed) {
					s.logger.Error("Echo write error to %s: %v", conn.RemoteAddr(), werr)
				}
				return
			}
		}
		if err != nil {
			// EOF и закрытие сокета - штатное завершение
			return
		}
	}
}

// Stop останавливает эхо-сервер.
//
// Возвращает:
//   - error: ошибка остановки или nil при успехе
//
// Процесс остановки:
//  1. Отменяет контекст сервера и закрывает listener
//  2. Ждет завершения accept loop
//  3. Принудительно закрывает все активные соединения
//  4. Ждет завершения всех горутин соединений
//  5. Закрывает канал done для уведомления о полной остановке
//
// Метод потокобезопасен и может быть вызван многократно.
func (s *EchoServer) Stop() error {
	if !s.running.Load() {
		return ErrServerNotStarted
	}

	var stopErr error
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping echo server...")

		s.cancel()

		if s.listener != nil {
			if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Error("Error closing listener: %v", err)
				stopErr = err
			}
		}

		s.acceptWg.Wait()

		// Принудительно закрываем все активные соединения, чтобы разбудить
		// их горутины
		s.connections.Range(func(key, value interface{}) bool {
			if conn, ok := key.(net.Conn); ok {
				conn.Close()
			}
			return true
		})

		s.connWg.Wait()

		s.running.Store(false)
		s.logger.Info("Echo server stopped")

		close(s.done)
	})

	return stopErr
}

// Addr возвращает фактический адрес, на котором слушает сервер.
// Полезно при запуске с ":0", когда порт выбирает система.
func (s *EchoServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.address
}

// ConnectionCount возвращает текущее количество активных подключений.
func (s *EchoServer) ConnectionCount() int64 {
	return s.connCount.Load()
}

// IsRunning возвращает true, если сервер запущен.
func (s *EchoServer) IsRunning() bool {
	return s.running.Load()
}
