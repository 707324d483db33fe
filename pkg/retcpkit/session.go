package retcpkit

import (
	"context"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// ConnState определяет состояние соединения сессии.
type ConnState int32

const (
	// StateDisconnected - соединение отсутствует.
	StateDisconnected ConnState = iota

	// StateConnecting - идет попытка установления соединения.
	StateConnecting

	// StateConnected - соединение установлено и работает.
	StateConnected
)

// String возвращает строковое представление состояния соединения.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// Session представляет переподключающийся TCP клиент, привязанный к одному
// фиксированному endpoint.
//
// Пока сессия запущена (между Start и Stop), фоновый супервизор поддерживает
// соединение: при отсутствии соединения выполняется попытка подключения с
// таймаутом, затем пауза ReconnectInterval, и так до остановки. Для каждого
// живого соединения отдельная горутина читает данные и передает каждый
// прочитанный блок в Hooks.OnDataReceived.
//
// Отправка выполняется в горутине вызывающего через Send. Все переходы
// состояния сериализуются одним мьютексом; горячие пути чтения и записи
// мьютекс не удерживают - ссылка на соединение подменяется только под ним.
type Session struct {
	// Конфигурация
	host   string
	port   int
	addr   string
	config Config

	// Управление состоянием
	mu      sync.RWMutex
	conn    net.Conn
	state   atomic.Int32 // ConnState
	running atomic.Bool
	closed  atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	// Таймаут подключения; может меняться между попытками
	connectTimeout atomic.Int64 // time.Duration

	// Обработчики и логгер
	hooks  Hooks
	logger Logger
}

// NewSession создает новую сессию для указанного endpoint.
//
// Параметры:
//   - host: адрес сервера (непустая строка)
//   - port: порт сервера в диапазоне [1, 65535]
//   - config: конфигурация сессии (нулевые поля заменяются значениями по умолчанию)
//
// Возвращает:
//   - Новый экземпляр сессии
//   - ErrInvalidArgument, если host пуст или port вне допустимого диапазона
//
// Endpoint неизменяем после создания. Сессия не подключается сама:
// вызовите Start, чтобы запустить супервизор.
//
// Пример:
//
//	session, err := retcpkit.NewSession("localhost", 4782, retcpkit.Config{
//	    ReconnectInterval: 5 * time.Second,
//	    ConnectTimeout:    3 * time.Second,
//	    Hooks: retcpkit.Hooks{
//	        OnDataReceived: func(data []byte) {
//	            log.Printf("Received: %s", data)
//	        },
//	    },
//	})
func NewSession(host string, port int, config Config) (*Session, error) {
	if host == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "host must not be empty")
	}
	if port < 1 || port > 65535 {
		return nil, errors.Wrapf(ErrInvalidArgument, "port %d out of range [1, 65535]", port)
	}

	config.normalize()

	s := &Session{
		host:   host,
		port:   port,
		addr:   net.JoinHostPort(host, strconv.Itoa(port)),
		config: config,
		hooks:  config.Hooks,
		logger: config.Logger,
	}
	s.connectTimeout.Store(int64(config.ConnectTimeout))

	return s, nil
}

// Start запускает супервизор сессии и сразу возвращает управление.
//
// Возвращает:
//   - nil, если супервизор запущен или уже работает (метод идемпотентен)
//   - ErrSessionClosed, если сессия была закрыта через Close
//
// Супервизор в фоне выполняет попытки подключения, пока сессия запущена.
// После Stop сессию можно запустить снова; после Close - нельзя.
func (s *Session) Start() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		// Уже запущена
		return nil
	}

	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	ctx := s.ctx
	s.mu.Unlock()

	s.logger.Info("Session starting for %s", s.addr)

	go s.supervisorLoop(ctx)

	return nil
}

// supervisorLoop - фоновая горутина поддержания соединения.
// Пока сессия запущена: подключиться, если не подключены, затем пауза
// ReconnectInterval. Отмена контекста завершает цикл без новых попыток.
func (s *Session) supervisorLoop(ctx context.Context) {
	defer s.logger.Info("Session supervisor stopped for %s", s.addr)

	for {
		if ctx.Err() != nil || !s.running.Load() {
			return
		}

		if !s.IsConnected() {
			// Ошибки подключения не фатальны: они уже доставлены в OnError,
			// супервизор просто повторит попытку после паузы
			_ = s.connect(ctx)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.config.ReconnectInterval):
		}
	}
}

// connect выполняет одну попытку подключения к endpoint.
// Устаревшее соединение, если оно есть, сбрасывается перед попыткой.
// Таймаут ограничивает dial через контекст, поэтому проигравшая попытка
// закрывает свой сокет сама - полуоткрытые дескрипторы не утекают.
func (s *Session) connect(ctx context.Context) error {
	s.mu.Lock()
	if ConnState(s.state.Load()) == StateConnected {
		s.mu.Unlock()
		return nil
	}
	s.closeConnLocked()
	s.state.Store(int32(StateConnecting))
	s.mu.Unlock()

	timeout := s.ConnectTimeout()
	s.logger.Info("Connecting to %s (timeout %v)...", s.addr, timeout)

	dialCtx, dialCancel := context.WithTimeout(ctx, timeout)
	defer dialCancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", s.addr)
	if err != nil {
		s.state.Store(int32(StateDisconnected))
		if ctx.Err() != nil {
			// Сессию остановили во время dial - не ошибка подключения
			return ctx.Err()
		}
		cerr := classifyDialError(err, s.addr)
		s.logger.Error("Failed to connect to %s: %v", s.addr, err)
		s.emitError("connect", cerr)
		return cerr
	}

	s.mu.Lock()
	if ctx.Err() != nil || !s.running.Load() {
		// Сессию остановили во время dial - соединение больше не нужно
		s.state.Store(int32(StateDisconnected))
		s.mu.Unlock()
		conn.Close()
		return ctx.Err()
	}
	s.conn = conn
	s.state.Store(int32(StateConnected))
	s.mu.Unlock()

	s.logger.Info("Connected to %s", s.addr)

	// OnConnected всегда вызывается до первого OnDataReceived:
	// горутина чтения запускается только после обработчика
	if s.hooks.OnConnected != nil {
		s.hooks.OnConnected()
	}

	go s.receiveLoop(ctx, conn)

	return nil
}

// receiveLoop - горутина чтения, по одной на каждое живое соединение.
// Читает блоками в буфер фиксированного размера и передает каждый блок
// в OnDataReceived синхронно и в порядке прихода. Завершается при EOF,
// ошибке чтения или отмене; заблокированное чтение прерывается закрытием
// сокета из Disconnect/Stop.
func (s *Session) receiveLoop(ctx context.Context, conn net.Conn) {
	// На любом пути выхода соединение приводится к согласованному
	// состоянию: OnDisconnected сработает ровно один раз
	defer s.disconnectConn(conn)

	buf := make([]byte, s.config.BufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 && s.hooks.OnDataReceived != nil {
			s.hooks.OnDataReceived(buf[:n])
		}
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				s.logger.Info("Connection to %s closed by remote peer (EOF)", s.addr)
			case errors.Is(err, net.ErrClosed) || ctx.Err() != nil:
				// Сокет закрыт нашей же стороной - штатное завершение
			default:
				s.logger.Error("Receive error on %s: %v", s.addr, err)
				s.emitError("receive", errors.Wrapf(ErrIOFailure, "receive from %s: %v", s.addr, err))
			}
			return
		}
	}
}

// Send отправляет payload на сервер из горутины вызывающего.
//
// Параметры:
//   - payload: непустой срез байт для отправки
//
// Возвращает:
//   - nil при успешной отправке всех байт (после чего вызывается OnAfterSend)
//   - ErrSessionClosed, если сессия закрыта
//   - ErrInvalidArgument, если payload пуст
//   - ErrNotConnected, если соединение не установлено; это нарушение
//     предусловия, без сетевой активности - вызывающий должен сам
//     перепроверить состояние, отправка не ставится в очередь
//   - ErrIOFailure при ошибке записи; сессия при этом отключается
//     (супервизор переподключится), но ошибка НЕ проглатывается -
//     вызывающий решает, повторять ли логическую операцию
//
// Гонка переподключения и отправки допустима: одна отправка может
// завершиться ошибкой на устаревшем соединении.
func (s *Session) Send(payload []byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if len(payload) == 0 {
		return errors.Wrap(ErrInvalidArgument, "payload must not be empty")
	}

	s.mu.RLock()
	conn := s.conn
	connected := ConnState(s.state.Load()) == StateConnected
	s.mu.RUnlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	if err := writeAll(conn, payload); err != nil {
		werr := errors.Wrapf(ErrIOFailure, "send to %s: %v", s.addr, err)
		s.logger.Error("Send error on %s: %v", s.addr, err)
		s.emitError("send", werr)
		s.disconnectConn(conn)
		return werr
	}

	if s.hooks.OnAfterSend != nil {
		s.hooks.OnAfterSend(payload)
	}

	return nil
}

// writeAll записывает все байты payload в соединение или возвращает ошибку.
func writeAll(conn net.Conn, payload []byte) error {
	totalWritten := 0
	for totalWritten < len(payload) {
		n, err := conn.Write(payload[totalWritten:])
		if err != nil {
			return err
		}
		totalWritten += n
	}
	return nil
}

// Disconnect закрывает текущее соединение, если оно есть.
// Метод идемпотентен: вызов в состоянии Disconnected ничего не делает.
// OnDisconnected вызывается вне блокировки - из обработчика безопасно
// обращаться к сессии.
//
// Супервизор, если сессия запущена, со временем переподключится.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.conn == nil {
		s.state.Store(int32(StateDisconnected))
		s.mu.Unlock()
		return
	}
	s.closeConnLocked()
	s.state.Store(int32(StateDisconnected))
	s.mu.Unlock()

	s.logger.Info("Disconnected from %s", s.addr)

	if s.hooks.OnDisconnected != nil {
		s.hooks.OnDisconnected()
	}
}

// disconnectConn закрывает соединение conn, только если оно все еще
// является активным соединением сессии. Проверка идентичности гарантирует,
// что OnDisconnected сработает не более одного раза на соединение и что
// завершение горутины чтения устаревшего соединения не тронет новое.
func (s *Session) disconnectConn(conn net.Conn) {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	s.closeConnLocked()
	s.state.Store(int32(StateDisconnected))
	s.mu.Unlock()

	s.logger.Info("Disconnected from %s", s.addr)

	if s.hooks.OnDisconnected != nil {
		s.hooks.OnDisconnected()
	}
}

// closeConnLocked закрывает и обнуляет активное соединение.
// Вызывается только под s.mu. Закрытие сокета будит заблокированные
// операции чтения, что завершает горутину чтения.
func (s *Session) closeConnLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// Stop останавливает сессию: снимает флаг запуска, отменяет контекст всех
// фоновых горутин и разрывает текущее соединение.
//
// Метод идемпотентен и не блокируется в ожидании полного завершения фоновых
// горутин: отмена для них - жесткий сигнал выхода, а операции на устаревшем
// соединении защищены проверкой состояния.
//
// После Stop сессию можно запустить снова через Start.
func (s *Session) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	s.logger.Info("Stopping session for %s", s.addr)

	s.mu.Lock()
	cancel := s.cancel
	s.ctx, s.cancel = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	s.Disconnect()

	return nil
}

// Close окончательно останавливает сессию и освобождает ресурсы.
// После Close любые операции (Start, Send) возвращают ErrSessionClosed;
// повторный Close ничего не делает. Закрытие детерминировано: сокет
// освобождается здесь, а не финализатором.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.Stop()
}

// SetConnectTimeout устанавливает таймаут подключения для последующих
// попыток. На уже идущую попытку не влияет. Неположительные значения
// игнорируются.
func (s *Session) SetConnectTimeout(timeout time.Duration) {
	if timeout <= 0 {
		s.logger.Warn("Ignoring non-positive connect timeout %v", timeout)
		return
	}
	s.connectTimeout.Store(int64(timeout))
}

// ConnectTimeout возвращает текущий таймаут подключения.
func (s *Session) ConnectTimeout() time.Duration {
	return time.Duration(s.connectTimeout.Load())
}

// IsConnected возвращает true, если соединение установлено.
func (s *Session) IsConnected() bool {
	return ConnState(s.state.Load()) == StateConnected
}

// IsRunning возвращает true, если сессия запущена (между Start и Stop).
func (s *Session) IsRunning() bool {
	return s.running.Load()
}

// State возвращает текущее состояние соединения.
func (s *Session) State() ConnState {
	return ConnState(s.state.Load())
}

// Endpoint возвращает адрес сервера в формате "host:port".
func (s *Session) Endpoint() string {
	return s.addr
}

// emitError доставляет ошибку в обработчик OnError, если он установлен.
// Вызывается всегда вне блокировок сессии.
func (s *Session) emitError(phase string, err error) {
	if s.hooks.OnError != nil {
		s.hooks.OnError(phase, err)
	}
}
