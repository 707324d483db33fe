package retcpkit

import "time"

const (
	// DefaultReconnectInterval пауза между попытками подключения по умолчанию.
	DefaultReconnectInterval = 5 * time.Second

	// DefaultConnectTimeout таймаут установки соединения по умолчанию.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultBufferSize размер буфера чтения по умолчанию (в байтах).
	DefaultBufferSize = 4096
)

// Config содержит параметры конфигурации сессии.
// Все поля опциональны: нулевые значения заменяются значениями по умолчанию.
type Config struct {
	// ReconnectInterval пауза супервизора между попытками подключения.
	// Если 0, используется DefaultReconnectInterval (5 секунд).
	ReconnectInterval time.Duration

	// ConnectTimeout таймаут для установки соединения.
	// Если 0, используется DefaultConnectTimeout (10 секунд).
	// Может быть изменен позже через Session.SetConnectTimeout.
	ConnectTimeout time.Duration

	// BufferSize размер буфера чтения (в байтах).
	// Если 0, используется DefaultBufferSize (4096 байт).
	BufferSize int

	// Hooks обработчики событий сессии.
	// Любой из обработчиков может быть nil.
	Hooks Hooks

	// Logger используется для логгирования событий сессии.
	// Если nil, используется NoopLogger (без логгирования).
	Logger Logger
}

// normalize заполняет нулевые поля значениями по умолчанию.
func (c *Config) normalize() {
	if c.ReconnectInterval <= 0 {
		c.ReconnectInterval = DefaultReconnectInterval
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.Logger == nil {
		c.Logger = NewNoopLogger()
	}
}
