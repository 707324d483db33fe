// Package retcpkit предоставляет устойчивый, событийный TCP клиент с
// автоматическим переподключением и парный к нему эхо-сервер.
//
// Основные возможности:
//   - Одно исходящее соединение к фиксированному endpoint
//   - Фоновый супервизор: автоматическое переподключение с настраиваемой паузой
//   - Таймаут подключения, изменяемый между попытками
//   - Асинхронная доставка входящих данных через обработчик OnDataReceived
//   - Синхронные обработчики событий вне внутренних блокировок
//   - Композиция обработчиков через Hooks.Chain вместо наследования
//   - Гибкое логгирование через интерфейс Logger (совместим с *slog.Logger)
//
// Основные компоненты:
//
// Session - переподключающийся TCP клиент, привязанный к одному endpoint
// EchoServer - сервер, возвращающий полученные байты без изменений
// Hooks - набор обработчиков событий сессии
// Config - конфигурация сессии
// Logger - интерфейс для логгирования
//
// Транспорт доставляет сырые блоки байт: границы блоков не являются
// границами сообщений. Фрейминг, аутентификация и шифрование не входят
// в задачи пакета.
//
// Пример использования:
//
//	session, err := retcpkit.NewSession("localhost", 4782, retcpkit.Config{
//	    ReconnectInterval: 5 * time.Second,
//	    ConnectTimeout:    3 * time.Second,
//	    Logger:            slog.Default(),
//	    Hooks: retcpkit.Hooks{
//	        OnConnected: func() {
//	            log.Println("Connected!")
//	        },
//	        OnDataReceived: func(data []byte) {
//	            log.Printf("Received: %s", data)
//	        },
//	        OnError: func(phase string, err error) {
//	            log.Printf("Error during %s: %v", phase, err)
//	        },
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	// Запускаем супервизор; подключение происходит в фоне
//	if err := session.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Отправка данных; ErrNotConnected, пока соединение не установлено
//	if err := session.Send([]byte("hello")); err != nil {
//	    log.Printf("Send error: %v", err)
//	}
//
//	// Остановка без уничтожения: Start можно вызвать снова
//	session.Stop()
//
// Классификация ошибок:
//
// Все ошибки пакета сводятся к сентинелам, проверяемым через errors.Is:
// ErrInvalidArgument, ErrNotConnected, ErrConnectTimeout, ErrConnectFailed,
// ErrIOFailure, ErrSessionClosed. Ошибки подключения и чтения
// восстанавливаются супервизором автоматически; ошибки отправки
// дополнительно возвращаются вызывающему.
//
// Расширение поведения:
//
// Вместо наследования от базового клиента поведение настраивается
// композицией обработчиков. Паттерн "вызвать базу, потом расширение":
//
//	hooks := baseHooks.Chain(retcpkit.Hooks{
//	    OnDataReceived: func(data []byte) {
//	        // дополнительная обработка после базового обработчика
//	    },
//	})
package retcpkit
