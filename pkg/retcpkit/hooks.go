package retcpkit

// Hooks содержит обработчики событий жизненного цикла сессии.
// Все обработчики опциональны и вызываются синхронно, вне внутренних
// блокировок сессии - из обработчика безопасно вызывать методы сессии.
//
// Обработчики заменяют наследование: вместо переопределения методов
// базового клиента поведение настраивается композицией (см. Chain).
type Hooks struct {
	// OnConnected вызывается после успешного установления соединения,
	// до первого вызова OnDataReceived для этого соединения.
	OnConnected func()

	// OnDisconnected вызывается не более одного раза на каждое соединение,
	// после последнего OnDataReceived для этого соединения.
	OnDisconnected func()

	// OnDataReceived вызывается для каждого прочитанного блока байт,
	// в порядке их прихода. Границы блоков НЕ являются границами сообщений:
	// обработчику, которому нужны логические сообщения, следует буферизовать
	// и разделять данные самостоятельно.
	//
	// Срез действителен только на время вызова: сессия переиспользует
	// буфер чтения. Если данные нужны дольше, скопируйте их.
	OnDataReceived func(data []byte)

	// OnAfterSend вызывается после успешной отправки всех байт payload.
	OnAfterSend func(data []byte)

	// OnError вызывается при ошибках подключения, чтения и записи.
	// msg описывает фазу, err - ошибка таксономии (ErrConnectTimeout,
	// ErrConnectFailed, ErrIOFailure).
	OnError func(msg string, err error)
}

// Chain возвращает новый набор обработчиков, в котором для каждого события
// сначала вызывается базовый обработчик (h), затем расширение (ext).
// Паттерн "вызвать базу, потом добавить поведение" без наследования.
func (h Hooks) Chain(ext Hooks) Hooks {
	return Hooks{
		OnConnected:    chain0(h.OnConnected, ext.OnConnected),
		OnDisconnected: chain0(h.OnDisconnected, ext.OnDisconnected),
		OnDataReceived: chain1(h.OnDataReceived, ext.OnDataReceived),
		OnAfterSend:    chain1(h.OnAfterSend, ext.OnAfterSend),
		OnError:        chainErr(h.OnError, ext.OnError),
	}
}

func chain0(base, ext func()) func() {
	if base == nil {
		return ext
	}
	if ext == nil {
		return base
	}
	return func() {
		base()
		ext()
	}
}

func chain1(base, ext func([]byte)) func([]byte) {
	if base == nil {
		return ext
	}
	if ext == nil {
		return base
	}
	return func(data []byte) {
		base(data)
		ext(data)
	}
}

func chainErr(base, ext func(string, error)) func(string, error) {
	if base == nil {
		return ext
	}
	if ext == nil {
		return base
	}
	return func(msg string, err error) {
		base(msg, err)
		ext(msg, err)
	}
}
