package retcpkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHooksChainOrder проверяет порядок вызова: сначала базовый обработчик,
// затем расширение.
func TestHooksChainOrder(t *testing.T) {
	var calls []string

	base := Hooks{
		OnConnected:    func() { calls = append(calls, "base-connected") },
		OnDisconnected: func() { calls = append(calls, "base-disconnected") },
		OnDataReceived: func(data []byte) { calls = append(calls, "base-data:"+string(data)) },
		OnAfterSend:    func(data []byte) { calls = append(calls, "base-sent:"+string(data)) },
		OnError:        func(msg string, err error) { calls = append(calls, "base-error:"+msg) },
	}
	ext := Hooks{
		OnConnected:    func() { calls = append(calls, "ext-connected") },
		OnDisconnected: func() { calls = append(calls, "ext-disconnected") },
		OnDataReceived: func(data []byte) { calls = append(calls, "ext-data:"+string(data)) },
		OnAfterSend:    func(data []byte) { calls = append(calls, "ext-sent:"+string(data)) },
		OnError:        func(msg string, err error) { calls = append(calls, "ext-error:"+msg) },
	}

	chained := base.Chain(ext)
	chained.OnConnected()
	chained.OnDataReceived([]byte("d"))
	chained.OnAfterSend([]byte("s"))
	chained.OnError("connect", ErrConnectFailed)
	chained.OnDisconnected()

	assert.Equal(t, []string{
		"base-connected", "ext-connected",
		"base-data:d", "ext-data:d",
		"base-sent:s", "ext-sent:s",
		"base-error:connect", "ext-error:connect",
		"base-disconnected", "ext-disconnected",
	}, calls)
}

// TestHooksChainNil проверяет композицию с частично заполненными наборами.
func TestHooksChainNil(t *testing.T) {
	var connected, data int

	base := Hooks{
		OnConnected: func() { connected++ },
	}
	ext := Hooks{
		OnDataReceived: func([]byte) { data++ },
	}

	chained := base.Chain(ext)
	assert.NotNil(t, chained.OnConnected)
	assert.NotNil(t, chained.OnDataReceived)
	assert.Nil(t, chained.OnDisconnected)
	assert.Nil(t, chained.OnAfterSend)
	assert.Nil(t, chained.OnError)

	chained.OnConnected()
	chained.OnDataReceived(nil)
	assert.Equal(t, 1, connected)
	assert.Equal(t, 1, data)

	// Chain пустых наборов остается пустым
	empty := Hooks{}.Chain(Hooks{})
	assert.Nil(t, empty.OnConnected)
}
