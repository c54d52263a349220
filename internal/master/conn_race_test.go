package master

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/udisondev/masterserver/internal/constants"
)

// TestConn_ConcurrentSendClose гоняет Send из многих горутин одновременно
// с CloseAsync. Send неблокирующий, поэтому тест обязан завершиться без
// зависаний, паник и двойного закрытия канала.
func TestConn_ConcurrentSendClose(t *testing.T) {
	srv, cli := net.Pipe()
	t.Cleanup(func() { cli.Close() })

	pool := NewBytePool(constants.DefaultSendBufSize)
	c := newConn(1, srv, testAddr(1, 1000), pool, 16)

	pumpDone := make(chan struct{})
	go func() {
		c.writePump()
		close(pumpDone)
	}()
	go io.Copy(io.Discard, cli)

	var sent, failed atomic.Int32
	const goroutines = 8
	const perGoroutine = 200

	var wg sync.WaitGroup
	for range goroutines {
		wg.Go(func() {
			for range perGoroutine {
				buf := pool.Get(32)
				if err := c.Send(buf); err != nil {
					failed.Add(1)
					continue
				}
				sent.Add(1)
			}
		})
	}

	// Половина горутин соревнуется с закрытием.
	for range 4 {
		wg.Go(c.CloseAsync)
	}
	wg.Wait()

	c.CloseAsync()
	select {
	case <-pumpDone:
	case <-time.After(5 * time.Second):
		t.Fatal("writePump не завершился после CloseAsync")
	}

	if got := sent.Load() + failed.Load(); got != goroutines*perGoroutine {
		t.Errorf("учтено %d отправок, want %d", got, goroutines*perGoroutine)
	}
}

// TestConn_SendQueueOverflow проверяет отключение медленного клиента:
// при переполнении очереди Send возвращает ошибку и закрывает подключение.
func TestConn_SendQueueOverflow(t *testing.T) {
	srv, cli := net.Pipe()
	t.Cleanup(func() {
		srv.Close()
		cli.Close()
	})

	pool := NewBytePool(constants.DefaultSendBufSize)
	// writePump намеренно не запущен: очередь никто не разгребает.
	c := newConn(1, srv, testAddr(1, 1000), pool, 2)

	if err := c.Send(pool.Get(8)); err != nil {
		t.Fatalf("первый Send: %v", err)
	}
	if err := c.Send(pool.Get(8)); err != nil {
		t.Fatalf("второй Send: %v", err)
	}

	if err := c.Send(pool.Get(8)); err == nil {
		t.Fatal("Send в полную очередь должен вернуть ошибку")
	}

	select {
	case <-c.closeCh:
	default:
		t.Error("переполнение очереди должно закрывать подключение")
	}

	// Повторный Send после закрытия безопасен: очередь так и осталась
	// полной, ошибка возвращается без паники на closeOnce.
	if err := c.Send(pool.Get(8)); err == nil {
		t.Error("очередь всё ещё полна, ожидалась ошибка")
	}
}
