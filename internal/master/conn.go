package master

import (
	"container/list"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"sync"
	"time"
)

// Default write queue / timeout constants.
const (
	defaultWriteTimeout = 5 * time.Second
)

// Role определяет тип подключения после рукопожатия.
type Role int

const (
	RoleNone Role = iota
	RoleServer
	RoleClient
	RoleAnonymous
)

// String returns a human-readable role name for logs.
func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	case RoleAnonymous:
		return "anonymous"
	default:
		return "invalid"
	}
}

// Conn represents a single accepted transport session: a game server,
// a player client or an anonymous prober.
//
// Все поля состояния (роль, имя, счётчики, списки) принадлежат
// событийному циклу и читаются/пишутся только из него. Мьютексов нет.
// Горутинам ввода-вывода доступны только транспортные поля внизу.
type Conn struct {
	id   uint64
	addr netip.AddrPort
	role Role

	// Версии протоколов из рукопожатия.
	cmProtocol  uint32 // клиент ↔ мастер
	csProtocol  uint32 // клиент ↔ игровой сервер
	clientBuild uint32

	// Имя сервера или ник игрока. Пустое заменяется на ChumpChange.
	name string

	// Поля игрового сервера.
	description string
	levelName   string
	levelType   string
	botCount    uint32
	playerCount uint32
	maxPlayers  uint32
	infoFlags   uint32

	// Поля клиента.
	autodetect    string
	nonce         uint64
	authenticated bool
	masterAdmin   bool
	debugClient   bool
	hidden        bool
	inGlobalChat  bool
	badges        uint32
	gamesPlayed   uint16
	leaveChatAt   time.Time
	leavePending  bool
	chatTooFast   bool

	// Неподтверждённые запросы на соединение, где этот Conn
	// выступает инициатором либо хостом.
	pending []*connectRequest

	// Флуд-контроль.
	lastActivity time.Time
	strikes      int

	// closing выставляется циклом при начале отключения. После этого
	// Conn исключён из реестра и новые пакеты ему не отправляются.
	closing bool

	// Позиция в списке серверов или клиентов, nil для Anonymous/None.
	elem *list.Element

	// Транспорт. conn закрывает writePump при выходе.
	conn      net.Conn
	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once

	writePool    *BytePool
	writeTimeout time.Duration
}

// newConn creates connection state for an accepted session.
func newConn(id uint64, nc net.Conn, addr netip.AddrPort, writePool *BytePool, sendQueueSize int) *Conn {
	if sendQueueSize <= 0 {
		sendQueueSize = 256
	}
	return &Conn{
		id:           id,
		addr:         addr,
		role:         RoleNone,
		name:         "ChumpChange",
		conn:         nc,
		sendCh:       make(chan []byte, sendQueueSize),
		closeCh:      make(chan struct{}),
		writePool:    writePool,
		writeTimeout: defaultWriteTimeout,
	}
}

// Addr returns the remote transport address.
func (c *Conn) Addr() netip.AddrPort {
	return c.addr
}

// Name returns the display name assigned at or after the handshake.
func (c *Conn) Name() string {
	return c.name
}

// writePump is a dedicated writer goroutine for this connection.
// Reads framed packets from sendCh and writes them to conn.
// Uses net.Buffers (writev syscall) for batching and pool.Put for buffer return.
func (c *Conn) writePump() {
	bufs := make(net.Buffers, 0, 64)
	poolBufs := make([][]byte, 0, 64)

	defer func() {
		// Остаток очереди возвращаем в пул и закрываем сокет.
		// Закрытие будит горутину чтения, она сообщит циклу об уходе.
		for {
			select {
			case pkt, ok := <-c.sendCh:
				if !ok {
					c.conn.Close()
					return
				}
				if c.writePool != nil {
					c.writePool.Put(pkt)
				}
			default:
				c.conn.Close()
				return
			}
		}
	}()

	for {
		select {
		case pkt, ok := <-c.sendCh:
			if !ok {
				return // канал закрыт: очередь уже дописана, мягкое завершение
			}

			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				slog.Warn("set write deadline failed", "remote", c.addr, "error", err)
				if c.writePool != nil {
					c.writePool.Put(pkt)
				}
				return
			}

			// Batching: drain all queued packets
			queued := len(c.sendCh)
			if queued == 0 {
				// Single packet — direct write (hot path, zero-alloc)
				_, err := c.conn.Write(pkt)
				if c.writePool != nil {
					c.writePool.Put(pkt)
				}
				if err != nil {
					slog.Warn("write failed", "remote", c.addr, "error", err)
					return
				}
				continue
			}

			// Multiple packets — net.Buffers (writev syscall, zero-copy)
			bufs = bufs[:0]
			poolBufs = poolBufs[:0]

			bufs = append(bufs, pkt)
			poolBufs = append(poolBufs, pkt)
			for range queued {
				p, ok := <-c.sendCh
				if !ok {
					break
				}
				bufs = append(bufs, p)
				poolBufs = append(poolBufs, p)
			}

			_, err := bufs.WriteTo(c.conn)

			// ALWAYS return buffers to pool (even on error)
			if c.writePool != nil {
				for _, b := range poolBufs {
					c.writePool.Put(b)
				}
			}

			if err != nil {
				slog.Warn("batch write failed", "remote", c.addr, "error", err)
				return
			}

		case <-c.closeCh:
			return
		}
	}
}

// Send queues a framed packet for async delivery.
// Non-blocking: returns error if queue is full (slow client → disconnect).
// OWNERSHIP: takes ownership of pkt (pool buffer). writePump will return it to pool.
func (c *Conn) Send(pkt []byte) error {
	select {
	case c.sendCh <- pkt:
		return nil
	default:
		if c.writePool != nil {
			c.writePool.Put(pkt)
		}
		slog.Warn("send queue full, disconnecting slow client", "remote", c.addr)
		c.CloseAsync()
		return fmt.Errorf("send queue full")
	}
}

// CloseAsync signals the writePump to stop without blocking.
// Safe to call multiple times and from any goroutine.
func (c *Conn) CloseAsync() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
	})
}
