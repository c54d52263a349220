package master

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/udisondev/masterserver/internal/config"
	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/protocol"
)

const eventQueueSize = 512

type eventKind int

const (
	eventOpened eventKind = iota
	eventPacket
	eventClosed
)

// connEvent передаётся горутинами чтения в событийный цикл.
type connEvent struct {
	kind    eventKind
	conn    *Conn
	payload []byte // тело кадра для eventPacket, буфер из readPool
}

// Addr возвращает адрес, на котором слушает сервер.
// Возвращает nil если сервер ещё не запущен.
func (m *Master) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return nil
	}
	return m.listener.Addr()
}

// Close закрывает listener и останавливает сервер.
func (m *Master) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener != nil {
		return m.listener.Close()
	}
	return nil
}

// Run begins listening for connections.
// Создаёт listener на cfg.BindAddress:cfg.Port и запускает приём.
func (m *Master) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.BindAddress, m.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	m.mu.Lock()
	m.listener = ln
	m.mu.Unlock()

	return m.Serve(ctx, ln)
}

// Serve принимает готовый listener и запускает сервер.
// Используется для тестирования с произвольным listener.
func (m *Master) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	wg.Go(func() {
		m.runLoop(ctx)
	})
	wg.Go(func() {
		m.tasks.worker(ctx)
	})
	wg.Go(func() {
		slog.Info("master server started", "address", ln.Addr(), "name", m.cfg.MasterName)
		m.acceptLoop(ctx, &wg, ln)
	})

	wg.Wait()

	return nil
}

func (m *Master) acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				slog.Error("Failed to accept new connection", "error", err)
				continue
			}
			wg.Go(func() {
				m.handleConnection(ctx, conn)
			})
		}
	}
}

// handleConnection ведёт горутину чтения одной сессии: регистрирует
// подключение в цикле, запускает пишущую горутину и передаёт кадры
// в цикл до конца сессии.
func (m *Master) handleConnection(ctx context.Context, nc net.Conn) {
	c := newConn(m.nextID.Add(1), nc, remoteAddrPort(nc), m.sendPool, constants.SendQueueSize)

	done := make(chan struct{})
	defer close(done)
	defer c.CloseAsync()

	go func() {
		select {
		case <-ctx.Done():
			nc.Close()
		case <-done:
		}
	}()

	slog.Debug("new connection", "remote", c.addr)

	// Цикл должен узнать о подключении раньше первого пакета.
	select {
	case m.events <- connEvent{kind: eventOpened, conn: c}:
	case <-ctx.Done():
		return
	}

	go c.writePump()

	readBuf := make([]byte, constants.DefaultReadBufSize)
	for {
		data, err := protocol.ReadPacket(nc, readBuf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.EOF) {
				slog.Debug("read failed", "remote", c.addr, "error", err)
			}
			break
		}

		pkt := m.readPool.Get(len(data))
		copy(pkt, data)

		// Блокирующая передача: медленный цикл притормаживает чтение.
		select {
		case m.events <- connEvent{kind: eventPacket, conn: c, payload: pkt}:
		case <-ctx.Done():
			return
		}
	}

	select {
	case m.events <- connEvent{kind: eventClosed, conn: c}:
	case <-ctx.Done():
	}
}

func remoteAddrPort(nc net.Conn) netip.AddrPort {
	if tcp, ok := nc.RemoteAddr().(*net.TCPAddr); ok {
		return tcp.AddrPort()
	}
	if ap, err := netip.ParseAddrPort(nc.RemoteAddr().String()); err == nil {
		return ap
	}
	return netip.AddrPort{}
}

// runLoop владеет всем состоянием мастера. Любая мутация реестра,
// таблицы запросов и кэша рекордов происходит здесь.
func (m *Master) runLoop(ctx context.Context) {
	ticker := m.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	m.lastConfigCheck = m.clock.Now()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case ev := <-m.events:
			m.handleEvent(ev)
		case t := <-m.tasks.doneCh:
			t.Finish(m)
		case cfg := <-m.reloadCh:
			m.applyConfig(cfg)
		case <-ticker.Chan():
			m.tick(m.clock.Now())
		}
	}
}

func (m *Master) handleEvent(ev connEvent) {
	switch ev.kind {
	case eventOpened:
		m.registry.add(ev.conn)
	case eventPacket:
		m.handlePacket(ev.conn, ev.payload)
		m.readPool.Put(ev.payload)
	case eventClosed:
		m.dropConn(ev.conn, false)
	}
}

// tick выполняет служебные работы цикла: просрочку запросов на
// соединение, отложенные уходы из чата, перечитывание конфигурации
// и запись JSON-статуса.
func (m *Master) tick(now time.Time) {
	m.expireConnectRequests(now)
	m.processChatLeaves(now)

	if now.Sub(m.lastConfigCheck) >= configRereadInterval {
		m.lastConfigCheck = now
		m.rereadConfig()
	}

	m.status.maybeWrite(m.registry, now)
}

// rereadConfig перечитывает файл конфигурации, как делает и fsnotify,
// на случай пропущенного события файловой системы.
func (m *Master) rereadConfig() {
	if m.cfgPath == "" {
		return
	}
	cfg, err := config.LoadMaster(m.cfgPath)
	if err != nil {
		slog.Warn("config reread failed", "path", m.cfgPath, "error", err)
		return
	}
	m.applyConfig(&cfg)
}

// shutdown прощается со всеми подключениями и дописывает их очереди.
func (m *Master) shutdown() {
	conns := make([]*Conn, 0, len(m.registry.byID))
	for _, c := range m.registry.byID {
		conns = append(conns, c)
	}
	for _, c := range conns {
		m.disconnect(c, constants.DisconnectShutdown, "master server shutting down")
	}
	slog.Info("master server stopped", "connections_closed", len(conns))
}
