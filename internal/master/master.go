// Package master реализует мастер-сервер: каталог игровых серверов,
// глобальный чат, организацию прямых соединений через NAT и приём
// игровой статистики.
//
// Всё состояние (реестр, таблица запросов, кэш рекордов) принадлежит
// одной горутине событийного цикла. Горутины чтения передают пакеты
// в цикл через канал событий, медленная работа с БД уходит в фоновую
// горутину через taskQueue и возвращается в цикл методом Finish.
package master

import (
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/udisondev/masterserver/internal/config"
	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/db"
	"github.com/udisondev/masterserver/internal/master/serverpackets"
	"github.com/udisondev/masterserver/internal/protocol"
)

// Option is a functional option for Master configuration.
type Option func(*Master)

// WithClock sets a custom clock (useful for testing timer behaviour).
func WithClock(clock clockwork.Clock) Option {
	return func(m *Master) {
		m.clock = clock
	}
}

// Master владеет реестром подключений и обрабатывает протокол.
type Master struct {
	cfg     *config.Master
	cfgPath string

	registry   *registry
	rendezvous *rendezvousTable
	tasks      *taskQueue
	filter     *chatFilter
	scores     *highScores
	status     statusWriter
	clock      clockwork.Clock

	// Внешние хранилища. Вызываются только из фоновых задач.
	stats    db.StatsStore
	verifier db.CredentialVerifier

	sendPool *BytePool
	readPool *BytePool

	events   chan connEvent
	reloadCh chan *config.Master
	nextID   atomic.Uint64

	// Адреса, скрытые из выдачи. cfgHidden перечитывается из
	// конфигурации, runtimeHidden пополняется командой /hideip.
	cfgHidden     []netip.Addr
	runtimeHidden []netip.Addr

	lastConfigCheck time.Time

	listener net.Listener
	mu       sync.Mutex
}

// NewMaster создаёт мастер-сервер. stats и verifier могут быть nil,
// тогда статистика не сохраняется, а проверка паролей недоступна.
func NewMaster(cfg *config.Master, cfgPath string, stats db.StatsStore, verifier db.CredentialVerifier, opts ...Option) *Master {
	m := &Master{
		cfg:        cfg,
		cfgPath:    cfgPath,
		registry:   newRegistry(),
		rendezvous: newRendezvousTable(),
		tasks:      newTaskQueue(taskQueueSize),
		scores:     &highScores{},
		status:     statusWriter{path: cfg.StatusFile},
		clock:      clockwork.NewRealClock(),
		stats:      stats,
		verifier:   verifier,
		sendPool:   NewBytePool(constants.DefaultSendBufSize),
		readPool:   NewBytePool(constants.DefaultReadBufSize),
		events:     make(chan connEvent, eventQueueSize),
		reloadCh:   make(chan *config.Master, 4),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	m.filter = newChatFilter(m.clock)
	m.cfgHidden = parseAddrList(cfg.HiddenAddresses)

	return m
}

// Reload передаёт новую конфигурацию событийному циклу. Не блокирует:
// при заполненном канале конфигурацию подберёт периодическое
// перечитывание.
func (m *Master) Reload(cfg *config.Master) {
	select {
	case m.reloadCh <- cfg:
	default:
	}
}

// applyConfig подменяет конфигурацию. Вызывается только из цикла.
func (m *Master) applyConfig(cfg *config.Master) {
	m.cfg = cfg
	m.cfgHidden = parseAddrList(cfg.HiddenAddresses)
	m.status.path = cfg.StatusFile
	slog.Debug("config applied", "master_name", cfg.MasterName, "hidden_addresses", len(m.cfgHidden))
}

// send оформляет кадр и ставит его в очередь подключения.
// buf получен из sendPool, владение переходит очереди.
func (m *Master) send(c *Conn, buf []byte, n int) {
	if c.closing {
		m.sendPool.Put(buf)
		return
	}
	pkt := protocol.FramePacket(buf, n)
	if err := c.Send(pkt); err != nil {
		m.dropConn(c, false)
	}
}

// disconnect отправляет причину разрыва и мягко закрывает подключение,
// дописав очередь.
func (m *Master) disconnect(c *Conn, reason byte, text string) {
	if c.closing {
		return
	}
	buf := m.sendPool.Get(constants.DefaultSendBufSize)
	n := serverpackets.Disconnect(buf[constants.PacketHeaderSize:], reason, text)
	m.send(c, buf, n)
	m.dropConn(c, true)
}

// dropConn исключает подключение из реестра и закрывает транспорт.
// При flush очередь отправки дописывается до конца, иначе обрывается.
// Повторные вызовы безопасны.
func (m *Master) dropConn(c *Conn, flush bool) {
	if c.closing {
		return
	}
	c.closing = true

	role := c.role
	inChat := c.inGlobalChat
	c.inGlobalChat = false
	c.leavePending = false

	m.registry.remove(c)

	switch role {
	case RoleServer:
		slog.Info("server disconnected", "name", c.name, "remote", c.addr)
	case RoleClient:
		slog.Info("client disconnected", "name", c.name, "remote", c.addr)
	}

	// Уход из чата при разрыве рассылается сразу, без отсрочки.
	if inChat {
		m.broadcastChatEvent(c, func(buf []byte) int {
			return serverpackets.PlayerLeftGlobalChat(buf, c.name)
		})
	}

	if flush {
		close(c.sendCh)
	} else {
		c.CloseAsync()
	}
}

// broadcastChatEvent рассылает пакет всем участникам глобального чата,
// кроме except. Получатели снимаются до рассылки: неудачный Send роняет
// медленного клиента, и вложенное удаление из списка не должно обрывать
// обход.
func (m *Master) broadcastChatEvent(except *Conn, encode func([]byte) int) {
	recipients := make([]*Conn, 0, m.registry.clientCount())
	m.registry.iterateClients(func(cl *Conn) bool {
		if cl == except || !cl.inGlobalChat {
			return true
		}
		recipients = append(recipients, cl)
		return true
	})
	for _, cl := range recipients {
		buf := m.sendPool.Get(constants.DefaultSendBufSize)
		n := encode(buf[constants.PacketHeaderSize:])
		m.send(cl, buf, n)
	}
}

// isHiddenAddr проверяет адрес по обоим спискам скрытия.
func (m *Master) isHiddenAddr(addr netip.Addr) bool {
	for _, a := range m.cfgHidden {
		if a == addr {
			return true
		}
	}
	for _, a := range m.runtimeHidden {
		if a == addr {
			return true
		}
	}
	return false
}

// parseAddrList разбирает адреса из конфигурации. Порт, если указан,
// отбрасывается: скрытие работает по IP.
func parseAddrList(entries []string) []netip.Addr {
	out := make([]netip.Addr, 0, len(entries))
	for _, e := range entries {
		if ap, err := netip.ParseAddrPort(e); err == nil {
			out = append(out, ap.Addr())
			continue
		}
		a, err := netip.ParseAddr(e)
		if err != nil {
			slog.Warn("bad hidden address in config", "entry", e, "error", err)
			continue
		}
		out = append(out, a)
	}
	return out
}

// cleanName приводит имя из рукопожатия к отображаемому виду: убирает
// управляющие символы и крайние пробелы, пустое имя заменяет
// умолчанием.
func cleanName(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" {
		return constants.DefaultName
	}
	return s
}
