package master

import (
	"log/slog"
	"net/netip"
	"strconv"
	"strings"

	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/master/clientpackets"
	"github.com/udisondev/masterserver/internal/master/serverpackets"
)

// handleSendChat рассылает сообщение лобби всем остальным клиентам.
// Сообщения, начинающиеся с "/", обрабатываются как команды и в общий
// чат не попадают, даже если команда не распознана.
func (m *Master) handleSendChat(c *Conn, body []byte) {
	var pkt clientpackets.SendChat
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "SendChat", err)
		return
	}

	if strings.HasPrefix(pkt.Message, "/") {
		m.handleChatCommand(c, pkt.Message)
		return
	}

	if c.hidden {
		return
	}
	if !m.filter.checkMessage(c, pkt.Message, false) {
		m.noticeTooFast(c)
		return
	}
	c.chatTooFast = false

	// Снимок получателей до рассылки: падение одного из них по ходу
	// цикла удаляет его из списка клиентов.
	recipients := make([]*Conn, 0, m.registry.clientCount())
	m.registry.iterateClients(func(cl *Conn) bool {
		if cl != c {
			recipients = append(recipients, cl)
		}
		return true
	})
	for _, cl := range recipients {
		m.relayChat(cl, c.name, false, pkt.Message)
	}
}

// relayChat шлёт одному получателю чат-сообщение от имени sender.
func (m *Master) relayChat(to *Conn, sender string, isPrivate bool, text string) {
	size := constants.PacketHeaderSize + 16 + len(sender) + len(text)
	buf := m.sendPool.Get(max(size, constants.DefaultSendBufSize))
	n := serverpackets.RelayedChat(buf[constants.PacketHeaderSize:], sender, isPrivate, text)
	m.send(to, buf, n)
}

// noticeTooFast шлёт предупреждение о флуде, но только первое за серию:
// дальнейшие сообщения серии глотаются молча.
func (m *Master) noticeTooFast(c *Conn) {
	if c.chatTooFast {
		return
	}
	c.chatTooFast = true
	slog.Info("chat flood throttled", "player", c.name, "remote", c.addr)
	m.relayChat(c, m.cfg.MasterName, true, "You are chatting too fast")
}

// noticeFromMaster шлёт игроку служебное личное сообщение от имени мастера.
func (m *Master) noticeFromMaster(c *Conn, text string) {
	m.relayChat(c, m.cfg.MasterName, true, text)
}

// handleChatCommand разбирает команду чата. Команды администратора
// доступны только masterAdmin, для остальных они неотличимы от
// нераспознанных и молча отбрасываются.
func (m *Master) handleChatCommand(c *Conn, msg string) {
	fields := strings.Fields(strings.TrimPrefix(msg, "/"))
	if len(fields) == 0 {
		return
	}

	verb := strings.ToLower(fields[0])
	if verb == "pm" {
		m.commandPrivateMessage(c, fields[1:])
		return
	}

	if c.masterAdmin {
		switch verb {
		case "dropserver":
			m.commandDropServer(c, fields[1:])
			return
		case "restoreservers":
			m.commandRestoreServers(c)
			return
		case "hideplayer":
			m.commandHidePlayer(c, fields[1:])
			return
		case "hideip":
			m.commandHideIP(c, fields[1:])
			return
		case "unhideips":
			m.commandUnhideIPs(c)
			return
		}
	}

	slog.Debug("unknown chat command", "player", c.name, "verb", verb)
}

// commandPrivateMessage ищет адресата перебором длины имени: имена могут
// содержать пробелы, поэтому берём самый длинный префикс токенов,
// совпадающий с именем живого клиента.
func (m *Master) commandPrivateMessage(c *Conn, tokens []string) {
	for k := len(tokens) - 1; k >= 1; k-- {
		name := strings.Join(tokens[:k], " ")
		rc := m.registry.findClientByName(name)
		if rc == nil {
			continue
		}
		text := strings.Join(tokens[k:], " ")

		if c.hidden {
			return
		}
		if !m.filter.checkMessage(c, text, true) {
			m.noticeTooFast(c)
			return
		}
		c.chatTooFast = false

		m.relayChat(rc, c.name, true, text)
		return
	}
	m.noticeFromMaster(c, "No player found with that name")
}

// commandDropServer скрывает из списков серверы по адресу. Порт 0 или
// отсутствие порта означает любой порт на этом адресе.
func (m *Master) commandDropServer(c *Conn, args []string) {
	if len(args) == 0 {
		m.noticeFromMaster(c, "Usage: /dropserver <ip[:port]>")
		return
	}

	addr, port, ok := parseAddrMaybePort(args[0])
	if !ok {
		m.noticeFromMaster(c, "Could not parse address: "+args[0])
		return
	}

	dropped := 0
	m.registry.iterateServers(func(s *Conn) bool {
		if s.addr.Addr() != addr {
			return true
		}
		if port != 0 && s.addr.Port() != port {
			return true
		}
		if !s.hidden {
			s.hidden = true
			m.registry.dirty = true
			dropped++
		}
		return true
	})

	slog.Info("servers dropped by admin", "admin", c.name, "addr", args[0], "count", dropped)
	m.noticeFromMaster(c, "Dropped "+strconv.Itoa(dropped)+" server(s)")
}

func (m *Master) commandRestoreServers(c *Conn) {
	restored := 0
	m.registry.iterateServers(func(s *Conn) bool {
		if s.hidden {
			s.hidden = false
			m.registry.dirty = true
			restored++
		}
		return true
	})

	slog.Info("servers restored by admin", "admin", c.name, "count", restored)
	m.noticeFromMaster(c, "Restored "+strconv.Itoa(restored)+" server(s)")
}

// commandHidePlayer переключает скрытость названного игрока.
func (m *Master) commandHidePlayer(c *Conn, args []string) {
	if len(args) == 0 {
		m.noticeFromMaster(c, "Usage: /hideplayer <name>")
		return
	}
	name := strings.Join(args, " ")

	rc := m.registry.findClientByName(name)
	if rc == nil {
		m.noticeFromMaster(c, "No player found with that name")
		return
	}
	rc.hidden = !rc.hidden

	state := "visible"
	if rc.hidden {
		state = "hidden"
	}
	slog.Info("player visibility toggled", "admin", c.name, "player", rc.name, "state", state)
	m.noticeFromMaster(c, "Player "+rc.name+" is now "+state)
}

// commandHideIP добавляет адрес в рабочий список скрытых и прячет уже
// подключённых с него клиентов, выводя их из глобального чата.
func (m *Master) commandHideIP(c *Conn, args []string) {
	if len(args) == 0 {
		m.noticeFromMaster(c, "Usage: /hideip <ip>")
		return
	}

	addr, err := netip.ParseAddr(args[0])
	if err != nil {
		m.noticeFromMaster(c, "Could not parse address: "+args[0])
		return
	}
	m.runtimeHidden = append(m.runtimeHidden, addr)

	hiddenCount := 0
	m.registry.iterateClients(func(rc *Conn) bool {
		if rc.addr.Addr() != addr || rc.hidden {
			return true
		}
		rc.hidden = true
		hiddenCount++
		if rc.inGlobalChat {
			rc.inGlobalChat = false
			rc.leavePending = false
			m.broadcastChatEvent(rc, func(buf []byte) int {
				return serverpackets.PlayerLeftGlobalChat(buf, rc.name)
			})
		}
		return true
	})

	slog.Info("ip hidden by admin", "admin", c.name, "addr", addr, "players", hiddenCount)
	m.noticeFromMaster(c, "Hid "+strconv.Itoa(hiddenCount)+" player(s) at "+addr.String())
}

// commandUnhideIPs очищает рабочий список скрытых адресов. Уже
// подключённые клиенты остаются скрытыми до переподключения.
func (m *Master) commandUnhideIPs(c *Conn) {
	m.runtimeHidden = nil
	slog.Info("runtime hidden ips cleared", "admin", c.name)
	m.noticeFromMaster(c, "Runtime hidden address list cleared")
}

// parseAddrMaybePort разбирает "ip" или "ip:port". Порт 0 означает
// любой порт.
func parseAddrMaybePort(s string) (netip.Addr, uint16, bool) {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr(), ap.Port(), true
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr, 0, true
	}
	return netip.Addr{}, 0, false
}
