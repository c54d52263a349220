package master

import (
	"time"

	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/master/serverpackets"
)

// handleJoinGlobalChat отвечает вошедшему составом чата и извещает
// остальных участников. Скрытый клиент получает состав, но сам в чат
// не попадает.
func (m *Master) handleJoinGlobalChat(c *Conn) {
	names := make([]string, 0, m.registry.clientCount())
	size := constants.PacketHeaderSize + 4
	m.registry.iterateClients(func(cl *Conn) bool {
		if cl != c && cl.inGlobalChat {
			names = append(names, cl.name)
			size += 2 + len(cl.name)
		}
		return true
	})

	buf := m.sendPool.Get(max(size, constants.DefaultSendBufSize))
	n := serverpackets.PlayersInGlobalChat(buf[constants.PacketHeaderSize:], names)
	m.send(c, buf, n)

	if c.hidden {
		return
	}

	// Возврат в течение отсрочки отменяет отложенный выход.
	c.leavePending = false

	if c.inGlobalChat {
		return
	}
	c.inGlobalChat = true

	m.broadcastChatEvent(c, func(buf []byte) int {
		return serverpackets.PlayerJoinedGlobalChat(buf, c.name)
	})
}

// handleLeaveGlobalChat помечает клиента на отложенный выход. Сам выход
// рассылается циклом по истечении отсрочки, чтобы быстрый перезаход при
// смене уровня не мелькал в чате.
func (m *Master) handleLeaveGlobalChat(c *Conn) {
	if !c.inGlobalChat {
		return
	}
	c.leaveChatAt = m.clock.Now()
	c.leavePending = true
}

// processChatLeaves рассылает выходы, отсрочка которых истекла.
func (m *Master) processChatLeaves(now time.Time) {
	m.registry.iterateClients(func(c *Conn) bool {
		if !c.leavePending || now.Sub(c.leaveChatAt) < leaveChatGrace {
			return true
		}
		c.leavePending = false
		c.inGlobalChat = false
		m.broadcastChatEvent(c, func(buf []byte) int {
			return serverpackets.PlayerLeftGlobalChat(buf, c.name)
		})
		return true
	})
}
