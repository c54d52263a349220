package master

import (
	"net/netip"

	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/master/clientpackets"
	"github.com/udisondev/masterserver/internal/master/serverpackets"
)

// handleQueryServers отдаёт список серверов порциями. Скрытые серверы
// и серверы с другой версией игрового протокола не попадают в выдачу.
// Последней всегда уходит пустая порция: она закрывает выдачу, когда
// предыдущая оказалась ровно полной.
func (m *Master) handleQueryServers(c *Conn, body []byte) {
	var pkt clientpackets.QueryServers
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "QueryServers", err)
		return
	}

	batch := make([]netip.AddrPort, 0, constants.IPMessageAddressCount)

	flush := func() {
		buf := m.sendPool.Get(constants.DefaultSendBufSize)
		n := serverpackets.QueryServersResponse(buf[constants.PacketHeaderSize:], pkt.QueryID, batch)
		m.send(c, buf, n)
		batch = batch[:0]
	}

	m.registry.iterateServers(func(s *Conn) bool {
		if s.hidden || s.csProtocol != c.csProtocol {
			return true
		}
		batch = append(batch, s.addr)
		if len(batch) == constants.IPMessageAddressCount {
			flush()
		}
		return true
	})

	if len(batch) > 0 {
		flush()
	}
	flush() // завершающая пустая порция
}
