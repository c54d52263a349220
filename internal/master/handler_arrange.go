package master

import (
	"log/slog"
	"time"

	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/master/clientpackets"
	"github.com/udisondev/masterserver/internal/master/serverpackets"
)

// Причины отказа, возвращаемые инициатору в данных отклонения.
var (
	rejectNoSuchHost     = []byte("NoSuchHost")
	rejectRequestExpired = []byte("MasterRequestTimedOut")
)

// handleRequestArrangedConnection создаёт запрос на организацию
// соединения и пересылает хосту кандидатные адреса инициатора.
func (m *Master) handleRequestArrangedConnection(c *Conn, body []byte) {
	var pkt clientpackets.RequestArrangedConnection
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "RequestArrangedConnection", err)
		return
	}

	host := m.registry.findServer(pkt.RemoteAddress)
	if host == nil {
		m.sendArrangedRejected(c, pkt.RequestID, rejectNoSuchHost)
		return
	}

	now := m.clock.Now()
	req := m.rendezvous.create(c.id, host.id, pkt.RequestID, now)
	c.pending = append(c.pending, req)
	host.pending = append(host.pending, req)

	candidates := candidateAddresses(c.addr, pkt.InternalAddress)

	buf := m.sendPool.Get(constants.DefaultSendBufSize)
	n := serverpackets.ClientRequestedArrangedConnection(buf[constants.PacketHeaderSize:], req.hostQueryID, candidates, pkt.Params)
	m.send(host, buf, n)

	slog.Debug("arranged connection requested",
		"initiator", c.name,
		"host", host.name,
		"host_query_id", req.hostQueryID)

	m.checkActivity(c, floodDeltaRendezvous)
}

// handleAcceptArrangedConnection передаёт инициатору согласие хоста
// вместе с его кандидатными адресами.
func (m *Master) handleAcceptArrangedConnection(c *Conn, body []byte) {
	var pkt clientpackets.AcceptArrangedConnection
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "AcceptArrangedConnection", err)
		return
	}

	req := m.rendezvous.find(pkt.HostQueryID)
	if req == nil || req.hostID != c.id {
		slog.Debug("accept for unknown request", "host", c.name, "host_query_id", pkt.HostQueryID)
		return
	}
	m.removeConnectRequest(req)

	ini := m.registry.get(req.initiatorID)
	if ini == nil || ini.closing {
		return
	}

	candidates := candidateAddresses(c.addr, pkt.InternalAddress)

	buf := m.sendPool.Get(constants.DefaultSendBufSize)
	n := serverpackets.ArrangedConnectionAccepted(buf[constants.PacketHeaderSize:], req.initiatorQueryID, candidates, pkt.Data)
	m.send(ini, buf, n)

	slog.Debug("arranged connection accepted", "initiator", ini.name, "host", c.name)
}

// handleRejectArrangedConnection передаёт инициатору отказ хоста.
func (m *Master) handleRejectArrangedConnection(c *Conn, body []byte) {
	var pkt clientpackets.RejectArrangedConnection
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "RejectArrangedConnection", err)
		return
	}

	req := m.rendezvous.find(pkt.HostQueryID)
	if req == nil || req.hostID != c.id {
		slog.Debug("reject for unknown request", "host", c.name, "host_query_id", pkt.HostQueryID)
		return
	}
	m.removeConnectRequest(req)

	ini := m.registry.get(req.initiatorID)
	if ini == nil || ini.closing {
		return
	}

	m.sendArrangedRejected(ini, req.initiatorQueryID, pkt.Data)

	slog.Debug("arranged connection rejected", "initiator", ini.name, "host", c.name)
}

func (m *Master) sendArrangedRejected(c *Conn, queryID uint32, data []byte) {
	buf := m.sendPool.Get(constants.DefaultSendBufSize)
	n := serverpackets.ArrangedConnectionRejected(buf[constants.PacketHeaderSize:], queryID, data)
	m.send(c, buf, n)
}

// removeConnectRequest убирает запрос из таблицы и из списков pending
// обеих сторон. Мёртвая сторона уже забыта реестром, её список умер
// вместе с ней.
func (m *Master) removeConnectRequest(req *connectRequest) {
	m.rendezvous.remove(req)
	if ini := m.registry.get(req.initiatorID); ini != nil {
		removePending(ini, req)
	}
	if host := m.registry.get(req.hostID); host != nil {
		removePending(host, req)
	}
}

// expireConnectRequests выметает просроченные запросы и извещает живых
// инициаторов об истечении.
func (m *Master) expireConnectRequests(now time.Time) {
	for {
		req := m.rendezvous.oldest()
		if req == nil || now.Sub(req.requestedAt) < connectRequestTimeout {
			return
		}
		m.removeConnectRequest(req)

		if ini := m.registry.get(req.initiatorID); ini != nil && !ini.closing {
			m.sendArrangedRejected(ini, req.initiatorQueryID, rejectRequestExpired)
		}
		slog.Debug("arranged connection expired", "host_query_id", req.hostQueryID)
	}
}
