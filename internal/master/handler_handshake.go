package master

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/db"
	"github.com/udisondev/masterserver/internal/master/clientpackets"
	"github.com/udisondev/masterserver/internal/master/serverpackets"
)

// handleConnectRequest проводит рукопожатие и закрепляет роль.
func (m *Master) handleConnectRequest(c *Conn, body []byte) {
	var pkt clientpackets.ConnectRequest
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "ConnectRequest", err)
		return
	}

	if pkt.CMProtocolVersion < constants.MinMasterProtocolVersion ||
		pkt.CMProtocolVersion > constants.MasterProtocolVersion {
		slog.Info("unsupported protocol", "remote", c.addr, "version", pkt.CMProtocolVersion)
		m.disconnect(c, constants.DisconnectBadVersion,
			fmt.Sprintf("master supports protocol versions %d through %d",
				constants.MinMasterProtocolVersion, constants.MasterProtocolVersion))
		return
	}

	c.cmProtocol = pkt.CMProtocolVersion
	c.csProtocol = pkt.CSProtocolVersion
	c.clientBuild = pkt.ClientBuild

	switch pkt.Role {
	case constants.RoleWireServer:
		m.handshakeServer(c, &pkt)
	case constants.RoleWireClient:
		m.handshakeClient(c, &pkt)
	default:
		c.role = RoleAnonymous
		slog.Debug("anonymous connected", "remote", c.addr)
	}
}

func (m *Master) handshakeServer(c *Conn, pkt *clientpackets.ConnectRequest) {
	c.name = cleanName(pkt.Name)
	c.description = pkt.Description
	c.levelName = pkt.LevelName
	c.levelType = pkt.LevelType
	c.botCount = pkt.BotCount
	c.playerCount = pkt.PlayerCount
	c.maxPlayers = pkt.MaxPlayers
	c.infoFlags = pkt.InfoFlags

	m.registry.link(c, RoleServer)

	slog.Info("server connected",
		"name", c.name,
		"remote", c.addr,
		"level", c.levelName,
		"type", c.levelType,
		"players", c.playerCount,
		"max", c.maxPlayers)
}

func (m *Master) handshakeClient(c *Conn, pkt *clientpackets.ConnectRequest) {
	name := cleanName(pkt.Name)

	// Player id уникален среди подключённых. Новичок с занятым id
	// отключается, владелец остаётся.
	if other := m.registry.findByNonce(pkt.Nonce); other != nil {
		slog.Info("duplicate player id", "name", name, "remote", c.addr, "holder", other.name)
		m.disconnect(c, constants.DisconnectDuplicateID, "player id already in use")
		return
	}

	c.name = name
	c.autodetect = pkt.Autodetect
	c.debugClient = pkt.DebugClient
	c.nonce = pkt.Nonce
	if m.isHiddenAddr(c.addr.Addr()) {
		c.hidden = true
	}

	// Совсем старые клиенты не понимают позднего SetAuthenticated,
	// для них результат проверки дожидаемся прямо в рукопожатии.
	doNotDelay := c.csProtocol <= constants.AncientCSProtocol
	status := m.checkAuthentication(c, name, pkt.Password, doNotDelay)
	if c.closing {
		// синхронная проверка уже отклонила рукопожатие
		return
	}

	switch status {
	case db.AuthWrongPassword:
		slog.Info("client rejected", "name", name, "remote", c.addr, "reason", "wrong password")
		m.disconnect(c, constants.DisconnectBadLogin, "wrong password for registered name")
		return
	case db.AuthInvalidUsername:
		slog.Info("client rejected", "name", name, "remote", c.addr, "reason", "invalid username")
		m.disconnect(c, constants.DisconnectInvalidUsername, "name is not allowed")
		return
	case db.AuthUnknownStatus:
		// Проверка ещё идёт. Откладываем запись JSON, чтобы клиент
		// не мелькнул в нём неподтверждённым.
		m.status.delayedUntil = m.clock.Now().Add(rewriteTime)
	}

	m.registry.link(c, RoleClient)
	m.sendWelcome(c)

	slog.Info("client connected",
		"name", c.name,
		"remote", c.addr,
		"auth", status,
		"build", c.clientBuild,
		"hidden", c.hidden)
}

// sendWelcome отправляет свежеподключённому клиенту совет об
// обновлении и сообщение дня.
func (m *Master) sendWelcome(c *Conn) {
	cfg := m.cfg

	needUpgrade := cfg.LatestReleasedCSProtocol > c.csProtocol ||
		(cfg.LatestReleasedCSProtocol == c.csProtocol && cfg.LatestReleasedBuild > c.clientBuild)

	buf := m.sendPool.Get(constants.DefaultSendBufSize)
	n := serverpackets.UpgradeStatus(buf[constants.PacketHeaderSize:], needUpgrade)
	m.send(c, buf, n)

	motd := cfg.MOTD.MessageFor(c.clientBuild)
	if motd == "" {
		return
	}
	size := constants.PacketHeaderSize + 1 + 2 + len(cfg.MasterName) + 2 + len(motd)
	buf = m.sendPool.Get(max(size, constants.DefaultSendBufSize))
	n = serverpackets.SetMOTD(buf[constants.PacketHeaderSize:], cfg.MasterName, motd)
	m.send(c, buf, n)
}
