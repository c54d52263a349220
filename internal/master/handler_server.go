package master

import (
	"log/slog"
	"strings"

	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/master/clientpackets"
	"github.com/udisondev/masterserver/internal/master/serverpackets"
)

// handleUpdateServerStatus обновляет сводку сервера для выдачи и
// снимка состояния. Снимок помечается устаревшим только при реальном
// изменении.
func (m *Master) handleUpdateServerStatus(c *Conn, body []byte) {
	var pkt clientpackets.UpdateServerStatus
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "UpdateServerStatus", err)
		return
	}

	changed := c.levelName != pkt.LevelName ||
		c.levelType != pkt.LevelType ||
		c.botCount != pkt.BotCount ||
		c.playerCount != pkt.PlayerCount ||
		c.maxPlayers != pkt.MaxPlayers ||
		c.infoFlags != pkt.InfoFlags

	if changed {
		c.levelName = pkt.LevelName
		c.levelType = pkt.LevelType
		c.botCount = pkt.BotCount
		c.playerCount = pkt.PlayerCount
		c.maxPlayers = pkt.MaxPlayers
		c.infoFlags = pkt.InfoFlags
		m.registry.dirty = true
	}

	m.checkActivity(c, floodDeltaServerStatus)
}

// handleChangeName меняет отображаемое имя игрового сервера.
func (m *Master) handleChangeName(c *Conn, body []byte) {
	var pkt clientpackets.ChangeName
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "ChangeName", err)
		return
	}

	name := cleanName(pkt.Name)
	if name == c.name {
		return
	}

	slog.Debug("server renamed", "old", c.name, "new", name, "remote", c.addr)
	c.name = name
	m.registry.dirty = true
}

// handleServerDescription сохраняет описание сервера. В снимок оно не
// входит, поэтому dirty не трогаем.
func (m *Master) handleServerDescription(c *Conn, body []byte) {
	var pkt clientpackets.ServerDescription
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "ServerDescription", err)
		return
	}
	c.description = pkt.Description
}

// handleRequestAuthentication отвечает игровому серверу, подлинный ли
// игрок с данным nonce. Подтверждение требует живого клиентского
// подключения с совпадающим (без учёта регистра) ником.
func (m *Master) handleRequestAuthentication(c *Conn, body []byte) {
	var pkt clientpackets.RequestAuthentication
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "RequestAuthentication", err)
		return
	}

	status := constants.AuthWireFailed
	name := pkt.Name
	var badges uint32
	var gamesPlayed uint16

	if cl := m.registry.findByNonce(pkt.Nonce); cl != nil {
		if cl.authenticated && strings.EqualFold(cl.name, pkt.Name) {
			status = constants.AuthWireAuthenticatedName
			name = cl.name
			badges = cl.badges
			gamesPlayed = cl.gamesPlayed
		} else {
			status = constants.AuthWireUnauthenticatedName
		}
	}

	buf := m.sendPool.Get(constants.DefaultSendBufSize)
	var n int
	if c.cmProtocol >= constants.MasterProtocolGamesPlayed {
		n = serverpackets.PlayerAuthenticated019(buf[constants.PacketHeaderSize:], pkt.Nonce, name, status, badges, gamesPlayed)
	} else {
		n = serverpackets.PlayerAuthenticated(buf[constants.PacketHeaderSize:], pkt.Nonce, name, status, badges)
	}
	m.send(c, buf, n)
}
