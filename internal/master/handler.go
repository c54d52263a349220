package master

import (
	"fmt"
	"log/slog"
)

// handlePacket разбирает кадр и передаёт его обработчику по opcode.
// Пакеты закрывающегося подключения молча отбрасываются: события могли
// остаться в канале после dropConn.
func (m *Master) handlePacket(c *Conn, data []byte) {
	if c.closing {
		return
	}
	if len(data) == 0 {
		slog.Warn("empty packet", "remote", c.addr)
		return
	}

	opcode := data[0]
	body := data[1:]

	// До рукопожатия допустим только ConnectRequest.
	if c.role == RoleNone && opcode != OpcodeConnectRequest {
		slog.Warn("packet before handshake", "remote", c.addr, "opcode", fmt.Sprintf("0x%02X", opcode))
		m.dropConn(c, false)
		return
	}

	switch opcode {
	case OpcodeConnectRequest:
		if c.role != RoleNone {
			slog.Warn("repeated handshake ignored", "remote", c.addr, "role", c.role)
			return
		}
		m.handleConnectRequest(c, body)

	case OpcodeQueryServers:
		if !m.requireRole(c, opcode, RoleClient, RoleAnonymous) {
			return
		}
		m.handleQueryServers(c, body)

	case OpcodeRequestArrangedConnection:
		if !m.requireRole(c, opcode, RoleClient) {
			return
		}
		m.handleRequestArrangedConnection(c, body)

	case OpcodeAcceptArrangedConnection:
		if !m.requireRole(c, opcode, RoleServer) {
			return
		}
		m.handleAcceptArrangedConnection(c, body)

	case OpcodeRejectArrangedConnection:
		if !m.requireRole(c, opcode, RoleServer) {
			return
		}
		m.handleRejectArrangedConnection(c, body)

	case OpcodeUpdateServerStatus:
		if !m.requireRole(c, opcode, RoleServer) {
			return
		}
		m.handleUpdateServerStatus(c, body)

	case OpcodeChangeName:
		if !m.requireRole(c, opcode, RoleServer) {
			return
		}
		m.handleChangeName(c, body)

	case OpcodeServerDescription:
		if !m.requireRole(c, opcode, RoleServer) {
			return
		}
		m.handleServerDescription(c, body)

	case OpcodeSendChat:
		if !m.requireRole(c, opcode, RoleClient) {
			return
		}
		m.handleSendChat(c, body)

	case OpcodeJoinGlobalChat:
		if !m.requireRole(c, opcode, RoleClient) {
			return
		}
		m.handleJoinGlobalChat(c)

	case OpcodeLeaveGlobalChat:
		if !m.requireRole(c, opcode, RoleClient) {
			return
		}
		m.handleLeaveGlobalChat(c)

	case OpcodeSendStatistics:
		if !m.requireRole(c, opcode, RoleServer) {
			return
		}
		m.handleSendStatistics(c, body)

	case OpcodeSendAchievement:
		if !m.requireRole(c, opcode, RoleServer) {
			return
		}
		m.handleSendAchievement(c, body)

	case OpcodeSendLevelInfo:
		if !m.requireRole(c, opcode, RoleServer) {
			return
		}
		m.handleSendLevelInfo(c, body)

	case OpcodeRequestHighScores:
		if !m.requireRole(c, opcode, RoleClient) {
			return
		}
		m.handleRequestHighScores(c)

	case OpcodeRequestAuthentication:
		if !m.requireRole(c, opcode, RoleServer) {
			return
		}
		m.handleRequestAuthentication(c, body)

	default:
		slog.Warn("unknown opcode", "remote", c.addr, "opcode", fmt.Sprintf("0x%02X", opcode), "role", c.role)
	}
}

// requireRole пропускает пакет только для перечисленных ролей.
// Чужой пакет логируется и отбрасывается без разрыва.
func (m *Master) requireRole(c *Conn, opcode byte, roles ...Role) bool {
	for _, r := range roles {
		if c.role == r {
			return true
		}
	}
	slog.Warn("opcode not allowed for role", "remote", c.addr, "opcode", fmt.Sprintf("0x%02X", opcode), "role", c.role)
	return false
}

// parseError логирует испорченный пакет и разрывает подключение.
func (m *Master) parseError(c *Conn, what string, err error) {
	slog.Warn("malformed packet", "remote", c.addr, "packet", what, "error", err)
	m.dropConn(c, false)
}
