package master

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/db"
	"github.com/udisondev/masterserver/internal/master/serverpackets"
)

// Ожидание синхронной проверки пароля для древних клиентов:
// до authPollLimit снов по authPollInterval.
const (
	authPollInterval = 5 * time.Millisecond
	authPollLimit    = 200
)

// authTask проверяет пароль у форума и подтягивает профиль игрока.
// Run выполняется в фоне, Finish применяет результат на цикле.
type authTask struct {
	connID   uint64
	name     string
	password string
	verifier db.CredentialVerifier
	stats    db.StatsStore

	result  db.AuthResult
	profile db.PlayerProfile

	// done публикует result и profile: пишется последним в Run,
	// читается циклом при синхронном ожидании.
	done atomic.Bool

	finished bool // только из цикла: Finish выполняется не более раза
}

func (t *authTask) Run(ctx context.Context) {
	res, err := t.verifier.Verify(ctx, t.name, t.password)
	if err != nil {
		slog.Error("credential verify failed", "name", t.name, "error", err)
		res = db.AuthResult{Status: db.AuthCantConnect}
	}
	t.result = res

	if res.Status == db.AuthAuthenticated && t.stats != nil {
		profile, err := t.stats.PlayerProfile(ctx, res.CorrectedName)
		if err != nil {
			slog.Warn("player profile load failed", "name", res.CorrectedName, "error", err)
		} else {
			t.profile = profile
		}
	}

	t.done.Store(true)
}

func (t *authTask) Finish(m *Master) {
	if t.finished {
		return
	}
	t.finished = true

	c := m.registry.get(t.connID)
	if c == nil || c.closing {
		return
	}
	m.applyAuthResult(c, t)
}

// checkAuthentication запускает проверку пароля. Возвращает итоговый
// статус для синхронного пути, иначе AuthUnknownStatus: результат
// придёт позже через Finish.
func (m *Master) checkAuthentication(c *Conn, name, password string, doNotDelay bool) db.AuthStatus {
	if m.verifier == nil {
		return db.AuthUnsupported
	}

	t := &authTask{
		connID:   c.id,
		name:     name,
		password: password,
		verifier: m.verifier,
		stats:    m.stats,
	}
	if !m.tasks.Post(t) {
		return db.AuthCantConnect
	}
	if !doNotDelay {
		return db.AuthUnknownStatus
	}

	// Цикл ждёт на месте: у древнего клиента ответ рукопожатия должен
	// сразу содержать итог проверки.
	for range authPollLimit {
		if t.done.Load() {
			t.Finish(m)
			return t.result.Status
		}
		m.clock.Sleep(authPollInterval)
	}
	return db.AuthUnknownStatus
}

// applyAuthResult применяет итог проверки к подключению.
func (m *Master) applyAuthResult(c *Conn, t *authTask) {
	switch t.result.Status {
	case db.AuthAuthenticated:
		c.authenticated = true
		c.badges = t.profile.Badges
		c.gamesPlayed = t.profile.GamesPlayed

		if corrected := cleanName(t.result.CorrectedName); corrected != c.name {
			m.renameClient(c, corrected)
		}

		c.masterAdmin = false
		for _, admin := range m.cfg.Admins {
			if strings.EqualFold(admin, c.name) {
				c.masterAdmin = true
				break
			}
		}

		m.sendSetAuthenticated(c, constants.AuthWireAuthenticatedName)
		slog.Info("client authenticated", "name", c.name, "remote", c.addr, "admin", c.masterAdmin)

	case db.AuthWrongPassword:
		slog.Info("client rejected", "name", c.name, "remote", c.addr, "reason", "wrong password")
		m.disconnect(c, constants.DisconnectBadLogin, "wrong password for registered name")

	case db.AuthInvalidUsername:
		slog.Info("client rejected", "name", c.name, "remote", c.addr, "reason", "invalid username")
		m.disconnect(c, constants.DisconnectInvalidUsername, "name is not allowed")

	case db.AuthCantConnect:
		m.sendSetAuthenticated(c, constants.AuthWireFailed)

	default:
		// UnknownUser: имя не зарегистрировано, играть можно
		m.sendSetAuthenticated(c, constants.AuthWireUnauthenticatedName)
	}
}

// renameClient меняет ник на каноническое написание из учётной записи.
// Для участника глобального чата рассылается уход старого имени и
// приход нового.
func (m *Master) renameClient(c *Conn, newName string) {
	oldName := c.name

	if c.inGlobalChat {
		m.broadcastChatEvent(c, func(buf []byte) int {
			return serverpackets.PlayerLeftGlobalChat(buf, oldName)
		})
	}

	c.name = newName
	m.registry.dirty = true

	if c.inGlobalChat {
		m.broadcastChatEvent(c, func(buf []byte) int {
			return serverpackets.PlayerJoinedGlobalChat(buf, newName)
		})
	}

	slog.Debug("client renamed", "from", oldName, "to", newName)
}

func (m *Master) sendSetAuthenticated(c *Conn, status byte) {
	buf := m.sendPool.Get(constants.DefaultSendBufSize)
	var n int
	if c.cmProtocol >= constants.MasterProtocolGamesPlayed {
		n = serverpackets.SetAuthenticated019(buf[constants.PacketHeaderSize:], status, c.badges, c.gamesPlayed, c.name)
	} else {
		n = serverpackets.SetAuthenticated(buf[constants.PacketHeaderSize:], status, c.badges, c.name)
	}
	m.send(c, buf, n)
}
