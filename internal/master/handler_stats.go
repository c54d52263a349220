package master

import (
	"log/slog"
	"strings"

	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/master/clientpackets"
)

// handleSendStatistics принимает итоги завершённой игры. Проверка
// флуда идёт первой: разбор статистики недёшев, отсеиваем до него.
func (m *Master) handleSendStatistics(c *Conn, body []byte) {
	if !m.checkActivity(c, floodDeltaStats) {
		return
	}

	var pkt clientpackets.SendStatistics
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "SendStatistics", err)
		return
	}
	if !pkt.Stats.Valid {
		slog.Warn("game stats rejected", "server", c.name, "version", pkt.Stats.Version)
		return
	}

	// Источнику не верим: имя и адрес сервера берём из подключения,
	// подлинность игроков сверяем с живыми клиентами по nonce.
	pkt.Stats.ServerName = c.name
	pkt.Stats.ServerAddr = c.addr
	for i := range pkt.Stats.Players {
		cl := m.registry.findByNonce(pkt.Stats.Players[i].Nonce)
		pkt.Stats.Players[i].IsAuthenticated = cl != nil && cl.authenticated
	}

	if m.stats != nil {
		m.tasks.Post(&statsTask{store: m.stats, stats: pkt.Stats})
	}

	// Таблицы рекордов пересоберутся при следующем запросе.
	m.scores.valid = false
}

// handleSendAchievement поднимает бит достижения у живых клиентов с
// этим ником и сохраняет его в хранилище. Интервал флуда общий со
// статистикой.
func (m *Master) handleSendAchievement(c *Conn, body []byte) {
	if !m.checkActivity(c, floodDeltaStats) {
		return
	}

	var pkt clientpackets.SendAchievement
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "SendAchievement", err)
		return
	}
	if pkt.AchievementID >= constants.BadgeCount {
		slog.Warn("achievement id out of range", "server", c.name, "id", pkt.AchievementID)
		return
	}

	m.registry.iterateClients(func(cl *Conn) bool {
		if strings.EqualFold(cl.name, pkt.PlayerNick) {
			cl.badges |= 1 << pkt.AchievementID
		}
		return true
	})

	if m.stats != nil {
		m.tasks.Post(&achievementTask{
			store:         m.stats,
			player:        pkt.PlayerNick,
			achievementID: pkt.AchievementID,
		})
	}
}

// handleSendLevelInfo сохраняет сведения о загруженном уровне.
// Интервал флуда общий со статистикой.
func (m *Master) handleSendLevelInfo(c *Conn, body []byte) {
	if !m.checkActivity(c, floodDeltaStats) {
		return
	}

	var pkt clientpackets.SendLevelInfo
	if err := pkt.Parse(body); err != nil {
		m.parseError(c, "SendLevelInfo", err)
		return
	}

	if m.stats != nil {
		m.tasks.Post(&levelTask{
			store:      m.stats,
			name:       pkt.LevelName,
			levelType:  pkt.LevelType,
			minPlayers: int(pkt.MinPlayers),
			maxPlayers: int(pkt.MaxPlayers),
		})
	}
}
