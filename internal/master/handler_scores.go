package master

import (
	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/master/serverpackets"
)

// handleRequestHighScores отвечает кэшем, если он свеж, иначе ставит
// пересборку и откладывает ответ до её завершения.
func (m *Master) handleRequestHighScores(c *Conn) {
	hs := m.scores
	now := m.clock.Now()

	fresh := now.Sub(hs.lastClock) < highScoreRefreshTime
	if hs.valid && fresh && hs.scoresPerGroup == defaultScoresPerGroup {
		m.sendHighScores(c)
		return
	}

	if m.stats == nil {
		// Хранилища нет, отдаём пустую таблицу.
		m.sendHighScores(c)
		return
	}

	if !hs.busy {
		hs.busy = true
		// valid поднимается сразу: запросы, пришедшие во время
		// пересборки, получают прежний кэш немедленно.
		hs.valid = true
		hs.lastClock = now
		hs.scoresPerGroup = defaultScoresPerGroup

		task := &highScoresTask{store: m.stats, scoresPerGroup: defaultScoresPerGroup}
		if !m.tasks.Post(task) {
			hs.busy = false
			hs.valid = false
			m.sendHighScores(c)
			return
		}
	}
	hs.waiting = append(hs.waiting, c.id)
}

// sendHighScores отдаёт клиенту текущий снимок кэша.
func (m *Master) sendHighScores(c *Conn) {
	hs := m.scores

	size := constants.PacketHeaderSize + 4
	for _, g := range hs.groupNames {
		size += 2 + len(g)
	}
	for _, n := range hs.names {
		size += 2 + len(n)
	}
	for _, s := range hs.scores {
		size += 2 + len(s)
	}

	buf := m.sendPool.Get(max(size, constants.DefaultSendBufSize))
	n := serverpackets.SendHighScores(buf[constants.PacketHeaderSize:], hs.groupNames, hs.names, hs.scores)
	m.send(c, buf, n)
}
