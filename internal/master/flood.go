package master

import (
	"log/slog"
	"time"

	"github.com/udisondev/masterserver/internal/constants"
)

// checkActivity применяет политику страйков к дорогой операции
// с минимальным интервалом delta. Слишком частый вызов добавляет
// страйк, выдержанный интервал снимает один. Третий страйк разрывает
// подключение, и операция не выполняется.
func (m *Master) checkActivity(c *Conn, delta time.Duration) bool {
	now := m.clock.Now()
	ok := true

	if now.Sub(c.lastActivity) < delta {
		c.strikes++
		if c.strikes >= maxStrikes {
			slog.Info("flood control disconnect", "name", c.name, "remote", c.addr, "strikes", c.strikes)
			m.disconnect(c, constants.DisconnectFloodControl, "too many rapid requests")
			ok = false
		}
	} else if c.strikes > 0 {
		c.strikes--
	}

	c.lastActivity = now
	return ok
}
