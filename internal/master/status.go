package master

import (
	"bytes"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// statusWriter сбрасывает снимок реестра в JSON-файл для внешнего
// мониторинга. Вызывается только из событийного цикла.
type statusWriter struct {
	path      string
	lastWrite time.Time

	// Запись откладывается, пока идёт проверка пароля: клиент должен
	// попасть в снимок уже с каноническим именем.
	delayedUntil time.Time
}

// maybeWrite переписывает файл, если реестр менялся и пришло время.
// При ошибке записи флаг изменений сохраняется, попытка повторится.
func (w *statusWriter) maybeWrite(reg *registry, now time.Time) {
	if w.path == "" || !reg.dirty {
		return
	}
	if now.Sub(w.lastWrite) < rewriteTime {
		return
	}
	if now.Before(w.delayedUntil) {
		return
	}

	data := buildStatusJSON(reg)
	if err := os.WriteFile(w.path, data, 0o644); err != nil {
		slog.Error("status file write failed", "path", w.path, "error", err)
		return
	}

	reg.dirty = false
	w.lastWrite = now
	slog.Debug("status file written", "path", w.path, "bytes", len(data))
}

// buildStatusJSON сериализует реестр. Формат закреплён потребителями
// снимка: скрытые и отладочные клиенты не показываются, серверы
// показываются все, authenticated параллелен players.
func buildStatusJSON(reg *registry) []byte {
	var b bytes.Buffer
	b.WriteString("{\n")

	b.WriteString("\t\"servers\": [")
	serverCount := 0
	reg.iterateServers(func(s *Conn) bool {
		if serverCount > 0 {
			b.WriteByte(',')
		}
		b.WriteString("\n\t\t{ \"serverName\": \"")
		writeEscaped(&b, s.name)
		b.WriteString("\", \"protocolVersion\": ")
		b.WriteString(strconv.FormatUint(uint64(s.csProtocol), 10))
		b.WriteString(", \"currentLevelName\": \"")
		writeEscaped(&b, s.levelName)
		b.WriteString("\", \"currentLevelType\": \"")
		writeEscaped(&b, s.levelType)
		b.WriteString("\", \"playerCount\": ")
		b.WriteString(strconv.FormatUint(uint64(s.playerCount), 10))
		b.WriteString(" }")
		serverCount++
		return true
	})
	if serverCount > 0 {
		b.WriteString("\n\t")
	}
	b.WriteString("],\n")

	names := make([]string, 0, reg.clientCount())
	auth := make([]bool, 0, reg.clientCount())
	reg.iterateClients(func(c *Conn) bool {
		if c.hidden || c.debugClient {
			return true
		}
		names = append(names, c.name)
		auth = append(auth, c.authenticated)
		return true
	})

	b.WriteString("\t\"players\": [ ")
	for i, n := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('"')
		writeEscaped(&b, n)
		b.WriteByte('"')
	}
	b.WriteString(" ],\n")

	b.WriteString("\t\"authenticated\": [ ")
	for i, a := range auth {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatBool(a))
	}
	b.WriteString(" ],\n")

	b.WriteString("\t\"serverCount\": ")
	b.WriteString(strconv.Itoa(serverCount))
	b.WriteString(",\n")

	b.WriteString("\t\"playerCount\": ")
	b.WriteString(strconv.Itoa(len(names)))
	b.WriteString("\n}\n")

	return b.Bytes()
}

// writeEscaped пишет строку в legacy-формате снимка: кавычки и бэкслеш
// экранируются, символы разметки заменяются HTML-сущностями,
// оставшиеся управляющие символы отбрасываются. Потребители снимка
// подставляют строки в веб-страницу как есть.
func writeEscaped(b *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			if c < 0x20 {
				continue
			}
			b.WriteByte(c)
		}
	}
}
