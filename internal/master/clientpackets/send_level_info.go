package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// SendLevelInfo [0x42]: сведения об уровне, сыгранном на игровом
// сервере, для статистики популярности.
//
// Format (после удаления opcode):
//
//	[levelName string]
//	[levelType string]
//	[minPlayers uint32]
//	[maxPlayers uint32]
type SendLevelInfo struct {
	LevelName  string
	LevelType  string
	MinPlayers uint32
	MaxPlayers uint32
}

// Parse парсит пакет SendLevelInfo из body (без opcode).
func (p *SendLevelInfo) Parse(body []byte) error {
	r := packet.NewReader(body)

	var err error

	if p.LevelName, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading levelName: %w", err)
	}
	if p.LevelType, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading levelType: %w", err)
	}
	if p.MinPlayers, err = r.ReadInt(); err != nil {
		return fmt.Errorf("reading minPlayers: %w", err)
	}
	if p.MaxPlayers, err = r.ReadInt(); err != nil {
		return fmt.Errorf("reading maxPlayers: %w", err)
	}

	return nil
}
