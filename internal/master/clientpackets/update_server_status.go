package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// UpdateServerStatus [0x20]: игровой сервер сообщает смену уровня или
// состава игроков.
//
// Format (после удаления opcode):
//
//	[levelName string]
//	[levelType string]
//	[botCount uint32]
//	[playerCount uint32]
//	[maxPlayers uint32]
//	[infoFlags uint32]
type UpdateServerStatus struct {
	LevelName   string
	LevelType   string
	BotCount    uint32
	PlayerCount uint32
	MaxPlayers  uint32
	InfoFlags   uint32
}

// Parse парсит пакет UpdateServerStatus из body (без opcode).
func (p *UpdateServerStatus) Parse(body []byte) error {
	r := packet.NewReader(body)

	var err error

	if p.LevelName, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading levelName: %w", err)
	}
	if p.LevelType, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading levelType: %w", err)
	}
	if p.BotCount, err = r.ReadInt(); err != nil {
		return fmt.Errorf("reading botCount: %w", err)
	}
	if p.PlayerCount, err = r.ReadInt(); err != nil {
		return fmt.Errorf("reading playerCount: %w", err)
	}
	if p.MaxPlayers, err = r.ReadInt(); err != nil {
		return fmt.Errorf("reading maxPlayers: %w", err)
	}
	if p.InfoFlags, err = r.ReadInt(); err != nil {
		return fmt.Errorf("reading infoFlags: %w", err)
	}

	return nil
}
