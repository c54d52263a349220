package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// SendAchievement [0x41]: игрок заработал достижение на игровом
// сервере.
//
// Format (после удаления opcode):
//
//	[achievementID byte]  // номер бита, меньше constants.BadgeCount
//	[playerNick string]
type SendAchievement struct {
	AchievementID byte
	PlayerNick    string
}

// Parse парсит пакет SendAchievement из body (без opcode).
func (p *SendAchievement) Parse(body []byte) error {
	r := packet.NewReader(body)

	id, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("reading achievementID: %w", err)
	}
	p.AchievementID = id

	if p.PlayerNick, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading playerNick: %w", err)
	}

	return nil
}
