package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// SendChat [0x30]: сообщение в глобальный чат. Команды начинаются
// с наклонной черты и обрабатываются мастером.
//
// Format (после удаления opcode):
//
//	[message string]
type SendChat struct {
	Message string
}

// Parse парсит пакет SendChat из body (без opcode).
func (p *SendChat) Parse(body []byte) error {
	r := packet.NewReader(body)

	msg, err := r.ReadString()
	if err != nil {
		return fmt.Errorf("reading message: %w", err)
	}
	p.Message = msg

	return nil
}
