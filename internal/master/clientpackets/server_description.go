package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// ServerDescription [0x22]: игровой сервер меняет описание в списке.
//
// Format (после удаления opcode):
//
//	[description string]
type ServerDescription struct {
	Description string
}

// Parse парсит пакет ServerDescription из body (без opcode).
func (p *ServerDescription) Parse(body []byte) error {
	r := packet.NewReader(body)

	desc, err := r.ReadString()
	if err != nil {
		return fmt.Errorf("reading description: %w", err)
	}
	p.Description = desc

	return nil
}
