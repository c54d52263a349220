package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// ChangeName [0x21]: игровой сервер меняет имя в списке.
//
// Format (после удаления opcode):
//
//	[name string]
type ChangeName struct {
	Name string
}

// Parse парсит пакет ChangeName из body (без opcode).
func (p *ChangeName) Parse(body []byte) error {
	r := packet.NewReader(body)

	name, err := r.ReadString()
	if err != nil {
		return fmt.Errorf("reading name: %w", err)
	}
	p.Name = name

	return nil
}
