package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// RejectArrangedConnection [0x15]: хост отказал в соединении.
//
// Format (после удаления opcode):
//
//	[hostQueryID uint32]  // id запроса, выданный мастером
//	[data blob]           // непрозрачная причина для клиента
type RejectArrangedConnection struct {
	HostQueryID uint32
	Data        []byte
}

// Parse парсит пакет RejectArrangedConnection из body (без opcode).
func (p *RejectArrangedConnection) Parse(body []byte) error {
	r := packet.NewReader(body)

	id, err := r.ReadInt()
	if err != nil {
		return fmt.Errorf("reading hostQueryID: %w", err)
	}
	p.HostQueryID = id

	if p.Data, err = r.ReadBlob(); err != nil {
		return fmt.Errorf("reading data: %w", err)
	}

	return nil
}
