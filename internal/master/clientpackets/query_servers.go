package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// QueryServers [0x10]: клиент просит список игровых серверов.
//
// Format (после удаления opcode):
//
//	[queryID uint32]  // вернётся в каждой порции ответа
type QueryServers struct {
	QueryID uint32
}

// Parse парсит пакет QueryServers из body (без opcode).
func (p *QueryServers) Parse(body []byte) error {
	r := packet.NewReader(body)

	id, err := r.ReadInt()
	if err != nil {
		return fmt.Errorf("reading queryID: %w", err)
	}
	p.QueryID = id

	return nil
}
