package clientpackets

import (
	"fmt"
	"net/netip"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// AcceptArrangedConnection [0x14]: хост согласен принять соединение.
//
// Format (после удаления opcode):
//
//	[hostQueryID uint32]      // id запроса, выданный мастером
//	[internalAddr 4b + uint16]// адрес хоста в его локальной сети
//	[data blob]               // непрозрачный ответ для клиента
type AcceptArrangedConnection struct {
	HostQueryID     uint32
	InternalAddress netip.AddrPort
	Data            []byte
}

// Parse парсит пакет AcceptArrangedConnection из body (без opcode).
func (p *AcceptArrangedConnection) Parse(body []byte) error {
	r := packet.NewReader(body)

	id, err := r.ReadInt()
	if err != nil {
		return fmt.Errorf("reading hostQueryID: %w", err)
	}
	p.HostQueryID = id

	if p.InternalAddress, err = r.ReadAddress(); err != nil {
		return fmt.Errorf("reading internalAddress: %w", err)
	}
	if p.Data, err = r.ReadBlob(); err != nil {
		return fmt.Errorf("reading data: %w", err)
	}

	return nil
}
