package clientpackets

import (
	"fmt"
	"net/netip"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// RequestArrangedConnection [0x12]: клиент просит организовать прямое
// соединение с игровым сервером.
//
// Format (после удаления opcode):
//
//	[requestID uint32]        // id запроса, выбранный клиентом
//	[remoteAddr 4b + uint16]  // публичный адрес сервера из списка
//	[internalAddr 4b + uint16]// адрес клиента в его локальной сети
//	[params blob]             // непрозрачные данные для сервера
type RequestArrangedConnection struct {
	RequestID       uint32
	RemoteAddress   netip.AddrPort
	InternalAddress netip.AddrPort
	Params          []byte
}

// Parse парсит пакет RequestArrangedConnection из body (без opcode).
func (p *RequestArrangedConnection) Parse(body []byte) error {
	r := packet.NewReader(body)

	id, err := r.ReadInt()
	if err != nil {
		return fmt.Errorf("reading requestID: %w", err)
	}
	p.RequestID = id

	if p.RemoteAddress, err = r.ReadAddress(); err != nil {
		return fmt.Errorf("reading remoteAddress: %w", err)
	}
	if p.InternalAddress, err = r.ReadAddress(); err != nil {
		return fmt.Errorf("reading internalAddress: %w", err)
	}
	if p.Params, err = r.ReadBlob(); err != nil {
		return fmt.Errorf("reading params: %w", err)
	}

	return nil
}
