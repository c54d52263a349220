package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/master/packet"
)

// RequestAuthentication [0x60]: игровой сервер спрашивает, подтверждён
// ли подключившийся к нему игрок.
//
// Format (после удаления opcode):
//
//	[nonce uint64]  // player id, предъявленный игроком серверу
//	[name string]   // ник, предъявленный игроком серверу
type RequestAuthentication struct {
	Nonce uint64
	Name  string
}

// Parse парсит пакет RequestAuthentication из body (без opcode).
func (p *RequestAuthentication) Parse(body []byte) error {
	r := packet.NewReader(body)

	nonce, err := r.ReadLong()
	if err != nil {
		return fmt.Errorf("reading nonce: %w", err)
	}
	p.Nonce = nonce

	if p.Name, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading name: %w", err)
	}

	return nil
}
