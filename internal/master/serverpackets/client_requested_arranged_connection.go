package serverpackets

import "net/netip"

const opcodeClientRequestedArrangedConnection = 0x13

// ClientRequestedArrangedConnection [0x13]: уведомление хосту о том,
// что клиент просит организовать прямое соединение.
//
// Format:
//   [opcodeClientRequestedArrangedConnection]  // opcode
//   [hostQueryID uint32]                       // id запроса, выданный мастером
//   [count byte]                               // кандидатных адресов клиента
//   [addr 4b + port uint16] * count
//   [params blob]                              // непрозрачные данные инициатора
//
// Returns: number of bytes written to buf
func ClientRequestedArrangedConnection(buf []byte, hostQueryID uint32, candidates []netip.AddrPort, params []byte) int {
	pos := 0

	buf[pos] = opcodeClientRequestedArrangedConnection
	pos++

	pos = putInt(buf, pos, hostQueryID)

	buf[pos] = byte(len(candidates))
	pos++

	for _, a := range candidates {
		pos = putAddr(buf, pos, a)
	}

	pos = putBlob(buf, pos, params)

	return pos
}
