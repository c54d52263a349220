package serverpackets

import "net/netip"

const opcodeQueryServersResponse = 0x11

// QueryServersResponse [0x11]: порция адресов игровых серверов.
// Пустой список закрывает выдачу по queryID.
//
// Format:
//   [opcodeQueryServersResponse]  // opcode
//   [queryID uint32]              // id запроса, выбранный клиентом
//   [count byte]                  // адресов в порции, 0..IPMessageAddressCount
//   [addr 4b + port uint16] * count
//
// Returns: number of bytes written to buf
func QueryServersResponse(buf []byte, queryID uint32, addrs []netip.AddrPort) int {
	pos := 0

	buf[pos] = opcodeQueryServersResponse
	pos++

	pos = putInt(buf, pos, queryID)

	buf[pos] = byte(len(addrs))
	pos++

	for _, a := range addrs {
		pos = putAddr(buf, pos, a)
	}

	return pos
}
