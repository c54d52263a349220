package serverpackets

import "net/netip"

const opcodeArrangedConnectionAccepted = 0x16

// ArrangedConnectionAccepted [0x16]: хост согласился, инициатору
// передаются адреса хоста для пробоя.
//
// Format:
//   [opcodeArrangedConnectionAccepted]  // opcode
//   [initiatorQueryID uint32]           // id запроса, выбранный инициатором
//   [count byte]                        // кандидатных адресов хоста
//   [addr 4b + port uint16] * count
//   [data blob]                         // непрозрачный ответ хоста
//
// Returns: number of bytes written to buf
func ArrangedConnectionAccepted(buf []byte, initiatorQueryID uint32, candidates []netip.AddrPort, data []byte) int {
	pos := 0

	buf[pos] = opcodeArrangedConnectionAccepted
	pos++

	pos = putInt(buf, pos, initiatorQueryID)

	buf[pos] = byte(len(candidates))
	pos++

	for _, a := range candidates {
		pos = putAddr(buf, pos, a)
	}

	pos = putBlob(buf, pos, data)

	return pos
}
