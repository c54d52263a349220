package serverpackets

const opcodeArrangedConnectionRejected = 0x17

// ArrangedConnectionRejected [0x17]: запрос на соединение отклонён
// хостом, либо истёк, либо хост не найден.
//
// Format:
//   [opcodeArrangedConnectionRejected]  // opcode
//   [initiatorQueryID uint32]           // id запроса, выбранный инициатором
//   [data blob]                         // причина, например "NoSuchHost"
//
// Returns: number of bytes written to buf
func ArrangedConnectionRejected(buf []byte, initiatorQueryID uint32, data []byte) int {
	pos := 0

	buf[pos] = opcodeArrangedConnectionRejected
	pos++

	pos = putInt(buf, pos, initiatorQueryID)

	pos = putBlob(buf, pos, data)

	return pos
}
