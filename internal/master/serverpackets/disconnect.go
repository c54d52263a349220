package serverpackets

const opcodeDisconnect = 0x02

// Disconnect [0x02]: мастер разрывает сессию с указанием причины.
//
// Format:
//   [opcodeDisconnect]       // opcode
//   [reason byte]            // constants.Disconnect*
//   [text string]            // пояснение для человека
//
// Returns: number of bytes written to buf
func Disconnect(buf []byte, reason byte, text string) int {
	pos := 0

	buf[pos] = opcodeDisconnect
	pos++

	buf[pos] = reason
	pos++

	pos = putString(buf, pos, text)

	return pos
}
