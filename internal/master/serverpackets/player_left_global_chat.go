package serverpackets

const opcodePlayerLeftGlobalChat = 0x35

// PlayerLeftGlobalChat [0x35]: игрок покинул глобальный чат.
//
// Format:
//   [opcodePlayerLeftGlobalChat]  // opcode
//   [name string]
//
// Returns: number of bytes written to buf
func PlayerLeftGlobalChat(buf []byte, name string) int {
	pos := 0

	buf[pos] = opcodePlayerLeftGlobalChat
	pos++

	pos = putString(buf, pos, name)

	return pos
}
