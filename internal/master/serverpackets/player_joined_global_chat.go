package serverpackets

const opcodePlayerJoinedGlobalChat = 0x34

// PlayerJoinedGlobalChat [0x34]: игрок вошёл в глобальный чат.
//
// Format:
//   [opcodePlayerJoinedGlobalChat]  // opcode
//   [name string]
//
// Returns: number of bytes written to buf
func PlayerJoinedGlobalChat(buf []byte, name string) int {
	pos := 0

	buf[pos] = opcodePlayerJoinedGlobalChat
	pos++

	pos = putString(buf, pos, name)

	return pos
}
