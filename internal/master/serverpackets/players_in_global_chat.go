package serverpackets

const opcodePlayersInGlobalChat = 0x36

// PlayersInGlobalChat [0x36]: текущий состав глобального чата,
// отправляется вошедшему.
//
// Format:
//   [opcodePlayersInGlobalChat]  // opcode
//   [count byte]
//   [name string] * count
//
// Returns: number of bytes written to buf
func PlayersInGlobalChat(buf []byte, names []string) int {
	pos := 0

	buf[pos] = opcodePlayersInGlobalChat
	pos++

	buf[pos] = byte(len(names))
	pos++

	for _, n := range names {
		pos = putString(buf, pos, n)
	}

	return pos
}
