package serverpackets

const opcodeRelayedChat = 0x31

// RelayedChat [0x31]: сообщение глобального чата или личное сообщение.
//
// Format:
//   [opcodeRelayedChat]  // opcode
//   [sender string]      // ник отправителя
//   [isPrivate bool]
//   [message string]
//
// Returns: number of bytes written to buf
func RelayedChat(buf []byte, sender string, isPrivate bool, message string) int {
	pos := 0

	buf[pos] = opcodeRelayedChat
	pos++

	pos = putString(buf, pos, sender)
	pos = putBool(buf, pos, isPrivate)
	pos = putString(buf, pos, message)

	return pos
}
