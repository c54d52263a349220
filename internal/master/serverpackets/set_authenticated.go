package serverpackets

const (
	opcodeSetAuthenticated    = 0x63
	opcodeSetAuthenticated019 = 0x64
)

// SetAuthenticated [0x63]: итог проверки пароля, отправляется клиенту.
//
// Format:
//   [opcodeSetAuthenticated]  // opcode
//   [status byte]             // constants.AuthWire*
//   [badges uint32]           // битсет достижений
//   [correctedName string]    // каноническое написание ника
//
// Returns: number of bytes written to buf
func SetAuthenticated(buf []byte, status byte, badges uint32, correctedName string) int {
	pos := 0

	buf[pos] = opcodeSetAuthenticated
	pos++

	buf[pos] = status
	pos++

	pos = putInt(buf, pos, badges)
	pos = putString(buf, pos, correctedName)

	return pos
}

// SetAuthenticated019 [0x64]: то же для клиентов с поддержкой счётчика
// сыгранных игр.
//
// Format:
//   [opcodeSetAuthenticated019]  // opcode
//   [status byte]                // constants.AuthWire*
//   [badges uint32]
//   [gamesPlayed uint16]
//   [correctedName string]
//
// Returns: number of bytes written to buf
func SetAuthenticated019(buf []byte, status byte, badges uint32, gamesPlayed uint16, correctedName string) int {
	pos := 0

	buf[pos] = opcodeSetAuthenticated019
	pos++

	buf[pos] = status
	pos++

	pos = putInt(buf, pos, badges)
	pos = putShort(buf, pos, gamesPlayed)
	pos = putString(buf, pos, correctedName)

	return pos
}
