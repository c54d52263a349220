package serverpackets

const (
	opcodePlayerAuthenticated    = 0x61
	opcodePlayerAuthenticated019 = 0x62
)

// PlayerAuthenticated [0x61]: ответ игровому серверу на запрос проверки
// подлинности игрока.
//
// Format:
//   [opcodePlayerAuthenticated]  // opcode
//   [nonce uint64]               // player id из запроса
//   [name string]                // каноническое написание ника
//   [status byte]                // constants.AuthWire*
//   [badges uint32]
//
// Returns: number of bytes written to buf
func PlayerAuthenticated(buf []byte, nonce uint64, name string, status byte, badges uint32) int {
	pos := 0

	buf[pos] = opcodePlayerAuthenticated
	pos++

	pos = putLong(buf, pos, nonce)
	pos = putString(buf, pos, name)

	buf[pos] = status
	pos++

	pos = putInt(buf, pos, badges)

	return pos
}

// PlayerAuthenticated019 [0x62]: то же для серверов с поддержкой
// счётчика сыгранных игр.
//
// Format:
//   [opcodePlayerAuthenticated019]  // opcode
//   [nonce uint64]
//   [name string]
//   [status byte]                   // constants.AuthWire*
//   [badges uint32]
//   [gamesPlayed uint16]
//
// Returns: number of bytes written to buf
func PlayerAuthenticated019(buf []byte, nonce uint64, name string, status byte, badges uint32, gamesPlayed uint16) int {
	pos := 0

	buf[pos] = opcodePlayerAuthenticated019
	pos++

	pos = putLong(buf, pos, nonce)
	pos = putString(buf, pos, name)

	buf[pos] = status
	pos++

	pos = putInt(buf, pos, badges)
	pos = putShort(buf, pos, gamesPlayed)

	return pos
}
