package serverpackets

const opcodeSetMOTD = 0x70

// SetMOTD [0x70]: сообщение дня, подобранное по сборке клиента.
//
// Format:
//   [opcodeSetMOTD]      // opcode
//   [masterName string]  // имя мастер-сервера из конфигурации
//   [motd string]
//
// Returns: number of bytes written to buf
func SetMOTD(buf []byte, masterName, motd string) int {
	pos := 0

	buf[pos] = opcodeSetMOTD
	pos++

	pos = putString(buf, pos, masterName)
	pos = putString(buf, pos, motd)

	return pos
}
