package serverpackets

const opcodeUpgradeStatus = 0x71

// UpgradeStatus [0x71]: признак того, что вышла более новая сборка
// клиента.
//
// Format:
//   [opcodeUpgradeStatus]  // opcode
//   [needToUpgrade bool]
//
// Returns: number of bytes written to buf
func UpgradeStatus(buf []byte, needToUpgrade bool) int {
	pos := 0

	buf[pos] = opcodeUpgradeStatus
	pos++

	pos = putBool(buf, pos, needToUpgrade)

	return pos
}
