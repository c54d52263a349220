package serverpackets

const opcodeSendHighScores = 0x51

// SendHighScores [0x51]: таблица рекордов. Списки names и scores
// параллельны и сгруппированы по scoresPerGroup строк на группу.
//
// Format:
//   [opcodeSendHighScores]    // opcode
//   [groupCount byte]
//   [groupName string] * groupCount
//   [entryCount byte]
//   [name string] * entryCount
//   [score string] * entryCount
//
// Returns: number of bytes written to buf
func SendHighScores(buf []byte, groupNames, names, scores []string) int {
	pos := 0

	buf[pos] = opcodeSendHighScores
	pos++

	buf[pos] = byte(len(groupNames))
	pos++

	for _, g := range groupNames {
		pos = putString(buf, pos, g)
	}

	buf[pos] = byte(len(names))
	pos++

	for _, n := range names {
		pos = putString(buf, pos, n)
	}

	for _, s := range scores {
		pos = putString(buf, pos, s)
	}

	return pos
}
