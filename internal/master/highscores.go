package master

import "time"

// highScores кэширует таблицы рекордов между пересборками. Принадлежит
// событийному циклу, пересборка уходит в фоновую задачу.
//
// names и scores параллельны и содержат ровно scoresPerGroup строк на
// каждую группу, недостающие места добиты пустыми строками.
type highScores struct {
	groupNames []string
	names      []string
	scores     []string

	scoresPerGroup int
	lastClock      time.Time

	// valid сбрасывается при поступлении новой статистики, busy
	// выставлен, пока фоновая задача пересобирает кэш.
	valid bool
	busy  bool

	// Клиенты, ожидающие завершения пересборки. Хранятся по id:
	// к моменту ответа подключение может умереть.
	waiting []uint64
}
