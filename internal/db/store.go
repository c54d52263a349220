package db

import (
	"context"

	"github.com/udisondev/masterserver/internal/model"
)

// StatsStore is the persistence boundary for game statistics.
// Реализации: PostgresStats (pgx) и SqliteStats (локальный файл).
// Вызывается только из worker-задач, никогда из основного цикла.
type StatsStore interface {
	// InsertGameStats записывает завершённую игру и обновляет агрегаты игроков.
	InsertGameStats(ctx context.Context, stats model.GameStats) error

	// SaveAchievement отмечает достижение игрока и поднимает бит в поле badges.
	SaveAchievement(ctx context.Context, player string, achievementID uint8) error

	// InsertLevelInfo записывает сведения об уровне, загруженном на сервер.
	InsertLevelInfo(ctx context.Context, name, levelType string, minPlayers, maxPlayers int) error

	// PlayerProfile возвращает бейджи и счётчик игр. Для неизвестного
	// игрока возвращает нулевой профиль без ошибки.
	PlayerProfile(ctx context.Context, player string) (PlayerProfile, error)

	// HighScores возвращает таблицы рекордов, не более scoresPerGroup строк в каждой.
	HighScores(ctx context.Context, scoresPerGroup int) ([]HighScoreGroup, error)

	Close() error
}

// PlayerProfile is the per-player summary used after successful authentication.
type PlayerProfile struct {
	Badges      uint32
	GamesPlayed uint16
}

// HighScoreGroup is one leaderboard: parallel name/score lists.
type HighScoreGroup struct {
	Name   string
	Names  []string
	Scores []string
}
