package db

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"

	"github.com/udisondev/masterserver/internal/model"
)

// SelfTest прогоняет фикстуры через хранилище статистики: вставляет игру,
// достижение и информацию об уровне, затем контрольно читает профиль и
// таблицы рекордов. Используется флагом -testdb для проверки настроек базы.
func SelfTest(ctx context.Context, store StatsStore, player string) error {
	stats := model.GameStats{
		Version:    model.GameStatsVersion,
		Valid:      true,
		ServerName: "SelfTest Server",
		ServerAddr: netip.MustParseAddrPort("127.0.0.1:28000"),
		GameType:   "Bitmatch",
		LevelName:  "SelfTest Arena",
		TeamGame:   true,
		Duration:   600,
		Teams: []model.TeamStats{
			{Name: "Red", Score: 12},
			{Name: "Blue", Score: 8},
		},
		Players: []model.PlayerStats{
			{Name: player, IsAuthenticated: true, TeamIndex: 0, Points: 12, Kills: 9, Deaths: 4, Suicides: 1},
			{Name: "TestOpponent", TeamIndex: 1, Points: 8, Kills: 4, Deaths: 9},
			{Name: "TestBot", IsRobot: true, TeamIndex: 1, Points: 0, Kills: 0, Deaths: 3},
		},
	}

	if err := store.InsertGameStats(ctx, stats); err != nil {
		return fmt.Errorf("self-test: inserting game stats: %w", err)
	}
	slog.Info("self-test: game stats inserted", "players", len(stats.Players))

	if err := store.SaveAchievement(ctx, player, 1); err != nil {
		return fmt.Errorf("self-test: saving achievement: %w", err)
	}
	slog.Info("self-test: achievement saved", "player", player, "achievement_id", 1)

	if err := store.InsertLevelInfo(ctx, "SelfTest Arena", "Bitmatch", 2, 8); err != nil {
		return fmt.Errorf("self-test: inserting level info: %w", err)
	}
	slog.Info("self-test: level info inserted")

	profile, err := store.PlayerProfile(ctx, player)
	if err != nil {
		return fmt.Errorf("self-test: reading player profile: %w", err)
	}
	if profile.GamesPlayed == 0 {
		return fmt.Errorf("self-test: player %q has zero games after insert", player)
	}
	if profile.Badges&(1<<1) == 0 {
		return fmt.Errorf("self-test: player %q is missing achievement badge", player)
	}
	slog.Info("self-test: player profile read back",
		"player", player,
		"games_played", profile.GamesPlayed,
		"badges", fmt.Sprintf("0x%08x", profile.Badges))

	groups, err := store.HighScores(ctx, 3)
	if err != nil {
		return fmt.Errorf("self-test: reading high scores: %w", err)
	}
	for _, g := range groups {
		slog.Info("self-test: high score group", "group", g.Name, "entries", len(g.Names))
	}

	return nil
}
