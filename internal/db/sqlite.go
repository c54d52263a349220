package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/udisondev/masterserver/internal/model"
)

// SqliteStats реализует StatsStore поверх локального файла SQLite.
// Бэкенд по умолчанию: не требует внешней базы и подходит для небольших
// инсталляций мастера.
type SqliteStats struct {
	db *sql.DB
}

// NewSqliteStats открывает (или создаёт) базу и применяет миграции.
// Путь ":memory:" даёт чистую базу в памяти, удобно в тестах.
func NewSqliteStats(ctx context.Context, path string) (*SqliteStats, error) {
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}

	// SQLite держит одну пишущую транзакцию, а база в памяти живёт ровно
	// одно соединение, поэтому пул ограничен единственным коннектом.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging sqlite database %s: %w", path, err)
	}

	if err := migrateSqlite(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &SqliteStats{db: sqlDB}, nil
}

// Close closes the database handle.
func (s *SqliteStats) Close() error {
	return s.db.Close()
}

// InsertGameStats записывает игру, её участников и обновляет агрегаты
// игроков в одной транзакции. Боты в таблицу players не попадают.
func (s *SqliteStats) InsertGameStats(ctx context.Context, stats model.GameStats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning stats transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games (server_name, server_addr, game_type, level_name, team_game, duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		stats.ServerName, stats.ServerAddr.String(), stats.GameType, stats.LevelName,
		stats.TeamGame, stats.Duration,
	)
	if err != nil {
		return fmt.Errorf("inserting game: %w", err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted game id: %w", err)
	}

	for i := range stats.Players {
		p := &stats.Players[i]
		won := stats.PlayerWon(*p)

		_, err = tx.ExecContext(ctx,
			`INSERT INTO game_players (game_id, player_name, team_index, points, kills, deaths, suicides, is_robot, is_authenticated, won)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			gameID, p.Name, p.TeamIndex, p.Points, p.Kills, p.Deaths, p.Suicides,
			p.IsRobot, p.IsAuthenticated, won,
		)
		if err != nil {
			return fmt.Errorf("inserting game player %q: %w", p.Name, err)
		}

		if p.IsRobot {
			continue
		}

		wonInc := 0
		if won {
			wonInc = 1
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO players (name, games_played, games_won, total_points, total_kills, total_deaths, total_suicides)
			 VALUES (?, 1, ?, ?, ?, ?, ?)
			 ON CONFLICT (name) DO UPDATE SET
			     games_played   = games_played + 1,
			     games_won      = games_won + excluded.games_won,
			     total_points   = total_points + excluded.total_points,
			     total_kills    = total_kills + excluded.total_kills,
			     total_deaths   = total_deaths + excluded.total_deaths,
			     total_suicides = total_suicides + excluded.total_suicides,
			     last_seen      = CURRENT_TIMESTAMP`,
			p.Name, wonInc, p.Points, p.Kills, p.Deaths, p.Suicides,
		)
		if err != nil {
			return fmt.Errorf("updating player aggregates for %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing stats transaction: %w", err)
	}
	return nil
}

// SaveAchievement отмечает достижение и поднимает соответствующий бит
// в поле badges игрока.
func (s *SqliteStats) SaveAchievement(ctx context.Context, player string, achievementID uint8) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning achievement transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO achievements (player_name, achievement_id)
		 VALUES (?, ?)
		 ON CONFLICT (player_name, achievement_id) DO NOTHING`,
		player, int16(achievementID),
	)
	if err != nil {
		return fmt.Errorf("inserting achievement %d for %q: %w", achievementID, player, err)
	}

	badge := int64(1) << achievementID
	_, err = tx.ExecContext(ctx,
		`INSERT INTO players (name, badges) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET badges = badges | excluded.badges`,
		player, badge,
	)
	if err != nil {
		return fmt.Errorf("updating badges for %q: %w", player, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing achievement transaction: %w", err)
	}
	return nil
}

// InsertLevelInfo записывает сведения об уровне.
func (s *SqliteStats) InsertLevelInfo(ctx context.Context, name, levelType string, minPlayers, maxPlayers int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO levels (name, level_type, min_players, max_players)
		 VALUES (?, ?, ?, ?)`,
		name, levelType, minPlayers, maxPlayers,
	)
	if err != nil {
		return fmt.Errorf("inserting level %q: %w", name, err)
	}
	return nil
}

// PlayerProfile возвращает бейджи и счётчик игр.
// Возвращает нулевой профиль без ошибки, если игрок неизвестен.
func (s *SqliteStats) PlayerProfile(ctx context.Context, player string) (PlayerProfile, error) {
	var badges, gamesPlayed int64
	err := s.db.QueryRowContext(ctx,
		`SELECT badges, games_played FROM players WHERE name = ?`, player,
	).Scan(&badges, &gamesPlayed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PlayerProfile{}, nil
		}
		return PlayerProfile{}, fmt.Errorf("querying profile %q: %w", player, err)
	}
	if gamesPlayed > math.MaxUint16 {
		gamesPlayed = math.MaxUint16
	}
	return PlayerProfile{Badges: uint32(badges), GamesPlayed: uint16(gamesPlayed)}, nil
}

// HighScores собирает пять таблиц рекордов.
func (s *SqliteStats) HighScores(ctx context.Context, scoresPerGroup int) ([]HighScoreGroup, error) {
	// CURRENT_TIMESTAMP в SQLite хранится в UTC, граница недели должна
	// совпадать по зоне, иначе строковое сравнение дат съедет.
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)

	groups := make([]HighScoreGroup, 0, 5)
	for _, q := range []struct {
		name  string
		query string
		args  []any
	}{
		{
			name:  "Wins, All Time",
			query: `SELECT name, games_won FROM players ORDER BY games_won DESC, name ASC LIMIT ?`,
			args:  []any{scoresPerGroup},
		},
		{
			name: "Wins, This Week",
			query: `SELECT gp.player_name, COUNT(*)
			        FROM game_players gp
			        JOIN games g ON g.id = gp.game_id
			        WHERE gp.won AND NOT gp.is_robot AND g.played_at >= ?
			        GROUP BY gp.player_name
			        ORDER BY COUNT(*) DESC, gp.player_name ASC
			        LIMIT ?`,
			args: []any{weekAgo, scoresPerGroup},
		},
		{
			name:  "Most Games Played",
			query: `SELECT name, games_played FROM players ORDER BY games_played DESC, name ASC LIMIT ?`,
			args:  []any{scoresPerGroup},
		},
		{
			name:  "Most Points",
			query: `SELECT name, total_points FROM players ORDER BY total_points DESC, name ASC LIMIT ?`,
			args:  []any{scoresPerGroup},
		},
		{
			name:  "Most Kills",
			query: `SELECT name, total_kills FROM players ORDER BY total_kills DESC, name ASC LIMIT ?`,
			args:  []any{scoresPerGroup},
		},
	} {
		group := HighScoreGroup{Name: q.name}

		rows, err := s.db.QueryContext(ctx, q.query, q.args...)
		if err != nil {
			return nil, fmt.Errorf("querying high scores %q: %w", q.name, err)
		}
		for rows.Next() {
			var name string
			var score int64
			if err := rows.Scan(&name, &score); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning high score row for %q: %w", q.name, err)
			}
			group.Names = append(group.Names, name)
			group.Scores = append(group.Scores, fmt.Sprintf("%d", score))
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterating high scores %q: %w", q.name, err)
		}

		groups = append(groups, group)
	}

	return groups, nil
}
