package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/masterserver/internal/model"
)

// PostgresStats реализует StatsStore поверх PostgreSQL.
type PostgresStats struct {
	pool *pgxpool.Pool
}

// NewPostgresStats connects to PostgreSQL and returns a stats store.
func NewPostgresStats(ctx context.Context, dsn string) (*PostgresStats, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to stats database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging stats database: %w", err)
	}
	return &PostgresStats{pool: pool}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStats) Close() error {
	s.pool.Close()
	return nil
}

// InsertGameStats записывает игру, её участников и обновляет агрегаты
// игроков в одной транзакции. Боты в таблицу players не попадают.
func (s *PostgresStats) InsertGameStats(ctx context.Context, stats model.GameStats) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning stats transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var gameID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO games (server_name, server_addr, game_type, level_name, team_game, duration_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		stats.ServerName, stats.ServerAddr.String(), stats.GameType, stats.LevelName,
		stats.TeamGame, stats.Duration,
	).Scan(&gameID)
	if err != nil {
		return fmt.Errorf("inserting game: %w", err)
	}

	for i := range stats.Players {
		p := &stats.Players[i]
		won := stats.PlayerWon(*p)

		_, err = tx.Exec(ctx,
			`INSERT INTO game_players (game_id, player_name, team_index, points, kills, deaths, suicides, is_robot, is_authenticated, won)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
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
		_, err = tx.Exec(ctx,
			`INSERT INTO players (name, games_played, games_won, total_points, total_kills, total_deaths, total_suicides)
			 VALUES ($1, 1, $2, $3, $4, $5, $6)
			 ON CONFLICT (name) DO UPDATE SET
			     games_played   = players.games_played + 1,
			     games_won      = players.games_won + EXCLUDED.games_won,
			     total_points   = players.total_points + EXCLUDED.total_points,
			     total_kills    = players.total_kills + EXCLUDED.total_kills,
			     total_deaths   = players.total_deaths + EXCLUDED.total_deaths,
			     total_suicides = players.total_suicides + EXCLUDED.total_suicides,
			     last_seen      = now()`,
			p.Name, wonInc, p.Points, p.Kills, p.Deaths, p.Suicides,
		)
		if err != nil {
			return fmt.Errorf("updating player aggregates for %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing stats transaction: %w", err)
	}
	return nil
}

// SaveAchievement отмечает достижение и поднимает соответствующий бит
// в поле badges игрока.
func (s *PostgresStats) SaveAchievement(ctx context.Context, player string, achievementID uint8) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning achievement transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO achievements (player_name, achievement_id)
		 VALUES ($1, $2)
		 ON CONFLICT (player_name, achievement_id) DO NOTHING`,
		player, int16(achievementID),
	)
	if err != nil {
		return fmt.Errorf("inserting achievement %d for %q: %w", achievementID, player, err)
	}

	badge := int64(1) << achievementID
	_, err = tx.Exec(ctx,
		`INSERT INTO players (name, badges) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET badges = players.badges | EXCLUDED.badges`,
		player, badge,
	)
	if err != nil {
		return fmt.Errorf("updating badges for %q: %w", player, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing achievement transaction: %w", err)
	}
	return nil
}

// InsertLevelInfo записывает сведения об уровне.
func (s *PostgresStats) InsertLevelInfo(ctx context.Context, name, levelType string, minPlayers, maxPlayers int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO levels (name, level_type, min_players, max_players)
		 VALUES ($1, $2, $3, $4)`,
		name, levelType, minPlayers, maxPlayers,
	)
	if err != nil {
		return fmt.Errorf("inserting level %q: %w", name, err)
	}
	return nil
}

// PlayerProfile возвращает бейджи и счётчик игр.
// Возвращает нулевой профиль без ошибки, если игрок неизвестен.
func (s *PostgresStats) PlayerProfile(ctx context.Context, player string) (PlayerProfile, error) {
	var badges, gamesPlayed int64
	err := s.pool.QueryRow(ctx,
		`SELECT badges, games_played FROM players WHERE name = $1`, player,
	).Scan(&badges, &gamesPlayed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
func (s *PostgresStats) HighScores(ctx context.Context, scoresPerGroup int) ([]HighScoreGroup, error) {
	weekAgo := time.Now().AddDate(0, 0, -7)

	groups := make([]HighScoreGroup, 0, 5)
	for _, q := range []struct {
		name  string
		query string
		args  []any
	}{
		{
			name:  "Wins, All Time",
			query: `SELECT name, games_won FROM players ORDER BY games_won DESC, name ASC LIMIT $1`,
			args:  []any{scoresPerGroup},
		},
		{
			name: "Wins, This Week",
			query: `SELECT gp.player_name, COUNT(*)
			        FROM game_players gp
			        JOIN games g ON g.id = gp.game_id
			        WHERE gp.won AND NOT gp.is_robot AND g.played_at >= $1
			        GROUP BY gp.player_name
			        ORDER BY COUNT(*) DESC, gp.player_name ASC
			        LIMIT $2`,
			args: []any{weekAgo, scoresPerGroup},
		},
		{
			name:  "Most Games Played",
			query: `SELECT name, games_played FROM players ORDER BY games_played DESC, name ASC LIMIT $1`,
			args:  []any{scoresPerGroup},
		},
		{
			name:  "Most Points",
			query: `SELECT name, total_points FROM players ORDER BY total_points DESC, name ASC LIMIT $1`,
			args:  []any{scoresPerGroup},
		},
		{
			name:  "Most Kills",
			query: `SELECT name, total_kills FROM players ORDER BY total_kills DESC, name ASC LIMIT $1`,
			args:  []any{scoresPerGroup},
		},
	} {
		group := HighScoreGroup{Name: q.name}

		rows, err := s.pool.Query(ctx, q.query, q.args...)
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
