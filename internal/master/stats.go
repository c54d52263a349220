package master

import (
	"context"
	"log/slog"

	"github.com/udisondev/masterserver/internal/db"
	"github.com/udisondev/masterserver/internal/model"
)

// statsTask сохраняет итоги завершённой игры.
type statsTask struct {
	store db.StatsStore
	stats model.GameStats
}

func (t *statsTask) Run(ctx context.Context) {
	if err := t.store.InsertGameStats(ctx, t.stats); err != nil {
		slog.Error("insert game stats failed", "server", t.stats.ServerName, "error", err)
	}
}

func (t *statsTask) Finish(m *Master) {}

// achievementTask отмечает достижение игрока в хранилище.
type achievementTask struct {
	store         db.StatsStore
	player        string
	achievementID byte
}

func (t *achievementTask) Run(ctx context.Context) {
	if err := t.store.SaveAchievement(ctx, t.player, t.achievementID); err != nil {
		slog.Error("save achievement failed", "player", t.player, "id", t.achievementID, "error", err)
	}
}

func (t *achievementTask) Finish(m *Master) {}

// levelTask записывает сведения об уровне, загруженном на сервере.
type levelTask struct {
	store      db.StatsStore
	name       string
	levelType  string
	minPlayers int
	maxPlayers int
}

func (t *levelTask) Run(ctx context.Context) {
	if err := t.store.InsertLevelInfo(ctx, t.name, t.levelType, t.minPlayers, t.maxPlayers); err != nil {
		slog.Error("insert level info failed", "level", t.name, "error", err)
	}
}

func (t *levelTask) Finish(m *Master) {}

// highScoresTask пересобирает кэш таблиц рекордов. Run выполняет
// запросы к хранилищу, Finish публикует результат в кэш и отвечает
// дождавшимся клиентам.
type highScoresTask struct {
	store          db.StatsStore
	scoresPerGroup int

	groupNames []string
	names      []string
	scores     []string
	failed     bool
}

func (t *highScoresTask) Run(ctx context.Context) {
	groups, err := t.store.HighScores(ctx, t.scoresPerGroup)
	if err != nil {
		t.failed = true
		slog.Error("high scores query failed", "error", err)
		return
	}

	for _, g := range groups {
		t.groupNames = append(t.groupNames, g.Name)
		// Каждая группа добивается до scoresPerGroup строк, клиент
		// делит плоский список поровну.
		for i := range t.scoresPerGroup {
			if i < len(g.Names) {
				t.names = append(t.names, g.Names[i])
				t.scores = append(t.scores, g.Scores[i])
			} else {
				t.names = append(t.names, "")
				t.scores = append(t.scores, "")
			}
		}
	}
}

func (t *highScoresTask) Finish(m *Master) {
	hs := m.scores
	hs.busy = false
	if t.failed {
		hs.valid = false
	} else {
		hs.groupNames = t.groupNames
		hs.names = t.names
		hs.scores = t.scores
	}

	waiting := hs.waiting
	hs.waiting = nil
	for _, id := range waiting {
		c := m.registry.get(id)
		if c == nil || c.closing || c.role != RoleClient {
			continue
		}
		m.sendHighScores(c)
	}
}
