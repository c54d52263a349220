package model

import (
	"testing"
)

func TestGameStats_PlayerWon_TeamGame(t *testing.T) {
	stats := GameStats{
		TeamGame: true,
		Teams: []TeamStats{
			{Name: "Red", Score: 10},
			{Name: "Blue", Score: 7},
		},
	}

	tests := []struct {
		name   string
		player PlayerStats
		want   bool
	}{
		{
			name:   "игрок победившей команды",
			player: PlayerStats{Name: "alice", TeamIndex: 0},
			want:   true,
		},
		{
			name:   "игрок проигравшей команды",
			player: PlayerStats{Name: "bob", TeamIndex: 1},
			want:   false,
		},
		{
			name:   "игрок вне команд",
			player: PlayerStats{Name: "ghost", TeamIndex: -1},
			want:   false,
		},
		{
			name:   "индекс за пределами списка команд",
			player: PlayerStats{Name: "weird", TeamIndex: 5},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stats.PlayerWon(tt.player)
			if got != tt.want {
				t.Errorf("PlayerWon(%q) = %v, want %v", tt.player.Name, got, tt.want)
			}
		})
	}
}

func TestGameStats_PlayerWon_TeamTie(t *testing.T) {
	// При равном счёте побеждают обе команды
	stats := GameStats{
		TeamGame: true,
		Teams: []TeamStats{
			{Name: "Red", Score: 5},
			{Name: "Blue", Score: 5},
		},
	}

	if !stats.PlayerWon(PlayerStats{TeamIndex: 0}) {
		t.Error("PlayerWon() = false for first tied team, want true")
	}
	if !stats.PlayerWon(PlayerStats{TeamIndex: 1}) {
		t.Error("PlayerWon() = false for second tied team, want true")
	}
}

func TestGameStats_PlayerWon_IndividualGame(t *testing.T) {
	stats := GameStats{
		TeamGame: false,
		Players: []PlayerStats{
			{Name: "alice", Points: 12},
			{Name: "bob", Points: 8},
			{Name: "carol", Points: 12},
		},
	}

	tests := []struct {
		name   string
		player PlayerStats
		want   bool
	}{
		{name: "лучший результат", player: stats.Players[0], want: true},
		{name: "проигравший", player: stats.Players[1], want: false},
		{name: "ничья на первом месте", player: stats.Players[2], want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stats.PlayerWon(tt.player)
			if got != tt.want {
				t.Errorf("PlayerWon(%q) = %v, want %v", tt.player.Name, got, tt.want)
			}
		})
	}
}
