package model

import "net/netip"

// GameStatsVersion задаёт текущую версию формата отчёта о завершённой игре.
// Сервер принимает версии от 1 до GameStatsVersion включительно.
const GameStatsVersion = 3

// GameStats represents a completed game report submitted by a game server.
type GameStats struct {
	Version uint32
	Valid   bool

	// Заполняются мастером по данным соединения, на проводе не передаются.
	ServerName string
	ServerAddr netip.AddrPort

	GameType  string
	LevelName string
	TeamGame  bool
	Duration  uint32 // секунды, передаётся начиная с версии 2

	Teams   []TeamStats
	Players []PlayerStats
}

// TeamStats holds the final score of a single team.
type TeamStats struct {
	Name  string
	Score int32
}

// PlayerStats holds per-player results within a game.
type PlayerStats struct {
	Name            string
	Nonce           uint64
	IsAuthenticated bool
	IsRobot         bool // передаётся начиная с версии 3
	TeamIndex       int32
	Points          int32
	Kills           uint16
	Deaths          uint16
	Suicides        uint16
	SwitchedTeams   bool // передаётся начиная с версии 3
}

// PlayerWon reports whether player p ended up on the winning side.
// В командной игре побеждает команда с максимальным счётом, иначе
// игрок с максимальным количеством очков. Ничья считается победой всех.
func (s *GameStats) PlayerWon(p PlayerStats) bool {
	if s.TeamGame {
		if p.TeamIndex < 0 || int(p.TeamIndex) >= len(s.Teams) {
			return false
		}
		score := s.Teams[p.TeamIndex].Score
		for _, t := range s.Teams {
			if t.Score > score {
				return false
			}
		}
		return true
	}

	for i := range s.Players {
		if s.Players[i].Points > p.Points {
			return false
		}
	}
	return true
}
