package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/master/packet"
	"github.com/udisondev/masterserver/internal/model"
)

const (
	maxStatsTeams   = 32
	maxStatsPlayers = 128
)

// SendStatistics [0x40]: итоги завершённой игры от игрового сервера.
//
// Format (после удаления opcode):
//
//	[version uint32]        // версия структуры, не выше model.GameStatsVersion
//	[valid bool]
//	[gameType string]
//	[levelName string]
//	[teamGame bool]
//	[duration uint32]       // начиная с версии 2
//	[teamCount byte]
//	... для каждой команды:
//	[name string]
//	[score uint32]          // знаковое значение в дополнительном коде
//	[playerCount byte]
//	... для каждого игрока:
//	[name string]
//	[nonce uint64]
//	[isAuthenticated bool]
//	[isRobot bool]          // начиная с версии 3
//	[teamIndex uint32]      // знаковое значение, -1 вне команд
//	[points uint32]         // знаковое значение
//	[kills uint16]
//	[deaths uint16]
//	[suicides uint16]
//	[switchedTeams bool]    // начиная с версии 3
type SendStatistics struct {
	Stats model.GameStats
}

// Parse парсит пакет SendStatistics из body (без opcode).
func (p *SendStatistics) Parse(body []byte) error {
	r := packet.NewReader(body)
	return readGameStats(r, &p.Stats)
}

// readGameStats читает версионированную структуру GameStats.
// Поля ServerName и ServerAddr не передаются, их проставляет мастер.
func readGameStats(r *packet.Reader, st *model.GameStats) error {
	version, err := r.ReadInt()
	if err != nil {
		return fmt.Errorf("reading version: %w", err)
	}
	if version == 0 || version > model.GameStatsVersion {
		return fmt.Errorf("unsupported game stats version: %d", version)
	}
	st.Version = version

	if st.Valid, err = r.ReadBool(); err != nil {
		return fmt.Errorf("reading valid: %w", err)
	}
	if st.GameType, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading gameType: %w", err)
	}
	if st.LevelName, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading levelName: %w", err)
	}
	if st.TeamGame, err = r.ReadBool(); err != nil {
		return fmt.Errorf("reading teamGame: %w", err)
	}

	if version >= 2 {
		if st.Duration, err = r.ReadInt(); err != nil {
			return fmt.Errorf("reading duration: %w", err)
		}
	}

	teamCount, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("reading team count: %w", err)
	}
	if int(teamCount) > maxStatsTeams {
		return fmt.Errorf("too many teams: %d", teamCount)
	}
	st.Teams = make([]model.TeamStats, 0, teamCount)
	for range teamCount {
		var t model.TeamStats
		if t.Name, err = r.ReadString(); err != nil {
			return fmt.Errorf("reading team name: %w", err)
		}
		score, err := r.ReadInt()
		if err != nil {
			return fmt.Errorf("reading team score: %w", err)
		}
		t.Score = int32(score)
		st.Teams = append(st.Teams, t)
	}

	playerCount, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("reading player count: %w", err)
	}
	if int(playerCount) > maxStatsPlayers {
		return fmt.Errorf("too many players: %d", playerCount)
	}
	st.Players = make([]model.PlayerStats, 0, playerCount)
	for range playerCount {
		var pl model.PlayerStats
		if pl.Name, err = r.ReadString(); err != nil {
			return fmt.Errorf("reading player name: %w", err)
		}
		if pl.Nonce, err = r.ReadLong(); err != nil {
			return fmt.Errorf("reading player nonce: %w", err)
		}
		if pl.IsAuthenticated, err = r.ReadBool(); err != nil {
			return fmt.Errorf("reading player isAuthenticated: %w", err)
		}
		if version >= 3 {
			if pl.IsRobot, err = r.ReadBool(); err != nil {
				return fmt.Errorf("reading player isRobot: %w", err)
			}
		}
		teamIndex, err := r.ReadInt()
		if err != nil {
			return fmt.Errorf("reading player teamIndex: %w", err)
		}
		pl.TeamIndex = int32(teamIndex)
		points, err := r.ReadInt()
		if err != nil {
			return fmt.Errorf("reading player points: %w", err)
		}
		pl.Points = int32(points)
		if pl.Kills, err = r.ReadShort(); err != nil {
			return fmt.Errorf("reading player kills: %w", err)
		}
		if pl.Deaths, err = r.ReadShort(); err != nil {
			return fmt.Errorf("reading player deaths: %w", err)
		}
		if pl.Suicides, err = r.ReadShort(); err != nil {
			return fmt.Errorf("reading player suicides: %w", err)
		}
		if version >= 3 {
			if pl.SwitchedTeams, err = r.ReadBool(); err != nil {
				return fmt.Errorf("reading player switchedTeams: %w", err)
			}
		}
		st.Players = append(st.Players, pl)
	}

	return nil
}
