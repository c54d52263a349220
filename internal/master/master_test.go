package master

import (
	"context"
	"net/netip"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/udisondev/masterserver/internal/config"
	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/db"
	"github.com/udisondev/masterserver/internal/master/packet"
	"github.com/udisondev/masterserver/internal/model"
)

// stubStats реализует db.StatsStore через поля-функции: тест задаёт
// только нужные ему вызовы.
type stubStats struct {
	insertGameStats func(ctx context.Context, stats model.GameStats) error
	saveAchievement func(ctx context.Context, player string, id uint8) error
	insertLevelInfo func(ctx context.Context, name, levelType string, minPlayers, maxPlayers int) error
	playerProfile   func(ctx context.Context, player string) (db.PlayerProfile, error)
	highScores      func(ctx context.Context, scoresPerGroup int) ([]db.HighScoreGroup, error)
}

func (s *stubStats) InsertGameStats(ctx context.Context, stats model.GameStats) error {
	if s.insertGameStats != nil {
		return s.insertGameStats(ctx, stats)
	}
	return nil
}

func (s *stubStats) SaveAchievement(ctx context.Context, player string, id uint8) error {
	if s.saveAchievement != nil {
		return s.saveAchievement(ctx, player, id)
	}
	return nil
}

func (s *stubStats) InsertLevelInfo(ctx context.Context, name, levelType string, minPlayers, maxPlayers int) error {
	if s.insertLevelInfo != nil {
		return s.insertLevelInfo(ctx, name, levelType, minPlayers, maxPlayers)
	}
	return nil
}

func (s *stubStats) PlayerProfile(ctx context.Context, player string) (db.PlayerProfile, error) {
	if s.playerProfile != nil {
		return s.playerProfile(ctx, player)
	}
	return db.PlayerProfile{}, nil
}

func (s *stubStats) HighScores(ctx context.Context, scoresPerGroup int) ([]db.HighScoreGroup, error) {
	if s.highScores != nil {
		return s.highScores(ctx, scoresPerGroup)
	}
	return nil, nil
}

func (s *stubStats) Close() error { return nil }

// stubVerifier реализует db.CredentialVerifier.
type stubVerifier struct {
	verify func(ctx context.Context, name, password string) (db.AuthResult, error)
}

func (v *stubVerifier) Verify(ctx context.Context, name, password string) (db.AuthResult, error) {
	if v.verify != nil {
		return v.verify(ctx, name, password)
	}
	return db.AuthResult{Status: db.AuthUnknownUser}, nil
}

func testConfig() *config.Master {
	cfg := config.DefaultMaster()
	cfg.MasterName = "TestMaster"
	cfg.StatusFile = ""
	cfg.LatestReleasedCSProtocol = 37
	cfg.LatestReleasedBuild = 1000
	cfg.MOTD = config.MOTDConfig{Default: "welcome"}
	return &cfg
}

// newTestMaster собирает мастер с фиктивными часами, без слушателя и
// фоновых горутин: обработка пакетов и тики вызываются напрямую.
func newTestMaster(t *testing.T, stats db.StatsStore, verifier db.CredentialVerifier) (*Master, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	m := NewMaster(testConfig(), "", stats, verifier, WithClock(clock))
	return m, clock
}

func testAddr(octet byte, port uint16) netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4([4]byte{192, 168, 1, octet}), port)
}

// newTestConn регистрирует подключение в цикле, не запуская горутины
// ввода-вывода: очередь отправки копит кадры для проверок.
func newTestConn(m *Master, addr netip.AddrPort) *Conn {
	c := newConn(m.nextID.Add(1), nil, addr, m.sendPool, constants.SendQueueSize)
	m.handleEvent(connEvent{kind: eventOpened, conn: c})
	return c
}

// serverHandshake собирает пакет ConnectRequest игрового сервера.
func serverHandshake(name, levelName, levelType string, playerCount, maxPlayers uint32) []byte {
	b := packet.AppendByte(nil, OpcodeConnectRequest)
	b = packet.AppendInt(b, constants.MasterProtocolVersion)
	b = packet.AppendInt(b, 37)
	b = packet.AppendInt(b, 1000)
	b = packet.AppendByte(b, constants.RoleWireServer)
	b = packet.AppendInt(b, 0) // botCount
	b = packet.AppendInt(b, playerCount)
	b = packet.AppendInt(b, maxPlayers)
	b = packet.AppendInt(b, 0) // infoFlags
	b = packet.AppendString(b, levelName)
	b = packet.AppendString(b, levelType)
	b = packet.AppendString(b, name)
	b = packet.AppendString(b, "test server")
	return b
}

type clientOpts struct {
	cm       uint32
	cs       uint32
	build    uint32
	name     string
	password string
	nonce    uint64
	debug    bool
}

// clientHandshake собирает пакет ConnectRequest клиента. Нулевые версии
// заменяются текущими.
func clientHandshake(o clientOpts) []byte {
	if o.cm == 0 {
		o.cm = constants.MasterProtocolVersion
	}
	if o.cs == 0 {
		o.cs = 37
	}
	if o.build == 0 {
		o.build = 1000
	}

	b := packet.AppendByte(nil, OpcodeConnectRequest)
	b = packet.AppendInt(b, o.cm)
	b = packet.AppendInt(b, o.cs)
	b = packet.AppendInt(b, o.build)
	if o.cm >= constants.MasterProtocolRoleEnum {
		b = packet.AppendByte(b, constants.RoleWireClient)
	} else {
		b = packet.AppendBool(b, false)
	}
	b = packet.AppendString(b, "keyboard")
	b = packet.AppendString(b, o.name)
	b = packet.AppendString(b, o.password)
	if o.cm >= constants.MasterProtocolRoleEnum {
		var flags byte
		if o.debug {
			flags |= 0x01
		}
		b = packet.AppendByte(b, flags)
	}
	b = packet.AppendLong(b, o.nonce)
	return b
}

// connectServer проводит серверное рукопожатие и возвращает подключение.
func connectServer(t *testing.T, m *Master, addr netip.AddrPort, name string) *Conn {
	t.Helper()
	c := newTestConn(m, addr)
	m.handlePacket(c, serverHandshake(name, "Arena", "Bitmatch", 2, 8))
	if c.role != RoleServer {
		t.Fatalf("server handshake: role = %v, want %v", c.role, RoleServer)
	}
	return c
}

// connectClient проводит клиентское рукопожатие и отбрасывает
// приветственные пакеты.
func connectClient(t *testing.T, m *Master, addr netip.AddrPort, o clientOpts) *Conn {
	t.Helper()
	c := newTestConn(m, addr)
	m.handlePacket(c, clientHandshake(o))
	if c.role != RoleClient {
		t.Fatalf("client handshake: role = %v, want %v", c.role, RoleClient)
	}
	drainFrames(c)
	return c
}

// drainFrames забирает накопленные пакеты из очереди отправки, снимая
// транспортный заголовок.
func drainFrames(c *Conn) [][]byte {
	var out [][]byte
	for {
		select {
		case pkt, ok := <-c.sendCh:
			if !ok {
				return out
			}
			out = append(out, pkt[constants.PacketHeaderSize:])
		default:
			return out
		}
	}
}

// findFrame возвращает первый пакет с данным opcode либо nil.
func findFrame(frames [][]byte, opcode byte) []byte {
	for _, f := range frames {
		if len(f) > 0 && f[0] == opcode {
			return f
		}
	}
	return nil
}

func countFrames(frames [][]byte, opcode byte) int {
	n := 0
	for _, f := range frames {
		if len(f) > 0 && f[0] == opcode {
			n++
		}
	}
	return n
}

// pumpTasks синхронно выполняет все задачи, стоящие в очереди.
func pumpTasks(m *Master) {
	for {
		select {
		case t := <-m.tasks.runCh:
			t.Run(context.Background())
			t.Finish(m)
		default:
			return
		}
	}
}

// readString читает строку формата длина+байты по смещению pos.
// Возвращает строку и следующую позицию.
func readString(t *testing.T, f []byte, pos int) (string, int) {
	t.Helper()
	r := packet.NewReader(f[pos:])
	s, err := r.ReadString()
	if err != nil {
		t.Fatalf("reading string at %d: %v", pos, err)
	}
	return s, pos + 2 + len(s)
}
