package integration

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/udisondev/masterserver/internal/config"
	"github.com/udisondev/masterserver/internal/master"
	"github.com/udisondev/masterserver/internal/testutil"
)

// MasterServerSuite тестирует мастер-сервер с реальными TCP соединениями:
// рукопожатие, каталог серверов, чат и конкурентные подключения проходят
// через настоящий listener и кадрирование, а не через прямые вызовы.
type MasterServerSuite struct {
	suite.Suite
	master *master.Master
	cfg    config.Master
	addr   string // адрес сервера (listener.Addr().String())
}

// SetupSuite запускает мастер на случайном порту.
func (s *MasterServerSuite) SetupSuite() {
	s.cfg = config.DefaultMaster()
	s.cfg.MasterName = "IntegrationMaster"
	s.cfg.StatusFile = ""
	s.cfg.MOTD = config.MOTDConfig{Default: "welcome to the integration master"}
	s.cfg.LatestReleasedCSProtocol = 37
	s.cfg.LatestReleasedBuild = 1000

	// Без хранилища статистики и форума: тесты каталога и чата в них не нуждаются
	s.master = master.NewMaster(&s.cfg, "", nil, nil)

	listener, addr := testutil.ListenTCP(s.T())
	s.addr = addr

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	s.T().Cleanup(cancel)
	s.T().Cleanup(func() {
		_ = s.master.Close()
	})

	go func() {
		if err := s.master.Serve(ctx, listener); err != nil && err != context.Canceled {
			s.T().Logf("master server error: %v", err)
		}
	}()

	if err := testutil.WaitForTCPReady(s.addr, 5*time.Second); err != nil {
		s.T().Fatalf("master server failed to start: %v", err)
	}
}

// TestClientConnection тестирует рукопожатие клиента и приветственные пакеты.
func (s *MasterServerSuite) TestClientConnection() {
	client, err := testutil.NewMasterClient(s.T(), s.addr)
	s.Require().NoError(err, "failed to create master client")
	defer client.Close()

	err = client.ConnectAsClient("itest_alice", 0xA11CE)
	s.Require().NoError(err, "client handshake should succeed")

	// Клиент собран на актуальной версии, обновление не нужно
	s.False(client.NeedUpgrade(), "up-to-date client should not be told to upgrade")

	masterName, motd, err := client.ReadMOTD()
	s.Require().NoError(err, "failed to read MOTD")
	s.Equal("IntegrationMaster", masterName, "MOTD should carry the master name")
	s.Equal("welcome to the integration master", motd)
}

// TestServerDirectory тестирует регистрацию игрового сервера и выдачу
// каталога клиенту.
func (s *MasterServerSuite) TestServerDirectory() {
	gameServer, err := testutil.NewMasterClient(s.T(), s.addr)
	s.Require().NoError(err)
	defer gameServer.Close()

	err = gameServer.ConnectAsServer("itest_arena", "Canyon", "CTF", 4, 16)
	s.Require().NoError(err, "server handshake should succeed")
	wantAddr := gameServer.LocalAddrPort()

	player, err := testutil.NewMasterClient(s.T(), s.addr)
	s.Require().NoError(err)
	defer player.Close()

	err = player.ConnectAsClient("itest_directory", 0xD1)
	s.Require().NoError(err)
	_, _, err = player.ReadMOTD()
	s.Require().NoError(err)

	// Рукопожатие сервера не подтверждается пакетом, поэтому опрашиваем
	// каталог до появления адреса
	var queryID uint32 = 1000
	testutil.WaitForCleanup(s.T(), func() bool {
		queryID++
		if err := player.QueryServers(queryID); err != nil {
			return false
		}
		addrs, err := player.ReadServerList(queryID)
		if err != nil {
			return false
		}
		return slices.Contains(addrs, wantAddr)
	}, 5*time.Second)
}

// TestGlobalChat тестирует вход в чат, широковещательный relay и личные
// сообщения между двумя живыми соединениями.
func (s *MasterServerSuite) TestGlobalChat() {
	bob, err := testutil.NewMasterClient(s.T(), s.addr)
	s.Require().NoError(err)
	defer bob.Close()
	err = bob.ConnectAsClient("itest_bob", 0xB0B)
	s.Require().NoError(err)
	_, _, err = bob.ReadMOTD()
	s.Require().NoError(err)

	_, err = bob.JoinGlobalChat()
	s.Require().NoError(err, "bob should join global chat")

	carol, err := testutil.NewMasterClient(s.T(), s.addr)
	s.Require().NoError(err)
	defer carol.Close()
	err = carol.ConnectAsClient("itest_carol", 0xCA401)
	s.Require().NoError(err)
	_, _, err = carol.ReadMOTD()
	s.Require().NoError(err)

	roster, err := carol.JoinGlobalChat()
	s.Require().NoError(err, "carol should join global chat")
	s.Contains(roster, "itest_bob", "roster should list the earlier member")

	// bob получает уведомление о входе carol
	joined, err := bob.Expect(0x34) // PlayerJoinedGlobalChat
	s.Require().NoError(err, "bob should see carol join")
	s.Contains(string(joined), "itest_carol")

	// Широковещательное сообщение доходит до carol с именем отправителя
	err = bob.SendChat("hello over tcp")
	s.Require().NoError(err)

	sender, private, message, err := carol.ReadChat()
	s.Require().NoError(err, "carol should receive the relayed chat")
	s.Equal("itest_bob", sender)
	s.False(private)
	s.Equal("hello over tcp", message)

	// Личное сообщение доставляется только адресату
	err = bob.SendChat("/pm itest_carol ping")
	s.Require().NoError(err)

	sender, private, message, err = carol.ReadChat()
	s.Require().NoError(err, "carol should receive the private message")
	s.Equal("itest_bob", sender)
	s.True(private, "message should be marked private")
	s.Equal("ping", message)
}

// TestLeaveChatDebounce тестирует отложенное уведомление об уходе из чата:
// мгновенного пакета нет, но в пределах секунды остальные его получают.
func (s *MasterServerSuite) TestLeaveChatDebounce() {
	bob, err := testutil.NewMasterClient(s.T(), s.addr)
	s.Require().NoError(err)
	defer bob.Close()
	err = bob.ConnectAsClient("itest_stayer", 0x57A)
	s.Require().NoError(err)
	_, _, err = bob.ReadMOTD()
	s.Require().NoError(err)
	_, err = bob.JoinGlobalChat()
	s.Require().NoError(err)

	carol, err := testutil.NewMasterClient(s.T(), s.addr)
	s.Require().NoError(err)
	defer carol.Close()
	err = carol.ConnectAsClient("itest_leaver", 0x1EA)
	s.Require().NoError(err)
	_, _, err = carol.ReadMOTD()
	s.Require().NoError(err)
	_, err = carol.JoinGlobalChat()
	s.Require().NoError(err)

	joined, err := bob.Expect(0x34) // PlayerJoinedGlobalChat
	s.Require().NoError(err)
	s.Contains(string(joined), "itest_leaver")

	err = carol.LeaveGlobalChat()
	s.Require().NoError(err)

	// Уход дебаунсится, уведомление приходит после паузы тиком цикла
	left, err := bob.Expect(0x35) // PlayerLeftGlobalChat
	s.Require().NoError(err, "bob should eventually see carol leave")
	s.Contains(string(left), "itest_leaver")
}

// TestDuplicateNonceRejected тестирует отказ второму клиенту с занятым
// player id.
func (s *MasterServerSuite) TestDuplicateNonceRejected() {
	first, err := testutil.NewMasterClient(s.T(), s.addr)
	s.Require().NoError(err)
	defer first.Close()
	err = first.ConnectAsClient("itest_owner", 0xD0D0)
	s.Require().NoError(err)

	second, err := testutil.NewMasterClient(s.T(), s.addr)
	s.Require().NoError(err)
	defer second.Close()

	err = second.ConnectAsClient("itest_impostor", 0xD0D0)
	s.Require().Error(err, "duplicate player id should be rejected")
	s.Contains(err.Error(), "reason 0x02", "should be rejected as DuplicateID")
}

// TestConcurrentClients тестирует одновременное рукопожатие множества
// клиентов.
func (s *MasterServerSuite) TestConcurrentClients() {
	const numClients = 20

	type result struct {
		id      int
		success bool
		err     error
	}

	results := make(chan result, numClients)
	var wg sync.WaitGroup

	for i := range numClients {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			res := result{id: id, success: false}

			client, err := testutil.NewMasterClient(s.T(), s.addr)
			if err != nil {
				res.err = fmt.Errorf("failed to create: %w", err)
				results <- res
				return
			}
			defer client.Close()

			name := fmt.Sprintf("itest_concurrent_%d", id)
			if err := client.ConnectAsClient(name, 0xC000+uint64(id)); err != nil {
				res.err = fmt.Errorf("ConnectAsClient: %w", err)
				results <- res
				return
			}

			if _, _, err := client.ReadMOTD(); err != nil {
				res.err = fmt.Errorf("ReadMOTD: %w", err)
				results <- res
				return
			}

			res.success = true
			results <- res
		}(i)
	}

	wg.Wait()
	close(results)

	successCount := 0
	for res := range results {
		if !res.success {
			s.T().Logf("client %d failed: %v", res.id, res.err)
		} else {
			successCount++
		}
	}

	s.Equal(numClients, successCount, "all concurrent handshakes should succeed")
}

// TestClientDisconnectDuringHandshake тестирует обрыв сразу после
// рукопожатия: сервер продолжает принимать новые подключения.
func (s *MasterServerSuite) TestClientDisconnectDuringHandshake() {
	client, err := testutil.NewMasterClient(s.T(), s.addr)
	s.Require().NoError(err)

	// Серверное рукопожатие не ждёт ответа, обрываем сразу после отправки
	err = client.ConnectAsServer("itest_vanishing", "Arena", "Bitmatch", 0, 8)
	s.Require().NoError(err)
	client.Close()

	testutil.WaitForCleanup(s.T(), func() bool {
		probe, err := testutil.NewMasterClient(s.T(), s.addr)
		if err != nil {
			return false
		}
		defer probe.Close()
		return probe.ConnectAsClient("itest_probe", 0x9500BE) == nil
	}, 5*time.Second)
}

// TestMasterServerSuite запускает MasterServerSuite.
func TestMasterServerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	suite.Run(t, new(MasterServerSuite))
}
