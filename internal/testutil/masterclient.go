package testutil

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/master/packet"
	"github.com/udisondev/masterserver/internal/protocol"
)

// MasterClient упрощает написание integration тестов для мастер-сервера.
// Управляет подключением, кадрированием и рукопожатием, говорит текущей
// версией протокола.
type MasterClient struct {
	t        testing.TB
	conn     net.Conn
	readBuf  []byte
	writeBuf []byte

	// Данные приветствия после клиентского рукопожатия
	needUpgrade bool

	// Timeout для операций
	timeout time.Duration
}

// NewMasterClient создаёт MasterClient и подключается к мастер-серверу по
// указанному адресу. Рукопожатие не выполняет: caller выбирает роль через
// ConnectAsClient или ConnectAsServer.
// Использует t.Cleanup() для автоматического закрытия соединения.
func NewMasterClient(t testing.TB, addr string) (*MasterClient, error) {
	t.Helper()

	// Retry dial с экспоненциальным бэкофф + jitter: macOS TCP стек может не успевать
	// освободить порты при массовых подключениях
	var conn net.Conn
	var err error
	for attempt := range 10 {
		conn, err = net.DialTimeout("tcp", addr, 5*time.Second)
		if err == nil {
			break
		}
		if attempt < 9 {
			base := time.Duration(20<<min(attempt, 6)) * time.Millisecond // 20, 40, 80, ..., 1280ms
			jitter := time.Duration(rand.IntN(int(base/2)+1)) * time.Millisecond
			time.Sleep(base + jitter)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("dial master server: %w", err)
	}

	// SO_LINGER=0: немедленный RST вместо TIME_WAIT, предотвращает исчерпание эфемерных портов в тестах
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetLinger(0); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set linger: %w", err)
		}
	}

	client := &MasterClient{
		t:        t,
		conn:     conn,
		readBuf:  make([]byte, 4096),
		writeBuf: make([]byte, 4096),
		timeout:  5 * time.Second,
	}

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client, nil
}

// ConnectAsClient отправляет клиентское рукопожатие и читает совет об
// обновлении, который мастер шлёт каждому клиенту первым пакетом.
// Сообщение дня (если настроено) остаётся в сокете: его читает ReadMOTD.
func (c *MasterClient) ConnectAsClient(name string, nonce uint64) error {
	c.t.Helper()

	b := packet.AppendByte(nil, 0x01) // ConnectRequest
	b = packet.AppendInt(b, constants.MasterProtocolVersion)
	b = packet.AppendInt(b, 37)   // cs protocol
	b = packet.AppendInt(b, 1000) // client build
	b = packet.AppendByte(b, constants.RoleWireClient)
	b = packet.AppendString(b, "keyboard")
	b = packet.AppendString(b, name)
	b = packet.AppendString(b, "") // без пароля
	b = packet.AppendByte(b, 0)    // флаги
	b = packet.AppendLong(b, nonce)

	if err := c.WriteFrame(b); err != nil {
		return fmt.Errorf("send client handshake: %w", err)
	}

	payload, err := c.Expect(0x71) // UpgradeStatus
	if err != nil {
		return fmt.Errorf("read upgrade status: %w", err)
	}
	if len(payload) < 2 {
		return fmt.Errorf("upgrade status too short: %d", len(payload))
	}
	c.needUpgrade = payload[1] != 0

	return nil
}

// ConnectAsServer отправляет серверное рукопожатие. Мастер на него не
// отвечает: регистрация проверяется последующим запросом списка.
func (c *MasterClient) ConnectAsServer(name, levelName, levelType string, playerCount, maxPlayers uint32) error {
	c.t.Helper()

	b := packet.AppendByte(nil, 0x01) // ConnectRequest
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
	b = packet.AppendString(b, "integration test server")

	if err := c.WriteFrame(b); err != nil {
		return fmt.Errorf("send server handshake: %w", err)
	}
	return nil
}

// WriteFrame кадрирует payload заголовком длины и отправляет серверу.
func (c *MasterClient) WriteFrame(payload []byte) error {
	c.t.Helper()

	if len(payload) > len(c.writeBuf)-constants.PacketHeaderSize {
		return fmt.Errorf("payload too large: %d", len(payload))
	}
	copy(c.writeBuf[constants.PacketHeaderSize:], payload)

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := protocol.WritePacket(c.conn, c.writeBuf, len(payload)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame читает один пакет и возвращает копию payload без заголовка
// длины, чтобы прочитанные ранее кадры оставались валидными.
func (c *MasterClient) ReadFrame() ([]byte, error) {
	c.t.Helper()

	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	payload, err := protocol.ReadPacket(c.conn, c.readBuf)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

// Expect читает следующий пакет и проверяет его opcode. Пакет Disconnect
// разворачивается в ошибку с причиной, чтобы тест видел отказ сервера.
func (c *MasterClient) Expect(opcode byte) ([]byte, error) {
	c.t.Helper()

	payload, err := c.ReadFrame()
	if err != nil {
		return nil, err
	}
	if len(payload) < 1 {
		return nil, fmt.Errorf("empty frame")
	}
	if payload[0] == 0x02 && opcode != 0x02 { // Disconnect
		reason := byte(0)
		if len(payload) > 1 {
			reason = payload[1]
		}
		return nil, fmt.Errorf("server disconnected us, reason 0x%02X", reason)
	}
	if payload[0] != opcode {
		return nil, fmt.Errorf("expected opcode 0x%02X, got 0x%02X", opcode, payload[0])
	}
	return payload, nil
}

// ReadMOTD читает пакет SetMOTD (opcode 0x70) и возвращает имя мастера и
// текст сообщения дня.
func (c *MasterClient) ReadMOTD() (masterName, motd string, err error) {
	c.t.Helper()

	payload, err := c.Expect(0x70)
	if err != nil {
		return "", "", fmt.Errorf("read MOTD: %w", err)
	}

	r := packet.NewReader(payload[1:])
	if masterName, err = r.ReadString(); err != nil {
		return "", "", fmt.Errorf("reading master name: %w", err)
	}
	if motd, err = r.ReadString(); err != nil {
		return "", "", fmt.Errorf("reading motd: %w", err)
	}
	return masterName, motd, nil
}

// ReadDisconnect читает пакет Disconnect (opcode 0x02) и возвращает
// причину разрыва.
func (c *MasterClient) ReadDisconnect() (byte, error) {
	c.t.Helper()

	payload, err := c.Expect(0x02)
	if err != nil {
		return 0, fmt.Errorf("read disconnect: %w", err)
	}
	if len(payload) < 2 {
		return 0, fmt.Errorf("disconnect packet too short: %d", len(payload))
	}
	return payload[1], nil
}

// QueryServers отправляет запрос списка серверов с указанным queryID.
func (c *MasterClient) QueryServers(queryID uint32) error {
	c.t.Helper()

	b := packet.AppendByte(nil, 0x10) // QueryServers
	b = packet.AppendInt(b, queryID)
	return c.WriteFrame(b)
}

// ReadServerList собирает ответ на QueryServers: читает пакеты
// QueryServersResponse до пустого завершающего и возвращает все адреса.
func (c *MasterClient) ReadServerList(queryID uint32) ([]netip.AddrPort, error) {
	c.t.Helper()

	var addrs []netip.AddrPort
	for {
		payload, err := c.Expect(0x11) // QueryServersResponse
		if err != nil {
			return nil, fmt.Errorf("read server list: %w", err)
		}
		if len(payload) < 6 {
			return nil, fmt.Errorf("server list frame too short: %d", len(payload))
		}
		if got := binary.LittleEndian.Uint32(payload[1:5]); got != queryID {
			return nil, fmt.Errorf("server list queryID = %d, want %d", got, queryID)
		}

		count := int(payload[5])
		if count == 0 {
			return addrs, nil
		}

		r := packet.NewReader(payload[6:])
		for range count {
			addr, err := r.ReadAddress()
			if err != nil {
				return nil, fmt.Errorf("reading server address: %w", err)
			}
			addrs = append(addrs, addr)
		}
	}
}

// JoinGlobalChat отправляет запрос входа в глобальный чат и читает список
// его участников.
func (c *MasterClient) JoinGlobalChat() ([]string, error) {
	c.t.Helper()

	if err := c.WriteFrame([]byte{0x32}); err != nil {
		return nil, fmt.Errorf("send join chat: %w", err)
	}

	payload, err := c.Expect(0x36) // PlayersInGlobalChat
	if err != nil {
		return nil, fmt.Errorf("read chat roster: %w", err)
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("chat roster too short: %d", len(payload))
	}

	count := int(payload[1])
	names := make([]string, 0, count)
	r := packet.NewReader(payload[2:])
	for range count {
		name, err := r.ReadString()
		if err != nil {
			return nil, fmt.Errorf("reading roster name: %w", err)
		}
		names = append(names, name)
	}
	return names, nil
}

// LeaveGlobalChat отправляет запрос выхода из глобального чата.
func (c *MasterClient) LeaveGlobalChat() error {
	c.t.Helper()
	return c.WriteFrame([]byte{0x33})
}

// SendChat отправляет сообщение в чат. Команды начинаются с "/".
func (c *MasterClient) SendChat(message string) error {
	c.t.Helper()

	b := packet.AppendByte(nil, 0x30) // SendChat
	b = packet.AppendString(b, message)
	return c.WriteFrame(b)
}

// ReadChat читает пакет RelayedChat (opcode 0x31).
func (c *MasterClient) ReadChat() (sender string, private bool, message string, err error) {
	c.t.Helper()

	payload, err := c.Expect(0x31)
	if err != nil {
		return "", false, "", fmt.Errorf("read chat: %w", err)
	}

	r := packet.NewReader(payload[1:])
	if sender, err = r.ReadString(); err != nil {
		return "", false, "", fmt.Errorf("reading sender: %w", err)
	}
	if private, err = r.ReadBool(); err != nil {
		return "", false, "", fmt.Errorf("reading private flag: %w", err)
	}
	if message, err = r.ReadString(); err != nil {
		return "", false, "", fmt.Errorf("reading message: %w", err)
	}
	return sender, private, message, nil
}

// NeedUpgrade возвращает признак устаревшей сборки из приветствия.
func (c *MasterClient) NeedUpgrade() bool {
	return c.needUpgrade
}

// LocalAddrPort возвращает локальный адрес соединения. Под этим адресом
// мастер видит подключение и публикует его в каталоге серверов.
func (c *MasterClient) LocalAddrPort() netip.AddrPort {
	if tcp, ok := c.conn.LocalAddr().(*net.TCPAddr); ok {
		return tcp.AddrPort()
	}
	return netip.AddrPort{}
}

// Close закрывает соединение с сервером.
func (c *MasterClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
