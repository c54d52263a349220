// Package clientpackets содержит входящие пакеты клиентов и игровых
// серверов. Каждый тип читает тело пакета (без opcode) через
// packet.Reader и проверяет границы полей.
package clientpackets

import (
	"fmt"

	"github.com/udisondev/masterserver/internal/constants"
	"github.com/udisondev/masterserver/internal/master/packet"
)

// ConnectRequest [0x01]: рукопожатие, первый пакет любой сессии.
//
// Format (после удаления opcode):
//
//	[cmProtocolVersion uint32]  // версия протокола клиент ↔ мастер
//	[csProtocolVersion uint32]  // версия протокола клиент ↔ игровой сервер
//	[clientBuild uint32]
//	[role byte]                 // начиная с протокола 6: constants.RoleWire*
//	[isServer bool]             // до протокола 6 вместо role
//	... серверный блок:
//	[botCount uint32]
//	[playerCount uint32]
//	[maxPlayers uint32]
//	[infoFlags uint32]
//	[levelName string]
//	[levelType string]
//	[name string]
//	[description string]
//	... клиентский блок:
//	[autodetect string]         // строка автоопределения джойстика
//	[name string]               // ник
//	[password string]
//	[flags byte]                // начиная с протокола 6, бит 0 = debug-сборка
//	[nonce uint64]              // player id
type ConnectRequest struct {
	CMProtocolVersion uint32
	CSProtocolVersion uint32
	ClientBuild       uint32
	Role              byte

	// Серверный блок.
	BotCount    uint32
	PlayerCount uint32
	MaxPlayers  uint32
	InfoFlags   uint32
	LevelName   string
	LevelType   string
	Name        string
	Description string

	// Клиентский блок.
	Autodetect  string
	Password    string
	DebugClient bool
	Nonce       uint64
}

// Parse парсит пакет ConnectRequest из body (без opcode).
// Версию протокола не отвергает, это делает диспетчер: для ответа
// BadVersion прочитанные поля всё равно нужны.
func (p *ConnectRequest) Parse(body []byte) error {
	r := packet.NewReader(body)

	cm, err := r.ReadInt()
	if err != nil {
		return fmt.Errorf("reading cmProtocolVersion: %w", err)
	}
	p.CMProtocolVersion = cm

	cs, err := r.ReadInt()
	if err != nil {
		return fmt.Errorf("reading csProtocolVersion: %w", err)
	}
	p.CSProtocolVersion = cs

	build, err := r.ReadInt()
	if err != nil {
		return fmt.Errorf("reading clientBuild: %w", err)
	}
	p.ClientBuild = build

	// Старые клиенты передают один флаг сервер/клиент, новые полный enum.
	if cm >= constants.MasterProtocolRoleEnum {
		role, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("reading role: %w", err)
		}
		if role > constants.RoleWireAnonymous {
			return fmt.Errorf("invalid role: %d", role)
		}
		p.Role = role
	} else {
		isServer, err := r.ReadBool()
		if err != nil {
			return fmt.Errorf("reading isServer: %w", err)
		}
		if isServer {
			p.Role = constants.RoleWireServer
		} else {
			p.Role = constants.RoleWireClient
		}
	}

	switch p.Role {
	case constants.RoleWireServer:
		return p.parseServerBlock(r)
	case constants.RoleWireClient:
		return p.parseClientBlock(r, cm)
	default:
		return nil // анонимному блок не положен
	}
}

func (p *ConnectRequest) parseServerBlock(r *packet.Reader) error {
	var err error

	if p.BotCount, err = r.ReadInt(); err != nil {
		return fmt.Errorf("reading botCount: %w", err)
	}
	if p.PlayerCount, err = r.ReadInt(); err != nil {
		return fmt.Errorf("reading playerCount: %w", err)
	}
	if p.MaxPlayers, err = r.ReadInt(); err != nil {
		return fmt.Errorf("reading maxPlayers: %w", err)
	}
	if p.InfoFlags, err = r.ReadInt(); err != nil {
		return fmt.Errorf("reading infoFlags: %w", err)
	}
	if p.LevelName, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading levelName: %w", err)
	}
	if p.LevelType, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading levelType: %w", err)
	}
	if p.Name, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading name: %w", err)
	}
	if p.Description, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading description: %w", err)
	}

	return nil
}

func (p *ConnectRequest) parseClientBlock(r *packet.Reader, cm uint32) error {
	var err error

	if p.Autodetect, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading autodetect: %w", err)
	}
	if p.Name, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading name: %w", err)
	}
	if p.Password, err = r.ReadString(); err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	if cm >= constants.MasterProtocolRoleEnum {
		flags, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("reading flags: %w", err)
		}
		p.DebugClient = flags&0x01 != 0
	}

	if p.Nonce, err = r.ReadLong(); err != nil {
		return fmt.Errorf("reading nonce: %w", err)
	}

	return nil
}
