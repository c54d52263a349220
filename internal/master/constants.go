package master

import "time"

// NOTE: Protocol version and wire-level limits (MasterProtocolVersion, PacketHeaderSize, etc.) live in internal/constants

// Client/GameServer→Master packet opcodes
const (
	OpcodeConnectRequest             = 0x01
	OpcodeQueryServers               = 0x10
	OpcodeRequestArrangedConnection  = 0x12
	OpcodeAcceptArrangedConnection   = 0x14
	OpcodeRejectArrangedConnection   = 0x15
	OpcodeUpdateServerStatus         = 0x20
	OpcodeChangeName                 = 0x21
	OpcodeServerDescription          = 0x22
	OpcodeSendChat                   = 0x30
	OpcodeJoinGlobalChat             = 0x32
	OpcodeLeaveGlobalChat            = 0x33
	OpcodeSendStatistics             = 0x40
	OpcodeSendAchievement            = 0x41
	OpcodeSendLevelInfo              = 0x42
	OpcodeRequestHighScores          = 0x50
	OpcodeRequestAuthentication      = 0x60
)

// Master→Client/GameServer packet opcodes
const (
	OpcodeDisconnect                        = 0x02
	OpcodeQueryServersResponse              = 0x11
	OpcodeClientRequestedArrangedConnection = 0x13
	OpcodeArrangedConnectionAccepted        = 0x16
	OpcodeArrangedConnectionRejected        = 0x17
	OpcodeRelayedChat                       = 0x31
	OpcodePlayerJoinedGlobalChat            = 0x34
	OpcodePlayerLeftGlobalChat              = 0x35
	OpcodePlayersInGlobalChat               = 0x36
	OpcodeSendHighScores                    = 0x51
	OpcodePlayerAuthenticated               = 0x61
	OpcodePlayerAuthenticated019            = 0x62
	OpcodeSetAuthenticated                  = 0x63
	OpcodeSetAuthenticated019               = 0x64
	OpcodeSetMOTD                           = 0x70
	OpcodeUpgradeStatus                     = 0x71
)

// Тайминги протокола. Значения в миллисекундах повторяют поведение
// эталонного мастер-сервера, от них зависят клиенты.
const (
	// Минимальные интервалы между дорогими запросами с одного соединения.
	floodDeltaRendezvous   = 2000 * time.Millisecond
	floodDeltaServerStatus = 4000 * time.Millisecond
	floodDeltaStats        = 6000 * time.Millisecond

	// Сколько нарушений интервала допускается до отключения.
	maxStrikes = 3

	// Время жизни неподтверждённого запроса на соединение клиент-сервер.
	connectRequestTimeout = 5000 * time.Millisecond

	// Задержка перед рассылкой ухода из глобального чата. Гасит
	// мгновенный leave/join при переходе между экранами клиента.
	leaveChatGrace = 1000 * time.Millisecond

	// Минимальный интервал перезаписи JSON-статуса на диске.
	rewriteTime = 5000 * time.Millisecond

	// Период перечитывания конфигурации.
	configRereadInterval = 5000 * time.Millisecond

	// Время жизни кэша таблицы рекордов.
	highScoreRefreshTime = 2 * 60 * 1000 * time.Millisecond

	// Период служебного тика событийного цикла.
	tickInterval = 100 * time.Millisecond

	// Ёмкость очереди фоновых задач (БД, форум).
	taskQueueSize = 32

	// Сколько строк отдаётся в каждой группе таблицы рекордов.
	defaultScoresPerGroup = 3
)
