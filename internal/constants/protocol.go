package constants

// Master Server Protocol Constants
//
// This file contains all wire-level constants for the master↔client and
// master↔gameserver protocol. The master protocol generation gates message
// layout (role enum, debug flag byte, games-played field); the CS protocol
// generation is opaque to the master and only used for directory filtering.

// Protocol Generation Constants
const (
	// MasterProtocolVersion is the newest master protocol generation this
	// build speaks. Handshakes above it are rejected with BadVersion.
	MasterProtocolVersion = 8

	// MinMasterProtocolVersion is the oldest accepted generation.
	MinMasterProtocolVersion = 4

	// MasterProtocolRoleEnum is the generation that replaced the
	// isGameServer flag with a role enum in ConnectRequest.
	MasterProtocolRoleEnum = 6

	// MasterProtocolGamesPlayed is the generation that added the
	// games-played counter to SetAuthenticated (the _019 layout).
	MasterProtocolGamesPlayed = 7

	// AncientCSProtocol is the newest client↔server generation that still
	// requires a synchronous authentication answer during the handshake.
	AncientCSProtocol = 35
)

// Connection Role Wire Values (ConnectRequest, master protocol >= 6)
const (
	RoleWireClient    byte = 0
	RoleWireServer    byte = 1
	RoleWireAnonymous byte = 2
)

// Directory Constants
const (
	// IPMessageAddressCount is the maximum number of addresses carried by
	// one QueryServersResponse batch.
	IPMessageAddressCount = 30

	// BadgeCount is the size of the achievement bitset. Achievement ids
	// at or above it are rejected.
	BadgeCount = 32
)

// Authentication Status Wire Values (SetAuthenticated / PlayerAuthenticated)
const (
	AuthWireAuthenticatedName   byte = 0
	AuthWireUnauthenticatedName byte = 1
	AuthWireFailed              byte = 2
)

// Disconnect Reason Wire Values (Disconnect packet)
const (
	DisconnectNone            byte = 0
	DisconnectBadVersion      byte = 1
	DisconnectDuplicateID     byte = 2
	DisconnectBadLogin        byte = 3
	DisconnectInvalidUsername byte = 4
	DisconnectFloodControl    byte = 5
	DisconnectShutdown        byte = 6
)

// Packet Structure Constants
const (
	// PacketHeaderSize is the packet length header size (2 bytes, little-endian uint16)
	PacketHeaderSize = 2

	// MaxStringLength is the maximum byte length of a wire string.
	MaxStringLength = 1024

	// MaxBlobLength is the maximum byte length of an opaque payload
	// (rendezvous params, arranged-connection data).
	MaxBlobLength = 512
)

// Buffer Pool Size Constants
const (
	// DefaultSendBufSize is the default send buffer size for master connections
	DefaultSendBufSize = 2048

	// DefaultReadBufSize is the default read buffer size for master connections.
	// Sized for the largest inbound packet (a SendStatistics blob).
	DefaultReadBufSize = 4096

	// SendQueueSize is the per-connection async write queue depth
	SendQueueSize = 256
)

// Server Default Constants
const (
	// DefaultPort is the default master server listen port
	DefaultPort = 25955

	// DefaultName is the display name assigned to connections that supply
	// a blank one
	DefaultName = "ChumpChange"
)
