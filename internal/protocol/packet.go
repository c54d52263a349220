package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/udisondev/masterserver/internal/constants"
)

// FramePacket stamps the length header for a payload already living at
// buf[constants.PacketHeaderSize : constants.PacketHeaderSize+payloadLen]
// and returns the framed packet as a subslice of buf.
func FramePacket(buf []byte, payloadLen int) []byte {
	totalLen := constants.PacketHeaderSize + payloadLen
	binary.LittleEndian.PutUint16(buf[:constants.PacketHeaderSize], uint16(totalLen))
	return buf[:totalLen]
}

// WritePacket frames and writes the packet to w.
// Precondition: payload lives at buf[constants.PacketHeaderSize : constants.PacketHeaderSize+payloadLen].
func WritePacket(w io.Writer, buf []byte, payloadLen int) error {
	needed := constants.PacketHeaderSize + payloadLen
	if len(buf) < needed {
		return fmt.Errorf("write packet: buffer too small (need %d, have %d)", needed, len(buf))
	}
	if payloadLen > int(^uint16(0))-constants.PacketHeaderSize {
		return fmt.Errorf("write packet: payload too large (%d)", payloadLen)
	}

	if _, err := w.Write(FramePacket(buf, payloadLen)); err != nil {
		return fmt.Errorf("writing packet: %w", err)
	}
	return nil
}

// ReadPacket reads one packet from r into buf.
// Returns a subslice of buf with the payload (without the length header).
func ReadPacket(r io.Reader, buf []byte) ([]byte, error) {
	var header [constants.PacketHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading packet header: %w", err)
	}

	totalLen := int(binary.LittleEndian.Uint16(header[:]))
	if totalLen < constants.PacketHeaderSize {
		return nil, fmt.Errorf("invalid packet length: %d", totalLen)
	}

	payloadLen := totalLen - constants.PacketHeaderSize
	if payloadLen == 0 {
		return nil, fmt.Errorf("empty packet")
	}

	if payloadLen > len(buf) {
		return nil, fmt.Errorf("packet payload %d exceeds buffer size %d", payloadLen, len(buf))
	}

	payload := buf[:payloadLen]
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading packet payload: %w", err)
	}

	return payload, nil
}
