package packet

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"github.com/udisondev/masterserver/internal/constants"
)

// Reader предоставляет методы для чтения данных из пакета master-протокола.
// Использует Little-Endian byte order для всех многобайтовых значений.
type Reader struct {
	data []byte
	pos  int
}

// NewReader создаёт новый Reader для чтения пакета.
func NewReader(data []byte) *Reader {
	return &Reader{
		data: data,
		pos:  0,
	}
}

// ReadByte читает 1 байт.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadByte: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool читает 1 байт и трактует любое ненулевое значение как true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, fmt.Errorf("ReadBool: %w", err)
	}
	return b != 0, nil
}

// ReadShort читает uint16 (2 байта, LE).
func (r *Reader) ReadShort() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("ReadShort: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	val := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return val, nil
}

// ReadInt читает uint32 (4 байта, LE).
func (r *Reader) ReadInt() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadInt: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	val := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return val, nil
}

// ReadLong читает uint64 (8 байт, LE).
func (r *Reader) ReadLong() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("ReadLong: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	val := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return val, nil
}

// ReadString читает строку: длина uint16 (LE), затем байты UTF-8.
// Длина ограничена constants.MaxStringLength.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadShort()
	if err != nil {
		return "", fmt.Errorf("ReadString: %w", err)
	}
	if int(n) > constants.MaxStringLength {
		return "", fmt.Errorf("ReadString: length %d exceeds limit %d", n, constants.MaxStringLength)
	}
	if r.pos+int(n) > len(r.data) {
		return "", fmt.Errorf("ReadString: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadAddress читает IPv4-адрес (4 байта) и порт (uint16, LE).
func (r *Reader) ReadAddress() (netip.AddrPort, error) {
	if r.pos+6 > len(r.data) {
		return netip.AddrPort{}, fmt.Errorf("ReadAddress: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	var ip [4]byte
	copy(ip[:], r.data[r.pos:r.pos+4])
	port := binary.LittleEndian.Uint16(r.data[r.pos+4:])
	r.pos += 6
	return netip.AddrPortFrom(netip.AddrFrom4(ip), port), nil
}

// ReadBytes читает n байт.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative count %d", n)
	}
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}

	bytes := make([]byte, n)
	copy(bytes, r.data[r.pos:r.pos+n])
	r.pos += n
	return bytes, nil
}

// ReadBlob читает бинарный блок: длина uint16 (LE), затем байты.
// Длина ограничена constants.MaxBlobLength.
func (r *Reader) ReadBlob() ([]byte, error) {
	n, err := r.ReadShort()
	if err != nil {
		return nil, fmt.Errorf("ReadBlob: %w", err)
	}
	if int(n) > constants.MaxBlobLength {
		return nil, fmt.Errorf("ReadBlob: length %d exceeds limit %d", n, constants.MaxBlobLength)
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, fmt.Errorf("ReadBlob: %w", err)
	}
	return b, nil
}

// Remaining возвращает количество непрочитанных байт.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position возвращает текущую позицию чтения.
func (r *Reader) Position() int {
	return r.pos
}
