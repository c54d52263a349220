package packet

import (
	"encoding/binary"
	"net/netip"
)

// Append-хелперы собирают тело пакета master-протокола в слайс.
// Формат зеркален методам Reader: LE byte order, строки с префиксом длины.

// AppendByte добавляет 1 байт.
func AppendByte(b []byte, v byte) []byte {
	return append(b, v)
}

// AppendBool добавляет bool как 1 байт (0 или 1).
func AppendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}

// AppendShort добавляет uint16 (2 байта, LE).
func AppendShort(b []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(b, v)
}

// AppendInt добавляет uint32 (4 байта, LE).
func AppendInt(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// AppendLong добавляет uint64 (8 байт, LE).
func AppendLong(b []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, v)
}

// AppendString добавляет строку: длина uint16 (LE) + байты UTF-8.
func AppendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(len(s)))
	return append(b, s...)
}

// AppendAddress добавляет IPv4-адрес (4 байта) и порт (uint16, LE).
// Не-IPv4 адрес кодируется как 0.0.0.0.
func AppendAddress(b []byte, addr netip.AddrPort) []byte {
	ip := addr.Addr()
	if ip.Is4In6() {
		ip = ip.Unmap()
	}
	if ip.Is4() {
		a4 := ip.As4()
		b = append(b, a4[:]...)
	} else {
		b = append(b, 0, 0, 0, 0)
	}
	return binary.LittleEndian.AppendUint16(b, addr.Port())
}

// AppendBlob добавляет бинарный блок: длина uint16 (LE) + байты.
func AppendBlob(b []byte, p []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(len(p)))
	return append(b, p...)
}
