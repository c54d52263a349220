// Package serverpackets содержит исходящие пакеты мастер-сервера.
//
// Каждый пакет пишется в заранее выделенный буфер и возвращает число
// записанных байт. Буфер выдаёт вызывающий, обычно из пула.
package serverpackets

import (
	"encoding/binary"
	"net/netip"
)

func putShort(buf []byte, pos int, v uint16) int {
	binary.LittleEndian.PutUint16(buf[pos:], v)
	return pos + 2
}

func putInt(buf []byte, pos int, v uint32) int {
	binary.LittleEndian.PutUint32(buf[pos:], v)
	return pos + 4
}

func putLong(buf []byte, pos int, v uint64) int {
	binary.LittleEndian.PutUint64(buf[pos:], v)
	return pos + 8
}

// putString пишет длину строки (u16 LE) и байты UTF-8.
func putString(buf []byte, pos int, s string) int {
	pos = putShort(buf, pos, uint16(len(s)))
	pos += copy(buf[pos:], s)
	return pos
}

// putAddr пишет 4 байта IPv4 и порт (u16 LE). Адреса не из IPv4
// записываются нулями.
func putAddr(buf []byte, pos int, addr netip.AddrPort) int {
	a := addr.Addr()
	if a.Is4In6() {
		a = a.Unmap()
	}
	if a.Is4() {
		b := a.As4()
		pos += copy(buf[pos:], b[:])
	} else {
		pos += copy(buf[pos:], []byte{0, 0, 0, 0})
	}
	return putShort(buf, pos, addr.Port())
}

// putBlob пишет длину (u16 LE) и сырые байты.
func putBlob(buf []byte, pos int, b []byte) int {
	pos = putShort(buf, pos, uint16(len(b)))
	pos += copy(buf[pos:], b)
	return pos
}

func putBool(buf []byte, pos int, v bool) int {
	if v {
		buf[pos] = 1
	} else {
		buf[pos] = 0
	}
	return pos + 1
}
