package master

import (
	"fmt"
	"testing"

	"github.com/udisondev/masterserver/internal/constants"
)

// BenchmarkBytePool_GetPut — базовый цикл Get/Put на размере исходящего буфера
func BenchmarkBytePool_GetPut(b *testing.B) {
	b.ReportAllocs()

	pool := NewBytePool(constants.DefaultSendBufSize)

	b.ResetTimer()
	for range b.N {
		buf := pool.Get(64)
		pool.Put(buf)
	}
}

// BenchmarkBytePool_PacketSizes — типичные размеры пакетов мастера:
// служебные ответы, пачка адресов каталога, таблица рекордов
func BenchmarkBytePool_PacketSizes(b *testing.B) {
	sizes := []int{16, 64, 256, 1024, constants.DefaultSendBufSize}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			b.ReportAllocs()

			pool := NewBytePool(constants.DefaultSendBufSize)

			b.ResetTimer()
			for range b.N {
				buf := pool.Get(size)
				pool.Put(buf)
			}
		})
	}
}

// BenchmarkBytePool_vs_Make — пул против прямой аллокации
func BenchmarkBytePool_vs_Make(b *testing.B) {
	size := 512

	b.Run("pool", func(b *testing.B) {
		b.ReportAllocs()

		pool := NewBytePool(constants.DefaultSendBufSize)

		b.ResetTimer()
		for range b.N {
			buf := pool.Get(size)
			pool.Put(buf)
		}
	})

	b.Run("make", func(b *testing.B) {
		b.ReportAllocs()

		b.ResetTimer()
		for range b.N {
			_ = make([]byte, size)
		}
	})
}

// BenchmarkBytePool_Concurrent — цикл пишет, writePump-горутины возвращают
func BenchmarkBytePool_Concurrent(b *testing.B) {
	b.ReportAllocs()

	pool := NewBytePool(constants.DefaultSendBufSize)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := pool.Get(256)
			pool.Put(buf)
		}
	})
}

// BenchmarkBytePool_Oversized — запрос больше ёмкости пула (SendStatistics)
func BenchmarkBytePool_Oversized(b *testing.B) {
	b.ReportAllocs()

	pool := NewBytePool(constants.DefaultSendBufSize)

	b.ResetTimer()
	for range b.N {
		buf := pool.Get(constants.DefaultReadBufSize)
		pool.Put(buf)
	}
}
