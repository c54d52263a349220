package master

import "sync"

// BytePool переиспользует буферы кадров мастера. Владение буфером
// ходит по кругу: событийный цикл берёт буфер под исходящий пакет,
// писчая горутина возвращает его после записи в сокет. Горутины
// чтения гоняют через свой пул тела входящих кадров тем же образом.
type BytePool struct {
	capacity int
	pool     sync.Pool
}

// NewBytePool создаёт пул буферов фиксированной ёмкости capacity.
func NewBytePool(capacity int) *BytePool {
	p := &BytePool{capacity: capacity}
	p.pool.New = func() any {
		return make([]byte, 0, capacity)
	}
	return p
}

// Get возвращает обнулённый слайс длиной size. Запрос больше ёмкости
// пула (редкие гиганты вроде таблицы рекордов) обслуживается разовой
// аллокацией точного размера и в пул потом не попадает.
func (p *BytePool) Get(size int) []byte {
	if size > p.capacity {
		return make([]byte, size)
	}
	b := p.pool.Get().([]byte)[:size]
	clear(b)
	return b
}

// Put возвращает буфер в пул. Буферы чужой ёмкости отбрасываются:
// пул хранит только собственные слайсы.
func (p *BytePool) Put(b []byte) {
	if cap(b) != p.capacity {
		return
	}
	p.pool.Put(b[:0])
}
