package master

import (
	"net/netip"
	"time"
)

// connectRequest описывает одну незавершённую организацию соединения
// клиент → игровой сервер через пробой NAT.
//
// Стороны хранятся по внутреннему id, а не указателем: к моменту
// ответа или таймаута любая из них может уже отключиться. Жива ли
// сторона, проверяется через registry.get.
type connectRequest struct {
	initiatorID      uint64
	hostID           uint64
	initiatorQueryID uint32 // id, выбранный инициатором, возвращается ему в ответе
	hostQueryID      uint32 // id, выданный мастером, идентифицирует запрос у хоста
	requestedAt      time.Time
}

// rendezvousTable хранит все незавершённые запросы. Принадлежит
// событийному циклу.
type rendezvousTable struct {
	byHostQuery     map[uint32]*connectRequest
	order           []*connectRequest // в порядке создания, для выметания по возрасту
	nextHostQueryID uint32
}

func newRendezvousTable() *rendezvousTable {
	return &rendezvousTable{byHostQuery: make(map[uint32]*connectRequest)}
}

// create регистрирует новый запрос и выдаёт ему hostQueryID.
func (t *rendezvousTable) create(initiatorID, hostID uint64, initiatorQueryID uint32, now time.Time) *connectRequest {
	t.nextHostQueryID++
	req := &connectRequest{
		initiatorID:      initiatorID,
		hostID:           hostID,
		initiatorQueryID: initiatorQueryID,
		hostQueryID:      t.nextHostQueryID,
		requestedAt:      now,
	}
	t.byHostQuery[req.hostQueryID] = req
	t.order = append(t.order, req)
	return req
}

// find возвращает запрос по id, выданному мастером.
func (t *rendezvousTable) find(hostQueryID uint32) *connectRequest {
	return t.byHostQuery[hostQueryID]
}

// remove исключает запрос из таблицы. Списки pending на подключениях
// чистит вызывающий, у него есть доступ к реестру.
func (t *rendezvousTable) remove(req *connectRequest) {
	delete(t.byHostQuery, req.hostQueryID)
	for i, r := range t.order {
		if r == req {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

// oldest возвращает самый старый запрос или nil.
func (t *rendezvousTable) oldest() *connectRequest {
	if len(t.order) == 0 {
		return nil
	}
	return t.order[0]
}

func (t *rendezvousTable) len() int {
	return len(t.order)
}

// candidateAddresses собирает адреса, по которым одна сторона будет
// пробовать достучаться до другой: видимый адрес со следующим портом,
// видимый адрес как есть и, если отличается, адрес из локальной сети
// стороны. На проводе «нет адреса» кодируется нулями, поэтому 0.0.0.0
// не считается адресом.
func candidateAddresses(apparent, internal netip.AddrPort) []netip.AddrPort {
	out := make([]netip.AddrPort, 0, 3)
	out = append(out, netip.AddrPortFrom(apparent.Addr(), apparent.Port()+1))
	out = append(out, apparent)
	if internal.IsValid() && !internal.Addr().IsUnspecified() && internal != apparent {
		out = append(out, internal)
	}
	return out
}

// removePending вычёркивает запрос из списка pending подключения.
func removePending(c *Conn, req *connectRequest) {
	for i, r := range c.pending {
		if r == req {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}
