package master

import (
	"container/list"
	"net/netip"
	"strings"
)

// registry владеет живым множеством подключений. Доступ только из
// событийного цикла, поэтому без блокировок.
//
// Каждое подключение состоит ровно в одном из списков (servers или
// clients) либо ни в одном (Anonymous/None). Порядок списков — порядок
// подключения, удаление из середины за O(1) через list.Element.
type registry struct {
	servers *list.List
	clients *list.List

	// Все живые подключения, включая анонимные. Нужен фоновым
	// задачам: они хранят id и перед finish проверяют, жив ли Conn.
	byID map[uint64]*Conn

	// Клиенты по уникальному player id.
	byNonce map[uint64]*Conn

	// dirty выставляется при каждом изменении видимого состава и
	// сбрасывается писателем JSON-статуса.
	dirty bool
}

func newRegistry() *registry {
	return &registry{
		servers: list.New(),
		clients: list.New(),
		byID:    make(map[uint64]*Conn),
		byNonce: make(map[uint64]*Conn),
	}
}

// add регистрирует только что принятое подключение (ещё без роли).
func (r *registry) add(c *Conn) {
	r.byID[c.id] = c
}

// remove окончательно забывает подключение.
func (r *registry) remove(c *Conn) {
	r.unlink(c)
	delete(r.byID, c.id)
}

// link вставляет подключение в список, соответствующий роли.
// Уникальность nonce проверяет диспетчер до вызова link.
func (r *registry) link(c *Conn, role Role) {
	c.role = role
	switch role {
	case RoleServer:
		c.elem = r.servers.PushBack(c)
	case RoleClient:
		c.elem = r.clients.PushBack(c)
		r.byNonce[c.nonce] = c
	}
	r.dirty = true
}

// unlink извлекает подключение из его списка. Повторный вызов и вызов
// для анонимного подключения безопасны.
func (r *registry) unlink(c *Conn) {
	if c.elem == nil {
		return
	}
	switch c.role {
	case RoleServer:
		r.servers.Remove(c.elem)
	case RoleClient:
		r.clients.Remove(c.elem)
		if r.byNonce[c.nonce] == c {
			delete(r.byNonce, c.nonce)
		}
	}
	c.elem = nil
	r.dirty = true
}

// iterateServers обходит серверы в порядке подключения. fn возвращает
// false для досрочного выхода. Удалять текущий элемент внутри fn можно.
func (r *registry) iterateServers(fn func(*Conn) bool) {
	for e := r.servers.Front(); e != nil; {
		next := e.Next()
		if !fn(e.Value.(*Conn)) {
			return
		}
		e = next
	}
}

// iterateClients обходит клиентов в порядке подключения.
func (r *registry) iterateClients(fn func(*Conn) bool) {
	for e := r.clients.Front(); e != nil; {
		next := e.Next()
		if !fn(e.Value.(*Conn)) {
			return
		}
		e = next
	}
}

// get возвращает живое подключение по внутреннему id.
func (r *registry) get(id uint64) *Conn {
	return r.byID[id]
}

// findByNonce возвращает клиента с данным player id.
func (r *registry) findByNonce(nonce uint64) *Conn {
	return r.byNonce[nonce]
}

// findClientByName возвращает первого клиента с данным ником без учёта
// регистра.
func (r *registry) findClientByName(name string) *Conn {
	var found *Conn
	r.iterateClients(func(c *Conn) bool {
		if strings.EqualFold(c.name, name) {
			found = c
			return false
		}
		return true
	})
	return found
}

// findServer возвращает сервер с данным адресом.
func (r *registry) findServer(addr netip.AddrPort) *Conn {
	var found *Conn
	r.iterateServers(func(c *Conn) bool {
		if c.addr == addr {
			found = c
			return false
		}
		return true
	})
	return found
}

func (r *registry) serverCount() int {
	return r.servers.Len()
}

func (r *registry) clientCount() int {
	return r.clients.Len()
}
