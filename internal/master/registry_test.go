package master

import (
	"testing"

	"github.com/udisondev/masterserver/internal/constants"
)

func registryConn(id uint64, name string, nonce uint64) *Conn {
	c := newConn(id, nil, testAddr(byte(id), 28000), nil, constants.SendQueueSize)
	c.name = name
	c.nonce = nonce
	return c
}

func TestRegistry_LinkUnlink(t *testing.T) {
	r := newRegistry()

	s := registryConn(1, "Server", 0)
	c := registryConn(2, "bob", 42)
	r.add(s)
	r.add(c)
	if r.serverCount() != 0 || r.clientCount() != 0 {
		t.Fatal("add не должен помещать подключение в списки ролей")
	}

	r.link(s, RoleServer)
	r.link(c, RoleClient)
	if got := r.serverCount(); got != 1 {
		t.Errorf("serverCount = %d, want 1", got)
	}
	if got := r.clientCount(); got != 1 {
		t.Errorf("clientCount = %d, want 1", got)
	}
	if r.findByNonce(42) != c {
		t.Error("findByNonce не нашёл клиента")
	}
	if !r.dirty {
		t.Error("link должен выставлять dirty")
	}

	r.dirty = false
	r.unlink(c)
	if got := r.clientCount(); got != 0 {
		t.Errorf("clientCount после unlink = %d, want 0", got)
	}
	if r.findByNonce(42) != nil {
		t.Error("nonce должен забываться при unlink")
	}
	if !r.dirty {
		t.Error("unlink должен выставлять dirty")
	}

	// Повторный unlink и unlink анонимного подключения безопасны.
	r.unlink(c)
	r.unlink(registryConn(3, "", 0))
}

func TestRegistry_NonceReclaimedAfterRemove(t *testing.T) {
	r := newRegistry()

	old := registryConn(1, "bob", 42)
	r.add(old)
	r.link(old, RoleClient)
	r.remove(old)

	// Новый клиент занимает тот же nonce. Запоздалое повторное удаление
	// старого не должно выбить из таблицы нового владельца.
	fresh := registryConn(2, "bob", 42)
	r.add(fresh)
	r.link(fresh, RoleClient)

	r.remove(old)
	if r.findByNonce(42) != fresh {
		t.Error("nonce нового клиента потерян")
	}
	if r.clientCount() != 1 {
		t.Errorf("clientCount = %d, want 1", r.clientCount())
	}
}

func TestRegistry_FindClientByName(t *testing.T) {
	r := newRegistry()
	bob := registryConn(1, "Bob", 1)
	carol := registryConn(2, "Carol", 2)
	r.add(bob)
	r.add(carol)
	r.link(bob, RoleClient)
	r.link(carol, RoleClient)

	tests := []struct {
		name  string
		query string
		want  *Conn
	}{
		{"точное совпадение", "Bob", bob},
		{"без учёта регистра", "bOB", bob},
		{"второй клиент", "carol", carol},
		{"не найден", "dave", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.findClientByName(tt.query); got != tt.want {
				t.Errorf("findClientByName(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestRegistry_FindServer(t *testing.T) {
	r := newRegistry()
	s := registryConn(1, "Server", 0)
	r.add(s)
	r.link(s, RoleServer)

	if got := r.findServer(s.addr); got != s {
		t.Error("findServer не нашёл сервер по адресу")
	}
	if got := r.findServer(testAddr(9, 1)); got != nil {
		t.Errorf("findServer по чужому адресу = %v, want nil", got)
	}
}

func TestRegistry_IterationOrder(t *testing.T) {
	r := newRegistry()
	var want []uint64
	for id := uint64(1); id <= 4; id++ {
		c := registryConn(id, "", id)
		r.add(c)
		r.link(c, RoleClient)
		want = append(want, id)
	}

	var got []uint64
	r.iterateClients(func(c *Conn) bool {
		got = append(got, c.id)
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("обошли %d клиентов, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("позиция %d: id = %d, want %d", i, got[i], want[i])
		}
	}

	// Удаление текущего элемента внутри обхода не ломает итерацию.
	var seen int
	r.iterateClients(func(c *Conn) bool {
		seen++
		if c.id == 2 {
			r.remove(c)
		}
		return true
	})
	if seen != 4 {
		t.Errorf("обход с удалением посетил %d клиентов, want 4", seen)
	}
	if r.clientCount() != 3 {
		t.Errorf("clientCount = %d, want 3", r.clientCount())
	}
}
