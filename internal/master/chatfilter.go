package master

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/joeycumines/go-catrate"
	"github.com/jonboulle/clockwork"
)

// Повтор одного и того же текста с одного подключения внутри этого
// окна не ретранслируется.
const chatRepeatWindow = 10 * time.Second

// Ёмкость кэша недавних сообщений. Вытеснение старых записей отдано LRU.
const chatRecentSize = 512

// chatFilter решает, можно ли ретранслировать сообщение. Два скользящих
// лимита (для публичного чата и для личных сообщений, у личных окно
// шире) плюс подавление дословных повторов.
type chatFilter struct {
	public  *catrate.Limiter
	private *catrate.Limiter
	recent  *lru.Cache[chatKey, time.Time]
	clock   clockwork.Clock
}

type chatKey struct {
	id  uint64
	msg string
}

func newChatFilter(clock clockwork.Clock) *chatFilter {
	recent, err := lru.New[chatKey, time.Time](chatRecentSize)
	if err != nil {
		// lru.New ошибается только при неположительном размере
		panic(err)
	}
	return &chatFilter{
		public: catrate.NewLimiter(map[time.Duration]int{
			1 * time.Second:  2,
			10 * time.Second: 8,
		}),
		private: catrate.NewLimiter(map[time.Duration]int{
			2 * time.Second:  1,
			20 * time.Second: 4,
		}),
		recent: recent,
		clock:  clock,
	}
}

// checkMessage сообщает, допускается ли сообщение к ретрансляции.
// Отказ не потребляет лимит повторного окна.
func (f *chatFilter) checkMessage(c *Conn, msg string, isPrivate bool) bool {
	key := chatKey{id: c.id, msg: msg}
	now := f.clock.Now()

	if last, ok := f.recent.Get(key); ok && now.Sub(last) < chatRepeatWindow {
		return false
	}

	lim := f.public
	if isPrivate {
		lim = f.private
	}
	if _, ok := lim.Allow(c.id); !ok {
		return false
	}

	f.recent.Add(key, now)
	return true
}
