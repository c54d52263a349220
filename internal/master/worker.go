package master

import (
	"context"
	"log/slog"
)

// task выполняется в две фазы: Run в фоновой горутине (медленный ввод
// и вывод: БД, форум), Finish обратно на событийном цикле. Finish
// вызывается ровно один раз и только после завершения Run.
//
// Задача не хранит указателей на Conn, только id. Если подключение
// умерло до Finish, задача обязана превратиться в no-op.
type task interface {
	Run(ctx context.Context)
	Finish(m *Master)
}

// taskQueue связывает событийный цикл с единственной фоновой
// горутиной. Ёмкость ограничена, при переполнении новые задачи
// отбрасываются с логом.
type taskQueue struct {
	runCh  chan task
	doneCh chan task
}

func newTaskQueue(size int) *taskQueue {
	return &taskQueue{
		runCh:  make(chan task, size),
		doneCh: make(chan task, size),
	}
}

// Post ставит задачу в очередь. Не блокирует: при заполненной очереди
// задача отбрасывается и возвращается false.
func (q *taskQueue) Post(t task) bool {
	select {
	case q.runCh <- t:
		return true
	default:
		slog.Error("task queue full, dropping task")
		return false
	}
}

// pending возвращает число задач, ожидающих выполнения.
func (q *taskQueue) pending() int {
	return len(q.runCh)
}

// worker последовательно выполняет задачи и передаёт их циклу на
// Finish. Блокирующее чтение вместо опроса: просыпаемся только когда
// есть работа.
func (q *taskQueue) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-q.runCh:
			t.Run(ctx)
			select {
			case q.doneCh <- t:
			case <-ctx.Done():
				return
			}
		}
	}
}
