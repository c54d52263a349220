package master

import (
	"context"
	"testing"
	"time"
)

type testTask struct {
	run    func(ctx context.Context)
	finish func(m *Master)
}

func (t *testTask) Run(ctx context.Context) {
	if t.run != nil {
		t.run(ctx)
	}
}

func (t *testTask) Finish(m *Master) {
	if t.finish != nil {
		t.finish(m)
	}
}

func TestTaskQueue_PostDropsWhenFull(t *testing.T) {
	q := newTaskQueue(2)

	if !q.Post(&testTask{}) {
		t.Error("первая задача должна помещаться")
	}
	if !q.Post(&testTask{}) {
		t.Error("вторая задача должна помещаться")
	}
	if q.Post(&testTask{}) {
		t.Error("третья задача должна отбрасываться")
	}
	if got := q.pending(); got != 2 {
		t.Errorf("pending = %d, want 2", got)
	}
}

func TestTaskQueue_WorkerRunsAndForwards(t *testing.T) {
	q := newTaskQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.worker(ctx)

	ran := make(chan struct{})
	q.Post(&testTask{run: func(context.Context) { close(ran) }})

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("Run не выполнился")
	}

	select {
	case got := <-q.doneCh:
		if got == nil {
			t.Fatal("из doneCh пришёл nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("задача не дошла до doneCh")
	}
}

func TestTaskQueue_WorkerStopsOnCancel(t *testing.T) {
	q := newTaskQueue(4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		q.worker(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker не завершился по отмене контекста")
	}
}

func TestTaskQueue_PreservesOrder(t *testing.T) {
	q := newTaskQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.worker(ctx)

	var first, second testTask
	q.Post(&first)
	q.Post(&second)

	for i, want := range []task{&first, &second} {
		select {
		case got := <-q.doneCh:
			if got != want {
				t.Errorf("задача %d пришла не в своём порядке", i+1)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("задача %d не дошла до doneCh", i+1)
		}
	}
}
