package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/skillmonitor/internal/adapters/mq/queue"
	worker "github.com/okian/skillmonitor/internal/adapters/mq/worker"
	"github.com/smartystreets/goconvey/convey"
)

func newLoop(t *testing.T, capacity int) *worker.Loop {
	t.Helper()
	l := worker.NewLoop(context.Background(), queue.NewInMemoryQueue(queue.WithCapacity(capacity)), worker.WithName("test"))
	l.Start()
	t.Cleanup(func() { _ = l.Stop(context.Background()) })
	return l
}

func settle(l *worker.Loop) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return l.Settle(ctx)
}

func TestLoop_Order(t *testing.T) {
	convey.Convey("Given a running loop", t, func() {
		l := newLoop(t, 64)

		convey.Convey("When tasks are posted from one goroutine", func() {
			var got []int
			for i := 0; i < 20; i++ {
				n := i
				convey.So(l.Post(context.Background(), func(context.Context) { got = append(got, n) }), convey.ShouldBeTrue)
			}
			convey.So(settle(l), convey.ShouldBeNil)

			convey.Convey("Then they run in posting order", func() {
				convey.So(len(got), convey.ShouldEqual, 20)
				for i, v := range got {
					convey.So(v, convey.ShouldEqual, i)
				}
			})
		})
	})
}

func TestLoop_Call(t *testing.T) {
	convey.Convey("Given a running loop", t, func() {
		l := newLoop(t, 8)

		convey.Convey("When calling a function on the loop", func() {
			value := 0
			err := l.Call(context.Background(), func(context.Context) { value = 42 })

			convey.Convey("Then it has run by the time Call returns", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(value, convey.ShouldEqual, 42)
			})
		})

		convey.Convey("When a task panics", func() {
			err := l.Call(context.Background(), func(context.Context) { panic("boom") })
			after := false
			err2 := l.Call(context.Background(), func(context.Context) { after = true })

			convey.Convey("Then the loop survives", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(after, convey.ShouldBeTrue)
				convey.So(settle(l), convey.ShouldBeNil)
			})
		})
	})
}

func TestLoop_Await(t *testing.T) {
	convey.Convey("Given a running loop", t, func() {
		l := newLoop(t, 8)

		convey.Convey("When awaiting an off-loop call that chains another", func() {
			var mu sync.Mutex
			var trail []string
			record := func(s string) {
				mu.Lock()
				trail = append(trail, s)
				mu.Unlock()
			}

			l.Post(context.Background(), func(context.Context) {
				worker.Await(l, func(context.Context) string {
					time.Sleep(20 * time.Millisecond)
					return "first"
				}, func(_ context.Context, v string) {
					record(v)
					worker.Await(l, func(context.Context) int {
						time.Sleep(20 * time.Millisecond)
						return 2
					}, func(_ context.Context, n int) {
						record("second")
					})
				})
			})

			convey.Convey("Then Settle waits for the whole chain", func() {
				convey.So(settle(l), convey.ShouldBeNil)
				mu.Lock()
				defer mu.Unlock()
				convey.So(trail, convey.ShouldResemble, []string{"first", "second"})
			})
		})
	})
}

func TestLoop_Timers(t *testing.T) {
	convey.Convey("Given a running loop", t, func() {
		l := newLoop(t, 8)

		convey.Convey("When a delayed task is cancelled before it fires", func() {
			fired := make(chan struct{}, 1)
			stop := l.After(50*time.Millisecond, func(context.Context) { fired <- struct{}{} })
			stop()

			convey.Convey("Then it never runs", func() {
				select {
				case <-fired:
					convey.So("fired", convey.ShouldBeEmpty)
				case <-time.After(120 * time.Millisecond):
				}
			})
		})

		convey.Convey("When a delayed task is left alone", func() {
			fired := make(chan struct{}, 1)
			l.After(10*time.Millisecond, func(context.Context) { fired <- struct{}{} })

			convey.Convey("Then it runs on the loop", func() {
				select {
				case <-fired:
				case <-time.After(time.Second):
					convey.So("timeout", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When a periodic task runs", func() {
			ticks := make(chan struct{}, 10)
			stop := l.Every(10*time.Millisecond, func(context.Context) { ticks <- struct{}{} })
			<-ticks
			<-ticks
			stop()
			stop()

			convey.Convey("Then it ticked at least twice and stops cleanly", func() {
				convey.So(settle(l), convey.ShouldBeNil)
			})
		})
	})
}

func TestLoop_Backpressure(t *testing.T) {
	convey.Convey("Given a loop with a tiny queue blocked on a task", t, func() {
		l := newLoop(t, 1)
		release := make(chan struct{})
		started := make(chan struct{})
		l.Post(context.Background(), func(context.Context) {
			close(started)
			<-release
		})
		<-started
		convey.So(l.Post(context.Background(), func(context.Context) {}), convey.ShouldBeTrue)

		convey.Convey("When the queue is full", func() {
			ok := l.Post(context.Background(), func(context.Context) {})
			err := l.Call(context.Background(), func(context.Context) {})
			close(release)

			convey.Convey("Then posting is refused", func() {
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(errors.Is(err, worker.ErrRejected), convey.ShouldBeTrue)
				convey.So(settle(l), convey.ShouldBeNil)
			})
		})
	})
}

func TestLoop_AwaitWhileFull(t *testing.T) {
	convey.Convey("Given a loop with a full queue", t, func() {
		l := newLoop(t, 1)
		release := make(chan struct{})
		started := make(chan struct{})
		l.Post(context.Background(), func(context.Context) {
			close(started)
			<-release
		})
		<-started
		convey.So(l.Post(context.Background(), func(context.Context) {}), convey.ShouldBeTrue)

		convey.Convey("When an awaited call completes before there is room", func() {
			delivered := make(chan int, 1)
			returned := make(chan struct{})
			worker.Await(l, func(context.Context) int {
				defer close(returned)
				return 7
			}, func(_ context.Context, v int) { delivered <- v })
			<-returned
			time.Sleep(10 * time.Millisecond)
			close(release)

			convey.Convey("Then its completion still runs on the loop", func() {
				convey.So(settle(l), convey.ShouldBeNil)
				select {
				case v := <-delivered:
					convey.So(v, convey.ShouldEqual, 7)
				default:
					convey.So("completion dropped", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestLoop_Stop(t *testing.T) {
	convey.Convey("Given a stopped loop", t, func() {
		l := worker.NewLoop(context.Background(), queue.NewInMemoryQueue())
		l.Start()
		convey.So(l.Stop(context.Background()), convey.ShouldBeNil)

		convey.Convey("Then nothing more is accepted", func() {
			convey.So(l.Post(context.Background(), func(context.Context) {}), convey.ShouldBeFalse)
			convey.So(errors.Is(l.Call(context.Background(), func(context.Context) {}), worker.ErrStopped), convey.ShouldBeTrue)
			convey.So(l.Context().Err(), convey.ShouldNotBeNil)
			convey.So(l.Stop(context.Background()), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a loop that was never started", t, func() {
		l := worker.NewLoop(context.Background(), queue.NewInMemoryQueue())

		convey.Convey("Then Stop still returns", func() {
			convey.So(l.Stop(context.Background()), convey.ShouldBeNil)
			select {
			case <-l.Done():
			default:
				convey.So("done not closed", convey.ShouldBeEmpty)
			}
		})
	})
}
