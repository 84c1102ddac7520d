package sched

import (
	"context"
	"errors"
	"fmt"

	"github.com/emirpasic/gods/trees/redblacktree"
)

const DriverFIFO = "FIFO"

var ErrExhausted = errors.New("tick ceiling reached before the task pool drained")

// FIFO dispatches tasks strictly in arrival order. The head of the pool
// blocks the queue until it can be placed, while the clock advances tick
// by tick.
type FIFO struct {
	core     *Core
	pool     *redblacktree.Tree // ordered by arrival date, then insertion
	seq      uint64
	maxTicks int64
}

func NewFIFO(core *Core, maxTicks int) *FIFO {
	f := FIFO{
		core:     core,
		pool:     redblacktree.NewWith(cmp),
		maxTicks: int64(maxTicks),
	}

	for _, task := range core.tasks {
		f.push(task)
	}

	return &f
}

func (f *FIFO) Name() string { return DriverFIFO }

// push inserts the task after every queued task arriving no later.
func (f *FIFO) push(task *Task) {
	f.pool.Put(
		nodeKey{
			arrival: task.ArrivalDate,
			seq:     f.seq,
		},
		task,
	)

	f.seq++
}

func (f *FIFO) Run(ctx context.Context) (*Schedule, error) {
	c := f.core

	for !f.pool.Empty() {
		if err := ctx.Err(); err != nil {
			return c.Schedule(f.Name()), err
		}

		head := f.pool.Left()
		task := head.Value.(*Task)

		// busy-wait for the head to arrive or for its predecessors to finish
		if task.ArrivalDate > c.Now() || len(task.Predecessors) > 0 {
			if err := f.wait(task); err != nil {
				return c.Schedule(f.Name()), err
			}

			continue
		}

		server := c.FindAdmissibleServer(task)
		if server == nil {
			if err := f.wait(task); err != nil {
				return c.Schedule(f.Name()), err
			}

			continue
		}

		f.pool.Remove(head.Key)
		c.CommitAssignment(server, task, c.Now())

		if task.Periodic() {
			arrival := c.Now() + float64(task.Period)
			next := task.Clone(arrival, task.Deadline+arrival)

			c.replace(task, next)
			f.push(next)
		}
	}

	return c.Schedule(f.Name()), nil
}

func (f *FIFO) wait(head *Task) error {
	c := f.core

	if c.clock.Count() >= f.maxTicks {
		c.record(
			Event{
				Time:   c.Now(),
				Kind:   EventExhausted,
				TaskID: head.ID,
				Value:  float64(c.clock.Count()),
			},
		)

		return fmt.Errorf(
			"%w: %d tasks left, head task %d at tick %d",
			ErrExhausted,
			f.pool.Size(),
			head.ID,
			c.clock.Count(),
		)
	}

	c.AdvanceTick()

	return nil
}

// nodeKey is used as a key in the red-black tree.
type nodeKey struct {
	arrival float64
	seq     uint64
}

// cmp orders nodeKey values for the red-black tree.
func cmp(a, b any) int {
	ka, kb := a.(nodeKey), b.(nodeKey)
	switch {
	case ka.arrival < kb.arrival:
		return -1
	case ka.arrival > kb.arrival:
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}
