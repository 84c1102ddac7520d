package sched

import (
	"context"
)

const DriverWaveFront = "WaveFront"

// WaveFront dispatches, on every tick, all tasks whose dependencies are met,
// until the horizon is reached.
type WaveFront struct {
	core    *Core
	maxTime int64
}

func NewWaveFront(core *Core, maxTime int) *WaveFront {
	return &WaveFront{
		core:    core,
		maxTime: int64(maxTime),
	}
}

func (w *WaveFront) Name() string { return DriverWaveFront }

func (w *WaveFront) Run(ctx context.Context) (*Schedule, error) {
	c := w.core
	ready := w.collectReady(nil)

	for c.clock.Count() < w.maxTime {
		if err := ctx.Err(); err != nil {
			return c.Schedule(w.Name()), err
		}

		now := c.Now()
		waiting := make([]*Task, 0, len(ready))

		for _, task := range ready {
			server := c.FindAdmissibleServer(task)
			if server == nil {
				waiting = append(waiting, task)

				continue
			}

			c.CommitAssignment(server, task, now)

			if task.Periodic() {
				c.replace(
					task,
					task.Clone(
						task.ArrivalDate+float64(task.Period),
						task.Deadline+float64(task.Period),
					),
				)
			}
		}

		c.checkPowerCap()
		c.AdvanceTick()

		ready = w.collectReady(waiting)
	}

	return c.Schedule(w.Name()), nil
}

// collectReady keeps the previous wavefront and appends, in pool order,
// the tasks that became ready.
func (w *WaveFront) collectReady(previous []*Task) []*Task {
	queued := make(map[*Task]struct{}, len(previous))
	for _, task := range previous {
		queued[task] = struct{}{}
	}

	now := w.core.Now()

	for _, task := range w.core.tasks {
		if _, isQueued := queued[task]; isQueued {
			continue
		}

		if task.Ready(now) {
			previous = append(previous, task)
		}
	}

	return previous
}
