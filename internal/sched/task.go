package sched

import (
	goerrors "github.com/TudorHulban/go-errors"
)

// TaskID identifies a task. Periodic instances of a task share its ID.
type TaskID int

// Task represents one schedulable unit of work in the dependency graph.
type Task struct {
	Predecessors map[TaskID]struct{} // shrinks as predecessors complete
	Successors   []TaskID            // fixed after loading, in dependency file order
	ServerID     *ServerID           // nil until placed

	ID           TaskID
	ArrivalDate  float64
	Deadline     float64
	UnitOfWork   int
	Period       int // 0 for non-periodic tasks
	Power        int
	Repeat       int // instances still to spawn
	CriticalTime int
	Running      bool
}

type ParamsNewTask struct {
	ID          TaskID
	ArrivalDate int
	UnitOfWork  int
	Deadline    int
	Period      int
	Power       int
	Repeat      int
}

func (param *ParamsNewTask) IsValid() error {
	checks := []struct {
		name  string
		value int
	}{
		{"ArrivalDate", param.ArrivalDate},
		{"UnitOfWork", param.UnitOfWork},
		{"Deadline", param.Deadline},
		{"Period", param.Period},
		{"Power", param.Power},
		{"Repeat", param.Repeat},
	}

	for _, check := range checks {
		if check.value < 0 {
			return goerrors.ErrValidation{
				Caller: "IsValid - ParamsNewTask",
				Issue: goerrors.ErrNegativeInput{
					InputName: check.name,
				},
			}
		}
	}

	return nil
}

// NewTask creates a task with no dependencies.
// Repeat is only kept for periodic tasks.
func NewTask(params *ParamsNewTask) (*Task, error) {
	if errValidation := params.IsValid(); errValidation != nil {
		return nil,
			errValidation
	}

	repeat := params.Repeat
	if params.Period == 0 {
		repeat = 0
	}

	return &Task{
			ID:           params.ID,
			ArrivalDate:  float64(params.ArrivalDate),
			Deadline:     float64(params.Deadline),
			UnitOfWork:   params.UnitOfWork,
			Period:       params.Period,
			Power:        params.Power,
			Repeat:       repeat,
			CriticalTime: params.UnitOfWork,

			Predecessors: make(map[TaskID]struct{}),
		},
		nil
}

func (t *Task) AddPredecessor(id TaskID) {
	t.Predecessors[id] = struct{}{}
}

// AddSuccessor appends id unless it is already a successor.
func (t *Task) AddSuccessor(id TaskID) bool {
	for _, existing := range t.Successors {
		if existing == id {
			return false
		}
	}

	t.Successors = append(t.Successors, id)

	return true
}

func (t *Task) Placed() bool {
	return t.ServerID != nil
}

// Ready reports whether the task can be placed at simulated time now.
func (t *Task) Ready(now float64) bool {
	return len(t.Predecessors) == 0 &&
		t.ArrivalDate <= now &&
		!t.Placed()
}

// Periodic reports whether committing the task spawns another instance.
func (t *Task) Periodic() bool {
	return t.Period > 0 && t.Repeat > 0
}

// Clone returns the next instance of a periodic task.
// Dependencies are reset: no predecessors, same successors, no server.
func (t *Task) Clone(arrival, deadline float64) *Task {
	return &Task{
		ID:           t.ID,
		ArrivalDate:  arrival,
		Deadline:     deadline,
		UnitOfWork:   t.UnitOfWork,
		Period:       t.Period,
		Power:        t.Power,
		Repeat:       t.Repeat - 1,
		CriticalTime: t.CriticalTime,

		Predecessors: make(map[TaskID]struct{}),
		Successors:   append([]TaskID(nil), t.Successors...),
	}
}

// copy duplicates every field, runtime state included.
func (t *Task) copy() *Task {
	result := *t

	result.Predecessors = make(map[TaskID]struct{}, len(t.Predecessors))
	for id := range t.Predecessors {
		result.Predecessors[id] = struct{}{}
	}

	result.Successors = append([]TaskID(nil), t.Successors...)

	if t.ServerID != nil {
		serverID := *t.ServerID
		result.ServerID = &serverID
	}

	return &result
}
