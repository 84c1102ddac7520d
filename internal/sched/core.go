package sched

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

var (
	ErrFrequencyLevel = errors.New("frequency level out of range")
	ErrNoServers      = errors.New("server pool is empty")
)

// Assignment is one line of the produced schedule.
type Assignment struct {
	TaskID   TaskID
	ServerID ServerID
	Start    float64
	End      float64
}

// Schedule is the outcome of a driver run.
type Schedule struct {
	Driver      string
	Assignments []Assignment
	Events      []Event
	Chains      [][]TaskID // CPM only
	Energy      float64
}

// Core holds the state shared by every driver: task pool, server pool,
// simulated clock, energy and the event log.
// It is owned by exactly one driver and is not safe for concurrent use.
type Core struct {
	tasks    []*Task // live instances, in pool order
	registry Registry
	servers  []*Server
	clock    *TickClock
	logger   *slog.Logger

	records []Assignment
	events  []Event
	energy  float64

	blocked map[*Task]struct{} // tasks whose last placement attempt failed

	powerCap int
	level    int
}

// NewCore takes ownership of data and resolves critical times once.
func NewCore(data *Dataset, cfg Config, logger *slog.Logger) (*Core, error) {
	registry, errRegistry := NewRegistry(data.Tasks)
	if errRegistry != nil {
		return nil, errRegistry
	}

	if len(data.Servers) == 0 {
		return nil, ErrNoServers
	}

	if logger == nil {
		logger = slog.Default()
	}

	level := cfg.FrequencyLevel()

	for _, server := range data.Servers {
		if level < 0 || level >= len(server.Frequencies) {
			return nil,
				fmt.Errorf(
					"%w: level %d, server %d has %d levels",
					ErrFrequencyLevel,
					cfg.Frequency,
					server.ID,
					len(server.Frequencies),
				)
		}
	}

	if errResolve := ResolveCriticalTimes(data.Tasks, registry); errResolve != nil {
		return nil, errResolve
	}

	return &Core{
			tasks:    slices.Clone(data.Tasks),
			registry: registry,
			servers:  data.Servers,
			clock:    NewTickClock(),
			logger:   logger,
			blocked:  make(map[*Task]struct{}),
			powerCap: cfg.PowerCap,
			level:    level,
		},
		nil
}

func (c *Core) Now() float64 {
	return c.clock.Now()
}

// Tasks returns the live task instances in pool order.
func (c *Core) Tasks() []*Task {
	return c.tasks
}

func (c *Core) Servers() []*Server {
	return c.servers
}

func (c *Core) Registry() Registry {
	return c.registry
}

func (c *Core) Energy() float64 {
	return c.energy
}

// FindAdmissibleServer returns the first idle server, in pool order, that can
// host the task within its local power cap. Nil means no capacity this tick.
// Every miss is recorded; only the first of a blocked stretch is logged at WARN.
func (c *Core) FindAdmissibleServer(task *Task) *Server {
	for _, server := range c.servers {
		if server.Admits(task) {
			return server
		}
	}

	event := Event{
		Time:   c.Now(),
		Kind:   EventNoServer,
		TaskID: task.ID,
	}

	if _, waiting := c.blocked[task]; waiting {
		c.events = append(c.events, event)
		c.logger.Debug("still no available server", "time", event.Time, "task_id", task.ID)

		return nil
	}

	c.blocked[task] = struct{}{}
	c.record(event)

	return nil
}

// AdvanceTick moves the clock one tick. Each busy server retires one tick of
// its remaining time; a server with at most one tick left is freed and its
// task removed from the predecessor sets of the task's successors.
func (c *Core) AdvanceTick() {
	c.clock.Advance()

	for _, server := range c.servers {
		if !server.Available && server.AvailableAfter > 1 {
			server.AvailableAfter--

			continue
		}

		c.release(server)
	}
}

func (c *Core) release(server *Server) {
	server.Available = true
	server.AvailableAfter = 0

	finished := server.CurrentTask
	if finished == nil {
		return
	}

	finished.Running = false
	server.CurrentTask = nil

	for _, successorID := range finished.Successors {
		if successor, exists := c.registry[successorID]; exists {
			delete(successor.Predecessors, finished.ID)
		}
	}

	c.record(
		Event{
			Time:     c.Now(),
			Kind:     EventRelease,
			TaskID:   finished.ID,
			ServerID: server.ID,
		},
	)
}

// CommitAssignment places the task on the server starting at start.
// The server stays busy for the task duration.
func (c *Core) CommitAssignment(server *Server, task *Task, start float64) Assignment {
	assignment := c.account(server, task, start)

	task.Running = true

	server.Available = false
	server.AvailableAfter = assignment.End - assignment.Start
	server.CurrentTask = task

	return assignment
}

// account records the assignment, checks the deadline and charges energy.
func (c *Core) account(server *Server, task *Task, start float64) Assignment {
	assignment := Assignment{
		TaskID:   task.ID,
		ServerID: server.ID,
		Start:    start,
		End:      start + server.Duration(task),
	}

	c.records = append(c.records, assignment)
	delete(c.blocked, task)

	serverID := server.ID
	task.ServerID = &serverID

	c.record(
		Event{
			Time:     start,
			Kind:     EventAssign,
			TaskID:   task.ID,
			ServerID: server.ID,
			Value:    assignment.End,
		},
	)

	if limit := task.Deadline + task.ArrivalDate; assignment.End > limit {
		c.record(
			Event{
				Time:     start,
				Kind:     EventDeadlineMiss,
				TaskID:   task.ID,
				ServerID: server.ID,
				Value:    assignment.End - limit,
			},
		)
	}

	c.energy += server.Energy(task, c.level)

	return assignment
}

// PowerDraw sums static power of all servers and power of running tasks.
func (c *Core) PowerDraw() int {
	var result int

	for _, server := range c.servers {
		result += server.Draw()
	}

	return result
}

// checkPowerCap records an advisory event when the draw exceeds the global cap.
func (c *Core) checkPowerCap() {
	draw := c.PowerDraw()
	if draw <= c.powerCap {
		return
	}

	c.record(
		Event{
			Time:  c.Now(),
			Kind:  EventPowerCapExceeded,
			Value: float64(draw),
		},
	)
}

// replace swaps a committed periodic task for its next instance,
// both in the pool and in the registry.
func (c *Core) replace(original, next *Task) {
	if ix := slices.Index(c.tasks, original); ix >= 0 {
		c.tasks = slices.Delete(c.tasks, ix, ix+1)
	}

	c.tasks = append(c.tasks, next)
	c.registry[next.ID] = next
}

func (c *Core) record(event Event) {
	c.events = append(c.events, event)

	attrs := []any{
		"time", event.Time,
		"event", event.Kind.String(),
		"task_id", event.TaskID,
	}

	switch event.Kind {
	case EventAssign:
		c.logger.Debug(
			"task assigned",
			append(attrs, "server_id", event.ServerID, "end", event.Value)...,
		)

	case EventRelease:
		c.logger.Debug(
			"server released",
			append(attrs, "server_id", event.ServerID)...,
		)

	case EventNoServer:
		c.logger.Warn("no available server", attrs...)

	case EventDeadlineMiss:
		c.logger.Warn(
			"task missed its deadline",
			append(attrs, "server_id", event.ServerID, "overrun", event.Value)...,
		)

	case EventPowerCapExceeded:
		c.logger.Warn(
			"power exceeded system capacity",
			"time", event.Time,
			"draw", event.Value,
			"power_cap", c.powerCap,
		)

	case EventExhausted:
		c.logger.Error(
			"tick ceiling reached",
			append(attrs, "ticks", event.Value)...,
		)
	}
}

// Schedule returns a snapshot of the records, events and energy so far.
func (c *Core) Schedule(driver string) *Schedule {
	return &Schedule{
		Driver:      driver,
		Assignments: slices.Clone(c.records),
		Events:      slices.Clone(c.events),
		Energy:      c.energy,
	}
}
