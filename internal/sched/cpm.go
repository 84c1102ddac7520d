package sched

import (
	"context"
	"math"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

const DriverCPM = "CPM"

// CPM (critical path merge) splits the graph into longest-first chains and
// places every chain back-to-back on the server that frees up first.
type CPM struct {
	core   *Core
	chains [][]TaskID
}

func NewCPM(core *Core) *CPM {
	return &CPM{
		core: core,
	}
}

func (p *CPM) Name() string { return DriverCPM }

// Chains returns the critical paths of the last run.
func (p *CPM) Chains() [][]TaskID {
	return p.chains
}

func (p *CPM) Run(ctx context.Context) (*Schedule, error) {
	c := p.core

	chains := p.criticalPaths()

	p.chains = make([][]TaskID, 0, len(chains))

	for _, chain := range chains {
		if err := ctx.Err(); err != nil {
			return p.schedule(), err
		}

		p.chains = append(p.chains, chainIDs(chain))

		p.place(chain, c.earliestServer())
	}

	return p.schedule(), nil
}

// CriticalPaths returns the chains the next run would place, without placing them.
func (p *CPM) CriticalPaths() [][]TaskID {
	chains := p.criticalPaths()

	result := make([][]TaskID, len(chains))
	for i, chain := range chains {
		result[i] = chainIDs(chain)
	}

	return result
}

func chainIDs(chain []*Task) []TaskID {
	result := make([]TaskID, len(chain))
	for i, task := range chain {
		result[i] = task.ID
	}

	return result
}

func (p *CPM) schedule() *Schedule {
	result := p.core.Schedule(p.Name())
	result.Chains = p.chains

	return result
}

// criticalPaths partitions the pool into vertex-disjoint chains.
// Each chain starts at the unplaced task with the largest critical time and
// follows the unplaced successor with the largest critical time.
func (p *CPM) criticalPaths() [][]*Task {
	c := p.core

	remaining := linkedhashset.New()
	for _, task := range c.tasks {
		remaining.Add(task.ID)
	}

	var result [][]*Task

	for !remaining.Empty() {
		var seed *Task

		for _, value := range remaining.Values() {
			candidate := c.registry[value.(TaskID)]

			if seed == nil || candidate.CriticalTime > seed.CriticalTime {
				seed = candidate
			}
		}

		chain := []*Task{seed}
		remaining.Remove(seed.ID)

		for current := seed; ; {
			var next *Task

			for _, successorID := range current.Successors {
				if !remaining.Contains(successorID) {
					continue
				}

				candidate := c.registry[successorID]
				if next == nil || candidate.CriticalTime > next.CriticalTime {
					next = candidate
				}
			}

			if next == nil {
				break
			}

			chain = append(chain, next)
			remaining.Remove(next.ID)
			current = next
		}

		result = append(result, chain)
	}

	return result
}

// place runs the chain back-to-back on one server and pushes the arrival of
// successors in other chains past the finish of their predecessor.
func (p *CPM) place(chain []*Task, server *Server) {
	c := p.core

	inChain := make(map[TaskID]struct{}, len(chain))
	for _, task := range chain {
		inChain[task.ID] = struct{}{}
	}

	time := math.Max(server.AvailableAfter, chain[0].ArrivalDate)

	for _, task := range chain {
		assignment := c.account(server, task, time)
		time = assignment.End

		for _, successorID := range task.Successors {
			if _, sameChain := inChain[successorID]; sameChain {
				continue
			}

			successor := c.registry[successorID]
			successor.ArrivalDate = math.Max(successor.ArrivalDate, time)
		}
	}

	server.AvailableAfter = time
	server.Available = false
	server.CurrentTask = chain[len(chain)-1]
}

// earliestServer picks the server with the smallest AvailableAfter.
// Unlike FindAdmissibleServer it does not check the local power cap;
// CPM balances load only.
func (c *Core) earliestServer() *Server {
	result := c.servers[0]

	for _, server := range c.servers[1:] {
		if server.AvailableAfter < result.AvailableAfter {
			result = server
		}
	}

	return result
}
