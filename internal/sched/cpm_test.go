package sched

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCPM(t *testing.T) {
	t.Run(
		"1. linear chain back-to-back",
		func(t *testing.T) {
			tasks := newTasks(t,
				taskRow{id: 1, work: 2, deadline: 10},
				taskRow{id: 2, work: 2, deadline: 10},
				taskRow{id: 3, work: 2, deadline: 10},
			)
			link(t, tasks, [2]TaskID{1, 2}, [2]TaskID{2, 3})

			driver := NewCPM(
				newTestCore(t,
					&Dataset{
						Tasks:   tasks,
						Servers: newServers(t, 1, 10, 1, 100),
					},
					testConfig(),
				),
			)

			schedule, errRun := driver.Run(context.Background())
			require.NoError(t, errRun)
			require.Equal(t, DriverCPM, schedule.Driver)

			require.Equal(t, [][]TaskID{{1, 2, 3}}, schedule.Chains)
			require.Equal(t, schedule.Chains, driver.Chains())

			require.Equal(t,
				[]Assignment{
					{TaskID: 1, ServerID: 1, Start: 0, End: 2},
					{TaskID: 2, ServerID: 1, Start: 2, End: 4},
					{TaskID: 3, ServerID: 1, Start: 4, End: 6},
				},
				schedule.Assignments,
			)
		},
	)

	t.Run(
		"2. chains partition the graph",
		func(t *testing.T) {
			tasks := newTasks(t,
				taskRow{id: 1, work: 1, deadline: 20},
				taskRow{id: 2, work: 3, deadline: 20},
				taskRow{id: 3, work: 2, deadline: 20},
				taskRow{id: 4, work: 1, deadline: 20},
				taskRow{id: 5, work: 2, deadline: 20},
			)
			link(t, tasks, [2]TaskID{1, 2}, [2]TaskID{1, 3}, [2]TaskID{2, 4}, [2]TaskID{3, 4})

			schedule, errRun := NewCPM(
				newTestCore(t,
					&Dataset{
						Tasks:   tasks,
						Servers: newServers(t, 2, 10, 1, 100),
					},
					testConfig(),
				),
			).Run(context.Background())
			require.NoError(t, errRun)

			require.Equal(t,
				[][]TaskID{{1, 2, 4}, {3}, {5}},
				schedule.Chains,
			)

			seen := make(map[TaskID]int)
			for _, chain := range schedule.Chains {
				for _, id := range chain {
					seen[id]++
				}
			}

			require.Len(t, seen, len(tasks))
			for id, occurrences := range seen {
				require.Equal(t, 1, occurrences, "task %d", id)
			}

			require.Equal(t,
				[]Assignment{
					{TaskID: 1, ServerID: 1, Start: 0, End: 1},
					{TaskID: 2, ServerID: 1, Start: 1, End: 4},
					{TaskID: 4, ServerID: 1, Start: 4, End: 5},
					{TaskID: 3, ServerID: 2, Start: 1, End: 3},
					{TaskID: 5, ServerID: 2, Start: 3, End: 5},
				},
				schedule.Assignments,
			)
		},
	)

	t.Run(
		"3. server choice ignores the local power cap",
		func(t *testing.T) {
			servers := newServers(t, 1, 10, 1, 20)

			schedule, errRun := NewCPM(
				newTestCore(t,
					&Dataset{
						Tasks: newTasks(t,
							taskRow{id: 1, work: 1, deadline: 5, power: 100},
						),
						Servers: servers,
					},
					testConfig(),
				),
			).Run(context.Background())
			require.NoError(t, errRun)

			require.Len(t, schedule.Assignments, 1)
			require.Equal(t, 10+100.0/20, schedule.Energy)
			require.Equal(t, 1.0, servers[0].AvailableAfter)
			requireServerInvariant(t, servers)
		},
	)

	t.Run(
		"4. chain start respects arrival",
		func(t *testing.T) {
			schedule, errRun := NewCPM(
				newTestCore(t,
					&Dataset{
						Tasks: newTasks(t,
							taskRow{id: 1, arrival: 5, work: 4, deadline: 2},
						),
						Servers: newServers(t, 1, 10, 2, 100),
					},
					testConfig(),
				),
			).Run(context.Background())
			require.NoError(t, errRun)

			require.Equal(t,
				[]Assignment{
					{TaskID: 1, ServerID: 1, Start: 5, End: 7},
				},
				schedule.Assignments,
			)
			require.Zero(t, Count(schedule.Events, EventDeadlineMiss))
		},
	)
}

func TestCriticalPathsDoNotPlace(t *testing.T) {
	tasks := newTasks(t,
		taskRow{id: 1, work: 1},
		taskRow{id: 2, work: 5},
		taskRow{id: 3, work: 2},
	)
	link(t, tasks, [2]TaskID{1, 3})

	core := newTestCore(t,
		&Dataset{
			Tasks:   tasks,
			Servers: newServers(t, 1, 10, 1, 100),
		},
		testConfig(),
	)

	require.Equal(t,
		[][]TaskID{{2}, {1, 3}},
		NewCPM(core).CriticalPaths(),
	)
	require.Empty(t, core.Schedule(DriverCPM).Assignments)
	require.True(t, core.Servers()[0].Available)
}
