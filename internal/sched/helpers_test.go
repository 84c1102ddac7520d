package sched

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type taskRow struct {
	id       TaskID
	arrival  int
	work     int
	deadline int
	period   int
	power    int
	repeat   int
}

func newTasks(t *testing.T, rows ...taskRow) []*Task {
	t.Helper()

	result := make([]*Task, 0, len(rows))

	for _, row := range rows {
		task, errCr := NewTask(
			&ParamsNewTask{
				ID:          row.id,
				ArrivalDate: row.arrival,
				UnitOfWork:  row.work,
				Deadline:    row.deadline,
				Period:      row.period,
				Power:       row.power,
				Repeat:      row.repeat,
			},
		)
		require.NoError(t, errCr)

		result = append(result, task)
	}

	return result
}

// link adds the edges pred -> succ given as pairs.
func link(t *testing.T, tasks []*Task, edges ...[2]TaskID) {
	t.Helper()

	registry, errRegistry := NewRegistry(tasks)
	require.NoError(t, errRegistry)

	for _, edge := range edges {
		pred, succ := registry[edge[0]], registry[edge[1]]
		require.NotNil(t, pred)
		require.NotNil(t, succ)

		pred.AddSuccessor(succ.ID)
		succ.AddPredecessor(pred.ID)
	}
}

func newServers(t *testing.T, count, staticPower, performance, powerCap int) []*Server {
	t.Helper()

	result := make([]*Server, 0, count)

	for i := 1; i <= count; i++ {
		server, errCr := NewServer(
			&ParamsNewServer{
				ID:            ServerID(i),
				StaticPower:   staticPower,
				Performance:   performance,
				LocalPowerCap: powerCap,
				Frequencies:   []float64{1, 2, 3},
			},
		)
		require.NoError(t, errCr)

		result = append(result, server)
	}

	return result
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PowerCap = 1000
	cfg.MaxTimesteps = 50
	cfg.MaxTicks = 1000

	return cfg
}

func newTestCore(t *testing.T, data *Dataset, cfg Config) *Core {
	t.Helper()

	core, errCr := NewCore(data, cfg, discardLogger())
	require.NoError(t, errCr)

	return core
}

// requireServerInvariant checks that a server hosts a task exactly when busy.
func requireServerInvariant(t *testing.T, servers []*Server) {
	t.Helper()

	for _, server := range servers {
		require.Equal(t,
			server.CurrentTask != nil,
			!server.Available,
			"server %d", server.ID,
		)
	}
}

func taskOrder(assignments []Assignment) []TaskID {
	result := make([]TaskID, len(assignments))

	for i, assignment := range assignments {
		result[i] = assignment.TaskID
	}

	return result
}
