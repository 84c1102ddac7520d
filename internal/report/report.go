package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"powersched/internal/sched"
)

const resultsHeader = "#jobid server_id start end"

func formatTime(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// WriteResults writes one "task_id server_id start end" line per assignment.
func WriteResults(w io.Writer, schedule *sched.Schedule) error {
	buf := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(buf, resultsHeader); err != nil {
		return err
	}

	for _, assignment := range schedule.Assignments {
		if _, err := fmt.Fprintf(
			buf,
			"%d %d %s %s\n",
			assignment.TaskID,
			assignment.ServerID,
			formatTime(assignment.Start),
			formatTime(assignment.End),
		); err != nil {
			return err
		}
	}

	return buf.Flush()
}

// ResultsFileName is results_<driver>.txt.
func ResultsFileName(driver string) string {
	return "results_" + driver + ".txt"
}

// WriteResultsFile writes the schedule into dir and returns the file path.
func WriteResultsFile(dir string, schedule *sched.Schedule) (string, error) {
	path := filepath.Join(dir, ResultsFileName(schedule.Driver))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := WriteResults(f, schedule); err != nil {
		f.Close()

		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, f.Close()
}

var eventsHeader = []string{"driver", "time", "event", "task_id", "server_id", "value"}

// WriteEvents exports the event log of every schedule as CSV.
func WriteEvents(w io.Writer, schedules ...*sched.Schedule) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(eventsHeader); err != nil {
		return err
	}

	for _, schedule := range schedules {
		for _, event := range schedule.Events {
			rec := []string{
				schedule.Driver,
				formatTime(event.Time),
				event.Kind.String(),
				strconv.Itoa(int(event.TaskID)),
				strconv.Itoa(int(event.ServerID)),
				fmt.Sprintf("%.4f", event.Value),
			}

			if err := writer.Write(rec); err != nil {
				return err
			}
		}
	}

	writer.Flush()

	return writer.Error()
}

// Summary is a one line account of a schedule.
func Summary(schedule *sched.Schedule) string {
	var makespan float64
	for _, assignment := range schedule.Assignments {
		makespan = max(makespan, assignment.End)
	}

	return fmt.Sprintf(
		"%-9s assignments=%d makespan=%s energy=%.2f W deadline_misses=%d no_server=%d power_cap_warnings=%d",
		schedule.Driver,
		len(schedule.Assignments),
		formatTime(makespan),
		schedule.Energy,
		sched.Count(schedule.Events, sched.EventDeadlineMiss),
		sched.Count(schedule.Events, sched.EventNoServer),
		sched.Count(schedule.Events, sched.EventPowerCapExceeded),
	)
}
