package input

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"powersched/internal/sched"
)

// Edge is a dependency pred -> succ read from the dependency table.
type Edge struct {
	Pred sched.TaskID
	Succ sched.TaskID
}

// lineReader feeds the data lines of a table to a parse function.
// The header and blank lines are dropped; lines failing to parse are logged.
type lineReader struct {
	source string
	logger *slog.Logger
}

func (lr *lineReader) each(r io.Reader, parse func(line string) error) error {
	scanner := bufio.NewScanner(r)

	var number int

	for scanner.Scan() {
		number++

		if number == 1 {
			continue // header
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if errParse := parse(line); errParse != nil {
			lr.logger.Warn(
				"skipping malformed line",
				"file", lr.source,
				"line", number,
				"error", errParse,
			)
		}
	}

	if errScan := scanner.Err(); errScan != nil {
		return fmt.Errorf("read %s: %w", lr.source, errScan)
	}

	return nil
}

func atoi(field, value string) (int, error) {
	result, errConv := strconv.Atoi(value)
	if errConv != nil {
		return 0, fmt.Errorf("%s: %w", field, errConv)
	}

	return result, nil
}

// ParseTasks reads rows "id arrival_date unit_of_work deadline period power".
// Periodic tasks get repeat-1 further instances. A row repeating an earlier
// task id is skipped like any other malformed line.
func ParseTasks(source string, r io.Reader, repeat int, logger *slog.Logger) ([]*sched.Task, error) {
	lr := lineReader{source: source, logger: logger}

	var result []*sched.Task

	seen := make(map[sched.TaskID]struct{})

	errRead := lr.each(
		r,
		func(line string) error {
			fields := strings.Fields(line)
			if len(fields) != 6 {
				return fmt.Errorf("want 6 fields, got %d", len(fields))
			}

			names := [6]string{"id", "arrival_date", "unit_of_work", "deadline", "period", "power"}

			var values [6]int

			for i, field := range fields {
				value, errConv := atoi(names[i], field)
				if errConv != nil {
					return errConv
				}

				values[i] = value
			}

			id := sched.TaskID(values[0])
			if _, duplicate := seen[id]; duplicate {
				return fmt.Errorf("duplicate task id %d", id)
			}

			task, errCr := sched.NewTask(
				&sched.ParamsNewTask{
					ID:          id,
					ArrivalDate: values[1],
					UnitOfWork:  values[2],
					Deadline:    values[3],
					Period:      values[4],
					Power:       values[5],
					Repeat:      extraInstances(values[4], repeat),
				},
			)
			if errCr != nil {
				return errCr
			}

			seen[id] = struct{}{}
			result = append(result, task)

			return nil
		},
	)

	return result, errRead
}

// extraInstances is the number of clones a task spawns after its first run.
func extraInstances(period, repeat int) int {
	if period == 0 {
		return 0
	}

	return max(repeat-1, 0)
}

// ParseDependencies reads rows "pred-succ". Spaces inside a row are ignored.
func ParseDependencies(source string, r io.Reader, logger *slog.Logger) ([]Edge, error) {
	lr := lineReader{source: source, logger: logger}

	var result []Edge

	errRead := lr.each(
		r,
		func(line string) error {
			pred, succ, found := strings.Cut(
				strings.ReplaceAll(line, " ", ""),
				"-",
			)
			if !found {
				return fmt.Errorf("missing '-' separator")
			}

			predID, errPred := atoi("pred", pred)
			if errPred != nil {
				return errPred
			}

			succID, errSucc := atoi("succ", succ)
			if errSucc != nil {
				return errSucc
			}

			result = append(result,
				Edge{
					Pred: sched.TaskID(predID),
					Succ: sched.TaskID(succID),
				},
			)

			return nil
		},
	)

	return result, errRead
}

// ParseServers reads rows "id static_power performance (f1 f2 ...) local_power_cap".
func ParseServers(source string, r io.Reader, logger *slog.Logger) ([]*sched.Server, error) {
	lr := lineReader{source: source, logger: logger}

	var result []*sched.Server

	errRead := lr.each(
		r,
		func(line string) error {
			open := strings.Index(line, "(")
			closing := strings.LastIndex(line, ")")

			if open < 0 || closing < open {
				return fmt.Errorf("missing frequency list")
			}

			head := strings.Fields(line[:open])
			if len(head) != 3 {
				return fmt.Errorf("want 3 fields before frequencies, got %d", len(head))
			}

			tail := strings.Fields(line[closing+1:])
			if len(tail) != 1 {
				return fmt.Errorf("want local_power_cap after frequencies, got %d fields", len(tail))
			}

			var frequencies []float64

			for _, field := range strings.Fields(line[open+1 : closing]) {
				frequency, errConv := strconv.ParseFloat(field, 64)
				if errConv != nil {
					return fmt.Errorf("frequency: %w", errConv)
				}

				frequencies = append(frequencies, frequency)
			}

			id, errID := atoi("id", head[0])
			if errID != nil {
				return errID
			}

			staticPower, errStatic := atoi("static_power", head[1])
			if errStatic != nil {
				return errStatic
			}

			performance, errPerf := atoi("performance", head[2])
			if errPerf != nil {
				return errPerf
			}

			powerCap, errCap := atoi("local_power_cap", tail[0])
			if errCap != nil {
				return errCap
			}

			server, errCr := sched.NewServer(
				&sched.ParamsNewServer{
					ID:            sched.ServerID(id),
					StaticPower:   staticPower,
					Performance:   performance,
					Frequencies:   frequencies,
					LocalPowerCap: powerCap,
				},
			)
			if errCr != nil {
				return errCr
			}

			result = append(result, server)

			return nil
		},
	)

	return result, errRead
}
