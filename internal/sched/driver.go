package sched

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrUnknownDriver = errors.New("unknown driver")

// Driver is one dispatch policy running over its own Core.
type Driver interface {
	Name() string
	Run(ctx context.Context) (*Schedule, error)
}

// DriverNames lists the policies in the order they are run by Simulate.
func DriverNames() []string {
	return []string{DriverWaveFront, DriverFIFO, DriverCPM}
}

// NewDriver builds the named policy over an independent copy of data.
// Names are matched case-insensitively.
func NewDriver(name string, data *Dataset, cfg Config, logger *slog.Logger) (Driver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var canonical string

	for _, candidate := range DriverNames() {
		if strings.EqualFold(candidate, name) {
			canonical = candidate
		}
	}

	if canonical == "" {
		return nil,
			fmt.Errorf("%w %q", ErrUnknownDriver, name)
	}

	core, errCore := NewCore(
		data.Clone(),
		cfg,
		logger.With("driver", canonical),
	)
	if errCore != nil {
		return nil, errCore
	}

	switch canonical {
	case DriverWaveFront:
		return NewWaveFront(core, cfg.MaxTimesteps), nil

	case DriverFIFO:
		return NewFIFO(core, cfg.MaxTicks), nil

	default:
		return NewCPM(core), nil
	}
}

// Simulate runs every named driver in turn, each on its own copy of data.
// A driver failing with ErrExhausted still contributes its partial schedule.
func Simulate(ctx context.Context, names []string, data *Dataset, cfg Config, logger *slog.Logger) ([]*Schedule, error) {
	if logger == nil {
		logger = slog.Default()
	}

	result := make([]*Schedule, 0, len(names))

	for _, name := range names {
		driver, errDriver := NewDriver(name, data, cfg, logger)
		if errDriver != nil {
			return result, errDriver
		}

		schedule, errRun := driver.Run(ctx)
		if schedule != nil {
			result = append(result, schedule)
		}

		if errRun != nil {
			if errors.Is(errRun, ErrExhausted) {
				logger.Error("driver stopped early", "driver", driver.Name(), "error", errRun)

				continue
			}

			return result, fmt.Errorf("%s: %w", driver.Name(), errRun)
		}

		logger.Info(
			"schedule built",
			"driver", driver.Name(),
			"assignments", len(schedule.Assignments),
			"energy", schedule.Energy,
			"deadline_misses", Count(schedule.Events, EventDeadlineMiss),
		)
	}

	return result, nil
}
