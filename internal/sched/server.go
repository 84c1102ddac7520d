package sched

import (
	goerrors "github.com/TudorHulban/go-errors"
	"github.com/asaskevich/govalidator"
)

type ServerID int

// Server is a single-tenant machine of the pool.
type Server struct {
	Frequencies []float64
	CurrentTask *Task

	ID             ServerID
	StaticPower    int
	Performance    int     // work units per tick
	LocalPowerCap  int     // limit for StaticPower + task power
	AvailableAfter float64 // remaining busy ticks
	Available      bool
}

type ParamsNewServer struct {
	Frequencies []float64 `valid:"required"`

	ID            ServerID
	StaticPower   int
	Performance   int `valid:"required"`
	LocalPowerCap int
}

func NewServer(params *ParamsNewServer) (*Server, error) {
	if _, errValidation := govalidator.ValidateStruct(params); errValidation != nil {
		return nil,
			goerrors.ErrServiceValidation{
				ServiceName: "sched",
				Caller:      "NewServer",
				Issue:       errValidation,
			}
	}

	if params.Performance < 0 {
		return nil,
			goerrors.ErrValidation{
				Caller: "NewServer",
				Issue: goerrors.ErrNegativeInput{
					InputName: "Performance",
				},
			}
	}

	if params.StaticPower < 0 {
		return nil,
			goerrors.ErrValidation{
				Caller: "NewServer",
				Issue: goerrors.ErrNegativeInput{
					InputName: "StaticPower",
				},
			}
	}

	return &Server{
			ID:            params.ID,
			StaticPower:   params.StaticPower,
			Performance:   params.Performance,
			LocalPowerCap: params.LocalPowerCap,
			Available:     true,

			Frequencies: append([]float64(nil), params.Frequencies...),
		},
		nil
}

// Admits reports whether the server is idle and can host the task
// within its local power cap.
func (s *Server) Admits(task *Task) bool {
	return s.Available &&
		task.Power+s.StaticPower <= s.LocalPowerCap
}

// Duration is the number of ticks the server needs for the task.
func (s *Server) Duration(task *Task) float64 {
	return float64(task.UnitOfWork) / float64(s.Performance)
}

// Energy uses the cubic dynamic power model at frequency index level.
// The static part is charged on every assignment.
func (s *Server) Energy(task *Task, level int) float64 {
	frequency := s.Frequencies[level]

	return float64(s.StaticPower) +
		float64(task.Power)/20*frequency*frequency*frequency
}

// Draw is the instantaneous power of the server and its running task.
func (s *Server) Draw() int {
	if s.CurrentTask == nil {
		return s.StaticPower
	}

	return s.StaticPower + s.CurrentTask.Power
}
