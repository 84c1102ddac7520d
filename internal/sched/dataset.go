package sched

import (
	"fmt"
)

// Registry maps a task ID to its live instance.
type Registry map[TaskID]*Task

func NewRegistry(tasks []*Task) (Registry, error) {
	result := make(Registry, len(tasks))

	for _, task := range tasks {
		if _, exists := result[task.ID]; exists {
			return nil,
				fmt.Errorf("task %d already exists", task.ID)
		}

		result[task.ID] = task
	}

	return result, nil
}

// Dataset is the loaded input of one simulation.
type Dataset struct {
	Tasks   []*Task
	Servers []*Server
}

// Clone deep-copies tasks and servers so that drivers never share state.
func (d *Dataset) Clone() *Dataset {
	result := Dataset{
		Tasks:   make([]*Task, 0, len(d.Tasks)),
		Servers: make([]*Server, 0, len(d.Servers)),
	}

	copies := make(map[*Task]*Task, len(d.Tasks))

	for _, task := range d.Tasks {
		taskCopy := task.copy()
		copies[task] = taskCopy

		result.Tasks = append(result.Tasks, taskCopy)
	}

	for _, server := range d.Servers {
		serverCopy := *server
		serverCopy.Frequencies = append([]float64(nil), server.Frequencies...)

		if server.CurrentTask != nil {
			if taskCopy, known := copies[server.CurrentTask]; known {
				serverCopy.CurrentTask = taskCopy
			} else {
				serverCopy.CurrentTask = server.CurrentTask.copy()
			}
		}

		result.Servers = append(result.Servers, &serverCopy)
	}

	return &result
}
