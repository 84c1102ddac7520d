package sched

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
)

var (
	ErrCycle       = errors.New("dependency graph contains a cycle")
	ErrUnknownTask = errors.New("unknown task")
)

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

// frame is one level of the explicit DFS stack.
type frame struct {
	task *Task
	next int // index of the next successor to visit
}

// ResolveCriticalTimes sets CriticalTime on every task to its own work plus
// the longest chain of work among its successors.
// The traversal is an iterative post-order walk with memoization; a back
// edge returns ErrCycle naming the tasks on the cycle.
func ResolveCriticalTimes(tasks []*Task, registry Registry) error {
	states := make(map[TaskID]visitState, len(tasks))

	for _, root := range tasks {
		if states[root.ID] == done {
			continue
		}

		stack := arraystack.New()
		stack.Push(&frame{task: root})
		states[root.ID] = inProgress

		for !stack.Empty() {
			top, _ := stack.Peek()
			current := top.(*frame)

			if current.next < len(current.task.Successors) {
				successorID := current.task.Successors[current.next]
				current.next++

				successor, exists := registry[successorID]
				if !exists {
					return fmt.Errorf(
						"%w %d, successor of task %d",
						ErrUnknownTask,
						successorID,
						current.task.ID,
					)
				}

				switch states[successorID] {
				case inProgress:
					return fmt.Errorf(
						"%w: %s",
						ErrCycle,
						describeCycle(stack, successorID),
					)

				case unvisited:
					states[successorID] = inProgress
					stack.Push(&frame{task: successor})
				}

				continue
			}

			longest := 0
			for _, successorID := range current.task.Successors {
				longest = max(longest, registry[successorID].CriticalTime)
			}

			current.task.CriticalTime = current.task.UnitOfWork + longest
			states[current.task.ID] = done

			stack.Pop()
		}
	}

	return nil
}

// describeCycle lists the IDs from the repeated task down to the top of the stack.
func describeCycle(stack *arraystack.Stack, repeated TaskID) string {
	var path []string

	// Values are in LIFO order.
	for _, value := range stack.Values() {
		id := value.(*frame).task.ID
		path = append(path, fmt.Sprint(id))

		if id == repeated {
			break
		}
	}

	slices.Reverse(path)

	return strings.Join(append(path, fmt.Sprint(repeated)), " -> ")
}
