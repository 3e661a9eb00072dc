// Package sched implements the task lifecycle state machine and the
// scheduling policies that multiplex the simulated processor across
// tasks: priority-preemptive, round-robin with time slicing, and
// first-come-first-served. The scheduler owns the task table and
// shares the simulator's register file for context save and restore;
// it never touches memory.
package sched

import (
	"fmt"

	"github.com/rvos-project/rvos/emu"
)

// TaskState is the lifecycle state of a task. State transitions happen
// only through the scheduler's lifecycle operations.
type TaskState uint8

const (
	// StateReady means the task is runnable and waiting for the CPU.
	StateReady TaskState = iota
	// StateRunning means the task is the current task.
	StateRunning
	// StateBlocked means the task is waiting for an explicit unblock.
	StateBlocked
	// StateSleeping means the task is waiting for its wake tick.
	StateSleeping
	// StateTerminated is terminal. Terminated tasks stay in the task
	// table for inspection but are never selected again.
	StateTerminated
)

// String returns the state name.
func (s TaskState) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateBlocked:
		return "BLOCKED"
	case StateSleeping:
		return "SLEEPING"
	case StateTerminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("TaskState(%d)", uint8(s))
	}
}

// Task is a schedulable unit of work. All times are scheduler ticks.
type Task struct {
	// ID is unique and monotonically assigned, starting at 1.
	ID int

	Name string

	// Priority is the effective priority; lower values are more
	// urgent. Aging lowers it toward 1.
	Priority int

	// OriginalPriority is the immutable priority the task was created
	// with, kept as the baseline for aging and reset.
	OriginalPriority int

	// EntryPoint is the address execution starts at on first run.
	EntryPoint uint32

	// StackSize is the task's stack allocation in bytes.
	StackSize int

	// StackPointer is computed at creation and never reused across
	// tasks.
	StackPointer uint32

	State TaskState

	// Context is the saved register snapshot, nil until the task has
	// been switched away from at least once.
	Context *emu.Context

	// WakeTime is the tick a sleeping task becomes ready again.
	WakeTime uint64

	CreationTime uint64
	LastRunTime  uint64
	TotalRuntime uint64
	RunCount     uint64
}

// String renders the task for logs and the CLI task table.
func (t *Task) String() string {
	return fmt.Sprintf("Task(id=%d, name=%q, priority=%d, state=%s)",
		t.ID, t.Name, t.Priority, t.State)
}
