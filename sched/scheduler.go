package sched

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/rvos-project/rvos/emu"
)

var (
	// ErrTaskNotFound reports a lifecycle operation on an unknown id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrPolicyViolation reports an internal invariant failure, such
	// as switching to a terminated task.
	ErrPolicyViolation = errors.New("scheduling policy violation")
)

// DefaultStackTop is the high memory mark stacks grow down from.
const DefaultStackTop = 0x80000000

// DefaultStackSize is the per-task stack allocation in bytes.
const DefaultStackSize = 1024

// DefaultAgingThreshold is the wait in ticks before a ready task's
// priority starts improving.
const DefaultAgingThreshold = 100

// Scheduler owns the task table and multiplexes the register file
// across tasks under a pluggable policy. It assumes single-threaded
// access; a tick completes fully before the next instruction fetch.
type Scheduler struct {
	regFile *emu.RegFile
	policy  Policy

	tasks     map[int]*Task
	currentID int // 0 means idle
	nextID    int

	tickCount       uint64
	contextSwitches uint64
	preemptions     uint64

	agingEnabled     bool
	agingThreshold   uint64
	stackTop         uint32
	defaultStackSize int

	logger io.Writer // nil disables verbose logging
}

// Option is a functional option for configuring the Scheduler.
type Option func(*Scheduler)

// WithAging enables or disables the aging mechanism.
func WithAging(enabled bool) Option {
	return func(s *Scheduler) {
		s.agingEnabled = enabled
	}
}

// WithAgingThreshold sets the wait in ticks before aging applies.
func WithAgingThreshold(ticks uint64) Option {
	return func(s *Scheduler) {
		s.agingThreshold = ticks
	}
}

// WithStackTop sets the high memory mark stacks grow down from.
func WithStackTop(addr uint32) Option {
	return func(s *Scheduler) {
		s.stackTop = addr
	}
}

// WithDefaultStackSize sets the per-task stack allocation in bytes.
func WithDefaultStackSize(size int) Option {
	return func(s *Scheduler) {
		s.defaultStackSize = size
	}
}

// WithLogger enables verbose lifecycle logging to w.
func WithLogger(w io.Writer) Option {
	return func(s *Scheduler) {
		s.logger = w
	}
}

// New creates a scheduler over the simulator's register file with the
// given policy.
func New(regFile *emu.RegFile, policy Policy, opts ...Option) *Scheduler {
	s := &Scheduler{
		regFile:          regFile,
		policy:           policy,
		tasks:            make(map[int]*Task),
		nextID:           1,
		agingEnabled:     true,
		agingThreshold:   DefaultAgingThreshold,
		stackTop:         DefaultStackTop,
		defaultStackSize: DefaultStackSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Policy returns the scheduling policy.
func (s *Scheduler) Policy() Policy {
	return s.policy
}

// TickCount returns the current logical time.
func (s *Scheduler) TickCount() uint64 {
	return s.tickCount
}

// CurrentTask returns the running task, or nil when idle.
func (s *Scheduler) CurrentTask() *Task {
	if s.currentID == 0 {
		return nil
	}
	return s.tasks[s.currentID]
}

// Task returns the task with the given id.
func (s *Scheduler) Task(id int) (*Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return task, nil
}

// Tasks returns all tasks sorted by id, including terminated ones.
func (s *Scheduler) Tasks() []*Task {
	all := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// readyTasks returns the ready set sorted by id.
func (s *Scheduler) readyTasks() []*Task {
	var ready []*Task
	for _, t := range s.tasks {
		if t.State == StateReady {
			ready = append(ready, t)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].ID < ready[j].ID })
	return ready
}

// CreateTask adds a READY task with the next sequential id. Its stack
// pointer is a disjoint region below the stack top, never reused
// across tasks.
func (s *Scheduler) CreateTask(name string, priority int, entryPoint uint32) *Task {
	id := s.nextID
	s.nextID++

	task := &Task{
		ID:               id,
		Name:             name,
		Priority:         priority,
		OriginalPriority: priority,
		EntryPoint:       entryPoint,
		StackSize:        s.defaultStackSize,
		StackPointer:     s.stackTop - uint32(id*s.defaultStackSize),
		State:            StateReady,
		CreationTime:     s.tickCount,
	}
	s.tasks[id] = task

	s.logf("created %s, sp=0x%08x", task, task.StackPointer)
	return task
}

// TerminateTask moves the task to TERMINATED. Terminating an already
// terminated task is a no-op. The task stays in the table for stats.
func (s *Scheduler) TerminateTask(id int) error {
	task, err := s.Task(id)
	if err != nil {
		return err
	}
	if task.State == StateTerminated {
		return nil
	}

	task.State = StateTerminated
	s.logf("terminated %s", task)
	s.rescheduleIfCurrent(id)
	return nil
}

// BlockTask moves a READY or RUNNING task to BLOCKED.
func (s *Scheduler) BlockTask(id int) error {
	task, err := s.Task(id)
	if err != nil {
		return err
	}
	if task.State != StateReady && task.State != StateRunning {
		return nil
	}

	task.State = StateBlocked
	s.logf("blocked %s", task)
	s.rescheduleIfCurrent(id)
	return nil
}

// UnblockTask moves a BLOCKED task back to READY. Any other state is
// left alone.
func (s *Scheduler) UnblockTask(id int) error {
	task, err := s.Task(id)
	if err != nil {
		return err
	}
	if task.State == StateBlocked {
		task.State = StateReady
		s.logf("unblocked %s", task)
	}
	return nil
}

// SleepTask moves a READY or RUNNING task to SLEEPING until the wake
// tick arrives.
func (s *Scheduler) SleepTask(id int, ticks uint64) error {
	task, err := s.Task(id)
	if err != nil {
		return err
	}
	if task.State != StateReady && task.State != StateRunning {
		return nil
	}

	task.State = StateSleeping
	task.WakeTime = s.tickCount + ticks
	s.logf("sleeping %s until tick %d", task, task.WakeTime)
	s.rescheduleIfCurrent(id)
	return nil
}

// rescheduleIfCurrent drops the current task reference and reschedules
// when the task that just left READY/RUNNING was the current one.
func (s *Scheduler) rescheduleIfCurrent(id int) {
	if s.currentID == id {
		s.currentID = 0
		s.Schedule()
	}
}

// Tick advances logical time by one unit: wake sleeping tasks whose
// time has arrived, apply aging, account runtime, then let the policy
// decide on preemption.
func (s *Scheduler) Tick() {
	s.tickCount++

	for _, t := range s.tasks {
		if t.State == StateSleeping && t.WakeTime <= s.tickCount {
			t.State = StateReady
			s.logf("woke %s", t)
		}
	}

	if s.agingEnabled {
		s.applyAging()
	}

	if cur := s.CurrentTask(); cur != nil {
		cur.TotalRuntime++
	}

	if s.policy.CheckPreemption(s.readyTasks(), s.CurrentTask()) {
		s.preemptions++
		s.Schedule()
	}
}

// applyAging improves the priority of ready tasks that have waited
// beyond the threshold by 1 per tick, never below 1.
func (s *Scheduler) applyAging() {
	for _, t := range s.tasks {
		if t.State != StateReady || t.Priority <= 1 {
			continue
		}
		if s.tickCount-t.LastRunTime > s.agingThreshold {
			t.Priority--
			s.logf("aged %s", t)
		}
	}
}

// Schedule asks the policy for the next task and context-switches to
// it when it differs from the current one. With nothing runnable and a
// current task present, the scheduler switches to idle.
func (s *Scheduler) Schedule() *Task {
	current := s.CurrentTask()
	next := s.policy.Pick(s.readyTasks(), current)

	if next == nil {
		if current != nil {
			s.mustContextSwitch(nil)
		}
		return s.CurrentTask()
	}

	if next != current {
		s.mustContextSwitch(next)
	}
	return next
}

// mustContextSwitch performs a switch the policy already validated.
func (s *Scheduler) mustContextSwitch(next *Task) {
	if err := s.ContextSwitch(next); err != nil {
		panic(err)
	}
}

// ContextSwitch saves the current task's register snapshot, demotes it
// RUNNING→READY, and adopts next: restoring its saved context, or on
// first run resetting the register file to its entry point and stack
// pointer. Switching to nil idles the CPU. The context-switch counter
// increments either way. This is the only place that touches both the
// task table and the live register file.
func (s *Scheduler) ContextSwitch(next *Task) error {
	if next != nil && next.State == StateTerminated {
		return fmt.Errorf("%w: task %d is terminated", ErrPolicyViolation, next.ID)
	}

	if cur := s.CurrentTask(); cur != nil {
		if cur.State == StateRunning {
			cur.State = StateReady
		}
		cur.Context = s.regFile.SaveContext()
		cur.LastRunTime = s.tickCount
		s.logf("saved context of %s", cur)
	}

	s.currentID = 0
	if next != nil {
		if next.Context != nil {
			if err := s.regFile.RestoreContext(next.Context); err != nil {
				return err
			}
			s.logf("restored context of %s", next)
		} else {
			// First run: fresh registers, entry point, stack pointer.
			s.regFile.Reset()
			s.regFile.SetPC(next.EntryPoint)
			if err := s.regFile.Write(emu.RegSP, next.StackPointer); err != nil {
				return err
			}
			s.logf("initialized %s at 0x%08x", next, next.EntryPoint)
		}

		next.State = StateRunning
		next.RunCount++
		s.currentID = next.ID
	}

	s.contextSwitches++
	s.policy.NoteSwitch()
	return nil
}

// TaskStat is one row of the task statistics table.
type TaskStat struct {
	ID               int
	Name             string
	Priority         int
	OriginalPriority int
	State            TaskState
	RunCount         uint64
	TotalRuntime     uint64
	CreationTime     uint64
}

// TaskStats returns per-task statistics sorted by id.
func (s *Scheduler) TaskStats() []TaskStat {
	tasks := s.Tasks()
	stats := make([]TaskStat, 0, len(tasks))
	for _, t := range tasks {
		stats = append(stats, TaskStat{
			ID:               t.ID,
			Name:             t.Name,
			Priority:         t.Priority,
			OriginalPriority: t.OriginalPriority,
			State:            t.State,
			RunCount:         t.RunCount,
			TotalRuntime:     t.TotalRuntime,
			CreationTime:     t.CreationTime,
		})
	}
	return stats
}

// Stats holds scheduler-level counters.
type Stats struct {
	TickCount       uint64
	ContextSwitches uint64
	Preemptions     uint64
	TaskCount       int
	RunningTaskID   int // 0 when idle
}

// SchedulerStats returns the scheduler-level counters.
func (s *Scheduler) SchedulerStats() Stats {
	return Stats{
		TickCount:       s.tickCount,
		ContextSwitches: s.contextSwitches,
		Preemptions:     s.preemptions,
		TaskCount:       len(s.tasks),
		RunningTaskID:   s.currentID,
	}
}

// logf writes a verbose log line when a logger is configured.
func (s *Scheduler) logf(format string, args ...any) {
	if s.logger == nil {
		return
	}
	fmt.Fprintf(s.logger, "[sched] "+format+"\n", args...)
}
