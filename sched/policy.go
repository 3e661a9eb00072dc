package sched

// Policy decides which ready task runs next and when the current task
// loses the CPU. Policies consult only the ready set and the current
// task; the scheduler core owns everything else (tick, aging, context
// switches). The ready slice is always sorted by ascending id.
type Policy interface {
	// Name is the short policy token used by configuration.
	Name() string

	// Pick selects the next task to run, or nil when nothing is
	// runnable. Returning the current task means "keep running it".
	Pick(ready []*Task, current *Task) *Task

	// CheckPreemption is called once per tick and reports whether the
	// current task should be rescheduled now.
	CheckPreemption(ready []*Task, current *Task) bool

	// NoteSwitch tells the policy a context switch happened, so
	// time-slice accounting can restart.
	NoteSwitch()
}

// bestPriority returns the ready task with the minimum priority value.
// Ties resolve to the lowest id because ready is id-sorted.
func bestPriority(ready []*Task) *Task {
	var best *Task
	for _, t := range ready {
		if best == nil || t.Priority < best.Priority {
			best = t
		}
	}
	return best
}

// PriorityPolicy runs the ready task with the lowest priority value
// and preempts the current task whenever a strictly more urgent task
// becomes ready.
type PriorityPolicy struct{}

// NewPriorityPolicy creates a priority-preemptive policy.
func NewPriorityPolicy() *PriorityPolicy {
	return &PriorityPolicy{}
}

func (p *PriorityPolicy) Name() string {
	return "priority"
}

func (p *PriorityPolicy) Pick(ready []*Task, _ *Task) *Task {
	return bestPriority(ready)
}

func (p *PriorityPolicy) CheckPreemption(ready []*Task, current *Task) bool {
	if current == nil {
		return false
	}
	best := bestPriority(ready)
	return best != nil && best.Priority < current.Priority
}

func (p *PriorityPolicy) NoteSwitch() {}

// RoundRobinPolicy rotates equal shares of the CPU in ascending-id
// circular order. Preemption happens only on time-slice expiry, never
// on priority.
type RoundRobinPolicy struct {
	timeSlice int
	slice     int
}

// DefaultTimeSlice is the round-robin slice length in ticks.
const DefaultTimeSlice = 10

// NewRoundRobinPolicy creates a round-robin policy with the given
// slice length in ticks. A non-positive slice falls back to
// DefaultTimeSlice.
func NewRoundRobinPolicy(timeSlice int) *RoundRobinPolicy {
	if timeSlice <= 0 {
		timeSlice = DefaultTimeSlice
	}
	return &RoundRobinPolicy{timeSlice: timeSlice}
}

func (p *RoundRobinPolicy) Name() string {
	return "round-robin"
}

// TimeSlice returns the slice length in ticks.
func (p *RoundRobinPolicy) TimeSlice() int {
	return p.timeSlice
}

// Pick returns the first ready task with an id above the current
// task's, wrapping to the lowest ready id. With no current task, or
// when the current task left the ready rotation, selection restarts
// from the lowest id.
func (p *RoundRobinPolicy) Pick(ready []*Task, current *Task) *Task {
	if len(ready) == 0 {
		return nil
	}
	if current != nil {
		for _, t := range ready {
			if t.ID > current.ID {
				return t
			}
		}
	}
	return ready[0]
}

func (p *RoundRobinPolicy) CheckPreemption(_ []*Task, current *Task) bool {
	if current == nil {
		return false
	}
	p.slice++
	return p.slice >= p.timeSlice
}

func (p *RoundRobinPolicy) NoteSwitch() {
	p.slice = 0
}

// FCFSPolicy runs the ready task that has waited longest (oldest
// last-run tick) and never preempts a running task.
type FCFSPolicy struct{}

// NewFCFSPolicy creates a first-come-first-served policy.
func NewFCFSPolicy() *FCFSPolicy {
	return &FCFSPolicy{}
}

func (p *FCFSPolicy) Name() string {
	return "fcfs"
}

func (p *FCFSPolicy) Pick(ready []*Task, current *Task) *Task {
	if current != nil && current.State == StateRunning {
		return current
	}

	var oldest *Task
	for _, t := range ready {
		if oldest == nil || t.LastRunTime < oldest.LastRunTime {
			oldest = t
		}
	}
	return oldest
}

func (p *FCFSPolicy) CheckPreemption(_ []*Task, _ *Task) bool {
	return false
}

func (p *FCFSPolicy) NoteSwitch() {}
