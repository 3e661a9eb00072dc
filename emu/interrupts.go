package emu

import (
	"fmt"
	"sort"
)

// Standard RV32 interrupt ids.
const (
	SoftwareInterrupt = 3
	TimerInterrupt    = 7
	ExternalInterrupt = 11
)

// Interrupt describes a registered interrupt source. Lower priority
// values are more urgent.
type Interrupt struct {
	ID          int
	Priority    int
	HandlerAddr uint32
	Description string
	Pending     bool
}

// InterruptController keeps a priority-ordered registry of pending
// interrupts. The simulator queries it once per step.
type InterruptController struct {
	interrupts map[int]*Interrupt
	enabled    bool
}

// NewInterruptController creates an enabled controller with the three
// standard interrupts (software, timer, external) pre-registered.
func NewInterruptController() *InterruptController {
	c := &InterruptController{
		interrupts: make(map[int]*Interrupt),
		enabled:    true,
	}

	c.Register(TimerInterrupt, 10, 0x100, "Timer Interrupt")
	c.Register(ExternalInterrupt, 20, 0x200, "External Interrupt")
	c.Register(SoftwareInterrupt, 30, 0x300, "Software Interrupt")

	return c
}

// Register adds an interrupt source. Registering an existing id
// replaces its descriptor.
func (c *InterruptController) Register(id, priority int, handlerAddr uint32, description string) *Interrupt {
	irq := &Interrupt{
		ID:          id,
		Priority:    priority,
		HandlerAddr: handlerAddr,
		Description: description,
	}
	c.interrupts[id] = irq
	return irq
}

// Trigger marks the interrupt pending.
func (c *InterruptController) Trigger(id int) error {
	irq, ok := c.interrupts[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInterrupt, id)
	}
	irq.Pending = true
	return nil
}

// Clear clears the interrupt's pending flag.
func (c *InterruptController) Clear(id int) error {
	irq, ok := c.interrupts[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInterrupt, id)
	}
	irq.Pending = false
	return nil
}

// HasPending reports whether any interrupt is pending. A disabled
// controller masks pending flags without clearing them.
func (c *InterruptController) HasPending() bool {
	if !c.enabled {
		return false
	}
	for _, irq := range c.interrupts {
		if irq.Pending {
			return true
		}
	}
	return false
}

// HighestPriorityPending returns the most urgent pending interrupt,
// or nil when nothing is pending or the controller is disabled.
// Equal priorities tie-break deterministically on the lowest id.
func (c *InterruptController) HighestPriorityPending() *Interrupt {
	if !c.enabled {
		return nil
	}

	var best *Interrupt
	for _, irq := range c.interrupts {
		if !irq.Pending {
			continue
		}
		if best == nil || irq.Priority < best.Priority ||
			(irq.Priority == best.Priority && irq.ID < best.ID) {
			best = irq
		}
	}
	return best
}

// Enable unmasks the controller.
func (c *InterruptController) Enable() {
	c.enabled = true
}

// Disable masks the controller. Pending flags are retained.
func (c *InterruptController) Disable() {
	c.enabled = false
}

// Enabled reports whether the controller is unmasked.
func (c *InterruptController) Enabled() bool {
	return c.enabled
}

// Reset clears all pending flags and re-enables the controller.
func (c *InterruptController) Reset() {
	for _, irq := range c.interrupts {
		irq.Pending = false
	}
	c.enabled = true
}

// Pending returns the pending interrupts ordered by priority, then id.
func (c *InterruptController) Pending() []Interrupt {
	var pending []Interrupt
	for _, irq := range c.interrupts {
		if irq.Pending {
			pending = append(pending, *irq)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority < pending[j].Priority
		}
		return pending[i].ID < pending[j].ID
	})
	return pending
}
