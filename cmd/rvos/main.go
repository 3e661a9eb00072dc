// Package main provides the rvos command line interface: an RV32IM
// simulator driven by a multitasking scheduler.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rvos-project/rvos/emu"
	"github.com/rvos-project/rvos/loader"
	"github.com/rvos-project/rvos/mem/cache"
	"github.com/rvos-project/rvos/presets"
	"github.com/rvos-project/rvos/progs"
	"github.com/rvos-project/rvos/sched"
)

var (
	policyFlag  = flag.String("scheduler", "", "Scheduling policy: priority, round-robin, or fcfs")
	timeSlice   = flag.Int("time-slice", 0, "Round-robin time slice in ticks")
	configPath  = flag.String("config", "", "Path to scheduler configuration JSON file")
	presetName  = flag.String("preset", "", "Built-in preset task set to load")
	presetFile  = flag.String("preset-file", "", "Path to a Starlark preset file")
	listPresets = flag.Bool("list-presets", false, "List built-in presets and exit")
	baseAddr    = flag.Uint("base", 0, "Load address override for a single program file")
	ticks       = flag.Int("ticks", 200, "Number of scheduler ticks to simulate")
	cycles      = flag.Int("cycles", 10, "Instructions to execute per tick")
	memSize     = flag.Int("mem", 0, "Memory size in bytes (0 for the default)")
	fetchCache  = flag.Bool("cache", false, "Enable the instruction fetch cache")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if *listPresets {
		for _, p := range presets.All() {
			fmt.Printf("%-18s %2d tasks  %s\n", p.Name, len(p.Tasks), p.Description)
		}
		return
	}

	config, err := schedulerConfig()
	if err != nil {
		fatalf("%v", err)
	}

	simOpts := []emu.SimulatorOption{}
	if *memSize > 0 {
		simOpts = append(simOpts, emu.WithMemorySize(*memSize))
	}
	if *fetchCache {
		simOpts = append(simOpts, emu.WithFetchCache(cache.DefaultFetchConfig()))
	}
	sim := emu.NewSimulator(simOpts...)

	schedOpts := []sched.Option{}
	if *verbose {
		schedOpts = append(schedOpts, sched.WithLogger(os.Stdout))
	}
	scheduler, err := sched.NewFromConfig(sim.RegFile(), config, schedOpts...)
	if err != nil {
		fatalf("%v", err)
	}

	if err := loadPrograms(sim, scheduler); err != nil {
		fatalf("%v", err)
	}

	if len(scheduler.Tasks()) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: rvos [options] [program.hex ...]\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Policy: %s\n", scheduler.Policy().Name())
		fmt.Printf("Tasks: %d\n", len(scheduler.Tasks()))
	}

	runSimulation(sim, scheduler)
	printReport(sim, scheduler)
}

// schedulerConfig builds the scheduler configuration from the config
// file, with individual flags overriding file values.
func schedulerConfig() (*sched.Config, error) {
	config := sched.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = sched.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *policyFlag != "" {
		config.Policy = *policyFlag
	}
	if *timeSlice > 0 {
		config.TimeSlice = *timeSlice
	}
	return config, nil
}

// loadPrograms populates memory and the task table from the preset
// flags and positional hex program files.
func loadPrograms(sim *emu.Simulator, scheduler *sched.Scheduler) error {
	var preset *presets.Preset
	var err error

	switch {
	case *presetFile != "":
		preset, err = presets.LoadStarlark(*presetFile)
	case *presetName != "":
		preset, err = presets.Get(*presetName)
	case flag.NArg() == 0:
		preset, err = presets.Get("basic")
	}
	if err != nil {
		return err
	}

	if preset != nil {
		presets.Apply(scheduler, preset)
		if flag.NArg() == 0 {
			// Preset tasks without program files all run the built-in
			// counter loop at their entry points.
			demo := progs.Counter()
			for _, spec := range preset.Tasks {
				if err := sim.LoadProgram(demo.Words, spec.EntryPoint); err != nil {
					return err
				}
			}
			return nil
		}
	}

	if *baseAddr != 0 && flag.NArg() != 1 {
		return fmt.Errorf("-base requires exactly one program file")
	}

	for _, path := range flag.Args() {
		prog, err := loader.Load(path)
		if err != nil {
			return err
		}
		base := prog.Base
		if *baseAddr != 0 {
			base = uint32(*baseAddr)
		}
		if err := sim.LoadProgram(prog.Words, base); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}

		if preset == nil {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			scheduler.CreateTask(name, 10, base)
		}
	}
	return nil
}

// runSimulation drives the tick loop: every tick the scheduler decides
// who runs, then the simulator executes that task's instructions. A
// task whose program ends is terminated and the rest keep going.
func runSimulation(sim *emu.Simulator, scheduler *sched.Scheduler) {
	scheduler.Schedule()

	for i := 0; i < *ticks; i++ {
		scheduler.Tick()
		if scheduler.CurrentTask() == nil {
			scheduler.Schedule()
		}

		current := scheduler.CurrentTask()
		if current == nil {
			continue
		}

		if !sim.Running() {
			sim.Resume()
		}
		sim.Run(uint64(*cycles))
		if !sim.Running() {
			if *verbose {
				fmt.Printf("Task %d (%s) finished at tick %d\n",
					current.ID, current.Name, scheduler.TickCount())
			}
			_ = scheduler.TerminateTask(current.ID)
		}
	}
}

// printReport prints the per-task table and the run counters.
func printReport(sim *emu.Simulator, scheduler *sched.Scheduler) {
	fmt.Printf("\n%-4s %-22s %-10s %-8s %-6s %-8s\n",
		"ID", "Name", "State", "Prio", "Runs", "Runtime")
	for _, row := range scheduler.TaskStats() {
		prio := fmt.Sprintf("%d", row.Priority)
		if row.Priority != row.OriginalPriority {
			prio = fmt.Sprintf("%d<-%d", row.Priority, row.OriginalPriority)
		}
		fmt.Printf("%-4d %-22s %-10s %-8s %-6d %-8d\n",
			row.ID, row.Name, row.State, prio, row.RunCount, row.TotalRuntime)
	}

	stats := scheduler.SchedulerStats()
	fmt.Printf("\nTicks: %d\n", stats.TickCount)
	fmt.Printf("Context switches: %d\n", stats.ContextSwitches)
	fmt.Printf("Preemptions: %d\n", stats.Preemptions)
	fmt.Printf("Instructions executed: %d\n", sim.CycleCount())

	if cacheStats := sim.State().CacheStats; cacheStats != nil {
		hitRate := 0.0
		if cacheStats.Reads > 0 {
			hitRate = 100.0 * float64(cacheStats.Hits) / float64(cacheStats.Reads)
		}
		fmt.Printf("Fetch cache: %d reads, %d hits (%.1f%%), %d evictions\n",
			cacheStats.Reads, cacheStats.Hits, hitRate, cacheStats.Evictions)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "rvos: "+format+"\n", args...)
	os.Exit(1)
}
