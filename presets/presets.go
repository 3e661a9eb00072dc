// Package presets provides predefined task sets for quick demonstration
// scenarios, plus a Starlark loader for user-defined task sets.
package presets

import (
	"fmt"
	"os"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/rvos-project/rvos/sched"
)

// TaskSpec describes one task to create on a scheduler.
type TaskSpec struct {
	Name       string `json:"name"`
	Priority   int    `json:"priority"`
	EntryPoint uint32 `json:"entry_point"`
}

// Preset is a named set of tasks for a demonstration scenario.
type Preset struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tasks       []TaskSpec `json:"tasks"`
}

var builtins = map[string]*Preset{
	"basic": {
		Name:        "basic",
		Description: "Basic set of 3 tasks with different priorities",
		Tasks: []TaskSpec{
			{"HighPriorityTask", 1, 0x9000},
			{"MediumPriorityTask", 10, 0x9100},
			{"LowPriorityTask", 20, 0x9200},
		},
	},
	"priority_demo": {
		Name:        "priority_demo",
		Description: "Set of 5 tasks to demonstrate priority scheduling",
		Tasks: []TaskSpec{
			{"Critical", 1, 0x9000},
			{"Important", 5, 0x9100},
			{"Normal1", 10, 0x9200},
			{"Normal2", 10, 0x9300},
			{"Background", 20, 0x9400},
		},
	},
	"round_robin_demo": {
		Name:        "round_robin_demo",
		Description: "Set of 4 tasks with the same priority for round-robin demonstration",
		Tasks: []TaskSpec{
			{"EqualTask1", 10, 0x9000},
			{"EqualTask2", 10, 0x9100},
			{"EqualTask3", 10, 0x9200},
			{"EqualTask4", 10, 0x9300},
		},
	},
	"mixed_priority": {
		Name:        "mixed_priority",
		Description: "Mix of high, medium and low priority tasks",
		Tasks: []TaskSpec{
			{"HighPriority1", 1, 0x9000},
			{"HighPriority2", 2, 0x9100},
			{"MediumPriority1", 8, 0x9200},
			{"MediumPriority2", 9, 0x9300},
			{"LowPriority1", 15, 0x9400},
			{"LowPriority2", 16, 0x9500},
		},
	},
	"blocking_demo": {
		Name:        "blocking_demo",
		Description: "Tasks for demonstrating blocking and unblocking",
		Tasks: []TaskSpec{
			{"BlockableHigh", 1, 0x9000},
			{"BlockableMed", 5, 0x9100},
			{"BlockableLow", 10, 0x9200},
			{"BackgroundTask", 20, 0x9300},
		},
	},
	"sleeping_demo": {
		Name:        "sleeping_demo",
		Description: "Tasks for demonstrating sleep functionality",
		Tasks: []TaskSpec{
			{"ShortSleeper", 5, 0x9000},
			{"MediumSleeper", 5, 0x9100},
			{"LongSleeper", 5, 0x9200},
			{"NonSleeper", 10, 0x9300},
		},
	},
	"aging_demo": {
		Name:        "aging_demo",
		Description: "Tasks for demonstrating the priority aging mechanism",
		Tasks: []TaskSpec{
			{"HighPriorityHog", 1, 0x9000},
			{"MediumTask1", 10, 0x9100},
			{"MediumTask2", 11, 0x9200},
			{"LowPriorityTask", 20, 0x9300},
			{"VeryLowPriorityTask", 30, 0x9400},
		},
	},
	"presentation": {
		Name:        "presentation",
		Description: "Comprehensive set of 25 tasks for a detailed presentation",
		Tasks: []TaskSpec{
			{"EmergencyHandler", 1, 0x9000},
			{"SystemMonitor", 2, 0x9100},
			{"SecurityManager", 3, 0x9200},
			{"PowerController", 4, 0x9300},
			{"ErrorHandler", 5, 0x9400},
			{"NetworkManager", 6, 0x9500},
			{"InputProcessor", 7, 0x9600},
			{"DisplayDriver", 8, 0x9700},
			{"AudioProcessor", 9, 0x9800},
			{"MemoryManager", 10, 0x9900},
			{"FileSystem", 11, 0x9A00},
			{"DatabaseService", 12, 0x9B00},
			{"UserInterface", 13, 0x9C00},
			{"ApplicationLogic", 14, 0x9D00},
			{"DataProcessor", 15, 0x9E00},
			{"LoggingService", 16, 0x9F00},
			{"BackupService", 17, 0xA000},
			{"UpdateChecker", 18, 0xA100},
			{"StatisticsCollector", 19, 0xA200},
			{"CacheManager", 20, 0xA300},
			{"CleanupService", 21, 0xA400},
			{"IndexBuilder", 22, 0xA500},
			{"NotificationService", 23, 0xA600},
			{"SynchronizationTask", 24, 0xA700},
			{"IdleTask", 25, 0xA800},
		},
	},
}

// Names returns the built-in preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the built-in preset with the given name.
func Get(name string) (*Preset, error) {
	preset, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("preset %q not found", name)
	}
	return preset, nil
}

// All returns every built-in preset sorted by name.
func All() []*Preset {
	all := make([]*Preset, 0, len(builtins))
	for _, preset := range builtins {
		all = append(all, preset)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Apply creates every task in the preset on the scheduler, in order.
func Apply(s *sched.Scheduler, preset *Preset) []*sched.Task {
	tasks := make([]*sched.Task, 0, len(preset.Tasks))
	for _, spec := range preset.Tasks {
		tasks = append(tasks, s.CreateTask(spec.Name, spec.Priority, spec.EntryPoint))
	}
	return tasks
}

// LoadStarlark reads a Starlark file that defines a global `tasks` list of
// dicts with keys name, priority, and entry_point, and optionally a global
// `description` string. For example:
//
//	description = "two workers"
//	tasks = [
//	    {"name": "Worker1", "priority": 5, "entry_point": 0x9000},
//	    {"name": "Worker2", "priority": 5, "entry_point": 0x9100},
//	]
func LoadStarlark(path string) (*Preset, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read preset file: %w", err)
	}
	return parseStarlark(path, src)
}

func parseStarlark(path string, src []byte) (*Preset, error) {
	thread := &starlark.Thread{Name: "preset"}
	opts := &syntax.FileOptions{}
	globals, err := starlark.ExecFileOptions(opts, thread, path, src, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate preset file: %w", err)
	}

	preset := &Preset{Name: path}
	if desc, ok := globals["description"]; ok {
		s, ok := starlark.AsString(desc)
		if !ok {
			return nil, fmt.Errorf("description must be a string, got %s", desc.Type())
		}
		preset.Description = s
	}

	tasksVal, ok := globals["tasks"]
	if !ok {
		return nil, fmt.Errorf("preset file must define a tasks list")
	}
	list, ok := tasksVal.(*starlark.List)
	if !ok {
		return nil, fmt.Errorf("tasks must be a list, got %s", tasksVal.Type())
	}

	for i := 0; i < list.Len(); i++ {
		dict, ok := list.Index(i).(*starlark.Dict)
		if !ok {
			return nil, fmt.Errorf("tasks[%d]: expected a dict, got %s",
				i, list.Index(i).Type())
		}
		spec, err := taskSpecFromDict(dict)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		preset.Tasks = append(preset.Tasks, spec)
	}

	if len(preset.Tasks) == 0 {
		return nil, fmt.Errorf("preset file defines no tasks")
	}

	return preset, nil
}

func taskSpecFromDict(dict *starlark.Dict) (TaskSpec, error) {
	var spec TaskSpec

	nameVal, found, err := dict.Get(starlark.String("name"))
	if err != nil || !found {
		return spec, fmt.Errorf("missing name")
	}
	name, ok := starlark.AsString(nameVal)
	if !ok {
		return spec, fmt.Errorf("name must be a string, got %s", nameVal.Type())
	}
	spec.Name = name

	priority, err := intField(dict, "priority")
	if err != nil {
		return spec, err
	}
	if priority < 1 {
		return spec, fmt.Errorf("priority must be at least 1, got %d", priority)
	}
	spec.Priority = int(priority)

	entry, err := intField(dict, "entry_point")
	if err != nil {
		return spec, err
	}
	if entry < 0 || entry > 0xFFFFFFFF {
		return spec, fmt.Errorf("entry_point out of range: %#x", entry)
	}
	spec.EntryPoint = uint32(entry)

	return spec, nil
}

func intField(dict *starlark.Dict, key string) (int64, error) {
	val, found, err := dict.Get(starlark.String(key))
	if err != nil || !found {
		return 0, fmt.Errorf("missing %s", key)
	}
	num, ok := val.(starlark.Int)
	if !ok {
		return 0, fmt.Errorf("%s must be an int, got %s", key, val.Type())
	}
	n, ok := num.Int64()
	if !ok {
		return 0, fmt.Errorf("%s out of range", key)
	}
	return n, nil
}
