// SPDX-License-Identifier: Unlicense OR MIT

// Package procsnapshot enumerates running processes for the config
// authoring tool, so a user can pick an executable to override by name
// instead of typing it blind.
package procsnapshot

import (
	"context"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// Entry is one running process, as presented to a human picking a
// target for a per-app override.
type Entry struct {
	PID  int32
	Exe  string
	Name string
}

// List returns one Entry per running process, sorted by executable
// name and then by PID; DistinctExeNames collapses it to unique names.
// Processes gopsutil cannot
// inspect (permission denied, already exited) are skipped rather than
// failing the whole snapshot.
func List(ctx context.Context) ([]Entry, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		exe, err := p.ExeWithContext(ctx)
		if err != nil {
			exe = name
		}
		entries = append(entries, Entry{PID: p.Pid, Exe: baseName(exe), Name: name})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Exe != entries[j].Exe {
			return entries[i].Exe < entries[j].Exe
		}
		return entries[i].PID < entries[j].PID
	})
	return entries, nil
}

// DistinctExeNames collapses List's output to the unique set of
// executable names, for populating a selection prompt.
func DistinctExeNames(entries []Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		key := strings.ToLower(e.Exe)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, e.Exe)
	}
	sort.Strings(names)
	return names
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '\\' || path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
