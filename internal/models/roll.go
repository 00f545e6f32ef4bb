package models

import (
	"fmt"
	"strconv"
)

// RollRange describes the contiguous block of roll numbers to fetch, plus the
// one roll that is processed (and notified) ahead of the rest.
type RollRange struct {
	Prefix   string `yaml:"prefix" json:"prefix"`
	Start    int    `yaml:"start" json:"start"`
	End      int    `yaml:"end" json:"end"`
	Priority int    `yaml:"priority" json:"priority"`
}

// Validate checks Start <= Priority <= End and a non-empty prefix.
func (r RollRange) Validate() error {
	if r.Prefix == "" {
		return fmt.Errorf("roll prefix must not be empty")
	}
	if r.Start > r.End {
		return fmt.Errorf("roll range start %d is after end %d", r.Start, r.End)
	}
	if r.Priority < r.Start || r.Priority > r.End {
		return fmt.Errorf("priority roll %d is outside %d..%d", r.Priority, r.Start, r.End)
	}
	return nil
}

// Sequence returns the processing order: the priority roll first, then every
// other roll in ascending order. Each number appears exactly once.
func (r RollRange) Sequence() []int {
	if r.Start > r.End {
		return nil
	}
	seq := make([]int, 0, r.End-r.Start+1)
	inRange := r.Priority >= r.Start && r.Priority <= r.End
	if inRange {
		seq = append(seq, r.Priority)
	}
	for n := r.Start; n <= r.End; n++ {
		if inRange && n == r.Priority {
			continue
		}
		seq = append(seq, n)
	}
	return seq
}

// Size is the number of rolls in the range.
func (r RollRange) Size() int {
	if r.Start > r.End {
		return 0
	}
	return r.End - r.Start + 1
}

// Label is the full roll number typed into the lookup form.
func (r RollRange) Label(n int) string {
	return r.Prefix + strconv.Itoa(n)
}
