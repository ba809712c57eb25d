package service

import (
	"fmt"
	"strings"
)

// GroupingStrategy splits already shuffled students into teams of at most
// maxSize students. The first student of each group leads it.
type GroupingStrategy interface {
	Name() string
	Plan(studentIDs []string, maxSize int) [][]string
}

const (
	GroupingGreedy   = "greedy"
	GroupingBalanced = "balanced"
)

// NewGroupingStrategy resolves a strategy by name. An empty name selects greedy.
func NewGroupingStrategy(name string) (GroupingStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", GroupingGreedy:
		return GreedyGrouping{}, nil
	case GroupingBalanced:
		return BalancedGrouping{}, nil
	default:
		return nil, fmt.Errorf("unknown grouping strategy %q", name)
	}
}

// GreedyGrouping fills each team up to maxSize before opening the next one.
// The last team may be smaller than the assignment minimum.
type GreedyGrouping struct{}

// Name implements GroupingStrategy.
func (GreedyGrouping) Name() string { return GroupingGreedy }

// Plan implements GroupingStrategy.
func (GreedyGrouping) Plan(studentIDs []string, maxSize int) [][]string {
	if maxSize < 1 {
		maxSize = 1
	}
	groups := make([][]string, 0, (len(studentIDs)+maxSize-1)/maxSize)
	for start := 0; start < len(studentIDs); start += maxSize {
		end := start + maxSize
		if end > len(studentIDs) {
			end = len(studentIDs)
		}
		groups = append(groups, append([]string(nil), studentIDs[start:end]...))
	}
	return groups
}

// BalancedGrouping opens the same number of teams as greedy, ceil(N/maxSize),
// but spreads students so sizes differ by at most one.
type BalancedGrouping struct{}

// Name implements GroupingStrategy.
func (BalancedGrouping) Name() string { return GroupingBalanced }

// Plan implements GroupingStrategy.
func (BalancedGrouping) Plan(studentIDs []string, maxSize int) [][]string {
	if maxSize < 1 {
		maxSize = 1
	}
	n := len(studentIDs)
	if n == 0 {
		return [][]string{}
	}
	count := (n + maxSize - 1) / maxSize
	base, extra := n/count, n%count
	groups := make([][]string, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		size := base
		if i < extra {
			size++
		}
		groups = append(groups, append([]string(nil), studentIDs[start:start+size]...))
		start += size
	}
	return groups
}
