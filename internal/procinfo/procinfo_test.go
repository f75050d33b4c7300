package procinfo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geophile/osh/internal/procinfo"
)

func TestDescendantsFindsIndirectChildren(t *testing.T) {
	all := []*procinfo.Process{
		{PID: 1, ParentPID: 0},
		{PID: 2, ParentPID: 1},
		{PID: 3, ParentPID: 2},
		{PID: 4, ParentPID: 1},
		{PID: 99, ParentPID: 50},
	}
	root := all[0]

	descendants := root.Descendants(all)

	var pids []int32
	for _, p := range descendants {
		pids = append(pids, p.PID)
	}
	assert.ElementsMatch(t, []int32{2, 3, 4}, pids)
}

func TestDescendantsOfLeafIsEmpty(t *testing.T) {
	all := []*procinfo.Process{
		{PID: 1, ParentPID: 0},
		{PID: 2, ParentPID: 1},
	}
	leaf := all[1]

	assert.Empty(t, leaf.Descendants(all))
}

func TestParentReturnsFalseForRootProcess(t *testing.T) {
	root := &procinfo.Process{PID: 1, ParentPID: 0}
	_, ok := root.Parent(nil)
	assert.False(t, ok)
}
