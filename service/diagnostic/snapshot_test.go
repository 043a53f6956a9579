package diagnostic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestProfile() *profile.Profile {
	mallocgc := &profile.Function{ID: 1, Name: "runtime.makeslice", Filename: "/go/src/runtime/slice.go"}
	load := &profile.Function{ID: 2, Name: "example.com/job.load", Filename: "/src/job/load.go"}
	parse := &profile.Function{ID: 3, Name: "example.com/job.parse", Filename: "/src/job/parse.go"}
	main := &profile.Function{ID: 4, Name: "main.main", Filename: "/src/job/main.go"}

	runtimeLoc := &profile.Location{ID: 1, Line: []profile.Line{{Function: mallocgc, Line: 10}}}
	loadLoc := &profile.Location{ID: 2, Line: []profile.Line{{Function: load, Line: 42}}}
	parseLoc := &profile.Location{ID: 3, Line: []profile.Line{{Function: parse, Line: 7}}}
	mainLoc := &profile.Location{ID: 4, Line: []profile.Line{{Function: main, Line: 3}}}

	return &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "alloc_objects", Unit: "count"},
			{Type: "alloc_space", Unit: "bytes"},
			{Type: "inuse_objects", Unit: "count"},
			{Type: "inuse_space", Unit: "bytes"},
		},
		Sample: []*profile.Sample{
			{Location: []*profile.Location{runtimeLoc, loadLoc, mainLoc}, Value: []int64{9, 9000, 4, 4096}},
			{Location: []*profile.Location{loadLoc, mainLoc}, Value: []int64{1, 1024, 1, 1024}},
			{Location: []*profile.Location{parseLoc, mainLoc}, Value: []int64{100, 1 << 20, 32, 2 << 20}},
			{Location: []*profile.Location{mainLoc}, Value: []int64{5, 500, 0, 0}},
		},
	}
}

func TestNewSnapshot(t *testing.T) {
	snapshot := NewSnapshot(newTestProfile(), DefaultDepth)
	require.Len(t, snapshot, 2)

	assert.Equal(t, "/src/job/parse.go:7", snapshot[0].Site)
	assert.EqualValues(t, 2<<20, snapshot[0].Size)
	assert.EqualValues(t, 32, snapshot[0].Count)

	assert.Equal(t, "/src/job/load.go:42", snapshot[1].Site)
	assert.EqualValues(t, 5120, snapshot[1].Size)
	assert.EqualValues(t, 5, snapshot[1].Count)
	assert.EqualValues(t, 1024, snapshot[1].Average())
	assert.Equal(t, "runtime.makeslice /go/src/runtime/slice.go:10", snapshot[1].Traceback[0])
}

func TestNewSnapshot_Depth(t *testing.T) {
	snapshot := NewSnapshot(newTestProfile(), 1)
	require.NotEmpty(t, snapshot)
	for _, stat := range snapshot {
		assert.LessOrEqual(t, len(stat.Traceback), 1)
	}
}

func TestNewSnapshot_Empty(t *testing.T) {
	assert.Nil(t, NewSnapshot(nil, DefaultDepth))
	assert.Empty(t, NewSnapshot(&profile.Profile{}, DefaultDepth))
}

func TestStat_String(t *testing.T) {
	var testCases = []struct {
		description string
		stat        *Stat
		expect      string
	}{
		{
			description: "mebibytes",
			stat:        &Stat{Site: "/src/a.go:1", Size: 3 << 20, Count: 3},
			expect:      "/src/a.go:1: size=3.0 MiB, count=3, average=1.0 MiB",
		},
		{
			description: "zero count",
			stat:        &Stat{Site: "/src/b.go:9", Size: 512},
			expect:      "/src/b.go:9: size=512 B, count=0, average=0 B",
		},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, testCase.stat.String(), testCase.description)
	}
}

func TestSnapshot_Report(t *testing.T) {
	var snapshot Snapshot
	for i := 0; i < 15; i++ {
		snapshot = append(snapshot, &Stat{Site: fmt.Sprintf("/src/f.go:%d", i), Size: int64(i * 100), Count: 1})
	}
	snapshot.Rank()
	lines := strings.Split(strings.TrimSuffix(snapshot.Report(DefaultTopN), "\n"), "\n")
	require.Len(t, lines, DefaultTopN+1)
	assert.Equal(t, "SIGTERM heap snapshot before shutdown [ Top 10 ]", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "/src/f.go:14: "), lines[1])

	empty := Snapshot{}.Report(DefaultTopN)
	assert.Equal(t, "SIGTERM heap snapshot before shutdown [ Top 10 ]\n", empty)
}

func TestSnapshot_RankProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 50).Draw(t, "count")
		var snapshot Snapshot
		for i := 0; i < count; i++ {
			snapshot = append(snapshot, &Stat{
				Site:  fmt.Sprintf("/src/f.go:%d", rapid.IntRange(1, 20).Draw(t, "line")),
				Size:  rapid.Int64Range(0, 1<<30).Draw(t, "size"),
				Count: rapid.Int64Range(0, 1<<16).Draw(t, "allocs"),
			})
		}
		snapshot.Rank()
		for i := 1; i < len(snapshot); i++ {
			prev, curr := snapshot[i-1], snapshot[i]
			if prev.Size < curr.Size || (prev.Size == curr.Size && prev.Count < curr.Count) {
				t.Fatalf("not ranked at %d: %v before %v", i, prev, curr)
			}
		}
		n := rapid.IntRange(0, 20).Draw(t, "n")
		top := snapshot.Top(n)
		if len(top) > n {
			t.Fatalf("top(%d) returned %d entries", n, len(top))
		}
		lines := strings.Count(snapshot.Report(n), "\n")
		if lines != len(top)+1 {
			t.Fatalf("report has %d lines, expected %d", lines, len(top)+1)
		}
	})
}
