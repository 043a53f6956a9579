package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/pprof/profile"
)

// Header is the first line of every report.
const Header = "SIGTERM heap snapshot before shutdown [ Top %d ]"

// Stat aggregates live allocations attributed to one site.
type Stat struct {
	Site      string
	Size      int64
	Count     int64
	Traceback []string
}

// Average returns the mean allocation size.
func (s *Stat) Average() int64 {
	if s.Count == 0 {
		return 0
	}
	return s.Size / s.Count
}

// String formats s as a report line.
func (s *Stat) String() string {
	return fmt.Sprintf("%s: size=%s, count=%d, average=%s",
		s.Site, humanize.IBytes(uint64(s.Size)), s.Count, humanize.IBytes(uint64(s.Average())))
}

// Snapshot is a ranked list of allocation sites.
type Snapshot []*Stat

// NewSnapshot groups the in-use samples of a heap profile by allocation site
// and ranks them. Tracebacks are truncated to depth frames.
func NewSnapshot(prof *profile.Profile, depth int) Snapshot {
	if prof == nil {
		return nil
	}
	sizeIndex, countIndex := valueIndexes(prof)
	if sizeIndex < 0 {
		return nil
	}
	bySite := map[string]*Stat{}
	for _, sample := range prof.Sample {
		size := sampleValue(sample, sizeIndex)
		count := sampleValue(sample, countIndex)
		if size <= 0 && count <= 0 {
			continue
		}
		traceback := frames(sample, depth)
		site := allocationSite(traceback)
		stat, ok := bySite[site]
		if !ok {
			stat = &Stat{Site: site, Traceback: traceback}
			bySite[site] = stat
		}
		stat.Size += size
		stat.Count += count
	}
	result := make(Snapshot, 0, len(bySite))
	for _, stat := range bySite {
		result = append(result, stat)
	}
	result.Rank()
	return result
}

// Rank orders s by size, then count, both descending, then by site.
func (s Snapshot) Rank() {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Size != s[j].Size {
			return s[i].Size > s[j].Size
		}
		if s[i].Count != s[j].Count {
			return s[i].Count > s[j].Count
		}
		return s[i].Site < s[j].Site
	})
}

// Top returns at most n leading entries.
func (s Snapshot) Top(n int) Snapshot {
	if n < 0 {
		n = 0
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Report renders the header and the top n entries, one per line.
func (s Snapshot) Report(n int) string {
	builder := new(strings.Builder)
	fmt.Fprintf(builder, Header+"\n", n)
	for _, stat := range s.Top(n) {
		builder.WriteString(stat.String())
		builder.WriteByte('\n')
	}
	return builder.String()
}

func valueIndexes(prof *profile.Profile) (size, count int) {
	size, count = -1, -1
	for i, valueType := range prof.SampleType {
		switch valueType.Type {
		case "inuse_space":
			size = i
		case "inuse_objects":
			count = i
		}
	}
	if size == -1 && len(prof.SampleType) > 0 {
		size = len(prof.SampleType) - 1
	}
	return size, count
}

func sampleValue(sample *profile.Sample, index int) int64 {
	if index < 0 || index >= len(sample.Value) {
		return 0
	}
	return sample.Value[index]
}

// frames flattens a sample's call stack, innermost first, as file:line
// entries prefixed by the function name.
func frames(sample *profile.Sample, depth int) []string {
	var result []string
	for _, location := range sample.Location {
		for _, line := range location.Line {
			if depth > 0 && len(result) == depth {
				return result
			}
			name, fileName := "?", "?"
			if line.Function != nil {
				name, fileName = line.Function.Name, line.Function.Filename
			}
			result = append(result, fmt.Sprintf("%s %s:%d", name, fileName, line.Line))
		}
	}
	return result
}

// allocationSite picks the innermost frame outside the runtime.
func allocationSite(traceback []string) string {
	if len(traceback) == 0 {
		return "?"
	}
	for _, frame := range traceback {
		if !strings.HasPrefix(frame, "runtime.") {
			return siteOf(frame)
		}
	}
	return siteOf(traceback[0])
}

func siteOf(frame string) string {
	if index := strings.IndexByte(frame, ' '); index != -1 {
		return frame[index+1:]
	}
	return frame
}
