package runner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineTailKeepsLastLines(t *testing.T) {
	tail := newLineTail(3)
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(tail, "line %d\n", i)
	}
	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, tail.Lines())
}

func TestLineTailSplitsAcrossWrites(t *testing.T) {
	tail := newLineTail(10)
	tail.Write([]byte("hel"))
	tail.Write([]byte("lo\nwor"))
	tail.Write([]byte("ld"))
	assert.Equal(t, []string{"hello", "world"}, tail.Lines())
}

func TestLineTailEmpty(t *testing.T) {
	tail := newLineTail(5)
	assert.Empty(t, tail.Lines())
}

func TestConclude(t *testing.T) {
	tests := []struct {
		name string
		jobs []JobResult
		want Status
	}{
		{name: "no jobs", want: StatusSuccess},
		{
			name: "all success",
			jobs: []JobResult{{Status: StatusSuccess}, {Status: StatusSuccess}},
			want: StatusSuccess,
		},
		{
			name: "advisory does not fail the run",
			jobs: []JobResult{{Status: StatusSuccess}, {Status: StatusAdvisory}},
			want: StatusSuccess,
		},
		{
			name: "one failure fails the run",
			jobs: []JobResult{{Status: StatusSuccess}, {Status: StatusFailure}},
			want: StatusFailure,
		},
		{
			name: "cancelled without failure",
			jobs: []JobResult{{Status: StatusCancelled}, {Status: StatusSkipped}},
			want: StatusCancelled,
		},
		{
			name: "failure wins over cancelled",
			jobs: []JobResult{{Status: StatusCancelled}, {Status: StatusFailure}},
			want: StatusFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RunResult{Jobs: tt.jobs}
			r.conclude()
			assert.Equal(t, tt.want, r.Status)
		})
	}
}
