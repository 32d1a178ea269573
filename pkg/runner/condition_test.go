package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalCondition(t *testing.T) {
	tests := []struct {
		name      string
		cond      string
		failed    bool
		cancelled bool
		want      bool
	}{
		{name: "empty runs on success", cond: "", want: true},
		{name: "empty skipped after failure", cond: "", failed: true, want: false},
		{name: "success()", cond: "success()", want: true},
		{name: "success() after failure", cond: "success()", failed: true, want: false},
		{name: "failure() on success", cond: "failure()", want: false},
		{name: "failure() after failure", cond: "failure()", failed: true, want: true},
		{name: "always() on success", cond: "always()", want: true},
		{name: "always() after failure", cond: "always()", failed: true, want: true},
		{name: "always() after cancel", cond: "always()", cancelled: true, want: true},
		{name: "cancelled() on success", cond: "cancelled()", want: false},
		{name: "cancelled() after cancel", cond: "cancelled()", cancelled: true, want: true},
		{name: "negated cancelled", cond: "!cancelled()", want: true},
		{name: "expression braces", cond: "${{ failure() }}", failed: true, want: true},
		{name: "braces with negation", cond: "${{ !failure() }}", want: true},
		{name: "unknown expression acts like success", cond: "github.ref == 'refs/heads/main'", want: true},
		{name: "unknown expression after failure", cond: "github.ref == 'refs/heads/main'", failed: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalCondition(tt.cond, tt.failed, tt.cancelled))
		})
	}
}
