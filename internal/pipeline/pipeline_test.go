package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStage struct {
	name    string
	success bool
	ran     *[]string
}

func (f *fakeStage) Name() string { return f.name }

func (f *fakeStage) Run(ctx context.Context) *StageResult {
	*f.ran = append(*f.ran, f.name)
	res := newResult(f.name)
	res.Success = f.success
	return res
}

func TestRunnerExecutesStagesInOrder(t *testing.T) {
	var ran []string
	r := NewRunner([]Stage{
		&fakeStage{name: "first", success: true, ran: &ran},
		&fakeStage{name: "second", success: true, ran: &ran},
		&fakeStage{name: "third", success: true, ran: &ran},
	}, 0)

	results := r.RunAll(context.Background())

	assert.Equal(t, []string{"first", "second", "third"}, ran)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.True(t, res.Success)
	}
}

func TestRunnerStopsOnFailureKeepingPriorResults(t *testing.T) {
	var ran []string
	r := NewRunner([]Stage{
		&fakeStage{name: "first", success: true, ran: &ran},
		&fakeStage{name: "second", success: false, ran: &ran},
		&fakeStage{name: "third", success: true, ran: &ran},
	}, 0)

	results := r.RunAll(context.Background())

	assert.Equal(t, []string{"first", "second"}, ran)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
}

func TestStageResultErrorSampleIsBounded(t *testing.T) {
	res := newResult("issues")
	for i := 0; i < 25; i++ {
		res.recordError("entity %d failed", i)
	}
	assert.Equal(t, 25, res.ErrorCount)
	assert.Len(t, res.Errors, maxReportedErrors)
	assert.Equal(t, "entity 0 failed", res.Errors[0])
}

func TestSelect(t *testing.T) {
	var ran []string
	stages := []Stage{
		&fakeStage{name: "organizations", ran: &ran},
		&fakeStage{name: "analyze", ran: &ran},
	}

	s, err := Select(stages, "analyze")
	require.NoError(t, err)
	assert.Equal(t, "analyze", s.Name())

	_, err = Select(stages, "bogus")
	assert.ErrorContains(t, err, "unknown stage")
}
