package outcome_test

import (
	"testing"

	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationResultWellFormedHappyPath(t *testing.T) {
	r := outcome.NewGenerationResult("01_sample_00")
	r.SetInputGeneration(outcome.SUCCESS)
	r.SetInputValidation(outcome.SUCCESS)
	r.SetOutputGeneration(outcome.SUCCESS)
	r.SetOutputValidation(outcome.SKIPPED_SUCCESS)

	require.NoError(t, r.WellFormed())
	assert.True(t, r.Accepted())
}

func TestGenerationResultSkipsCascadeOnInputGenerationFailure(t *testing.T) {
	r := outcome.NewGenerationResult("02_sample_00")
	r.SetInputGeneration(outcome.TIMEDOUT)
	r.SetInputValidation(outcome.SKIPPED)
	r.SetOutputGeneration(outcome.SKIPPED)
	r.SetOutputValidation(outcome.SKIPPED)

	require.NoError(t, r.WellFormed())
	assert.False(t, r.Accepted())
}

func TestGenerationResultRejectsStagesAfterInvalidInput(t *testing.T) {
	r := outcome.NewGenerationResult("03_sample_00")
	r.SetInputGeneration(outcome.SUCCESS)
	r.SetInputValidation(outcome.FAILED)
	r.SetOutputGeneration(outcome.SKIPPED)
	r.SetOutputValidation(outcome.SKIPPED)

	require.NoError(t, r.WellFormed())
	assert.False(t, r.Accepted())
}

func TestGenerationResultWellFormedCatchesBrokenInvariant(t *testing.T) {
	r := outcome.NewGenerationResult("04_sample_00")
	r.SetInputGeneration(outcome.SUCCESS)
	r.SetInputValidation(outcome.FAILED)
	// output_generation should have been SKIPPED, not run.
	r.SetOutputGeneration(outcome.SUCCESS)
	r.SetOutputValidation(outcome.SKIPPED)

	assert.Error(t, r.WellFormed())
}

func TestGenerationResultSetOncePanics(t *testing.T) {
	r := outcome.NewGenerationResult("05_sample_00")
	r.SetInputGeneration(outcome.SUCCESS)

	assert.Panics(t, func() {
		r.SetInputGeneration(outcome.FAILED)
	})
}
