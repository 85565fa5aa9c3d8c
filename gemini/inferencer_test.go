package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/sitebrief"
	"github.com/fwojciec/sitebrief/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferencer_Generate_ReturnsErrorWhenPromptEmpty(t *testing.T) {
	t.Parallel()

	inf := gemini.NewInferencer(nil) // nil client ok for this test

	_, err := inf.Generate(context.Background(), "framing", "")

	require.Error(t, err)
	assert.Equal(t, sitebrief.EINVALID, sitebrief.ErrorCode(err))
	assert.Contains(t, sitebrief.ErrorMessage(err), "prompt required")
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig("You extract brand data.")

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Equal(t, "You extract brand data.", config.SystemInstruction.Parts[0].Text)
}

func TestBuildConfig_OmitsEmptySystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig("")

	assert.Nil(t, config.SystemInstruction)
}

func TestBuildConfig_SetsLowTemperature(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig("framing")

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.2, float64(*config.Temperature), 0.001)
}
