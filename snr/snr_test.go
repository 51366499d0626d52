package snr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateFromSyncScoreNonPositiveClampsToFloor(t *testing.T) {
	assert.Equal(t, -24.0, EstimateFromSyncScore(0))
	assert.Equal(t, -24.0, EstimateFromSyncScore(-5))
}

func TestEstimateFromSyncScoreIncreasesWithScore(t *testing.T) {
	low := EstimateFromSyncScore(10)
	high := EstimateFromSyncScore(1000)
	assert.Greater(t, high, low)
}

func TestEstimateFromSyncScoreClampsToCeiling(t *testing.T) {
	assert.Equal(t, 99.0, EstimateFromSyncScore(1e20))
}
