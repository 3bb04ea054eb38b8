package timeunit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeDaysAndHours(t *testing.T) {
	counts := Decompose(5*86400+3*3600, []string{"days", "hours"})
	require.Len(t, counts, 2)
	assert.Equal(t, Count{Unit: "days", Value: 5}, counts[0])
	assert.Equal(t, Count{Unit: "hours", Value: 3}, counts[1])
}

func TestDecomposeSkippedUnitSecondsFlowOnward(t *testing.T) {
	// With only hours active, whole days collapse into hours.
	counts := Decompose(2*86400+5*3600, []string{"hours"})
	require.Len(t, counts, 1)
	assert.Equal(t, int64(53), counts[0].Value)
}

func TestDecomposeRoundTrip(t *testing.T) {
	total := int64(400*86400 + 7*3600 + 125)
	active := []string{"years", "weeks", "days", "minutes"}
	counts := Decompose(total, active)

	table := map[string]int64{}
	for _, u := range Table() {
		table[u.Key] = u.Seconds
	}
	var sum int64
	for _, c := range counts {
		sum += c.Value * table[c.Unit]
	}
	// Seconds excluded from the active set are discarded by rounding.
	assert.LessOrEqual(t, sum, total)
	assert.Greater(t, sum, total-60)
}

func TestDecomposeNegativeClampsToZero(t *testing.T) {
	counts := Decompose(-42, []string{"days", "seconds"})
	require.Len(t, counts, 2)
	assert.Equal(t, int64(0), counts[0].Value)
	assert.Equal(t, int64(0), counts[1].Value)
}

func TestSelectDisplayUnitsSkipsInvalidIndices(t *testing.T) {
	units := SelectDisplayUnits("3,99")
	require.Len(t, units, 1)
	assert.Equal(t, "days", units[0].Key)
}

func TestSelectDisplayUnitsFallsBackToFullTable(t *testing.T) {
	units := SelectDisplayUnits("99,100,-1")
	require.Len(t, units, 7)
	assert.Equal(t, "years", units[0].Key)
	assert.Equal(t, "seconds", units[6].Key)
}

func TestSelectDisplayUnitsWhitespaceTolerant(t *testing.T) {
	units := SelectDisplayUnits(" 0 , 6 ")
	require.Len(t, units, 2)
	assert.Equal(t, "years", units[0].Key)
	assert.Equal(t, "seconds", units[1].Key)
}

func TestSelectDisplayUnitsEmptyInput(t *testing.T) {
	assert.Len(t, SelectDisplayUnits(""), 7)
	assert.Len(t, SelectDisplayUnits("  "), 7)
}

func TestSelectDisplayUnitsIgnoresDuplicates(t *testing.T) {
	units := SelectDisplayUnits("3,3,4")
	require.Len(t, units, 2)
	assert.Equal(t, "days", units[0].Key)
	assert.Equal(t, "hours", units[1].Key)
}

func TestProgressMidway(t *testing.T) {
	now := int64(1_700_000_000)
	day := int64(86400)
	pct := Progress(now-10*day, now+10*day, now)
	assert.InDelta(t, 50, pct, 1)
}

func TestProgressClampsAndZeroes(t *testing.T) {
	assert.Equal(t, float64(0), Progress(0, 100, 50))
	assert.Equal(t, float64(0), Progress(100, 100, 150))
	assert.Equal(t, float64(0), Progress(100, 50, 75))
	assert.Equal(t, float64(0), Progress(100, 200, 50))
	assert.Equal(t, float64(100), Progress(100, 200, 500))
}

func TestClassifyUrgency(t *testing.T) {
	assert.Equal(t, UrgencyExpired, ClassifyUrgency(0, 3, 14))
	assert.Equal(t, UrgencyExpired, ClassifyUrgency(-2, 3, 14))
	assert.Equal(t, UrgencyDanger, ClassifyUrgency(2, 3, 14))
	assert.Equal(t, UrgencyWarning, ClassifyUrgency(10, 3, 14))
	assert.Equal(t, UrgencyNone, ClassifyUrgency(30, 3, 14))
}
