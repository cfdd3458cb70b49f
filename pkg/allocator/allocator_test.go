package allocator

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumOf(splits []Split) int64 {
	var sum int64
	for _, s := range splits {
		sum += s.Amount
	}
	return sum
}

func TestAllocateSixtyForty(t *testing.T) {
	splits, err := Allocate(1000, []CauseShare{
		{Proportion: Denominator, Orgs: []OrgShare{
			{Key: "A", Proportion: 6000},
			{Key: "B", Proportion: 4000},
		}},
	})
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.Equal(t, int64(600), splits[0].Amount)
	assert.Equal(t, int64(400), splits[1].Amount)
}

func TestAllocateThreeWayRemainder(t *testing.T) {
	splits, err := Allocate(1001, []CauseShare{
		{Proportion: Denominator, Orgs: []OrgShare{
			{Key: "A", Proportion: 3333},
			{Key: "B", Proportion: 3333},
			{Key: "C", Proportion: 3334},
		}},
	})
	require.NoError(t, err)
	require.Len(t, splits, 3)
	assert.Equal(t, int64(1001), sumOf(splits))

	amounts := []int64{splits[0].Amount, splits[1].Amount, splits[2].Amount}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })
	assert.Equal(t, []int64{333, 334, 334}, amounts)
}

func TestAllocateSingleLeafGetsEverything(t *testing.T) {
	splits, err := Allocate(777, []CauseShare{
		{Proportion: 5000, Orgs: []OrgShare{{Key: "solo", Proportion: 9999}}},
	})
	require.NoError(t, err)
	require.Len(t, splits, 1)
	assert.Equal(t, int64(777), splits[0].Amount)
}

func TestAllocateZeroProportionOmitted(t *testing.T) {
	splits, err := Allocate(500, []CauseShare{
		{Proportion: Denominator, Orgs: []OrgShare{
			{Key: "kept", Proportion: 10000},
			{Key: "dropped", Proportion: 0},
		}},
		{Proportion: 0, Orgs: []OrgShare{{Key: "also-dropped", Proportion: 5000}}},
	})
	require.NoError(t, err)
	require.Len(t, splits, 1)
	assert.Equal(t, "kept", splits[0].OrganizationKey)
	assert.Equal(t, int64(500), splits[0].Amount)
}

func TestAllocateHalfCentRoundsUpThenLastLeafRepays(t *testing.T) {
	// 9 cents 50/50: both halves round up to 5, the extra cent is taken
	// back from the last leaf.
	splits, err := Allocate(9, []CauseShare{
		{Proportion: Denominator, Orgs: []OrgShare{
			{Key: "A", Proportion: 5000},
			{Key: "B", Proportion: 5000},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), splits[0].Amount)
	assert.Equal(t, int64(4), splits[1].Amount)
}

func TestAllocateErrors(t *testing.T) {
	_, err := Allocate(0, []CauseShare{{Proportion: 1, Orgs: []OrgShare{{Key: "A", Proportion: 1}}}})
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = Allocate(100, []CauseShare{{Proportion: 0, Orgs: []OrgShare{{Key: "A", Proportion: 1}}}})
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = Allocate(100, nil)
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = Allocate(100, []CauseShare{{Proportion: -1, Orgs: []OrgShare{{Key: "A", Proportion: 1}}}})
	assert.ErrorIs(t, err, ErrNegativeProportion)

	_, err = Allocate(100, []CauseShare{{Proportion: 1, Orgs: []OrgShare{{Key: "A", Proportion: -1}}}})
	assert.ErrorIs(t, err, ErrNegativeProportion)
}

func TestAllocateRandomTreesSumExactly(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 2000; trial++ {
		total := rng.Int63n(5_000_000) + 1
		causes := make([]CauseShare, rng.Intn(4)+1)
		positive := false
		for c := range causes {
			causes[c].Proportion = rng.Int63n(Denominator + 1)
			orgs := make([]OrgShare, rng.Intn(5)+1)
			for o := range orgs {
				orgs[o] = OrgShare{
					Key:        "org",
					Proportion: rng.Int63n(Denominator + 1),
				}
				if causes[c].Proportion*orgs[o].Proportion > 0 {
					positive = true
				}
			}
			causes[c].Orgs = orgs
		}
		if !positive {
			continue
		}

		splits, err := Allocate(total, causes)
		require.NoError(t, err)
		require.Equal(t, total, sumOf(splits), "trial %d", trial)
		for _, s := range splits {
			require.GreaterOrEqual(t, s.Amount, int64(0))
		}
	}
}

func TestResizeExactScale(t *testing.T) {
	splits, err := Resize([]Split{{"A", 600}, {"B", 400}}, 500, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(300), splits[0].Amount)
	assert.Equal(t, int64(200), splits[1].Amount)
}

func TestResizeRemainderGoesToLastLeaf(t *testing.T) {
	splits, err := Resize([]Split{{"A", 334}, {"B", 333}, {"C", 333}}, 1001, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), sumOf(splits))
	assert.Equal(t, int64(334), splits[0].Amount)
	assert.Equal(t, int64(333), splits[1].Amount)
	assert.Equal(t, int64(334), splits[2].Amount)
}

func TestResizeRandomSumsToRoundedTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 2000; trial++ {
		n := rng.Intn(6) + 1
		splits := make([]Split, n)
		var sum int64
		for i := range splits {
			splits[i] = Split{OrganizationKey: "org", Amount: rng.Int63n(100_000)}
			sum += splits[i].Amount
		}
		if sum == 0 {
			continue
		}
		newTotal := rng.Int63n(200_000) + 1
		oldTotal := rng.Int63n(200_000) + 1

		resized, err := Resize(splits, newTotal, oldTotal)
		require.NoError(t, err)
		want := (2*sum*newTotal + oldTotal) / (2 * oldTotal)
		require.Equal(t, want, sumOf(resized), "trial %d", trial)
		for _, s := range resized {
			require.GreaterOrEqual(t, s.Amount, int64(0))
		}
	}
}

func TestResizeErrors(t *testing.T) {
	_, err := Resize([]Split{{"A", 1}}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidResize)
	_, err = Resize([]Split{{"A", 1}}, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidResize)
	_, err = Resize(nil, 1, 1)
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestCorrectWrapsPastFirstLeaf(t *testing.T) {
	splits := []Split{{"A", 0}, {"B", 0}, {"C", 5}}
	correct(splits, 9)
	assert.Equal(t, []Split{{"A", 1}, {"B", 1}, {"C", 7}}, splits)
}
