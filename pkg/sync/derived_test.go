package sync

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/repositories"
)

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestCrossProduct_CountIsAlwaysMTimesN(t *testing.T) {
	for _, tc := range []struct{ m, n int }{
		{1, 1}, {2, 3}, {3, 2}, {5, 5}, {1, 10},
	} {
		pairs := crossProduct(ids(tc.m), ids(tc.n))
		assert.Len(t, pairs, tc.m*tc.n, "m=%d n=%d", tc.m, tc.n)
	}
}

func TestCrossProduct_EmptyOperandProducesEmptyProduct(t *testing.T) {
	assert.Nil(t, crossProduct(nil, ids(3)))
	assert.Nil(t, crossProduct(ids(3), nil))
	assert.Nil(t, crossProduct(nil, nil))
}

func TestCrossProduct_PairsEveryLeftWithEveryRight(t *testing.T) {
	r1, r2 := uuid.New(), uuid.New()
	d1 := uuid.New()

	pairs := crossProduct([]uuid.UUID{r1, r2}, []uuid.UUID{d1})
	require.Len(t, pairs, 2)
	assert.Equal(t, repositories.DerivedPair{Left: r1, Right: d1}, pairs[0])
	assert.Equal(t, repositories.DerivedPair{Left: r2, Right: d1}, pairs[1])
}
