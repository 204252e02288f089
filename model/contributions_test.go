package model

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestContributionMatrixIdentity(t *testing.T) {
	m := NewContributionMatrix(3)
	assert.Equal(t, 3, m.Size())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, err := m.Get(i, j)
			require.NoError(t, err)
			if i == j {
				assert.Equal(t, 1.0, v)
			} else {
				assert.Equal(t, 0.0, v)
			}
		}
	}
}

func TestContributionMatrixSymmetricUpdates(t *testing.T) {
	m := NewContributionMatrix(4)
	require.NoError(t, m.SetSymmetric(0, 2, 0.75))
	require.NoError(t, m.AddSymmetric(2, 0, 0.25))
	require.NoError(t, m.AddSymmetric(3, 3, 0.5))

	v, _ := m.Get(0, 2)
	w, _ := m.Get(2, 0)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, v, w)
	d, _ := m.Get(3, 3)
	assert.Equal(t, 1.5, d, "diagonal delta applied once")
	assert.True(t, m.IsSymmetric(0))

	require.NoError(t, m.Set(1, 3, 2))
	assert.False(t, m.IsSymmetric(0))
	assert.True(t, m.IsSymmetric(3))
}

func TestContributionMatrixBounds(t *testing.T) {
	m := NewContributionMatrix(2)
	var idxErr *IndexError

	_, err := m.Get(2, 0)
	require.True(t, errors.As(err, &idxErr))
	assert.Equal(t, 2, idxErr.Index)

	assert.True(t, errors.As(m.Set(0, -1, 1), &idxErr))
	assert.True(t, errors.As(m.SetSymmetric(5, 0, 1), &idxErr))
	assert.True(t, errors.As(m.AddSymmetric(0, 9, 1), &idxErr))
	assert.True(t, m.IsSymmetric(0))
}

func TestContributionMatrixNotFinite(t *testing.T) {
	m := NewContributionMatrix(3)
	require.NoError(t, m.Set(0, 1, math.NaN()))
	assert.False(t, m.IsSymmetric(1), "NaN never matches its mirror")

	require.NoError(t, m.SetSymmetric(0, 1, 0))
	require.NoError(t, m.Set(1, 2, math.Inf(1)))
	require.NoError(t, m.Set(2, 1, math.Inf(1)))
	assert.False(t, m.IsSymmetric(1))

	m.setSymmetric(1, 2, math.Inf(1))
	assert.Equal(t, math.MaxFloat64, m.at(1, 2))
	m.addSymmetric(1, 2, math.MaxFloat64)
	assert.Equal(t, math.MaxFloat64, m.at(2, 1))
	m.addSymmetric(0, 2, math.NaN())
	assert.Equal(t, 0.0, m.at(0, 2))
	assert.True(t, m.IsSymmetric(0))
}
