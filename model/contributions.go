package model

import "math"

// ContributionMatrix holds the decayed support C[i][j] node i lends node j.
// Every mutation through SetSymmetric/AddSymmetric keeps it symmetric.
type ContributionMatrix struct {
	n      int
	values []float64
}

// NewContributionMatrix returns an n×n matrix with every node fully
// supporting itself and nothing else.
func NewContributionMatrix(n int) *ContributionMatrix {
	m := &ContributionMatrix{n: n, values: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		m.values[i*n+i] = 1
	}
	return m
}

func (m *ContributionMatrix) Size() int {
	return m.n
}

func (m *ContributionMatrix) check(i, j int) error {
	if i < 0 || i >= m.n {
		return &IndexError{Index: i, Count: m.n}
	}
	if j < 0 || j >= m.n {
		return &IndexError{Index: j, Count: m.n}
	}
	return nil
}

func (m *ContributionMatrix) Get(i, j int) (float64, error) {
	if err := m.check(i, j); err != nil {
		return 0, err
	}
	return m.values[i*m.n+j], nil
}

func (m *ContributionMatrix) Set(i, j int, v float64) error {
	if err := m.check(i, j); err != nil {
		return err
	}
	m.values[i*m.n+j] = v
	return nil
}

func (m *ContributionMatrix) SetSymmetric(i, j int, v float64) error {
	if err := m.check(i, j); err != nil {
		return err
	}
	m.values[i*m.n+j] = v
	m.values[j*m.n+i] = v
	return nil
}

func (m *ContributionMatrix) AddSymmetric(i, j int, delta float64) error {
	if err := m.check(i, j); err != nil {
		return err
	}
	m.values[i*m.n+j] += delta
	if i != j {
		m.values[j*m.n+i] += delta
	}
	return nil
}

// at, column, addSymmetric and setSymmetric skip bounds checks; callers in
// this package validate first.
func (m *ContributionMatrix) at(i, j int) float64 {
	return m.values[i*m.n+j]
}

func (m *ContributionMatrix) addSymmetric(i, j int, delta float64) {
	v := bounded(m.values[i*m.n+j] + bounded(delta))
	m.values[i*m.n+j] = v
	m.values[j*m.n+i] = v
}

func (m *ContributionMatrix) setSymmetric(i, j int, v float64) {
	v = bounded(v)
	m.values[i*m.n+j] = v
	m.values[j*m.n+i] = v
}

func (m *ContributionMatrix) column(j int) []float64 {
	col := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		col[i] = m.values[i*m.n+j]
	}
	return col
}

// IsSymmetric reports whether every mirrored pair differs by at most eps.
func (m *ContributionMatrix) IsSymmetric(eps float64) bool {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if !(math.Abs(m.at(i, j)-m.at(j, i)) <= eps) {
				return false
			}
		}
	}
	return true
}

// bounded keeps v finite: NaN becomes 0, infinities saturate at ±MaxFloat64.
func bounded(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxFloat64:
		return math.MaxFloat64
	case v < -math.MaxFloat64:
		return -math.MaxFloat64
	}
	return v
}

func (m *ContributionMatrix) clone() *ContributionMatrix {
	values := make([]float64, len(m.values))
	copy(values, m.values)
	return &ContributionMatrix{n: m.n, values: values}
}
