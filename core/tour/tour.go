// Package tour solves the shortest Hamiltonian path over a cluster with the
// Held-Karp dynamic program.
//
// The path starts at index 0 and does not return to it. The table is keyed
// by (subset of {1..n-1}, last node) so time is O(n^2 * 2^n) and memory is
// O(n * 2^n). MaxNodes caps n; callers keep clusters below it.
package tour

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/wrsn/core/model"
)

// MaxNodes is the largest cluster the solver accepts. At 16 nodes the table
// holds 16 * 2^15 float64 cost entries plus as many parent indices.
const MaxNodes = 16

// Solve returns the length of the minimum-weight Hamiltonian path starting at
// node 0 and the visiting order as a permutation of 0..n-1.
func Solve(d mat.Matrix) (float64, []int, error) {
	if d == nil {
		return 0, nil, model.Malformedf("nil distance matrix")
	}
	r, c := d.Dims()
	if r != c {
		return 0, nil, model.Malformedf("distance matrix must be square, got %dx%d", r, c)
	}
	n := r
	switch {
	case n == 0:
		return 0, nil, model.Malformedf("empty distance matrix")
	case n > MaxNodes:
		return 0, nil, model.Malformedf("%d nodes exceed the solver limit of %d", n, MaxNodes)
	case n == 1:
		return 0, []int{0}, nil
	}

	// Node i (1..n-1) maps to bit i-1.
	m := n - 1
	full := 1<<m - 1
	cost := make([][]float64, 1<<m)
	parent := make([][]int8, 1<<m)
	for s := range cost {
		cost[s] = make([]float64, n)
		parent[s] = make([]int8, n)
		for j := range cost[s] {
			cost[s][j] = math.Inf(1)
			parent[s][j] = -1
		}
	}
	for j := 1; j < n; j++ {
		cost[1<<(j-1)][j] = d.At(0, j)
		parent[1<<(j-1)][j] = 0
	}

	for s := 1; s <= full; s++ {
		for j := 1; j < n; j++ {
			bit := 1 << (j - 1)
			if s&bit == 0 || math.IsInf(cost[s][j], 1) {
				continue
			}
			for k := 1; k < n; k++ {
				kb := 1 << (k - 1)
				if s&kb != 0 {
					continue
				}
				next := s | kb
				if c := cost[s][j] + d.At(j, k); c < cost[next][k] {
					cost[next][k] = c
					parent[next][k] = int8(j)
				}
			}
		}
	}

	best, last := math.Inf(1), -1
	for j := 1; j < n; j++ {
		if cost[full][j] < best {
			best, last = cost[full][j], j
		}
	}
	if last < 0 {
		return 0, nil, model.Malformedf("no finite path through %d nodes", n)
	}

	order := make([]int, n)
	s := full
	for i := n - 1; i > 0; i-- {
		order[i] = last
		prev := int(parent[s][last])
		s &^= 1 << (last - 1)
		last = prev
	}
	order[0] = 0
	return best, order, nil
}

// DistanceMatrix builds the symmetric Euclidean distance matrix of points.
func DistanceMatrix(points []model.Location) *mat.SymDense {
	n := len(points)
	if n == 0 {
		return nil
	}
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, points[i].DistanceTo(points[j]))
		}
	}
	return d
}

// PathLength sums the edges of order over d.
func PathLength(d mat.Matrix, order []int) float64 {
	total := 0.0
	for i := 1; i < len(order); i++ {
		total += d.At(order[i-1], order[i])
	}
	return total
}
