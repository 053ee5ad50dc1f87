package grid

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// HDI is a highest-density interval over a posterior mass vector. The
// region is the smallest set of grid points whose total mass reaches the
// requested credible mass. It need not be contiguous: a multimodal
// posterior can put the waterline across several separate runs.
type HDI struct {
	// Indices are the included grid indices in ascending grid order.
	Indices []int

	// Mass is the achieved cumulative mass. Discreteness means it can
	// exceed the requested credible mass.
	Mass float64

	// Height is the waterline: the smallest posterior mass among the
	// included points.
	Height float64
}

// Edges returns the first and last grid index of each contiguous run of
// included points, in ascending grid order.
func (h HDI) Edges() [][2]int {
	if len(h.Indices) == 0 {
		return nil
	}
	var runs [][2]int
	start := h.Indices[0]
	prev := h.Indices[0]
	for _, idx := range h.Indices[1:] {
		if idx != prev+1 {
			runs = append(runs, [2]int{start, prev})
			start = idx
		}
		prev = idx
	}
	return append(runs, [2]int{start, prev})
}

// Contains reports whether grid index i is inside the interval.
func (h HDI) Contains(i int) bool {
	j := sort.SearchInts(h.Indices, i)
	return j < len(h.Indices) && h.Indices[j] == i
}

// HDIOfGrid finds the highest-density interval of a normalized mass
// vector: grid points are taken in order of descending mass (ties broken
// by grid order) until the running total reaches credMass.
func HDIOfGrid(mass []float64, credMass float64) (HDI, error) {
	if len(mass) == 0 {
		return HDI{}, fmt.Errorf("%w: empty mass vector", ErrInvalidInput)
	}
	if !(credMass > 0 && credMass < 1) {
		return HDI{}, fmt.Errorf("%w: credible mass %v outside (0,1)", ErrInvalidInput, credMass)
	}

	order := make([]int, len(mass))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return mass[order[a]] > mass[order[b]]
	})

	var cum, height float64
	var taken int
	for _, idx := range order {
		cum += mass[idx]
		height = mass[idx]
		taken++
		if cum >= credMass {
			break
		}
	}
	if cum < credMass {
		// The vector was not normalized; with a proper posterior the
		// running total always reaches credMass < 1.
		return HDI{}, fmt.Errorf("%w: total mass %v below credible mass %v",
			ErrInvalidInput, floats.Sum(mass), credMass)
	}

	indices := append([]int(nil), order[:taken]...)
	sort.Ints(indices)
	return HDI{Indices: indices, Mass: cum, Height: height}, nil
}
