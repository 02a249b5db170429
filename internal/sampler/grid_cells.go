package sampler

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/ecopia-map/surface_sampler/internal/surface"
)

// must be a power of two
const numCellLocks = 1024

// quantized heights are bounded to this magnitude before accumulation so that sums cannot overflow
const maxAccumulatedStep = math.MaxInt32

// Striped mutexes guarding the extremum cells. Cell i is guarded by mutex i&(numCellLocks-1).
type cellLocks struct {
	mu [numCellLocks]sync.Mutex
}

func (l *cellLocks) lock(cell int) *sync.Mutex {
	m := &l.mu[cell&(numCellLocks-1)]
	m.Lock()
	return m
}

// Accumulates the samples falling in each cell of the grid
type gridCells interface {
	add(cell int, step int64, intensity uint8)
	finalize(heights []int16, intensities []uint8)
}

func newGridCells(mode Mode, cells int, withIntensity bool) gridCells {
	if mode == Average {
		return newAverageCells(cells, withIntensity)
	}
	return newExtremumCells(cells, withIntensity, mode == Max)
}

// Running sums updated with atomic adds, no lock is needed since every sum is independent
type averageCells struct {
	heightSums    []int64
	intensitySums []int64
	counts        []int64
}

func newAverageCells(cells int, withIntensity bool) *averageCells {
	c := &averageCells{
		heightSums: make([]int64, cells),
		counts:     make([]int64, cells),
	}
	if withIntensity {
		c.intensitySums = make([]int64, cells)
	}
	return c
}

func (c *averageCells) add(cell int, step int64, intensity uint8) {
	atomic.AddInt64(&c.heightSums[cell], step)
	if c.intensitySums != nil {
		atomic.AddInt64(&c.intensitySums[cell], int64(intensity))
	}
	atomic.AddInt64(&c.counts[cell], 1)
}

func (c *averageCells) finalize(heights []int16, intensities []uint8) {
	for i, count := range c.counts {
		if count == 0 {
			heights[i] = surface.Invalid
			continue
		}
		heights[i] = surface.Clamp(roundDiv(c.heightSums[i], count))
		if intensities != nil {
			intensities[i] = surface.ClampIntensity(roundDiv(c.intensitySums[i], count))
		}
	}
}

// Extremum heights and the intensity of the sample holding them. Both values of a cell
// are written in the same critical section so they always belong to the same sample.
type extremumCells struct {
	heights     []int64
	intensities []uint8
	filled      []bool
	keepMax     bool
	locks       cellLocks
}

func newExtremumCells(cells int, withIntensity bool, keepMax bool) *extremumCells {
	c := &extremumCells{
		heights: make([]int64, cells),
		filled:  make([]bool, cells),
		keepMax: keepMax,
	}
	if withIntensity {
		c.intensities = make([]uint8, cells)
	}
	return c
}

func (c *extremumCells) add(cell int, step int64, intensity uint8) {
	m := c.locks.lock(cell)
	defer m.Unlock()

	// ties keep the first sample that reached the value
	if c.filled[cell] && !c.improves(step, c.heights[cell]) {
		return
	}
	c.filled[cell] = true
	c.heights[cell] = step
	if c.intensities != nil {
		c.intensities[cell] = intensity
	}
}

func (c *extremumCells) improves(candidate, current int64) bool {
	if c.keepMax {
		return candidate > current
	}
	return candidate < current
}

func (c *extremumCells) finalize(heights []int16, intensities []uint8) {
	for i, filled := range c.filled {
		if !filled {
			heights[i] = surface.Invalid
			continue
		}
		heights[i] = surface.Clamp(c.heights[i])
		if intensities != nil {
			intensities[i] = c.intensities[i]
		}
	}
}

// Rounds num/den to the nearest integer, halves away from zero
func roundDiv(num, den int64) int64 {
	return int64(math.Round(float64(num) / float64(den)))
}
