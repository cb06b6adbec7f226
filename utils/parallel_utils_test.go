package utils

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	getHisto := func(K, Np int) (histo map[int]int) {
		pm := NewPartitionMap(Np, K)
		histo = make(map[int]int)
		for np := 0; np < pm.ParallelDegree; np++ {
			histo[pm.GetBucketDimension(np)]++
		}
		return
	}
	getTotal := func(histo map[int]int) (total int) {
		for key, count := range histo {
			total += key * count
		}
		return
	}
	assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
	assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
	for n := 64; n < 2000; n++ {
		var (
			keys   [2]float64
			keyNum int
		)
		histo := getHisto(n, 7)
		for key := range histo {
			keys[keyNum] = float64(key)
			keyNum++
		}
		if keyNum == 2 {
			assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
		}
		assert.Equal(t, n, getTotal(histo))
	}
	pm := NewPartitionMap(0, 10)
	assert.Equal(t, 1, pm.ParallelDegree)
	kMin, kMax := pm.GetBucketRange(0)
	assert.Equal(t, [2]int{0, 10}, [2]int{kMin, kMax})
	for maxIndex := 10; maxIndex < 200; maxIndex++ {
		pm := NewPartitionMap(5, maxIndex)
		// Partitions tile [0, maxIndex) in order
		var next int
		for np := 0; np < pm.ParallelDegree; np++ {
			kMin, kMax := pm.GetBucketRange(np)
			assert.Equal(t, next, kMin)
			assert.Equal(t, kMax-kMin, pm.GetBucketDimension(np))
			next = kMax
		}
		assert.Equal(t, maxIndex, next)
	}
}

func TestParallelFor(t *testing.T) {
	{ // Every index visited exactly once, empty partitions skipped
		pm := NewPartitionMap(8, 5)
		visits := make([]int32, 5)
		var calls int32
		err := pm.ParallelFor(func(np, kMin, kMax int) error {
			atomic.AddInt32(&calls, 1)
			for k := kMin; k < kMax; k++ {
				atomic.AddInt32(&visits[k], 1)
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, int32(5), calls)
		assert.Equal(t, []int32{1, 1, 1, 1, 1}, visits)
	}
	{ // Errors from partitions are all reported
		errOdd := errors.New("odd partition")
		pm := NewPartitionMap(4, 40)
		err := pm.ParallelFor(func(np, kMin, kMax int) error {
			if np%2 == 1 {
				return errOdd
			}
			return nil
		})
		assert.ErrorIs(t, err, errOdd)
	}
}
