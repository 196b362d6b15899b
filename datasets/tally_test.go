package datasets

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTallyCorrectOverridesImprove(t *testing.T) {
	var tally Tally
	tally.Init()
	tally.AddToImprove(1, 1)
	tally.AddToImprove(2, -1)
	tally.AddToCorrect(1, -1, false)
	tally.AddToCorrect(3, 1, false)
	assert.False(t, tally.GetImprovementPossible())

	d := tally.Dataset()
	assert.Equal(t, Dataset{1: false, 2: false, 3: true}, d)

	tally.AddToCorrect(4, 1, true)
	assert.True(t, tally.GetImprovementPossible())
}

func TestTallyCancellingVotes(t *testing.T) {
	var tally Tally
	tally.Init()
	tally.AddToCorrect(7, 1, false)
	tally.AddToCorrect(7, -1, false)
	tally.AddToImprove(8, 0)
	assert.Equal(t, 0, tally.Len())
	assert.Empty(t, tally.Dataset())
}

func TestTallyConcurrentVotes(t *testing.T) {
	var tally Tally
	tally.Init()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tally.AddToCorrect(uint32(i%10), 1, i == 50)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, tally.Len())
	assert.True(t, tally.GetImprovementPossible())
}

func TestSplitDataset(t *testing.T) {
	sd := SplitDataset(Dataset{1: true, 2: false, 3: true})
	assert.Len(t, sd[0], 1)
	assert.Len(t, sd[1], 2)
	a := sd.Alphabet()
	assert.ElementsMatch(t, []uint32{2}, a[0])
	assert.ElementsMatch(t, []uint32{1, 3}, a[1])
}
