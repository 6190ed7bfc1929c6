package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagSetOnce(t *testing.T) {
	flag := &Flag{}
	assert.False(t, flag.Held())
	assert.True(t, flag.Set())
	assert.True(t, flag.Held())
	assert.False(t, flag.Set())
	assert.True(t, flag.Held())
}

func TestFlagConcurrentSet(t *testing.T) {
	flag := &Flag{}
	var won int32
	wg := &sync.WaitGroup{}
	mutex := &sync.Mutex{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if flag.Set() {
				mutex.Lock()
				won++
				mutex.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), won)
}
