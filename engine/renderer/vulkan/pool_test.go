package vulkan

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeCallSerializesGroup(t *testing.T) {
	pool := NewVulkanLockPool()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.SafeCall(MemoryManagement, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestSafeCallReturnsError(t *testing.T) {
	pool := NewVulkanLockPool()
	want := errors.New("boom")
	assert.ErrorIs(t, pool.SafeCall(PipelineManagement, func() error { return want }), want)
}

func TestSafeQueueCallUnknownFamily(t *testing.T) {
	pool := NewVulkanLockPool()
	pool.SetQueueFamily(0)

	called := false
	err := pool.SafeQueueCall(7, func() error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestSafeCallDifferentGroupsDoNotBlock(t *testing.T) {
	pool := NewVulkanLockPool()
	err := pool.SafeCall(DescriptorManagement, func() error {
		return pool.SafeCall(MemoryManagement, func() error { return nil })
	})
	assert.NoError(t, err)
}
