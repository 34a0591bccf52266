package cache

import (
	"testing"
	"time"
)

func TestCacheManager_GetOrCreate(t *testing.T) {
	cacheManager := NewManager(15 * time.Minute)

	calls := 0
	create := func() interface{} {
		calls++
		return &calls
	}

	first := cacheManager.GetOrCreate("client-1", create)
	second := cacheManager.GetOrCreate("client-1", create)

	if first != second {
		t.Error("Expected the same entry for the same key")
	}
	if calls != 1 {
		t.Errorf("Expected create to run once, ran %d times", calls)
	}

	cacheManager.GetOrCreate("client-2", create)
	if calls != 2 {
		t.Errorf("Expected create for a new key, ran %d times", calls)
	}
}

func TestCacheManager_Expiry(t *testing.T) {
	cacheManager := NewManager(20 * time.Millisecond)

	cacheManager.GetOrCreate("client", func() interface{} { return "v1" })
	time.Sleep(40 * time.Millisecond)

	if _, found := cacheManager.Get("client"); found {
		t.Error("Expected idle entry to expire")
	}

	value := cacheManager.GetOrCreate("client", func() interface{} { return "v2" })
	if value != "v2" {
		t.Errorf("Expected recreated entry, got %v", value)
	}
}

func TestCacheManager_Delete(t *testing.T) {
	cacheManager := NewManager(15 * time.Minute)

	cacheManager.GetOrCreate("test-key", func() interface{} { return "test-value" })

	// Verify value exists
	if _, found := cacheManager.Get("test-key"); !found {
		t.Error("Expected to find cached value before deletion")
	}

	cacheManager.Delete("test-key")

	if _, found := cacheManager.Get("test-key"); found {
		t.Error("Expected cached value to be deleted")
	}
}

func TestCacheManager_Flush(t *testing.T) {
	cacheManager := NewManager(15 * time.Minute)

	cacheManager.GetOrCreate("key1", func() interface{} { return "value1" })
	cacheManager.GetOrCreate("key2", func() interface{} { return "value2" })

	if cacheManager.ItemCount() != 2 {
		t.Errorf("Expected 2 items before flush, got %d", cacheManager.ItemCount())
	}

	cacheManager.Flush()

	if cacheManager.ItemCount() != 0 {
		t.Errorf("Expected 0 items after flush, got %d", cacheManager.ItemCount())
	}
}
