package cache

import (
	"testing"
	"time"
)

func TestTTLCacheBasic(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute)
	c.Set("a", 1, 0)

	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("Get(a) got=(%d,%v) want=(1,true)", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("不存在的键不应命中")
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("删除后不应命中")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, string](time.Minute)
	c.Set("k", "v", 10*time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Fatal("过期前应命中")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("过期后不应命中")
	}
	// 过期项在读取时被惰性删除
	if c.Size() != 0 {
		t.Fatalf("Size got=%d want=0", c.Size())
	}
}

func TestTTLCacheDefaultTTL(t *testing.T) {
	c := NewTTLCache[string, int](10 * time.Millisecond)
	c.Set("k", 7, 0) // 使用默认 TTL
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("默认 TTL 过期后不应命中")
	}
}
