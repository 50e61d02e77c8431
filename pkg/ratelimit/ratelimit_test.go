package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(3, 1)
	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("第 %d 次请求应被允许", i+1)
		}
	}
	if tb.Allow() {
		t.Fatal("桶空后请求应被拒绝")
	}
	if tb.GetRemaining() != 0 {
		t.Fatalf("剩余令牌 got=%d want=0", tb.GetRemaining())
	}
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(2, 10)
	tb.tokens = 0
	tb.lastRefill = time.Now().Add(-time.Second)

	if !tb.Allow() {
		t.Fatal("补充后应允许请求")
	}
}

func TestWaitCancelled(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	if !tb.Allow() {
		t.Fatal("首个请求应被允许")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tb.Wait(ctx); err == nil {
		t.Fatal("已取消的上下文应中断等待")
	}
}

func TestManager(t *testing.T) {
	m := NewManager()
	if err := m.Wait(context.Background(), CategoryView); err != nil {
		t.Fatalf("默认配置下首个请求应立即通过: %v", err)
	}
	// 未知类别不限速
	if err := m.Wait(context.Background(), Category("other")); err != nil {
		t.Fatal(err)
	}

	// 替换为空桶后立即被限
	empty := NewTokenBucket(1, 1)
	empty.tokens = 0
	m.Set(CategorySubmit, empty)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := m.Wait(ctx, CategorySubmit); err == nil {
		t.Fatal("空桶应等待直到超时")
	}
}
