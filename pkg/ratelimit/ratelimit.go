package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiter 速率限制器接口
type RateLimiter interface {
	Wait(ctx context.Context) error
	Allow() bool
	GetRemaining() int
}

// TokenBucket 令牌桶速率限制器
type TokenBucket struct {
	capacity   int       // 桶容量
	tokens     int       // 当前令牌数
	refillRate int       // 每秒补充的令牌数
	lastRefill time.Time // 上次补充时间
	mu         sync.Mutex
}

// NewTokenBucket 创建新的令牌桶
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// refill 补充令牌
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int(elapsed.Seconds()) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		tb.lastRefill = now
	}
}

// Allow 检查是否允许请求
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait 等待直到允许请求
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		if tb.Allow() {
			return nil
		}

		waitTime := time.Second
		if tb.refillRate > 0 {
			waitTime = time.Second / time.Duration(tb.refillRate)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// GetRemaining 获取剩余令牌数
func (tb *TokenBucket) GetRemaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	return tb.tokens
}

// Category 网关调用类别
type Category string

const (
	CategoryView   Category = "view"   // 只读视图调用
	CategorySubmit Category = "submit" // 交易广播与状态查询
)

// Manager 按调用类别管理限速器
// 公共全节点通常对视图接口限速较严，交易接口相对宽松
type Manager struct {
	limiters map[Category]RateLimiter
	mu       sync.RWMutex
}

// NewManager 创建限速管理器（带默认配置）
func NewManager() *Manager {
	return &Manager{
		limiters: map[Category]RateLimiter{
			CategoryView:   NewTokenBucket(30, 10),
			CategorySubmit: NewTokenBucket(10, 5),
		},
	}
}

// Wait 等待指定类别允许请求
func (m *Manager) Wait(ctx context.Context, cat Category) error {
	m.mu.RLock()
	rl, ok := m.limiters[cat]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return rl.Wait(ctx)
}

// Set 替换指定类别的限速器（测试或自定义配置时使用）
func (m *Manager) Set(cat Category, rl RateLimiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[cat] = rl
}
