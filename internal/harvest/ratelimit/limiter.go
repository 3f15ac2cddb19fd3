package ratelimit

import (
	"time"

	"go.uber.org/zap"
)

// Kind 失败分类，决定退避策略
type Kind int

const (
	KindUnclassified Kind = iota
	KindOverload           // 429 限流
	KindServerError        // 5xx
)

func (k Kind) String() string {
	switch k {
	case KindOverload:
		return "overload"
	case KindServerError:
		return "server_error"
	default:
		return "unclassified"
	}
}

const (
	window       = time.Minute
	backoffFloor = time.Second
	backoffCap   = 5 * time.Minute
)

// Limiter 滑动 60 秒窗口限速 + 指数退避。
// 单控制流使用，不做并发保护。
type Limiter struct {
	log          *zap.Logger
	maxPerMinute int
	requests     []time.Time
	backoff      time.Duration

	// 注入点，测试用
	now   func() time.Time
	sleep func(time.Duration)
}

func New(log *zap.Logger, maxPerMinute int) *Limiter {
	return &Limiter{
		log:          log,
		maxPerMinute: maxPerMinute,
		backoff:      backoffFloor,
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

// Wait 在任一 60 秒窗口内不超过上限，必要时阻塞；
// 睡眠时长由窗口内最老一次请求的年龄决定，然后记录本次调用。
func (l *Limiter) Wait() {
	now := l.evict()

	if len(l.requests) >= l.maxPerMinute {
		sleep := window - now.Sub(l.requests[0]) + time.Second
		l.log.Info("Rate limit reached, sleeping",
			zap.Duration("sleep", sleep),
			zap.Int("inWindow", len(l.requests)),
		)
		l.sleep(sleep)
		l.evict()
	}

	l.requests = append(l.requests, l.now())
}

// evict 先驱逐 60 秒之前的记录再做比较
func (l *Limiter) evict() time.Time {
	now := l.now()
	kept := l.requests[:0]
	for _, t := range l.requests {
		if now.Sub(t) < window {
			kept = append(kept, t)
		}
	}
	l.requests = kept
	return now
}

// Backoff 按分类处理一次失败。瞬时类失败睡眠当前退避并放大后返回 true；
// 其余失败只重置退避并返回 false，由调用方决定跳过该工作单元。
func (l *Limiter) Backoff(kind Kind) bool {
	switch kind {
	case KindOverload:
		l.log.Warn("Rate limited by API, backing off",
			zap.Duration("backoff", l.backoff),
		)
		l.sleep(l.backoff)
		l.backoff = clamp(l.backoff * 2)
		return true
	case KindServerError:
		l.log.Warn("Server error, retrying after backoff",
			zap.Duration("backoff", l.backoff),
		)
		l.sleep(l.backoff)
		l.backoff = clamp(l.backoff * 3 / 2)
		return true
	default:
		l.backoff = backoffFloor
		return false
	}
}

// Success 成功后退避回落到下限
func (l *Limiter) Success() {
	l.backoff = backoffFloor
}

// InWindow 当前窗口内已记录的请求数
func (l *Limiter) InWindow() int {
	l.evict()
	return len(l.requests)
}

func clamp(d time.Duration) time.Duration {
	if d > backoffCap {
		return backoffCap
	}
	return d
}
