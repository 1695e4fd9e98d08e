package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// loginLimiter 按 IP 的滑动窗口计数
type loginLimiter struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	attempts    map[string][]time.Time
}

func newLoginLimiter(maxAttempts int, window time.Duration) *loginLimiter {
	return &loginLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		attempts:    make(map[string][]time.Time),
	}
}

// prune 移除窗口外的记录，调用方需持有锁
func (l *loginLimiter) prune(ip string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	kept := l.attempts[ip][:0]
	for _, t := range l.attempts[ip] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, ip)
		return nil
	}
	l.attempts[ip] = kept
	return kept
}

// allow 记录一次尝试；超限时返回 false 和需要等待的时间
func (l *loginLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.prune(ip, now)
	if len(kept) >= l.maxAttempts {
		return false, kept[0].Add(l.window).Sub(now)
	}
	l.attempts[ip] = append(kept, now)
	return true, 0
}

// cleanup 清理所有过期 IP
func (l *loginLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip := range l.attempts {
		l.prune(ip, now)
	}
}

// LoginRateLimit 登录接口限流中间件
// 每个 IP 在 window 内最多 maxAttempts 次尝试，超过则返回 429
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	limiter := newLoginLimiter(maxAttempts, window)
	// 定期清理过期数据
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			limiter.cleanup(now)
		}
	}()

	return func(c *gin.Context) {
		ok, wait := limiter.allow(c.ClientIP(), time.Now())
		if !ok {
			seconds := int(wait.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Muitas tentativas de login. Tente novamente mais tarde.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
