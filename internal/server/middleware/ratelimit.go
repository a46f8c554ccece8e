package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/shortify/internal/server/handlers"
)

// RateLimiter представляет rate limiter на основе токен-бакета (token bucket)
type RateLimiter struct {
	buckets  map[string]*bucket
	logger   *slog.Logger
	cleanupC chan struct{}
	now      func() time.Time
	rate     int
	window   time.Duration
	mu       sync.RWMutex
	stopOnce sync.Once
}

// bucket представляет bucket для конкретного IP/ключа
type bucket struct {
	lastRefill time.Time
	tokens     int
	mu         sync.Mutex
}

// NewRateLimiter создает новый rate limiter
// rate - максимальное количество запросов в единицу времени
// window - временное окно (например, 1 минута)
func NewRateLimiter(rate int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		window:   window,
		logger:   logger,
		now:      time.Now,
		cleanupC: make(chan struct{}),
	}

	// Запускаем периодическую очистку старых buckets
	go rl.cleanup()

	return rl
}

// cleanup периодически удаляет неактивные buckets для экономии памяти
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupOldBuckets()
		case <-rl.cleanupC:
			return
		}
	}
}

// cleanupOldBuckets удаляет buckets, которые не использовались дольше 2*window
func (rl *RateLimiter) cleanupOldBuckets() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		b.mu.Lock()
		if now.Sub(b.lastRefill) > rl.window*2 {
			delete(rl.buckets, key)
		}
		b.mu.Unlock()
	}
}

// Stop останавливает cleanup goroutine, повторный вызов безопасен
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.cleanupC)
	})
}

// Allow проверяет, разрешен ли запрос для данного ключа (обычно IP адрес)
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.RLock()
	b, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		// bucket мог создать параллельный запрос
		if b, exists = rl.buckets[key]; !exists {
			b = &bucket{
				tokens:     rl.rate,
				lastRefill: rl.now(),
			}
			rl.buckets[key] = b
		}
		rl.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := rl.now()

	// Пополняем токены на основе прошедшего времени
	if now.Sub(b.lastRefill) >= rl.window {
		b.tokens = rl.rate
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// Middleware ограничивает частоту запросов с одного IP
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := getClientIP(r)
		if !rl.Allow(key) {
			rejectRateLimited(w, r, rl.logger, key)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PathRateLimit описывает отдельный лимит для пути
type PathRateLimit struct {
	Path   string
	Rate   int
	Window time.Duration
}

// PathRateLimiter применяет отдельные лимиты к заданным путям и общий лимит к остальным
type PathRateLimiter struct {
	limiters map[string]*RateLimiter
	fallback *RateLimiter
	logger   *slog.Logger
}

// NewPathRateLimiter создает limiter с кастомными лимитами для путей
func NewPathRateLimiter(limits []PathRateLimit, defaultRate int, defaultWindow time.Duration, logger *slog.Logger) *PathRateLimiter {
	limiters := make(map[string]*RateLimiter, len(limits))
	for _, limit := range limits {
		limiters[limit.Path] = NewRateLimiter(limit.Rate, limit.Window, logger)
	}

	return &PathRateLimiter{
		limiters: limiters,
		fallback: NewRateLimiter(defaultRate, defaultWindow, logger),
		logger:   logger,
	}
}

// Middleware выбирает limiter по пути запроса
func (p *PathRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter, exists := p.limiters[r.URL.Path]
		if !exists {
			limiter = p.fallback
		}

		key := getClientIP(r)
		if !limiter.Allow(key) {
			rejectRateLimited(w, r, p.logger, key)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop останавливает все limiters
func (p *PathRateLimiter) Stop() {
	for _, l := range p.limiters {
		l.Stop()
	}
	p.fallback.Stop()
}

func rejectRateLimited(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string) {
	logger.WarnContext(r.Context(), "rate limit exceeded",
		slog.String("ip", key),
		slog.String("method", r.Method),
		slog.String("path", sanitizePath(r.URL.Path)),
	)
	w.Header().Set("Retry-After", "60")
	handlers.WriteFail(w, logger, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// getClientIP извлекает IP адрес клиента из запроса
// Проверяет заголовки X-Forwarded-For и X-Real-IP для прокси
func getClientIP(r *http.Request) string {
	// Берем первый IP из списка (реальный клиент)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr содержит порт, разные соединения одного клиента должны делить bucket
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
