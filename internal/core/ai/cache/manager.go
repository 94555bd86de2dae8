package cache

import (
	"context"
	"sync"
	"time"

	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 模型回應快取
type Store interface {
	// Get 取得快取值，未命中時回傳 common.ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// NewStore 依設定建立快取；停用時回傳 nil
func NewStore(cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}
	if cfg.Backend == config.CacheRedis {
		return NewRedisStore(cfg)
	}
	return NewManager(cfg), nil
}

// CacheManager 記憶體緩存管理器
type CacheManager struct {
	cfg   config.CacheConfig
	mu    sync.Mutex
	store map[string]cacheEntry
	stats cacheStats
	stop  chan struct{}
	once  sync.Once
}

// cacheEntry 緩存條目
type cacheEntry struct {
	value       string
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 緩存統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewManager 創建新的緩存管理器
func NewManager(cfg config.CacheConfig) *CacheManager {
	m := &CacheManager{
		cfg:   cfg,
		store: make(map[string]cacheEntry),
		stop:  make(chan struct{}),
	}

	// 啟動清理過期緩存的協程
	if cfg.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("快取管理員已初始化",
		zap.Int("max_size", cfg.MaxSize),
		zap.Duration("ttl", cfg.TTL),
		zap.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	return m
}

// Get 獲取緩存值
func (m *CacheManager) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		return "", common.ErrCacheMiss
	}

	// 檢查是否過期
	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		return "", common.ErrCacheMiss
	}

	// 更新訪問統計
	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++

	return entry.value, nil
}

// Set 設置緩存值
func (m *CacheManager) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && len(m.store) >= m.cfg.MaxSize {
		// 先清理過期項目，仍然滿載時淘汰最少使用者
		m.cleanup()
		if len(m.store) >= m.cfg.MaxSize {
			m.evictLRU()
		}
		if len(m.store) >= m.cfg.MaxSize {
			return common.ErrCacheFull
		}
	}

	now := time.Now()
	m.store[key] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(m.cfg.TTL),
		lastAccess: now,
	}
	return nil
}

// Ping 記憶體快取永遠可用
func (m *CacheManager) Ping(context.Context) error {
	return nil
}

// startCleanup 啟動清理過期緩存的協程
func (m *CacheManager) startCleanup() {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// cleanup 清理過期的緩存，呼叫端需持有鎖
func (m *CacheManager) cleanup() int {
	now := time.Now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰最少訪問、最久未用的項目
func (m *CacheManager) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	lowestAccessCount := 0

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
	}
}

// GetStats 獲取緩存統計信息
func (m *CacheManager) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.cfg.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
	}
}

// Close 關閉緩存管理器
func (m *CacheManager) Close() error {
	m.once.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()

	common.LogInfo("快取管理員已關閉",
		zap.Int64("hits", m.stats.hits),
		zap.Int64("misses", m.stats.misses),
		zap.Int64("evictions", m.stats.evictions),
	)
	m.store = make(map[string]cacheEntry)
	return nil
}
