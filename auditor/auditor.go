package auditor

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/site-ai-auditor/backend/stats"
)

// fetchTimeout bounds the whole fetch-and-analyze cycle for one audit.
const fetchTimeout = 30 * time.Second

// browserUserAgent identifies the fetcher as a regular browser; plain bot
// user agents get blocked by trivial firewalls before any HTML is served.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// FetchError is a terminal, pre-analysis failure: the target could not be
// fetched or refused the crawler. The core pipeline is never invoked.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("this site blocks automated crawlers (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("unable to fetch the URL data: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type cacheEntry struct {
	result    *AuditResult
	timestamp time.Time
}

// CacheStats describes the state of the audit result cache.
type CacheStats struct {
	Entries     int           `json:"entries"`
	CacheHits   int           `json:"cacheHits"`
	CacheMisses int           `json:"cacheMisses"`
	CacheTTL    time.Duration `json:"cacheTTL"`
}

// Auditor fetches pages and runs the audit pipeline on them, caching
// results per URL.
type Auditor struct {
	client          *http.Client
	weights         []CategoryWeight
	cache           map[string]cacheEntry
	cacheMutex      sync.RWMutex
	cacheTTL        time.Duration
	maxCacheSize    int
	lastCleanup     time.Time
	cleanupInterval time.Duration
	done            chan struct{}
	stats           *stats.Storage
}

// New creates an Auditor persisting its counters under dataDir. A nil
// weights slice selects the default weight table.
func New(dataDir string, weights []CategoryWeight) (*Auditor, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	statsStorage, err := stats.NewStorage(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stats storage: %w", err)
	}

	if weights == nil {
		weights = DefaultWeights()
	}

	a := &Auditor{
		client: &http.Client{
			Timeout:   fetchTimeout,
			Transport: transport,
		},
		weights:         weights,
		cache:           make(map[string]cacheEntry),
		cacheTTL:        30 * time.Minute,
		maxCacheSize:    1000,
		cleanupInterval: 5 * time.Minute,
		lastCleanup:     time.Now(),
		done:            make(chan struct{}),
		stats:           statsStorage,
	}

	go a.periodicCleanup()

	return a, nil
}

func (a *Auditor) periodicCleanup() {
	ticker := time.NewTicker(a.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.cleanup()
		case <-a.done:
			return
		}
	}
}

// cleanup removes expired entries and enforces the cache size cap.
func (a *Auditor) cleanup() {
	now := time.Now()

	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()

	for key, entry := range a.cache {
		if now.Sub(entry.timestamp) > a.cacheTTL {
			delete(a.cache, key)
		}
	}

	if len(a.cache) > a.maxCacheSize {
		entries := make([]struct {
			key       string
			timestamp time.Time
		}, 0, len(a.cache))

		for key, entry := range a.cache {
			entries = append(entries, struct {
				key       string
				timestamp time.Time
			}{key, entry.timestamp})
		}

		sort.Slice(entries, func(i, j int) bool {
			return entries[i].timestamp.Before(entries[j].timestamp)
		})

		for i := 0; i < len(entries)-a.maxCacheSize; i++ {
			delete(a.cache, entries[i].key)
		}
	}

	a.lastCleanup = now
}

// SetCacheTTL sets how long audit results stay cached.
func (a *Auditor) SetCacheTTL(ttl time.Duration) {
	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()
	a.cacheTTL = ttl
}

// SetMaxCacheSize caps the number of cached audit results.
func (a *Auditor) SetMaxCacheSize(size int) {
	a.cacheMutex.Lock()
	a.maxCacheSize = size
	a.cacheMutex.Unlock()
	a.cleanup()
}

// ClearCache drops every cached audit result.
func (a *Auditor) ClearCache() {
	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()
	a.cache = make(map[string]cacheEntry)
}

func cacheKey(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

// IsCached reports whether a fresh audit for the URL is in the cache.
func (a *Auditor) IsCached(url string) bool {
	key := cacheKey(url)
	a.cacheMutex.RLock()
	defer a.cacheMutex.RUnlock()

	entry, found := a.cache[key]
	return found && time.Since(entry.timestamp) < a.cacheTTL
}

// GetCacheStats returns cache counters for the statistics endpoint.
func (a *Auditor) GetCacheStats() CacheStats {
	current := a.stats.GetCurrentStats()

	a.cacheMutex.RLock()
	defer a.cacheMutex.RUnlock()

	return CacheStats{
		Entries:     len(a.cache),
		CacheHits:   current.CacheHits,
		CacheMisses: current.CacheMisses,
		CacheTTL:    a.cacheTTL,
	}
}

// Audit fetches the URL and runs the full analysis pipeline on the body.
func (a *Auditor) Audit(url string) (*AuditResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	return a.AuditWithContext(ctx, url)
}

// AuditWithContext is Audit with a caller-controlled deadline.
func (a *Auditor) AuditWithContext(ctx context.Context, url string) (*AuditResult, error) {
	if time.Since(a.lastCleanup) > a.cleanupInterval {
		go a.cleanup()
	}

	key := cacheKey(url)
	a.cacheMutex.RLock()
	if entry, found := a.cache[key]; found && time.Since(entry.timestamp) < a.cacheTTL {
		a.cacheMutex.RUnlock()
		a.stats.RecordCacheHit()
		return entry.result, nil
	}
	a.cacheMutex.RUnlock()

	a.stats.RecordCacheMiss()

	rawHTML, err := a.fetch(ctx, url)
	if err != nil {
		a.stats.RecordFetchError()
		return nil, err
	}

	result := AnalyzeWithWeights(rawHTML, url, a.weights)
	a.stats.RecordAudit(result.JSAnalysis.IsJSReliant)

	a.cacheMutex.Lock()
	a.cache[key] = cacheEntry{result: &result, timestamp: time.Now()}
	a.cacheMutex.Unlock()

	return &result, nil
}

// fetch performs the single GET against the target. Any non-blocked status
// still yields a body worth auditing; only 403/429 are treated as the
// target rejecting the crawler.
func (a *Auditor) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if _, err := io.Copy(buf, resp.Body); err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	return buf.String(), nil
}

// GetStats returns the statistics storage instance.
func (a *Auditor) GetStats() *stats.Storage {
	return a.stats
}

// Shutdown stops the cleanup goroutine, flushes statistics and drops the
// cache.
func (a *Auditor) Shutdown() error {
	if a == nil {
		return nil
	}

	close(a.done)

	if a.stats != nil {
		if err := a.stats.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown stats storage: %w", err)
		}
	}

	a.cacheMutex.Lock()
	a.cache = nil
	a.cacheMutex.Unlock()

	return nil
}
