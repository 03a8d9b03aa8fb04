package logging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Environment variable name for controlling statistics visibility
const ENV_DEV_MODE = "DEV_MODE"

// Statistics represents the collected request statistics
type Statistics struct {
	UniqueVisitors map[string]time.Time `json:"uniqueVisitors"` // IP -> Last Visit Time
	AuditRequests  int                  `json:"auditRequests"`  // Total number of audit requests
	ErrorCount     int                  `json:"errorCount"`     // Number of errors
	PopularURLs    map[string]int       `json:"popularUrls"`    // Audited URL -> Count
	AverageLatency float64              `json:"averageLatency"` // Average audit latency in milliseconds
	AverageScore   float64              `json:"averageScore"`   // Average total score across audits
	TotalLatency   float64              `json:"-"`              // Used to calculate average
	TotalScore     float64              `json:"-"`              // Used to calculate average
	RequestCount   int                  `json:"-"`              // Used to calculate averages
	ScoredCount    int                  `json:"-"`              // Audits that produced a score
	LastPersisted  time.Time            `json:"lastPersisted"`  // Last time stats were saved
	mutex          sync.RWMutex
}

var (
	stats *Statistics
	once  sync.Once
)

// Initialize creates or loads the statistics
func Initialize() *Statistics {
	once.Do(func() {
		stats = &Statistics{
			UniqueVisitors: make(map[string]time.Time),
			PopularURLs:    make(map[string]int),
			LastPersisted:  time.Now(),
		}

		if err := stats.Load(); err != nil {
			fmt.Printf("Could not load existing statistics: %v\n", err)
		}
	})
	return stats
}

// TrackVisitor records a unique visitor
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// cleanURL strips query noise and our own API paths, returns just the main URL
func cleanURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	// Don't track our own API URLs
	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	cleaned := u.Scheme + "://" + u.Host

	if u.Path != "" && u.Path != "/" {
		cleaned += u.Path
	}

	return strings.TrimSuffix(cleaned, "/")
}

// TrackAudit records one audit request: the target URL, how long the audit
// took, the total score it produced (ignored when hasError) and whether it
// failed.
func (s *Statistics) TrackAudit(target string, latency float64, totalScore int, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AuditRequests++

	cleaned := cleanURL(target)
	if cleaned != "" {
		s.PopularURLs[cleaned]++
	}

	if hasError {
		s.ErrorCount++
	} else {
		s.TotalScore += float64(totalScore)
		s.ScoredCount++
		s.AverageScore = s.TotalScore / float64(s.ScoredCount)
	}

	s.TotalLatency += latency
	s.RequestCount++
	s.AverageLatency = s.TotalLatency / float64(s.RequestCount)
}

// GetUniqueVisitorsCount returns the number of unique visitors in the last 24 hours
func (s *Statistics) GetUniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.uniqueVisitorsLocked()
}

func (s *Statistics) uniqueVisitorsLocked() int {
	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)

	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}

	return count
}

// GetPopularURLs returns up to N of the most audited URLs
func (s *Statistics) GetPopularURLs(n int) map[string]int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.popularURLsLocked(n)
}

func (s *Statistics) popularURLsLocked(n int) map[string]int {
	result := make(map[string]int)
	count := 0

	// Simple implementation - for production, use a heap or sorted data structure
	for u, freq := range s.PopularURLs {
		if count < n {
			result[u] = freq
			count++
		}
	}

	return result
}

// GetErrorRate returns the error rate as a percentage
func (s *Statistics) GetErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.errorRateLocked()
}

func (s *Statistics) errorRateLocked() float64 {
	if s.AuditRequests == 0 {
		return 0
	}

	return (float64(s.ErrorCount) / float64(s.AuditRequests)) * 100
}

// Save persists the statistics to a file
func (s *Statistics) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.LastPersisted = time.Now()

	file, err := os.Create("statistics.json")
	if err != nil {
		return fmt.Errorf("could not create statistics file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("could not encode statistics: %v", err)
	}

	return nil
}

// Load reads the statistics from a file
func (s *Statistics) Load() error {
	file, err := os.Open("statistics.json")
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if file doesn't exist yet
		}
		return fmt.Errorf("could not open statistics file: %v", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(s); err != nil {
		return fmt.Errorf("could not decode statistics: %v", err)
	}

	return nil
}

// GetStatistics returns a snapshot of the current statistics. Popular URLs
// are only exposed in development mode.
func (s *Statistics) GetStatistics() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snapshot := map[string]interface{}{
		"uniqueVisitors24h": s.uniqueVisitorsLocked(),
		"totalRequests":     s.AuditRequests,
		"errorRate":         s.errorRateLocked(),
		"averageLatency":    s.AverageLatency,
		"averageScore":      s.AverageScore,
	}

	if os.Getenv(ENV_DEV_MODE) == "true" {
		snapshot["popularUrls"] = s.popularURLsLocked(5) // Only shown in dev mode
	}

	return snapshot
}
