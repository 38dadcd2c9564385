package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-wide counters exposed on /metrics.
type Collector struct {
	totalRequests   atomic.Uint64
	errorRequests   atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64
	uploads         atomic.Uint64
	uploadFailures  atomic.Uint64
	chatMessages    atomic.Uint64
	liveSessions    atomic.Int64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.totalRequests.Add(1)
	if status >= 500 {
		c.errorRequests.Add(1)
	}
	if status == 429 {
		c.rateLimited.Add(1)
	}
	c.totalDurationMs.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) RecordUpload(ok bool) {
	if ok {
		c.uploads.Add(1)
		return
	}
	c.uploadFailures.Add(1)
}

func (c *Collector) RecordChatMessage() {
	c.chatMessages.Add(1)
}

func (c *Collector) SessionOpened() { c.liveSessions.Add(1) }

func (c *Collector) SessionClosed() { c.liveSessions.Add(-1) }

func (c *Collector) Snapshot() map[string]any {
	total := c.totalRequests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":       total,
		"errorsTotal":         c.errorRequests.Load(),
		"rateLimitedTotal":    c.rateLimited.Load(),
		"avgDurationMs":       avg,
		"totalDurationMs":     totalMs,
		"uploadsTotal":        c.uploads.Load(),
		"uploadFailuresTotal": c.uploadFailures.Load(),
		"chatMessagesTotal":   c.chatMessages.Load(),
		"liveSessions":        c.liveSessions.Load(),
	}
}
