package cache

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"funnelworks/internal/model"
)

// StatsCache counts funnel activity per tool. Outcomes are kept in a ZSET
// so the most frequent result levels come first.
type StatsCache interface {
	IncrStarted(ctx context.Context, tool model.ToolID) error
	IncrCompleted(ctx context.Context, tool model.ToolID, outcome string) error
	IncrAbandoned(ctx context.Context, tool model.ToolID) error
	Get(ctx context.Context, tool model.ToolID) (*model.ToolStats, error)
}

const (
	fieldStarted   = "started"
	fieldCompleted = "completed"
	fieldAbandoned = "abandoned"
)

type statsCache struct {
	client *redis.Client
}

// NewStatsCache creates a Redis-backed stats cache
func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{
		client: client,
	}
}

func (c *statsCache) countersKey(tool model.ToolID) string {
	return fmt.Sprintf("stats:%s", tool)
}

func (c *statsCache) outcomesKey(tool model.ToolID) string {
	return fmt.Sprintf("stats:%s:outcomes", tool)
}

func (c *statsCache) IncrStarted(ctx context.Context, tool model.ToolID) error {
	return c.client.HIncrBy(ctx, c.countersKey(tool), fieldStarted, 1).Err()
}

func (c *statsCache) IncrCompleted(ctx context.Context, tool model.ToolID, outcome string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, c.countersKey(tool), fieldCompleted, 1)
		pipe.ZIncrBy(ctx, c.outcomesKey(tool), 1, outcome)
		return nil
	})
	return err
}

func (c *statsCache) IncrAbandoned(ctx context.Context, tool model.ToolID) error {
	return c.client.HIncrBy(ctx, c.countersKey(tool), fieldAbandoned, 1).Err()
}

func (c *statsCache) Get(ctx context.Context, tool model.ToolID) (*model.ToolStats, error) {
	counters, err := c.client.HGetAll(ctx, c.countersKey(tool)).Result()
	if err != nil {
		return nil, err
	}
	results, err := c.client.ZRevRangeWithScores(ctx, c.outcomesKey(tool), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	stats := &model.ToolStats{
		ToolID:    tool,
		Started:   parseCount(counters[fieldStarted]),
		Completed: parseCount(counters[fieldCompleted]),
		Abandoned: parseCount(counters[fieldAbandoned]),
		Outcomes:  make([]model.OutcomeCount, len(results)),
	}
	for i, z := range results {
		stats.Outcomes[i] = model.OutcomeCount{
			Label: z.Member.(string),
			Count: int64(z.Score),
		}
	}
	return stats, nil
}

func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

type memoryStatsCache struct {
	mu    sync.Mutex
	stats map[model.ToolID]*memoryStats
}

type memoryStats struct {
	started, completed, abandoned int64
	outcomes                      map[string]int64
}

// NewMemoryStatsCache creates an in-process stats cache
func NewMemoryStatsCache() StatsCache {
	return &memoryStatsCache{stats: make(map[model.ToolID]*memoryStats)}
}

func (c *memoryStatsCache) entry(tool model.ToolID) *memoryStats {
	s, ok := c.stats[tool]
	if !ok {
		s = &memoryStats{outcomes: make(map[string]int64)}
		c.stats[tool] = s
	}
	return s
}

func (c *memoryStatsCache) IncrStarted(ctx context.Context, tool model.ToolID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(tool).started++
	return nil
}

func (c *memoryStatsCache) IncrCompleted(ctx context.Context, tool model.ToolID, outcome string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.entry(tool)
	s.completed++
	s.outcomes[outcome]++
	return nil
}

func (c *memoryStatsCache) IncrAbandoned(ctx context.Context, tool model.ToolID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(tool).abandoned++
	return nil
}

func (c *memoryStatsCache) Get(ctx context.Context, tool model.ToolID) (*model.ToolStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.entry(tool)
	stats := &model.ToolStats{
		ToolID:    tool,
		Started:   s.started,
		Completed: s.completed,
		Abandoned: s.abandoned,
		Outcomes:  make([]model.OutcomeCount, 0, len(s.outcomes)),
	}
	for label, n := range s.outcomes {
		stats.Outcomes = append(stats.Outcomes, model.OutcomeCount{Label: label, Count: n})
	}
	sort.Slice(stats.Outcomes, func(i, j int) bool {
		if stats.Outcomes[i].Count != stats.Outcomes[j].Count {
			return stats.Outcomes[i].Count > stats.Outcomes[j].Count
		}
		return stats.Outcomes[i].Label < stats.Outcomes[j].Label
	})
	return stats, nil
}
