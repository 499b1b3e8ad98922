package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"service-automation/internal/common/logger"
	"service-automation/internal/common/metrics"
	"service-automation/internal/models"
)

const (
	latestKeyPrefix     = "automation:latest:"
	generationKeyPrefix = "automation:gen:"
)

func latestKey(orderID string) string {
	return latestKeyPrefix + orderID
}

func generationKey(orderID string) string {
	return generationKeyPrefix + orderID
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// errStaleRead aborts a cache write whose repository read predates a Create.
var errStaleRead = stderrors.New("order generation changed during read")

// CachedJobs fronts a JobRepository with a Redis read-through cache for
// LatestForOrder. Only terminal jobs are cached: they never change, and a
// new job for the order evicts the entry on Create. Create also bumps a
// per-order generation; a read only fills the cache when the generation it
// saw before reading the repository is still current. Redis failures fall
// back to the repository.
type CachedJobs struct {
	JobRepository
	rdb *redis.Client
	ttl time.Duration
	log logger.Logger
}

func NewCachedJobs(repo JobRepository, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedJobs {
	return &CachedJobs{
		JobRepository: repo,
		rdb:           rdb,
		ttl:           ttl,
		log:           log.Named("job-cache"),
	}
}

func (c *CachedJobs) Create(ctx context.Context, job *models.Job) error {
	if err := c.JobRepository.Create(ctx, job); err != nil {
		return err
	}
	if err := c.rdb.Incr(ctx, generationKey(job.OrderID)).Err(); err != nil {
		c.warn("cache generation bump failed", job.OrderID, err)
	}
	c.evict(ctx, job.OrderID)
	return nil
}

func (c *CachedJobs) Update(ctx context.Context, job *models.Job) error {
	if err := c.JobRepository.Update(ctx, job); err != nil {
		return err
	}
	c.evict(ctx, job.OrderID)
	return nil
}

func (c *CachedJobs) LatestForOrder(ctx context.Context, orderID string) (*models.Job, error) {
	if job, ok := c.cached(ctx, orderID); ok {
		return job, nil
	}

	gen, genOK := c.generation(ctx, c.rdb, orderID)
	job, err := c.JobRepository.LatestForOrder(ctx, orderID)
	if err != nil || job == nil {
		return job, err
	}
	if job.IsTerminal() && genOK {
		c.store(ctx, job, gen)
	}
	return job, nil
}

// generation reads the order's Create counter. A missing key is zero.
func (c *CachedJobs) generation(ctx context.Context, cmd getter, orderID string) (int64, bool) {
	gen, err := cmd.Get(ctx, generationKey(orderID)).Int64()
	if stderrors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		c.warn("cache generation read failed", orderID, err)
		return 0, false
	}
	return gen, true
}

func (c *CachedJobs) cached(ctx context.Context, orderID string) (*models.Job, bool) {
	raw, err := c.rdb.Get(ctx, latestKey(orderID)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.warn("cache read failed", orderID, err)
		return nil, false
	}

	var job models.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		c.warn("cache entry corrupt", orderID, err)
		c.evict(ctx, orderID)
		return nil, false
	}
	return &job, true
}

// store caches job under WATCH on the generation key, so a Create landing
// between the repository read and the write discards it.
func (c *CachedJobs) store(ctx context.Context, job *models.Job, gen int64) {
	raw, err := json.Marshal(job)
	if err != nil {
		c.warn("cache encode failed", job.OrderID, err)
		return
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, ok := c.generation(ctx, tx, job.OrderID)
		if !ok || current != gen {
			return errStaleRead
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, latestKey(job.OrderID), raw, c.ttl)
			return nil
		})
		return err
	}, generationKey(job.OrderID))

	switch {
	case err == nil:
	case stderrors.Is(err, errStaleRead), stderrors.Is(err, redis.TxFailedErr):
		c.log.Debug("skipped caching superseded job", map[string]interface{}{
			"orderId": job.OrderID,
			"jobId":   job.ID,
		})
	default:
		c.warn("cache write failed", job.OrderID, err)
	}
}

func (c *CachedJobs) evict(ctx context.Context, orderID string) {
	if err := c.rdb.Del(ctx, latestKey(orderID)).Err(); err != nil {
		c.warn("cache evict failed", orderID, err)
	}
}

func (c *CachedJobs) warn(msg, orderID string, err error) {
	metrics.AutomationSideEffectFailures.WithLabelValues("cache").Inc()
	c.log.Warn(msg, map[string]interface{}{
		"orderId": orderID,
		"error":   fmt.Sprintf("%v", err),
	})
}
