package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/atinyakov/jobboard/internal/models"
	"go.uber.org/zap"
)

// ApplicationCounts fetches the application total of every job concurrently.
// A job whose call fails counts 0.
func ApplicationCounts(ctx context.Context, gw Gateway, jobIDs []int64, log *zap.Logger) map[int64]int {
	if log == nil {
		log = zap.NewNop()
	}
	counts := make(map[int64]int, len(jobIDs))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, id := range jobIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := 0
			page, err := gw.ListJobApplications(ctx, id, 1, 1)
			if err != nil {
				log.Debug("count applications", zap.Int64("job_id", id), zap.Error(err))
			} else {
				n = page.Meta.Total
			}
			mu.Lock()
			counts[id] = n
			mu.Unlock()
		}()
	}
	wg.Wait()
	return counts
}

// RecruiterStats aggregates the caller's jobs and their applications. An error
// is returned only when the job listing itself fails.
func RecruiterStats(ctx context.Context, gw Gateway, log *zap.Logger) (models.RecruiterStats, error) {
	first, err := gw.ListMyJobs(ctx, models.ListParams{Page: 1, Limit: 1})
	if err != nil {
		return models.RecruiterStats{}, fmt.Errorf("count jobs: %w", err)
	}
	total := first.Meta.Total
	if total == 0 {
		return models.RecruiterStats{}, nil
	}

	all, err := gw.ListMyJobs(ctx, models.ListParams{Page: 1, Limit: total})
	if err != nil {
		return models.RecruiterStats{}, fmt.Errorf("list jobs: %w", err)
	}

	stats := models.RecruiterStats{TotalJobs: total}
	ids := make([]int64, 0, len(all.Data))
	for _, j := range all.Data {
		switch j.Status {
		case models.JobOpen:
			stats.OpenJobs++
		case models.JobClosed:
			stats.ClosedJobs++
		case models.JobPaused:
		}
		ids = append(ids, j.ID)
	}
	for _, n := range ApplicationCounts(ctx, gw, ids, log) {
		stats.TotalApplications += n
	}
	return stats, nil
}

// AppliedJobs returns the IDs of the jobs the caller has applied to.
func AppliedJobs(ctx context.Context, gw Gateway) (map[int64]bool, error) {
	first, err := gw.ListMyApplications(ctx, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	limit := first.Meta.Total
	if limit == 0 {
		limit = appliedFallbackLimit
	}
	all, err := gw.ListMyApplications(ctx, 1, limit)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	set := make(map[int64]bool, len(all.Data))
	for _, a := range all.Data {
		set[a.JobID] = true
	}
	return set, nil
}
