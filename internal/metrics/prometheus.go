// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the engagement service.
var (
	// Leveling.
	XPAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xp_awarded_total",
			Help: "Total XP awarded, by action",
		},
		[]string{"action"},
	)

	XPAwardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xp_awards_total",
			Help: "Number of XP award requests, by action and outcome",
		},
		[]string{"action", "status"},
	)

	LevelUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total number of level-ups",
		},
	)

	UserLevels = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "user_level_reached",
			Help:    "Level reached on each level-up",
			Buckets: prometheus.LinearBuckets(5, 5, 10), // 5 to 50
		},
	)

	AchievementsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_unlocked_total",
			Help: "Total number of achievements unlocked",
		},
		[]string{"achievement"},
	)

	AchievementHolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "achievement_holders",
			Help: "Current number of users holding each achievement",
		},
		[]string{"achievement"},
	)

	// Search.
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total search requests, by content type and outcome",
		},
		[]string{"type", "status"},
	)

	SearchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Time taken to answer a search request",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		},
		[]string{"type"},
	)

	SearchResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_results",
			Help:    "Number of results returned per search request",
			Buckets: prometheus.LinearBuckets(0, 10, 7), // 0 to 60
		},
		[]string{"type"},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"job", "status"},
	)

	SchedulerLastRunTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduler run",
		},
		[]string{"job"},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Time taken to execute a scheduler job",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
		[]string{"job"},
	)
)

// RecordXPAwarded records XP granted for an action.
func RecordXPAwarded(action string, amount int) {
	XPAwardsTotal.WithLabelValues(action, "awarded").Inc()
	XPAwardedTotal.WithLabelValues(action).Add(float64(amount))
}

// RecordXPAwardSkipped records an award request that resolved to zero XP.
func RecordXPAwardSkipped(action string) {
	XPAwardsTotal.WithLabelValues(action, "skipped").Inc()
}

// RecordLevelUp records a level-up to the given level.
func RecordLevelUp(level int) {
	LevelUpsTotal.Inc()
	UserLevels.Observe(float64(level))
}

// RecordAchievementUnlocked records an achievement unlock.
func RecordAchievementUnlocked(achievementID string) {
	AchievementsUnlockedTotal.WithLabelValues(achievementID).Inc()
}

// SetAchievementHolders sets the number of holders for an achievement.
func SetAchievementHolders(achievementID string, count int) {
	AchievementHolders.WithLabelValues(achievementID).Set(float64(count))
}

// RecordSearch records a completed search request.
func RecordSearch(contentType, status string, duration time.Duration, results int) {
	SearchRequestsTotal.WithLabelValues(contentType, status).Inc()
	SearchDurationSeconds.WithLabelValues(contentType).Observe(duration.Seconds())
	if status == "success" {
		SearchResults.WithLabelValues(contentType).Observe(float64(results))
	}
}

// RecordSchedulerJobRun records a scheduler job execution.
func RecordSchedulerJobRun(job, status string) {
	SchedulerJobsRunTotal.WithLabelValues(job, status).Inc()
}

// SetSchedulerLastRun sets the timestamp of the last run of a job.
func SetSchedulerLastRun(job string) {
	SchedulerLastRunTimestamp.WithLabelValues(job).SetToCurrentTime()
}

// ObserveSchedulerJobDuration observes the duration of a scheduler job.
func ObserveSchedulerJobDuration(job string, seconds float64) {
	SchedulerJobDurationSeconds.WithLabelValues(job).Observe(seconds)
}
