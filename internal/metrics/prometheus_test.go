package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordXPAwarded(t *testing.T) {
	XPAwardedTotal.Reset()
	XPAwardsTotal.Reset()

	RecordXPAwarded("CREATE_POST", 10)
	RecordXPAwarded("CREATE_POST", 10)
	RecordXPAwarded("UPLOAD_PAPER", 50)
	RecordXPAwardSkipped("CUSTOM")

	total := testutil.ToFloat64(XPAwardedTotal.WithLabelValues("CREATE_POST"))
	if total != 20 {
		t.Errorf("Expected CREATE_POST xp = 20, got %f", total)
	}

	count := testutil.ToFloat64(XPAwardsTotal.WithLabelValues("CREATE_POST", "awarded"))
	if count != 2 {
		t.Errorf("Expected CREATE_POST awards = 2, got %f", count)
	}

	count = testutil.ToFloat64(XPAwardsTotal.WithLabelValues("CUSTOM", "skipped"))
	if count != 1 {
		t.Errorf("Expected CUSTOM skipped = 1, got %f", count)
	}
}

func TestRecordLevelUp(t *testing.T) {
	before := testutil.ToFloat64(LevelUpsTotal)

	RecordLevelUp(2)
	RecordLevelUp(10)

	after := testutil.ToFloat64(LevelUpsTotal)
	if after-before != 2 {
		t.Errorf("Expected 2 level-ups recorded, got %f", after-before)
	}
}

func TestRecordAchievementUnlocked(t *testing.T) {
	AchievementsUnlockedTotal.Reset()

	RecordAchievementUnlocked("first_post")
	RecordAchievementUnlocked("first_post")
	RecordAchievementUnlocked("early_adopter")

	count := testutil.ToFloat64(AchievementsUnlockedTotal.WithLabelValues("first_post"))
	if count != 2 {
		t.Errorf("Expected first_post unlocks = 2, got %f", count)
	}
}

func TestSetAchievementHolders(t *testing.T) {
	SetAchievementHolders("week_streak", 7)
	SetAchievementHolders("week_streak", 9)

	count := testutil.ToFloat64(AchievementHolders.WithLabelValues("week_streak"))
	if count != 9 {
		t.Errorf("Expected week_streak holders = 9, got %f", count)
	}
}

func TestRecordSearch(t *testing.T) {
	SearchRequestsTotal.Reset()
	SearchDurationSeconds.Reset()
	SearchResults.Reset()

	RecordSearch("all", "success", 15*time.Millisecond, 12)
	RecordSearch("all", "error", 2*time.Second, 0)
	RecordSearch("papers", "success", time.Millisecond, 3)

	count := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("all", "success"))
	if count != 1 {
		t.Errorf("Expected all/success = 1, got %f", count)
	}

	count = testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("all", "error"))
	if count != 1 {
		t.Errorf("Expected all/error = 1, got %f", count)
	}

	// Only successful searches feed the result-count histogram.
	if n := testutil.CollectAndCount(SearchResults); n != 2 {
		t.Errorf("Expected 2 result histogram series, got %d", n)
	}
}

func TestSchedulerMetrics(t *testing.T) {
	SchedulerJobsRunTotal.Reset()

	RecordSchedulerJobRun("rollup", "success")
	RecordSchedulerJobRun("rollup", "error")
	RecordSchedulerJobRun("achievement_sweep", "success")
	SetSchedulerLastRun("rollup")
	ObserveSchedulerJobDuration("rollup", 0.5)

	count := testutil.ToFloat64(SchedulerJobsRunTotal.WithLabelValues("rollup", "success"))
	if count != 1 {
		t.Errorf("Expected rollup success = 1, got %f", count)
	}

	ts := testutil.ToFloat64(SchedulerLastRunTimestamp.WithLabelValues("rollup"))
	if ts <= 0 {
		t.Errorf("Expected last run timestamp to be set, got %f", ts)
	}
}

func TestMetricsRegistered(t *testing.T) {
	collectors := []prometheus.Collector{
		XPAwardedTotal,
		XPAwardsTotal,
		LevelUpsTotal,
		UserLevels,
		AchievementsUnlockedTotal,
		AchievementHolders,
		SearchRequestsTotal,
		SearchDurationSeconds,
		SearchResults,
		SchedulerJobsRunTotal,
		SchedulerLastRunTimestamp,
		SchedulerJobDurationSeconds,
	}

	for _, c := range collectors {
		// Registering again must fail with AlreadyRegisteredError since promauto
		// registered the collector with the default registry.
		err := prometheus.Register(c)
		if err == nil {
			t.Errorf("Expected collector to be already registered")
			continue
		}
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			t.Errorf("Unexpected registration error: %v", err)
		}
	}
}
