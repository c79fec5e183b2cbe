package entity

import (
	"testing"
	"time"

	"ai-sqlchat-be/internal/constant"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func baseTask() *ScheduledTask {
	return &ScheduledTask{
		Name:            "pedidos",
		Question:        "muéstrame los pedidos",
		ScheduleKind:    constant.ScheduleKindInterval,
		IntervalSeconds: intPtr(300),
	}
}

func TestValidate(t *testing.T) {
	if err := baseTask().Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	noName := baseTask()
	noName.Name = ""
	if err := noName.Validate(); err == nil {
		t.Error("missing name accepted")
	}

	noQuestion := baseTask()
	noQuestion.Question = ""
	if err := noQuestion.Validate(); err == nil {
		t.Error("missing question accepted")
	}

	noInterval := baseTask()
	noInterval.IntervalSeconds = nil
	if err := noInterval.Validate(); err == nil {
		t.Error("interval task without interval accepted")
	}

	badKind := baseTask()
	badKind.ScheduleKind = "weekly"
	if err := badKind.Validate(); err == nil {
		t.Error("unknown schedule kind accepted")
	}

	cronTask := baseTask()
	cronTask.ScheduleKind = constant.ScheduleKindCron
	cronTask.IntervalSeconds = nil
	cronTask.CronExpression = strPtr("0 9 * * *")
	if err := cronTask.Validate(); err != nil {
		t.Errorf("valid cron task rejected: %v", err)
	}
}

func TestCalculateNextRunAlwaysAdvances(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	interval := baseTask()
	interval.CalculateNextRun(now)
	if got, want := interval.NextRunAt, now.Add(5*time.Minute); !got.Equal(want) {
		t.Errorf("interval NextRunAt = %v, want %v", got, want)
	}

	cronWithInterval := baseTask()
	cronWithInterval.ScheduleKind = constant.ScheduleKindCron
	cronWithInterval.CronExpression = strPtr("whatever")
	cronWithInterval.CalculateNextRun(now)
	if got, want := cronWithInterval.NextRunAt, now.Add(5*time.Minute); !got.Equal(want) {
		t.Errorf("cron with interval NextRunAt = %v, want %v", got, want)
	}

	cronOnly := baseTask()
	cronOnly.ScheduleKind = constant.ScheduleKindCron
	cronOnly.IntervalSeconds = nil
	cronOnly.CronExpression = strPtr("whatever")
	cronOnly.CalculateNextRun(now)
	if got, want := cronOnly.NextRunAt, now.Add(time.Hour); !got.Equal(want) {
		t.Errorf("cron fallback NextRunAt = %v, want %v", got, want)
	}
}

func TestHumanReadableSchedule(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{30, "cada 30 segundos"},
		{60, "cada 1 minuto"},
		{300, "cada 5 minutos"},
		{3600, "cada 1 hora"},
		{7200, "cada 2 horas"},
		{86400, "cada 1 día"},
		{172800, "cada 2 días"},
	}
	for _, tt := range tests {
		task := baseTask()
		task.IntervalSeconds = intPtr(tt.seconds)
		if got := task.HumanReadableSchedule(); got != tt.want {
			t.Errorf("HumanReadableSchedule(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
