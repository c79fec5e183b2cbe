package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ai-sqlchat-be/internal/constant"
	"ai-sqlchat-be/internal/pkg/apperrors"
)

type ScheduledTask struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	ConversationId  *uuid.UUID
	Name            string
	Question        string
	ScheduleKind    string
	IntervalSeconds *int
	CronExpression  *string
	NextRunAt       time.Time
	LastRunAt       *time.Time
	RunCount        int
	Active          bool
	LastResult      *string
	LastError       *string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
	IsDeleted       bool
}

// Validate enforces the per-kind required fields.
func (t *ScheduledTask) Validate() error {
	if t.Name == "" {
		return apperrors.ScheduleInvalid("el nombre de la tarea es requerido")
	}
	if t.Question == "" {
		return apperrors.ScheduleInvalid("la pregunta de la tarea es requerida")
	}
	switch t.ScheduleKind {
	case constant.ScheduleKindInterval:
		if t.IntervalSeconds == nil || *t.IntervalSeconds <= 0 {
			return apperrors.ScheduleInvalid("interval_seconds es requerido para tareas de tipo interval")
		}
	case constant.ScheduleKindCron:
		if t.CronExpression == nil || *t.CronExpression == "" {
			return apperrors.ScheduleInvalid("cron_expression es requerida para tareas de tipo cron")
		}
	default:
		return apperrors.ScheduleInvalid("schedule_kind debe ser interval o cron")
	}
	return nil
}

// CalculateNextRun advances NextRunAt strictly past now. Cron expressions are
// labels, not parsed; a cron task falls back to its interval if it has one,
// otherwise to one hour.
func (t *ScheduledTask) CalculateNextRun(now time.Time) {
	if t.ScheduleKind == constant.ScheduleKindInterval && t.IntervalSeconds != nil {
		t.NextRunAt = now.Add(time.Duration(*t.IntervalSeconds) * time.Second)
		return
	}
	if t.IntervalSeconds != nil && *t.IntervalSeconds > 0 {
		t.NextRunAt = now.Add(time.Duration(*t.IntervalSeconds) * time.Second)
		return
	}
	t.NextRunAt = now.Add(1 * time.Hour)
}

// HumanReadableSchedule renders the schedule the way it is shown to users.
func (t *ScheduledTask) HumanReadableSchedule() string {
	if t.ScheduleKind == constant.ScheduleKindCron {
		if t.CronExpression != nil && *t.CronExpression != "" {
			return *t.CronExpression
		}
		return "cron"
	}
	if t.IntervalSeconds == nil {
		return "intervalo sin definir"
	}
	secs := *t.IntervalSeconds
	switch {
	case secs < 60:
		return fmt.Sprintf("cada %d segundo%s", secs, plural(secs))
	case secs < 3600:
		m := secs / 60
		return fmt.Sprintf("cada %d minuto%s", m, plural(m))
	case secs < 86400:
		h := secs / 3600
		return fmt.Sprintf("cada %d hora%s", h, plural(h))
	default:
		d := secs / 86400
		return fmt.Sprintf("cada %d día%s", d, plural(d))
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
