package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
)

const (
	ScheduleKindInterval = "interval"
	ScheduleKindCron     = "cron"
)

// MaxQuestionLength is applied to every question before it reaches the LLM.
const MaxQuestionLength = 500

// ScheduledTaskDueTopic is the in-process bus topic the dispatcher publishes
// due task ids to.
const ScheduledTaskDueTopic = "SCHEDULED_TASK_DUE"
