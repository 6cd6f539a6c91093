package events

import "time"

// Trigger names why a plan was generated.
type Trigger string

const (
	TriggerGenerate   Trigger = "generate"
	TriggerReschedule Trigger = "reschedule"
)

// PlanGenerated is published after planned sessions were replaced.
type PlanGenerated struct {
	Trigger      Trigger        `json:"trigger"`
	StartDate    time.Time      `json:"start_date"`
	Sessions     int            `json:"sessions"`
	Minutes      int            `json:"minutes"`
	PerSubject   map[string]int `json:"per_subject"`
	GeneratedAt  time.Time      `json:"generated_at"`
	DailyBudget  int            `json:"daily_budget"`
	ChunkMinutes int            `json:"chunk_minutes"`
}

// DayMissed is published when a day's planned sessions were marked missed.
type DayMissed struct {
	Date     time.Time `json:"date"`
	Sessions int       `json:"sessions"`
}
