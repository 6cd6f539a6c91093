// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - PlanGenerated: a plan was (re)generated and persisted
//   - DayMissed: the planned sessions of a day were marked missed
//   - SessionCompleted: a session was marked done
package events
