// Package schedule is the reminder scheduling engine: it turns a task's
// due date, time of day and minutes-before-due offsets into absolute fire
// instants, arms one in-process trigger per instant, and hands each fired
// event to an injected dispatcher.
//
// Nothing here is persisted. Armed triggers live only as long as the
// process; durability and cross-instance coordination are out of scope.
package schedule
