package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemainingMinutesFirstOccurrenceWins(t *testing.T) {
	subjects := []SubjectWorkload{
		{ID: "A", ExamDate: day(2), RemainingMinutes: 120},
		{ID: "B", ExamDate: day(5), RemainingMinutes: 60},
		{ID: "A", ExamDate: day(9), RemainingMinutes: 600},
	}
	assert.Equal(t, 180, RemainingMinutes(subjects))
	assert.Equal(t, 0, RemainingMinutes(nil))
}

func TestHorizonDays(t *testing.T) {
	subjects := []SubjectWorkload{
		{ID: "A", ExamDate: day(2)},
		{ID: "B", ExamDate: day(40)},
		{ID: "C", ExamDate: day(-3)},
	}
	assert.Equal(t, 40, HorizonDays(subjects, start))
	assert.Equal(t, 0, HorizonDays(subjects[2:], start))
	assert.Equal(t, 0, HorizonDays(nil, start))
}
