package planner

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigYAML(t *testing.T) {
	data := "weights:\n  urgency: 5\n  difficulty: 1\n  remaining: 0.5\nday_start: \"09:15\"\nbreak_minutes: 0\ndefault_chunk_minutes: 45\n"
	cfg, err := DecodeConfig(bytes.NewBufferString(data), "yaml")
	require.NoError(t, err)
	assert.Equal(t, Weights{Urgency: 5, Difficulty: 1, Remaining: 0.5}, cfg.Weights)
	assert.Equal(t, "09:15", cfg.DayStart)
	require.NotNil(t, cfg.BreakMinutes)
	assert.Equal(t, 0, *cfg.BreakMinutes)
	assert.Equal(t, 45, cfg.DefaultChunkMinutes)
	_, err = New(cfg)
	assert.NoError(t, err)
}

func TestDecodeConfigJSON(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString(`{"day_start":"20:00"}`), "json")
	require.NoError(t, err)
	full := cfg.withDefaults()
	assert.Equal(t, DefaultWeights, full.Weights)
	assert.Equal(t, DefaultBreakMinutes, *full.BreakMinutes)
	assert.Equal(t, DefaultChunkMinutes, full.DefaultChunkMinutes)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"default_chunk_minutes":30}`), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.DefaultChunkMinutes)

	bad := filepath.Join(dir, "policy.toml")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodeConfig(bytes.NewBufferString("{}"), "toml")
	assert.Error(t, err)
	_, err = DecodeConfig(bytes.NewBufferString(":"), "yaml")
	assert.Error(t, err)
}

func TestRequestWorkloads(t *testing.T) {
	data := `start_date: "2025-01-06"
daily_budget_minutes: 90
chunk_minutes: 60
subjects:
  - id: A
    exam_date: "2025-01-08"
    difficulty: 5
    remaining_minutes: 120
  - id: B
    exam_date: "2025-01-11"
    difficulty: 1
    remaining_minutes: 60
`
	req, err := DecodeRequest(bytes.NewBufferString(data), "yaml")
	require.NoError(t, err)
	st, subs, err := req.Workloads()
	require.NoError(t, err)
	assert.Equal(t, start, st)
	require.Len(t, subs, 2)
	assert.Equal(t, day(2), subs[0].ExamDate)

	plan := Generate(subs, st, req.DailyBudgetMinutes, req.ChunkMinutes)
	assert.Len(t, plan, 4)
}

func TestRequestWorkloadsErrors(t *testing.T) {
	cases := []Request{
		{StartDate: "bad"},
		{StartDate: "2025-01-06", Subjects: []SubjectInput{{ExamDate: "2025-01-07"}}},
		{StartDate: "2025-01-06", Subjects: []SubjectInput{{ID: "a", ExamDate: "x"}}},
		{StartDate: "2025-01-06", Subjects: []SubjectInput{{ID: "a", ExamDate: "2025-01-07", RemainingMinutes: -1}}},
	}
	for i, r := range cases {
		if _, _, err := r.Workloads(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestLoadRequestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"start_date":"2025-01-06","daily_budget_minutes":60,"subjects":[{"id":"a","exam_date":"2025-01-06","difficulty":1,"remaining_minutes":30}]}`), 0o644))
	req, err := LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, 60, req.DailyBudgetMinutes)
	assert.Len(t, req.Subjects, 1)
}
