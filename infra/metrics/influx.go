package metrics

import (
	"context"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/studyplan/core/metrics"
	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving planning points.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes planning events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

var (
	_ coremetrics.PlanSink          = (*InfluxSink)(nil)
	_ coremetrics.SessionRecorder   = (*InfluxSink)(nil)
	_ coremetrics.MissedDayRecorder = (*InfluxSink)(nil)
)

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.PlanSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlanRun writes a plan_run point and one plan_subject_minutes point
// per subject, in a single request.
func (s *InfluxSink) RecordPlanRun(ev coremetrics.PlanRunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ts := eventTime(ev.Time)
	points := []*write.Point{
		write.NewPointWithMeasurement("plan_run").
			AddTag("trigger", string(ev.Trigger)).
			AddTag("start_date", ev.StartDate.Format(model.DateLayout)).
			AddField("days", ev.Days).
			AddField("sessions", ev.Sessions).
			AddField("minutes", ev.Minutes).
			AddField("daily_budget", ev.DailyBudget).
			AddField("chunk_minutes", ev.ChunkMinutes).
			AddField("unscheduled", ev.Unscheduled).
			AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
			SetTime(ts),
	}
	ids := make([]string, 0, len(ev.PerSubject))
	for id := range ev.PerSubject {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		points = append(points, write.NewPointWithMeasurement("plan_subject_minutes").
			AddTag("subject_id", id).
			AddTag("trigger", string(ev.Trigger)).
			AddField("minutes", ev.PerSubject[id]).
			SetTime(ts))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordSessionStatus writes a session_status point.
func (s *InfluxSink) RecordSessionStatus(ev coremetrics.SessionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("session_status").
		AddTag("subject_id", ev.SubjectID).
		AddTag("status", ev.Status.String()).
		AddField("session_id", ev.SessionID).
		AddField("minutes", ev.Minutes).
		SetTime(eventTime(ev.Time))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordMissedDay writes a missed_day point.
func (s *InfluxSink) RecordMissedDay(ev coremetrics.MissedDayEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("missed_day").
		AddTag("date", ev.Date.Format(model.DateLayout)).
		AddField("sessions", ev.Sessions).
		SetTime(eventTime(ev.Time))
	return s.writeAPI.WritePoint(ctx, p)
}

// Close flushes and releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
