package e2e

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/studyplan/core/metrics"
	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/planning"
	"github.com/kilianp07/studyplan/core/store/memory"
	inframetrics "github.com/kilianp07/studyplan/infra/metrics"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// junitReport is a minimal representation of a JUnit XML report so CI
// systems can display the suite results.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an initialised InfluxDB 2.7 container and returns it
// along with the base URL.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

// Test_E2E_PlanMetricsInflux plans, misses a day and completes a session with
// the influx sink wired in, then reads the points back from the bucket.
func Test_E2E_PlanMetricsInflux(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	began := time.Now()

	cont, url := startInflux(ctx, t)
	defer cont.Terminate(ctx) //nolint:errcheck
	t.Logf("InfluxDB started at %s", url)

	cli := NewInfluxClient(url, influxOrg, influxBucket, influxToken)
	defer cli.Close()
	if err := cli.SetupBucket(ctx); err != nil {
		t.Fatalf("setup bucket: %v", err)
	}

	sink := inframetrics.NewInfluxSinkWithFallback(inframetrics.InfluxConfig{
		URL: url, Token: influxToken, Org: influxOrg, Bucket: influxBucket,
	})
	if _, nop := sink.(metrics.NopSink); nop {
		t.Fatal("influx sink fell back to nop")
	}
	defer sink.(*inframetrics.InfluxSink).Close() //nolint:errcheck

	svc, err := planning.NewService(memory.New(), planning.Config{}, planning.WithMetrics(sink))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	if _, err := svc.SetMinutesPerDay(ctx, 60); err != nil {
		t.Fatalf("availability: %v", err)
	}
	if _, err := svc.CreateSubject(ctx, model.Subject{
		Name: "Maths", ExamDate: start.AddDate(0, 0, 3), Difficulty: 3, HoursRequired: 3,
	}); err != nil {
		t.Fatalf("subject: %v", err)
	}
	sessions, err := svc.GeneratePlan(ctx, start, 60)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.MarkSessionDone(ctx, sessions[0].ID); err != nil {
		t.Fatalf("done: %v", err)
	}
	if _, err := svc.MarkDayMissed(ctx, start.AddDate(0, 0, 1), 60); err != nil {
		t.Fatalf("missed: %v", err)
	}

	// generate + reschedule
	if n, err := cli.CountPoints(ctx, "plan_run", "sessions"); err != nil || n != 2 {
		t.Fatalf("plan_run points: %d, %v", n, err)
	}
	if n, err := cli.CountPoints(ctx, "plan_subject_minutes", ""); err != nil || n != 2 {
		t.Fatalf("plan_subject_minutes points: %d, %v", n, err)
	}

	dir := t.TempDir()
	rep := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{
		Name: "Test_E2E_PlanMetricsInflux", Time: time.Since(began).Seconds(),
	}}}
	if err := writeJUnit(filepath.Join(dir, "e2e.xml"), rep); err != nil {
		t.Logf("write junit: %v", err)
	}
}
