// Package util holds helpers shared by the integration suites: readiness
// polling for the HTTP API and its /metrics page, and a disposable Mosquitto
// broker started through testcontainers.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	HTTPServerTimeout     = 5 * time.Second
	MosquittoReadyTimeout = 5 * time.Second
	MetricTimeout         = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
log_type notice
connection_messages true
`

// poll calls check until it reports done, returns an error or ctx ends.
func poll(ctx context.Context, check func() (bool, error)) error {
	for {
		done, err := check()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func get(ctx context.Context, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), err
}

// WaitForHTTP polls url until it responds with HTTP 200 or the context is done.
func WaitForHTTP(ctx context.Context, url string) error {
	err := poll(ctx, func() (bool, error) {
		code, _, err := get(ctx, url)
		return err == nil && code == http.StatusOK, nil
	})
	if err != nil {
		return fmt.Errorf("server not ready: %w", err)
	}
	return nil
}

// WaitForMetric polls metricsURL until substr shows up in the exposition.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	err := poll(ctx, func() (bool, error) {
		_, body, err := get(ctx, metricsURL)
		return err == nil && strings.Contains(body, substr), nil
	})
	if err != nil {
		return fmt.Errorf("metric %q not found: %w", substr, err)
	}
	return nil
}

// StartMosquitto launches a Mosquitto broker container and returns its URL
// once a client can connect. cleanup terminates the container.
func StartMosquitto(ctx context.Context) (broker string, cleanup func(), err error) {
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			Reader:            strings.NewReader(mosquittoConf),
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return "", nil, err
	}
	cleanup = func() { _ = cont.Terminate(context.Background()) }
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	host, err := cont.Host(ctx)
	if err != nil {
		return "", nil, err
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		return "", nil, err
	}
	broker = fmt.Sprintf("tcp://%s:%s", host, port.Port())

	waitCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err = waitForMQTTReady(waitCtx, broker); err != nil {
		return "", nil, fmt.Errorf("mosquitto not ready at %s: %w", broker, err)
	}
	return broker, cleanup, nil
}

func waitForMQTTReady(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("readiness-check")
	return poll(ctx, func() (bool, error) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		if !token.WaitTimeout(time.Second) || token.Error() != nil {
			return false, nil
		}
		cli.Disconnect(100)
		return true, nil
	})
}
