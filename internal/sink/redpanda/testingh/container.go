package testingh

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/ory/dockertest"
	"github.com/ory/dockertest/docker"
)

const kafkaPort = "9092/tcp"

// Container is a throwaway single-node redpanda broker.
type Container struct {
	resource *dockertest.Resource
	Broker   string
}

func hostName() string {
	if h := os.Getenv("OVERRIDE_HOSTNAME"); h != "" {
		return h
	}
	return "localhost"
}

// NewContainer starts redpanda and retries connectFn against the broker
// address until it succeeds.
func NewContainer(connectFn func(broker string) error) (*Container, error) {
	host := hostName()
	hostPort, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not connect to docker: %w", err)
	}

	resource, err := pool.RunWithOptions(
		&dockertest.RunOptions{
			Repository: "redpandadata/redpanda",
			Tag:        "latest",
			PortBindings: map[docker.Port][]docker.PortBinding{
				kafkaPort: {{
					HostIP:   host,
					HostPort: strconv.Itoa(hostPort),
				}},
			},
			Cmd: []string{
				"redpanda start",
				"--overprovisioned",
				"--smp 1",
				"--memory 1G",
				"--reserve-memory 0M",
				"--node-id 0",
				"--check=false",
				fmt.Sprintf("--advertise-kafka-addr %s:%v", host, hostPort),
			},
		}, func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{
				Name: "no",
			}
		})
	if err != nil {
		return nil, fmt.Errorf("could not create a container: %w", err)
	}

	c := &Container{
		resource: resource,
		Broker:   fmt.Sprintf("%s:%s", host, resource.GetPort(kafkaPort)),
	}
	// the broker inside the container takes a while to accept connections
	if err := pool.Retry(func() error {
		return connectFn(c.Broker)
	}); err != nil {
		_ = resource.Close()
		return nil, fmt.Errorf("could not connect to redpanda: %w", err)
	}

	return c, nil
}

func (c *Container) Purge() error {
	return c.resource.Close()
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
