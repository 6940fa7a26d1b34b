package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rs/zerolog/log"
)

// ErrNoDockerClient is returned when a Docker source has no client.
var ErrNoDockerClient = errors.New("docker client not set")

// Docker reads the log of a running or stopped container, such as itzg/minecraft-server.
type Docker struct {
	Client    *client.Client
	Container string // Container ID or name
	Tail      string // Lines from the end, "all" for the whole log
}

// NewDockerClient connects to the daemon configured by the DOCKER_* environment.
func NewDockerClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

func (d Docker) String() string { return "docker:" + d.Container }

func (d Docker) Lines(ctx context.Context) ([]string, error) {
	if d.Client == nil {
		return nil, ErrNoDockerClient
	}

	tail := d.Tail
	if tail == "" {
		tail = "all"
	}

	details, err := d.Client.ContainerInspect(ctx, d.Container)
	if err != nil {
		return nil, fmt.Errorf("inspect container %s: %w", d.Container, err)
	}

	reader, err := d.Client.ContainerLogs(ctx, d.Container, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
	})
	if err != nil {
		return nil, fmt.Errorf("container %s logs: %w", d.Container, err)
	}
	defer func() { _ = reader.Close() }()

	// TTY containers stream raw bytes, others multiplex stdout and stderr
	var out bytes.Buffer
	if details.Config != nil && details.Config.Tty {
		_, err = io.Copy(&out, reader)
	} else {
		_, err = stdcopy.StdCopy(&out, &out, reader)
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("container %s logs: %w", d.Container, err)
	}

	log.Debug().
		Str("container", d.Container).
		Int("bytes", out.Len()).
		Msg("Container log fetched")

	return ReadLines(&out)
}
