package console

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// execAPI is the slice of the Docker client the console needs.
// *client.Client satisfies it; tests provide a fake.
type execAPI interface {
	ContainerExecCreate(ctx context.Context, container string, config types.ExecConfig) (types.IDResponse, error)
	ContainerExecStart(ctx context.Context, execID string, config types.ExecStartCheck) error
}

// DockerConsole delivers directives to a containerized server by running
// the container's rcon CLI through docker exec.
type DockerConsole struct {
	cli       execAPI
	container string
}

// NewDockerConsole connects to the Docker daemon and binds the console to
// the named container. Fails fast if the daemon is not reachable.
func NewDockerConsole(ctx context.Context, container string) (*DockerConsole, error) {
	if container == "" {
		return nil, fmt.Errorf("container name cannot be empty")
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("Docker daemon not accessible: %w", err)
	}

	return &DockerConsole{cli: cli, container: container}, nil
}

// Add whitelists name.
func (d *DockerConsole) Add(ctx context.Context, name string) bool {
	return d.send(ctx, "whitelist add "+name)
}

// Remove drops name from the whitelist.
func (d *DockerConsole) Remove(ctx context.Context, name string) bool {
	return d.send(ctx, "whitelist remove "+name)
}

// send runs `rcon-cli <directive>` inside the server container.
func (d *DockerConsole) send(ctx context.Context, directive string) bool {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	cmd := append([]string{"rcon-cli"}, strings.Fields(directive)...)

	resp, err := d.cli.ContainerExecCreate(ctx, d.container, types.ExecConfig{
		Cmd: cmd,
	})
	if err != nil {
		log.Printf("[ERROR] Docker exec create failed: container=%s directive=%q error=%v",
			d.container, directive, err)
		return false
	}

	if err := d.cli.ContainerExecStart(ctx, resp.ID, types.ExecStartCheck{Detach: true}); err != nil {
		log.Printf("[ERROR] Docker exec start failed: container=%s directive=%q error=%v",
			d.container, directive, err)
		return false
	}

	log.Printf("[INFO] Sent to server console: %s (container=%s)", directive, d.container)
	return true
}
