package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sflowg/campaignmonitor/cli/internal/config"
	"github.com/sflowg/campaignmonitor/plugins/campaignmonitor"
	"github.com/sflowg/campaignmonitor/runtime"
)

// host is the wired runtime: registered nodes and an executor over them.
type host struct {
	container *runtime.Container
	executor  *runtime.Executor
}

// newHost prepares every node config section, registers the nodes and runs
// their Initialize hooks.
func newHost(ctx context.Context, l *slog.Logger, cfg *config.HostConfig) (*host, error) {
	container := runtime.NewContainer()

	node := &campaignmonitor.Node{}
	if err := runtime.InitializeConfig(&node.Config, cfg.NodeConfig(campaignmonitor.NodeName)); err != nil {
		return nil, fmt.Errorf("node %s config: %w", campaignmonitor.NodeName, err)
	}
	if err := container.RegisterNode(campaignmonitor.NodeName, node); err != nil {
		return nil, err
	}

	if err := container.Initialize(ctx); err != nil {
		return nil, err
	}

	return &host{
		container: container,
		executor:  runtime.NewExecutor(l, container, cfg.Credentials),
	}, nil
}

func (h *host) Close(ctx context.Context) error {
	return h.container.Shutdown(ctx)
}
