package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/studiowebux/carcli/internal/mock"
)

// RunMock serves the in-memory API until ctx is cancelled.
// addr overrides the host:port from the config file when set.
func (a *App) RunMock(ctx context.Context, addr, configPath string) error {
	cfg := mock.DefaultConfig()
	if configPath != "" {
		loaded, err := mock.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if addr != "" {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", addr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", port, err)
		}
		cfg.Host = host
		cfg.Port = p
	}

	srv := mock.NewServer(cfg, a.Logger)
	if err := srv.Start(); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Mock API listening on %s\n", srv.GetAddress())
	for user := range cfg.Users {
		fmt.Fprintf(a.Out, "  user: %s\n", user)
	}

	srv.Watch(ctx, func(entry mock.RequestLog) {
		fmt.Fprintln(a.Out, formatRequestLog(entry))
	})
	return srv.Stop()
}

// WriteMockConfig saves the demo seed data to path (.yaml, .yml or .json)
// as a starting point for "carcli mock --config"
func (a *App) WriteMockConfig(path string) error {
	if err := mock.SaveConfig(mock.DefaultConfig(), path); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Mock config written to %s\n", path)
	return nil
}

func formatRequestLog(entry mock.RequestLog) string {
	return fmt.Sprintf("%s %-6s %-32s %d %s",
		entry.Timestamp.Format("15:04:05"),
		entry.Method,
		entry.Path,
		entry.Status,
		entry.Duration.Round(time.Microsecond),
	)
}
