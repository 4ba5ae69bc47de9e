package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/studiowebux/carcli/internal/config"
	"github.com/studiowebux/carcli/internal/gateway"
	"github.com/studiowebux/carcli/internal/history"
	"github.com/studiowebux/carcli/internal/logging"
	"github.com/studiowebux/carcli/internal/session"
	"github.com/studiowebux/carcli/internal/viewstate"
	"go.uber.org/zap"
)

// InvalidCredentialsMessage is shown whenever a login attempt fails
const InvalidCredentialsMessage = "Invalid credentials"

// ErrInvalidCredentials is returned by Login for any failure
var ErrInvalidCredentials = errors.New("invalid credentials")

// App bundles the collaborators shared by every command
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Session *session.Manager
	Gateway *gateway.Client
	History *history.Manager // nil when history is disabled

	Out io.Writer
	Err io.Writer
	In  io.Reader
}

// Bootstrap initializes ~/.carcli, loads configuration, opens the log,
// session and history, and builds the gateway client
func Bootstrap() (*App, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	sess := session.NewManager()
	if err := sess.Load(); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var hist *history.Manager
	if cfg.History.Enabled {
		hist, err = history.NewManager(config.DatabasePath, sess.Username)
		if err != nil {
			// history is best-effort
			logger.Warn("request history disabled", zap.Error(err))
			hist = nil
		}
	}

	return NewApp(cfg, logger, sess, hist), nil
}

// NewApp wires an App from already built parts
func NewApp(cfg *config.Config, logger *zap.Logger, sess *session.Manager, hist *history.Manager) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := gateway.Options{
		BaseURL:     cfg.API.BaseURL,
		LoginURL:    cfg.API.LoginURL,
		Timeout:     cfg.API.Timeout,
		Credentials: sess,
		Logger:      logger,
	}
	if hist != nil {
		opts.Recorder = hist
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Session: sess,
		Gateway: gateway.New(opts),
		History: hist,
		Out:     os.Stdout,
		Err:     os.Stderr,
		In:      os.Stdin,
	}
}

// Controller builds a list view-state controller over the gateway
func (a *App) Controller() *viewstate.Controller {
	return viewstate.New(a.Gateway, viewstate.Options{
		PageSize:           a.Config.View.PageSize,
		RefetchAfterDelete: a.Config.View.RefetchAfterDelete,
		Logger:             a.Logger,
	})
}

// Close flushes the logger and closes the history database
func (a *App) Close() error {
	var err error
	if a.History != nil {
		err = a.History.Close()
	}
	_ = a.Logger.Sync()
	return err
}
