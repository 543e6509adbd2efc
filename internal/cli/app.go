package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/zinincorp/taskpool/internal/archive"
	"github.com/zinincorp/taskpool/internal/config"
	"github.com/zinincorp/taskpool/internal/escalate"
	"github.com/zinincorp/taskpool/internal/logging"
	"github.com/zinincorp/taskpool/internal/patrol"
	"github.com/zinincorp/taskpool/internal/pool"
	"github.com/zinincorp/taskpool/internal/registry"
	"github.com/zinincorp/taskpool/internal/router"
	"github.com/zinincorp/taskpool/internal/tagging"
)

// App wires the pool components together for one CLI invocation.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Pool     *pool.Pool
	Registry *registry.Registry
	Router   *router.Router
	Escalate *escalate.Manager
	Archiver *archive.Archiver
	Patrol   *patrol.Patrol

	logCloser io.Closer
}

// newApp loads configuration, builds the logger and assembles every
// component against the shared store.
func newApp(flags *GlobalFlags) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	level := cfg.Logging.Level
	if flags.Verbose {
		level = "debug"
	}
	if flags.Quiet {
		level = "error"
	}
	logsDir := ""
	if cfg.Logging.File {
		if logsDir, err = cfg.LogsDir(); err != nil {
			return nil, err
		}
		if err = os.MkdirAll(logsDir, 0o750); err != nil {
			return nil, err
		}
	}
	logger, closer := logging.New(logging.Options{Level: level, LogsDir: logsDir})

	poolFile, err := cfg.PoolFile()
	if err != nil {
		return nil, err
	}
	p, err := pool.New(poolFile, pool.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	registryFile, err := cfg.RegistryFile()
	if err != nil {
		return nil, err
	}
	reg, err := registry.Load(registryFile, logger)
	if err != nil {
		return nil, err
	}

	rt, err := router.New(reg, cfg.Routing.EscalationThreshold, logger)
	if err != nil {
		return nil, err
	}

	escalationLog, err := cfg.EscalationLogFile()
	if err != nil {
		return nil, err
	}
	archiveDir, err := cfg.ArchiveDir()
	if err != nil {
		return nil, err
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Pool:      p,
		Registry:  reg,
		Router:    rt,
		Escalate:  escalate.New(p, reg, rt, escalationLog, logger),
		Archiver:  archive.New(p, archiveDir, logger),
		Patrol:    patrol.New(p, logger),
		logCloser: closer,
	}, nil
}

// Close releases the log file writer.
func (a *App) Close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// ExtractTags derives competency tags from free task text using the current
// registry vocabulary.
func (a *App) ExtractTags(text string) []string {
	return tagging.Extract(text, a.Registry.Vocabulary())
}
