package main

/*
#include <stdlib.h>
*/
import "C" // required for -buildmode=c-shared

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rengatools/geometry/internal/audit"
	"github.com/rengatools/geometry/internal/cache"
	"github.com/rengatools/geometry/internal/config"
	"github.com/rengatools/geometry/internal/dispatcher"
	"github.com/rengatools/geometry/internal/handlers"
	"github.com/rengatools/geometry/internal/logging"
	"github.com/rengatools/geometry/internal/monitor"
	intOtel "github.com/rengatools/geometry/internal/otel"
	"github.com/rengatools/geometry/pkg/nativeabi"

	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "1.0.0"
	BuildDate      string = "unknown"

	LibraryName string = "renga_geometry"
)

// file paths
var (
	// ModulePath is the absolute path to this library file.
	ModulePath string

	// ModuleFolder is the parent folder of ModulePath. The config file is
	// read from here and a relative logsDir is resolved against it.
	ModuleFolder string

	LogsDir     string
	LogFilePath string
	LogFile     *os.File
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// Curves tracks the curve buffers the host has not freed yet
	Curves *cache.CurveCache = cache.NewCurveCache()

	SessionStartTime time.Time = time.Now()

	// Services
	auditRecorder   *audit.Recorder
	geometryService *handlers.Service
	monitorService  *monitor.Service
	eventDispatcher *dispatcher.Dispatcher
)

// init is run automatically when the library is loaded
func init() {
	var err error

	ModulePath = nativeabi.GetModulePath()
	ModuleFolder = filepath.Dir(ModulePath)

	// Initialize slog manager on stdout until the log file exists
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err = config.Load(ModuleFolder); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", ModuleFolder)
	}

	LogsDir = config.GetString("logsDir")
	if !filepath.IsAbs(LogsDir) {
		LogsDir = filepath.Join(ModuleFolder, LogsDir)
	}

	LogFilePath = logging.LogFilePath(LogsDir, LibraryName, SessionStartTime)
	LogFile, err = logging.OpenLogFile(LogFilePath)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
	}
	var logWriter io.Writer
	if LogFile != nil {
		logWriter = LogFile
	}

	setupOTel(logWriter)

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider.Enabled() {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Context = func() []slog.Attr {
		return []slog.Attr{slog.Int("liveCurves", Curves.Len())}
	}
	SlogManager.Setup(logWriter, config.GetString("logLevel"), otelLogProvider)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath, "version", CurrentVersion, "buildDate", BuildDate)

	if err = setupServices(); err != nil {
		Logger.Error("Failed to set up services!", "error", err)
		panic(err)
	}
	Logger.Info("Native interface ready")
}

func setupOTel(logWriter io.Writer) {
	otelCfg := config.GetOTelConfig()
	if !otelCfg.Enabled {
		return
	}

	var err error
	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		Version:      CurrentVersion,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logWriter,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		Logger.Error("Failed to initialize OTel provider", "error", err)
		OTelProvider = nil
		return
	}
	if otelCfg.Endpoint != "" {
		Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
	} else {
		Logger.Info("OTel provider initialized", "file", LogFilePath)
	}
}

// setupAudit builds the configured journal. A backend that fails to start
// is replaced by the in-memory one so calls are never refused.
func setupAudit(cfg config.AuditConfig) *audit.Recorder {
	backend, err := audit.Open(cfg, LogsDir, Logger)
	if err != nil {
		Logger.Error("Failed to initialize audit backend, falling back to memory", "type", cfg.Type, "error", err)
		backend = audit.NewMemory(cfg.Memory.Capacity)
	} else {
		Logger.Info("Audit backend initialized", "type", cfg.Type)
	}
	return audit.NewRecorder(backend, cfg.QueueSize, Logger)
}

func setupServices() (err error) {
	auditCfg := config.GetAuditConfig()
	auditRecorder = setupAudit(auditCfg)

	geometryService, err = handlers.NewService(handlers.Dependencies{
		Logger:         Logger,
		Curves:         Curves,
		Allocator:      nativeabi.CHeap{},
		Recorder:       auditRecorder,
		MaxInputPoints: auditCfg.MaxInputPoints,
		Version:        CurrentVersion,
		BuildDate:      BuildDate,
	})
	if err != nil {
		return fmt.Errorf("failed to create geometry service: %w", err)
	}

	eventDispatcher, err = dispatcher.New(logging.NewDispatcherLogger(Logger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	geometryService.RegisterCommands(eventDispatcher)

	nativeabi.SetVersion(CurrentVersion)
	nativeabi.SetService(geometryService)
	nativeabi.SetDispatcher(eventDispatcher)

	monitorService = monitor.NewService(monitor.Dependencies{
		Logger:   Logger,
		Curves:   Curves,
		Interval: config.GetMonitorConfig().Interval,
	})
	monitorService.Start()

	return nil
}

// shutdown flushes and closes everything init opened. A host that unloads
// the library never gets here; the CLI calls it before exiting.
func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if monitorService != nil && monitorService.IsRunning() {
		monitorService.Stop()
	}
	if eventDispatcher != nil {
		eventDispatcher.Close()
	}
	if auditRecorder != nil {
		if err := auditRecorder.Close(); err != nil {
			Logger.Error("Failed to close audit journal", "error", err)
		}
	}
	if handles := Curves.Handles(); len(handles) > 0 {
		Logger.Warn("Curve buffers still held by the host", "count", len(handles), "handles", fmt.Sprintf("%#x", handles))
	}
	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Error("Failed to flush logs", "error", err)
	}
	if OTelProvider.Enabled() {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Error("Failed to shut down OTel", "error", err)
		}
	}
	if LogFile != nil {
		_ = LogFile.Close()
	}
}
