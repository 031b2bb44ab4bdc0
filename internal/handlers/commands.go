package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rengatools/geometry/internal/audit"
	"github.com/rengatools/geometry/internal/dispatcher"
	"github.com/rengatools/geometry/internal/geo"
	"github.com/rengatools/geometry/internal/geometry"
)

// Text commands served through GeometryCommand.
const (
	CmdVersion   = ":VERSION:"
	CmdTimestamp = ":TIMESTAMP:"
	CmdExtent    = ":EXTENT:"
	CmdPath      = ":PATH:"
	CmdCurves    = ":CURVES:"
	CmdAudit     = ":AUDIT:"
	CmdCommands  = ":COMMANDS:"
	CmdLog       = ":LOG:"
)

// DefaultAuditLimit is the number of calls :AUDIT: returns without an argument.
const DefaultAuditLimit = 10

// logQueueSize bounds host log lines waiting to be written.
const logQueueSize = 256

// errArgs is returned when a command gets the wrong number of arguments.
var errArgs = errors.New("wrong number of arguments")

// ErrNoJournal is returned when the service was built without a recorder.
var ErrNoJournal = errors.New("audit journal disabled")

// RegisterCommands wires the text commands into d.
func (s *Service) RegisterCommands(d *dispatcher.Dispatcher) {
	d.Register(CmdVersion, s.handleVersion)
	d.Register(CmdTimestamp, handleTimestamp)
	d.Register(CmdExtent, s.handleExtent, dispatcher.Logged())
	d.Register(CmdPath, s.handlePath, dispatcher.Logged())
	d.Register(CmdCurves, s.handleCurves)
	d.Register(CmdAudit, s.handleAudit)
	d.Register(CmdCommands, func(dispatcher.Event) (any, error) {
		return d.Commands(), nil
	})
	d.Register(CmdLog, s.handleLog, dispatcher.Buffered(logQueueSize))
}

// RecentCalls returns up to n journaled calls, newest first.
func (s *Service) RecentCalls(n int) ([]audit.Call, error) {
	if s.deps.Recorder == nil {
		return nil, ErrNoJournal
	}
	return audit.Recent(s.deps.Recorder.Backend(), n)
}

func (s *Service) handleVersion(dispatcher.Event) (any, error) {
	return []string{s.deps.Version, s.deps.BuildDate}, nil
}

func handleTimestamp(dispatcher.Event) (any, error) {
	return time.Now().UTC().UnixNano(), nil
}

func (s *Service) handleExtent(e dispatcher.Event) (any, error) {
	if len(e.Args) != 1 {
		return nil, fmt.Errorf("%s: %w", CmdExtent, errArgs)
	}
	points, err := geo.ParsePoints(e.Args[0])
	if err != nil {
		return nil, err
	}
	return s.CalculateGeometry(points, 0, 0), nil
}

func (s *Service) handlePath(e dispatcher.Event) (any, error) {
	if len(e.Args) != 2 {
		return nil, fmt.Errorf("%s: %w", CmdPath, errArgs)
	}
	startID, err := strconv.ParseInt(e.Args[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid start id %q: %w", e.Args[0], err)
	}
	endID, err := strconv.ParseInt(e.Args[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid end id %q: %w", e.Args[1], err)
	}
	path, _ := s.FindPath(int32(startID), int32(endID), geometry.MinPathCapacity)
	return path, nil
}

func (s *Service) handleCurves(dispatcher.Event) (any, error) {
	return s.deps.Curves.Stats(), nil
}

func (s *Service) handleAudit(e dispatcher.Event) (any, error) {
	n := DefaultAuditLimit
	switch len(e.Args) {
	case 0:
	case 1:
		v, err := strconv.Atoi(e.Args[0])
		if err != nil || v < 1 {
			return nil, fmt.Errorf("invalid count %q", e.Args[0])
		}
		n = v
	default:
		return nil, fmt.Errorf("%s: %w", CmdAudit, errArgs)
	}
	return s.RecentCalls(n)
}

// handleLog writes a host message into the library log.
func (s *Service) handleLog(e dispatcher.Event) (any, error) {
	if len(e.Args) < 2 {
		return nil, fmt.Errorf("%s: %w", CmdLog, errArgs)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.Args[0])); err != nil {
		return nil, fmt.Errorf("invalid log level %q", e.Args[0])
	}
	s.deps.Logger.Log(context.Background(), level, strings.Join(e.Args[1:], "|"), "source", "host")
	return nil, nil
}
