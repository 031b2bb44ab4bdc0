package audit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rengatools/geometry/internal/queue"
	"gorm.io/gorm"
)

// maxPending bounds the calls held between flushes.
const maxPending = 10000

// GormBackend journals calls to a SQL database. RecordCall only queues;
// a background loop writes the queue in batches every FlushInterval.
type GormBackend struct {
	db            *gorm.DB
	pending       *queue.Queue[*Call]
	flushInterval time.Duration
	logger        *slog.Logger

	running  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewGorm wraps an open database. flushInterval <= 0 disables the
// background loop; Flush and Close still write.
func NewGorm(db *gorm.DB, flushInterval time.Duration, logger *slog.Logger) *GormBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormBackend{
		db:            db,
		pending:       queue.New[*Call](maxPending),
		flushInterval: flushInterval,
		logger:        logger,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Init migrates the schema and starts the flush loop.
func (b *GormBackend) Init() error {
	if err := b.db.AutoMigrate(&Call{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if b.flushInterval > 0 {
		b.running = true
		go b.flushLoop()
	}
	return nil
}

func (b *GormBackend) RecordCall(c *Call) error {
	if dropped := b.pending.Push(c); dropped > 0 {
		b.logger.Warn("audit queue overflow, oldest calls discarded", "dropped", dropped)
	}
	return nil
}

// Flush writes every queued call.
func (b *GormBackend) Flush() error {
	calls := b.pending.Drain()
	if len(calls) == 0 {
		return nil
	}
	if err := b.db.CreateInBatches(calls, 500).Error; err != nil {
		return fmt.Errorf("writing %d audit calls: %w", len(calls), err)
	}
	return nil
}

// Close stops the loop, writes what is left and closes the connection.
func (b *GormBackend) Close() error {
	b.stopOnce.Do(func() { close(b.stop) })
	if b.running {
		<-b.done
	}

	flushErr := b.Flush()
	if dropped := b.pending.Dropped(); dropped > 0 {
		b.logger.Warn("audit calls discarded on overflow this session", "dropped", dropped)
	}

	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	return flushErr
}

// Recent returns up to n written calls, newest first.
func (b *GormBackend) Recent(n int) ([]Call, error) {
	var calls []Call
	err := b.db.Order("id desc").Limit(n).Find(&calls).Error
	if err != nil {
		return nil, err
	}
	return calls, nil
}

func (b *GormBackend) flushLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.Flush(); err != nil {
				b.logger.Error("audit flush failed", "error", err)
			} else {
				b.logger.Debug("audit flushed", "duration", time.Since(start))
			}
		}
	}
}
