package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rengatools/geometry/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackend_Types(t *testing.T) {
	b, err := NewBackend(config.AuditConfig{Type: "none"}, "", nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, b)

	b, err = NewBackend(config.AuditConfig{}, "", nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, b)

	b, err = NewBackend(config.AuditConfig{Type: "memory", Memory: config.MemoryConfig{Capacity: 8}}, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	b, err = NewBackend(config.AuditConfig{Type: "influx"}, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &InfluxBackend{}, b)
}

func TestNewBackend_SQLiteDefaultPath(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBackend(config.AuditConfig{Type: "sqlite", FlushInterval: time.Second}, dir, nil)
	require.NoError(t, err)
	require.IsType(t, &GormBackend{}, b)
	require.NoError(t, b.Init())
	require.NoError(t, b.Close())

	_, err = os.Stat(filepath.Join(dir, DefaultSQLiteFile))
	assert.NoError(t, err)
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := NewBackend(config.AuditConfig{Type: "mongo"}, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown audit type")
}
