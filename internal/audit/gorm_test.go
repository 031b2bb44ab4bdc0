package audit

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteBackend(t *testing.T, interval time.Duration) *GormBackend {
	t.Helper()
	db, err := OpenSQLite("")
	require.NoError(t, err)
	b := NewGorm(db, interval, nil)
	require.NoError(t, b.Init())
	return b
}

func TestGorm_FlushWritesQueuedCalls(t *testing.T) {
	b := newSQLiteBackend(t, 0)
	defer b.Close()

	require.NoError(t, b.RecordCall(NewCall("CalculateComplexGeometry", square, 64, true, "Success", time.Millisecond)))
	require.NoError(t, b.RecordCall(NewCall("FindPathBetweenPoints", nil, 64, true, "", 0)))

	calls, err := b.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, calls, "nothing is written before a flush")

	require.NoError(t, b.Flush())

	calls, err = b.Recent(10)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "FindPathBetweenPoints", calls[0].Function)
	assert.Equal(t, "CalculateComplexGeometry", calls[1].Function)
	assert.Equal(t, 4, calls[1].PointCount)
	assert.Equal(t, int64(1000), calls[1].DurationUS)
	assert.JSONEq(t, `[[0,0,0],[10,0,0],[10,5,2],[0,5,2]]`, string(calls[1].Input))
}

func TestGorm_FlushEmptyIsNoop(t *testing.T) {
	b := newSQLiteBackend(t, 0)
	defer b.Close()
	require.NoError(t, b.Flush())
}

func TestGorm_BackgroundFlush(t *testing.T) {
	b := newSQLiteBackend(t, 10*time.Millisecond)
	defer b.Close()

	require.NoError(t, b.RecordCall(&Call{Function: "CreateComplexCurve", Success: true}))

	assert.Eventually(t, func() bool {
		calls, err := b.Recent(1)
		return err == nil && len(calls) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGorm_CloseFlushesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	b := NewGorm(db, time.Hour, nil)
	require.NoError(t, b.Init())
	require.NoError(t, b.RecordCall(&Call{Function: "FreeMemory", Success: true}))
	require.NoError(t, b.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	reopened := NewGorm(db, 0, nil)
	require.NoError(t, reopened.Init())
	defer reopened.Close()

	calls, err := reopened.Recent(10)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "FreeMemory", calls[0].Function)
}

func TestGorm_CloseWithoutInit(t *testing.T) {
	db, err := OpenSQLite("")
	require.NoError(t, err)
	b := NewGorm(db, time.Second, nil)
	require.NoError(t, b.Close())
}

func TestGorm_CloseReportsOverflow(t *testing.T) {
	var logs bytes.Buffer
	db, err := OpenSQLite("")
	require.NoError(t, err)
	b := NewGorm(db, 0, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, b.Init())

	for i := 0; i < maxPending+3; i++ {
		require.NoError(t, b.RecordCall(&Call{Function: "FreeMemory"}))
	}
	require.NoError(t, b.Close())

	assert.Contains(t, logs.String(), "audit calls discarded on overflow this session")
	assert.Contains(t, logs.String(), "dropped=3")
}
