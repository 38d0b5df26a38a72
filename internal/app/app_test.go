package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooladmin/schooladmin/internal/config"
	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/testutil"
)

func TestOpenDBMigratesAndServicesWork(t *testing.T) {
	ctx := context.Background()
	cfg := config.App{
		DatabaseDriver: "sqlite3",
		DatabaseURL:    filepath.Join(t.TempDir(), "school.db"),
		AutoMigrate:    true,
	}
	log := testutil.Logger(t)

	db, err := OpenDB(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewServices(db, log, nil)
	n, err := Seed(ctx, svc.Students)
	require.NoError(t, err)
	assert.Equal(t, len(demoStudents), n)

	stats := svc.Dashboard.Stats(ctx, model.DateOf(time.Now()))
	assert.EqualValues(t, len(demoStudents), stats.TotalStudents)
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDB(context.Background(), config.App{DatabaseDriver: "oracle"}, testutil.Logger(t))
	assert.Error(t, err)
}
