// internal/testutil/db.go
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/cityseva/internal/app/system/indexes"
	"github.com/dalemusser/cityseva/internal/domain/records"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestContext returns a context bounded for a single test's DB work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func mongoURI() string {
	if v := os.Getenv("CITYSEVA_TEST_MONGO_URI"); v != "" {
		return v
	}
	return "mongodb://localhost:27017"
}

// SetupTestDB connects to the test MongoDB, creates a uniquely named
// database with all indexes in place, and drops it when the test ends.
// The test is skipped when no server is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(mongoURI()).
		SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("mongo not available: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongo not available: %v", err)
	}

	name := "cityseva_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	db := client.Database(name)

	ictx, icancel := TestContext()
	defer icancel()
	if err := indexes.EnsureAll(ictx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		cctx, ccancel := TestContext()
		defer ccancel()
		_ = db.Drop(cctx)
		_ = client.Disconnect(cctx)
	})
	return db
}

// SetupTestSQL opens the PostgreSQL database named by
// CITYSEVA_TEST_POSTGRES_DSN (key=value form), migrates the schema into a
// fresh schema, and drops that schema when the test ends. The test is
// skipped when the variable is unset.
func SetupTestSQL(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("CITYSEVA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CITYSEVA_TEST_POSTGRES_DSN not set")
	}

	admin, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	schema := "cityseva_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if err := admin.Exec(fmt.Sprintf("CREATE SCHEMA %s", schema)).Error; err != nil {
		t.Skipf("postgres not available: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn+" search_path="+schema), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open test schema: %v", err)
	}
	if err := db.AutoMigrate(records.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = admin.Exec(fmt.Sprintf("DROP SCHEMA %s CASCADE", schema)).Error
		if sqlDB, err := admin.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
