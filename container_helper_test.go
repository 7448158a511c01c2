//go:build integration

package ygggo_upsert

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/wait"
)

// containerHelper runs a throwaway MySQL server for integration tests.
type containerHelper struct {
	container testcontainers.Container
	pool      *Pool
}

func newContainerHelper(t *testing.T) *containerHelper {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := tcmysql.Run(ctx,
		"mysql:8.0.36",
		tcmysql.WithDatabase("upsert"),
		tcmysql.WithUsername("upsert"),
		tcmysql.WithPassword("upsert"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithOccurrence(1).
				WithStartupTimeout(90*time.Second),
		),
	)
	if err != nil {
		t.Skipf("mysql container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	portInt, err := strconv.Atoi(port.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	pool, err := NewPool(ctx, Config{
		Host:     host,
		Port:     portInt,
		Username: "upsert",
		Password: "upsert",
		Database: "upsert",
		Params:   map[string]string{"parseTime": "true"},
		Retry:    RetryPolicy{MaxAttempts: 3, BaseBackoff: 10 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return &containerHelper{container: ctr, pool: pool}
}

// newTable creates a uniquely named users table and returns its name.
func (h *containerHelper) newTable(t *testing.T) string {
	t.Helper()
	name := "users_" + uuid.NewString()[:8]
	ddl := fmt.Sprintf("CREATE TABLE `%s` (id INT PRIMARY KEY, name VARCHAR(64) NOT NULL, visits INT NOT NULL DEFAULT 0)", name)
	if _, err := h.pool.DB().ExecContext(context.Background(), ddl); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return name
}
