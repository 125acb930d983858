package testdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Ramsey-B/poppy/pkg/database"
)

const (
	mariaDBImage    = "mariadb:11"
	mariaDBUser     = "movies"
	mariaDBPassword = "moviespwd"
	mariaDBName     = "moviesdb"
)

// SkipUnlessIntegration skips tests that need Docker.
func SkipUnlessIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv("POPPY_INTEGRATION") != "1" {
		t.Skip("Skipping integration test, set POPPY_INTEGRATION=1 to run")
	}
}

// MariaDB starts a MariaDB container with the movie schema applied.
func MariaDB(t *testing.T) database.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        mariaDBImage,
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MARIADB_ROOT_PASSWORD": "rootpwd",
				"MARIADB_DATABASE":      mariaDBName,
				"MARIADB_USER":          mariaDBUser,
				"MARIADB_PASSWORD":      mariaDBPassword,
			},
			WaitingFor: wait.ForLog("ready for connections").
				WithOccurrence(2).
				WithStartupTimeout(120 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start MariaDB")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)

	db, err := database.Open(database.Config{
		Driver:   database.DriverMariaDB,
		Host:     host,
		Port:     port.Int(),
		User:     mariaDBUser,
		Password: mariaDBPassword,
		Name:     mariaDBName,
	}, Logger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.Eventually(t, func() bool { return db.PingContext(ctx) == nil }, 30*time.Second, 500*time.Millisecond)
	Apply(t, db, MySQLSchema)
	return db
}
