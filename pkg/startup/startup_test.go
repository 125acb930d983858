package startup_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/poppy/internal/testdb"
	"github.com/Ramsey-B/poppy/pkg/startup"
)

type fakeDependency struct {
	name      string
	dependsOn []string
	failures  int
	log       *[]string
}

func (f *fakeDependency) GetName() string     { return f.name }
func (f *fakeDependency) DependsOn() []string { return f.dependsOn }

func (f *fakeDependency) Start(ctx context.Context) error {
	if f.failures > 0 {
		f.failures--
		return errors.New(f.name + " not ready")
	}
	*f.log = append(*f.log, "start:"+f.name)
	return nil
}

func (f *fakeDependency) Stop(ctx context.Context) error {
	*f.log = append(*f.log, "stop:"+f.name)
	return nil
}

func newStartup(maxAttempts int) *startup.Startup {
	return startup.NewStartup(testdb.Logger(), maxAttempts).WithBackoffUnit(time.Millisecond)
}

func TestStartup(t *testing.T) {
	ctx := context.Background()

	t.Run("should start dependencies before dependents and stop in reverse", func(t *testing.T) {
		var log []string
		s := newStartup(1)
		s.AddDependency(&fakeDependency{name: "server", dependsOn: []string{"database"}, log: &log})
		s.AddDependency(&fakeDependency{name: "database", log: &log})

		require.NoError(t, s.Start(ctx))
		require.NoError(t, s.Stop(ctx))

		assert.Equal(t, []string{"start:database", "start:server", "stop:server", "stop:database"}, log)
		assert.Equal(t, startup.StartupStatusStopped, s.Status("server"))
	})

	t.Run("should retry until a dependency comes up", func(t *testing.T) {
		var log []string
		s := newStartup(3)
		s.AddDependency(&fakeDependency{name: "database", failures: 2, log: &log})

		require.NoError(t, s.Start(ctx))
		assert.Equal(t, startup.StartupStatusStarted, s.Status("database"))
	})

	t.Run("should give up after max attempts", func(t *testing.T) {
		var log []string
		s := newStartup(2)
		s.AddDependency(&fakeDependency{name: "database", failures: 5, log: &log})

		err := s.Start(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempts")
		assert.Equal(t, startup.StartupStatusFailed, s.Status("database"))
	})

	t.Run("should report unknown dependencies", func(t *testing.T) {
		var log []string
		s := newStartup(1)
		s.AddDependency(&fakeDependency{name: "server", dependsOn: []string{"cache"}, log: &log})

		assert.Error(t, s.Start(ctx))
	})
}

func TestDatabaseDependency(t *testing.T) {
	db := testdb.New(t)
	dep := startup.NewDatabaseDependency(db)

	assert.Equal(t, "database", dep.GetName())
	require.NoError(t, dep.Start(context.Background()))
	require.NoError(t, dep.Stop(context.Background()))
	assert.Error(t, dep.Start(context.Background()))
}

type fakeServer struct {
	started chan string
	stop    chan struct{}
}

func (f *fakeServer) Start(address string) error {
	f.started <- address
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	close(f.stop)
	return nil
}

func TestServerDependency(t *testing.T) {
	server := &fakeServer{started: make(chan string, 1), stop: make(chan struct{})}
	ready := false
	dep := startup.NewServerDependency("http-server", server, ":8003", testdb.Logger(), "database").
		OnStarted(func() { ready = true })

	assert.Equal(t, []string{"database"}, dep.DependsOn())
	require.NoError(t, dep.Start(context.Background()))
	assert.True(t, ready)

	select {
	case addr := <-server.started:
		assert.Equal(t, ":8003", addr)
	case <-time.After(time.Second):
		t.Fatal("server was not started")
	}

	require.NoError(t, dep.Stop(context.Background()))
	select {
	case err := <-dep.Errors():
		t.Fatalf("unexpected server error: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}
