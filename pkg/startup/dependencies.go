package startup

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
)

// Pinger is satisfied by database.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
	Close() error
}

// DatabaseDependency succeeds once the store answers a ping.
type DatabaseDependency struct {
	db          Pinger
	pingTimeout time.Duration
}

func NewDatabaseDependency(db Pinger) *DatabaseDependency {
	return &DatabaseDependency{db: db, pingTimeout: 5 * time.Second}
}

func (d *DatabaseDependency) GetName() string     { return "database" }
func (d *DatabaseDependency) DependsOn() []string { return nil }

func (d *DatabaseDependency) Start(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.pingTimeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

func (d *DatabaseDependency) Stop(ctx context.Context) error {
	return d.db.Close()
}

// Server is satisfied by *echo.Echo.
type Server interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// ServerDependency runs an HTTP server in the background once its own
// dependencies are up. Serve errors after startup are reported on Errors.
type ServerDependency struct {
	name      string
	server    Server
	address   string
	dependsOn []string
	logger    ectologger.Logger
	errs      chan error
	onStarted func()
}

func NewServerDependency(name string, server Server, address string, logger ectologger.Logger, dependsOn ...string) *ServerDependency {
	return &ServerDependency{
		name:      name,
		server:    server,
		address:   address,
		dependsOn: dependsOn,
		logger:    logger,
		errs:      make(chan error, 1),
	}
}

// OnStarted registers a hook run after the listener goroutine is launched.
func (d *ServerDependency) OnStarted(fn func()) *ServerDependency {
	d.onStarted = fn
	return d
}

func (d *ServerDependency) GetName() string     { return d.name }
func (d *ServerDependency) DependsOn() []string { return d.dependsOn }

// Errors yields the error that ended the server, if it ended on its own.
func (d *ServerDependency) Errors() <-chan error { return d.errs }

func (d *ServerDependency) Start(ctx context.Context) error {
	go func() {
		d.logger.WithField("address", d.address).Infof("%s listening", d.name)
		if err := d.server.Start(d.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.WithError(err).Errorf("%s stopped unexpectedly", d.name)
			d.errs <- err
		}
	}()
	if d.onStarted != nil {
		d.onStarted()
	}
	return nil
}

func (d *ServerDependency) Stop(ctx context.Context) error {
	return d.server.Shutdown(ctx)
}
