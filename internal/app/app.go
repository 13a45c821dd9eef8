package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/pagemail/internal/pkg/clock"
	"github.com/shandysiswandi/pagemail/internal/pkg/config"
	"github.com/shandysiswandi/pagemail/internal/pkg/hash"
	"github.com/shandysiswandi/pagemail/internal/pkg/instrument"
	"github.com/shandysiswandi/pagemail/internal/pkg/router"
	"github.com/shandysiswandi/pagemail/internal/pkg/storage"
	"github.com/shandysiswandi/pagemail/internal/pkg/uid"
	"github.com/shandysiswandi/pagemail/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator validator.Validator
	clock     clock.Clocker
	bcrypt    hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID

	// resources
	storage storage.Storage // nil when document_key sources are disabled

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initStorage()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
