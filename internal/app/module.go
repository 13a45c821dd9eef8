package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/pagemail/internal/mailer"
)

func (a *App) initModules() {
	if err := mailer.New(mailer.Dependency{
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		Clock:      a.clock,
		Validator:  a.validator,
		Router:     a.router,
		Storage:    a.storage,
	}); err != nil {
		slog.Error("failed to init module mailer", "error", err)
		os.Exit(1)
	}
}
