package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
	"github.com/shandysiswandi/pagemail/internal/pkg/clock"
	"github.com/shandysiswandi/pagemail/internal/pkg/config"
	"github.com/shandysiswandi/pagemail/internal/pkg/hash"
	"github.com/shandysiswandi/pagemail/internal/pkg/instrument"
	"github.com/shandysiswandi/pagemail/internal/pkg/router"
	"github.com/shandysiswandi/pagemail/internal/pkg/storage"
	"github.com/shandysiswandi/pagemail/internal/pkg/uid"
	"github.com/shandysiswandi/pagemail/internal/pkg/validator"
)

var defaults = map[string]any{
	"app.server.http.address":                     ":8080",
	"app.server.http.read_header_timeout_seconds": 10,
	"app.server.http.read_timeout_seconds":        60,
	"app.server.http.write_timeout_seconds":       180,
	"app.server.http.idle_timeout_seconds":        120,
	"app.node_id":                                 1,
	"instrument.service_name":                     "pagemail",
	"instrument.log_level":                        "info",
	"instrument.trace_sample_ratio":               1.0,
	"instrument.metric_interval_seconds":          60,
	"instrument.log_mask_fields": []string{
		"sender_password", "microsoft_client_secret", "client_secret", "password", "authorization",
	},
	"hash.bcrypt.cost": 10,
}

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path, config.WithDefaults(defaults))
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.bcrypt = hash.NewBcrypt(a.config.GetInt("hash.bcrypt.cost"), a.config.GetString("hash.bcrypt.pepper"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake(a.config.GetInt64("app.node_id"))
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow
}

func (a *App) initStorage() {
	opt := func(key string) string {
		return strings.TrimSpace(a.config.GetString("storage." + key))
	}

	driver := opt("driver")
	stg, err := storage.NewFromDriver(a.ctx, driver, storage.FactoryOptions{
		S3: storage.S3Options{
			Region:       opt("s3.region"),
			Endpoint:     opt("s3.endpoint"),
			AccessKey:    opt("s3.access_key"),
			SecretKey:    opt("s3.secret_key"),
			SessionToken: opt("s3.session_token"),
			UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{
			CredentialsFile: opt("gcs.credentials_file"),
			Endpoint:        opt("gcs.endpoint"),
		},
		MinIO: storage.MinIOOptions{
			Region:       opt("minio.region"),
			Endpoint:     opt("minio.endpoint"),
			AccessKey:    opt("minio.access_key"),
			SecretKey:    opt("minio.secret_key"),
			SessionToken: opt("minio.session_token"),
			UseSSL:       a.config.GetBool("storage.minio.use_ssl"),
		},
	})
	if err != nil {
		slog.Error("failed to init storage", "error", err, "driver", driver)
		os.Exit(1)
	}
	if stg == nil {
		slog.Info("object storage disabled, document_key sources are rejected")
		return
	}

	slog.Info("object storage enabled", "driver", driver, "bucket", opt("bucket"))
	a.storage = stg
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
		Auth: &router.BasicAuth{
			Users: a.config.GetMap("app.auth.users"),
			Hash:  a.bcrypt,
			Realm: a.config.GetString("app.auth.realm"),
		},
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Storage",
			fn: func(context.Context) error {
				if a.storage == nil {
					return nil
				}
				return a.storage.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
