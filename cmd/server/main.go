// Package main initializes and starts the business card server, setting up
// configuration, logging, document storage, services, the email transport
// and HTTP handlers.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	nethttp "net/http"

	"github.com/atinyakov/bizcard/internal/config"
	"github.com/atinyakov/bizcard/internal/docstore"
	"github.com/atinyakov/bizcard/internal/logger"
	"github.com/atinyakov/bizcard/internal/mailer"
	"github.com/atinyakov/bizcard/internal/repository"
	"github.com/atinyakov/bizcard/internal/server/handler/http"
	"github.com/atinyakov/bizcard/internal/service"
	"github.com/atinyakov/bizcard/internal/session"
	"github.com/atinyakov/bizcard/internal/upload"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse config file, environment and command-line configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.Log.Level); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Flat JSON documents and uploaded images.
	store := docstore.New(options.Storage.DataDir)
	assets := upload.NewAssetStore(options.Storage.UploadsDir, options.Storage.UploadsURLPrefix)

	// Admin sessions live in memory only; a restart logs everyone out.
	sessions := session.NewMemoryStore()
	session.StartSweeper(ctx, sessions, options.Admin.SweepInterval, zapLogger)

	// Initialize repositories.
	fieldRepo := repository.NewFieldRepository(store, repository.DefaultFields())
	templateRepo := repository.NewTemplateRepository(store)

	// Initialize business-logic services.
	authService := service.NewAuthService(sessions, options.Admin.Password, options.Admin.SessionTTL)
	fieldService := service.NewFieldService(fieldRepo)
	templateService := service.NewTemplateService(templateRepo, assets)
	transport := newTransport(options.Mail)
	relayService := service.NewRelayService(transport, options.Mail.AdminEmail, zapLogger)

	if missing := append(transport.Missing(), missingAdminSettings(options)...); len(missing) > 0 {
		zapLogger.Warn("some settings are not configured; affected endpoints will fail",
			zap.Strings("missing", missing))
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Auth:      &http.AuthHandler{AuthService: authService, Log: zapLogger},
		Fields:    &http.FieldHandler{FieldService: fieldService, Log: zapLogger},
		Templates: &http.TemplateHandler{TemplateService: templateService, Log: zapLogger},
		Relay: &http.RelayHandler{
			RelayService:   relayService,
			Assets:         assets,
			MaxUploadBytes: options.Storage.UploadMaxBytes,
			Log:            zapLogger,
		},
	}, http.RouterOptions{
		PublicDir:        options.Storage.PublicDir,
		UploadsDir:       options.Storage.UploadsDir,
		UploadsURLPrefix: options.Storage.UploadsURLPrefix,
	}, zapLogger)

	server := &nethttp.Server{
		Addr:         options.Server.Address,
		Handler:      router,
		ReadTimeout:  options.Server.ReadTimeout,
		WriteTimeout: options.Server.WriteTimeout,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS12},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("starting HTTP server",
			zap.String("addr", options.Server.Address),
			zap.Bool("tls", options.Server.TLSEnabled()),
			zap.String("mail_transport", transport.Name()),
		)
		var err error
		if options.Server.TLSEnabled() {
			err = server.ListenAndServeTLS(options.Server.TLSCertFile, options.Server.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), options.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Fatal("HTTP server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// newTransport picks the email transport named in the mail options.
func newTransport(opts config.MailOptions) mailer.Transport {
	if opts.Transport == "smtp" {
		return &mailer.SMTPTransport{
			Host:     opts.SMTPHost,
			Port:     opts.SMTPPort,
			Username: opts.SMTPUser,
			Password: opts.SMTPPass,
			From:     opts.From,
			Timeout:  opts.Timeout,
		}
	}
	return mailer.NewResendTransport(opts.ResendAPIKey, opts.From, opts.ResendBaseURL, opts.Timeout)
}

func missingAdminSettings(options *config.Options) []string {
	var missing []string
	if options.Admin.Password == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if options.Mail.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	return missing
}
