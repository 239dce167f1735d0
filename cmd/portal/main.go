package main

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	portal "github.com/goliatone/go-student-portal"
	"github.com/goliatone/go-student-portal/client"
	"github.com/goliatone/go-student-portal/config"
	"github.com/goliatone/go-student-portal/middleware/csrf"
	"github.com/goliatone/go-student-portal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, json or toml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("portal: %s\n", err)
	}
}

func run(configPath string) error {
	opts, err := config.Load(configPath)
	if err != nil {
		return err
	}

	displayAppname("Student Portal")

	logger := portal.NewZeroLogger(os.Stderr, opts.Debug, opts.PrettyLogs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closer, err := storage.Open(ctx, storage.Options{
		Driver:   opts.StorageDriver,
		DSN:      opts.StorageDSN,
		RedisTTL: opts.RedisTTL,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	store := portal.NewSessionStore(backend,
		portal.WithSessionConfig(opts),
		portal.WithStoreLogger(logger.Named("session")),
	)

	auth := portal.NewAuthContext(store, portal.WithAuthLogger(logger.Named("auth")))
	auth.Subscribe(func(from, to portal.AuthState) {
		logger.Info("auth state changed", "from", from.String(), "to", to.String())
	})

	api, err := client.New(opts.GetAPIBaseURL(), store,
		client.WithHTTPClient(newHTTPClient(opts)),
		client.WithLogger(logger.Named("api")),
	)
	if err != nil {
		return err
	}

	app := newApp(opts, logger, auth, api)

	errc := make(chan error, 1)
	go func() {
		logger.Info("portal listening", "addr", opts.GetListen(), "api", api.BaseURL(), "storage", opts.StorageDriver)
		errc <- app.Listen(opts.GetListen())
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newApp(opts *config.Options, logger *portal.ZeroLogger, auth *portal.AuthContext, api *client.Client) *fiber.App {
	var controller *portal.PortalController

	app := fiber.New(fiber.Config{
		AppName:               "student-portal",
		DisableStartupMessage: true,
		Views:                 portal.NewViewEngine(opts.Debug),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if controller == nil {
				return fiber.DefaultErrorHandler(c, err)
			}
			return controller.HandleError(c, err)
		},
	})

	portal.UseDefaultMiddleware(app, portal.DefaultMiddlewareConfig(opts.Debug))

	app.Use("/public", filesystem.New(filesystem.Config{
		Root: http.FS(portal.GetPublicFS()),
	}))

	app.Use(portal.ProvideAuthContext(auth))
	app.Use(csrf.New(csrf.Config{
		SecureKey:    csrfKey(opts.CSRFKey),
		CookieSecure: opts.SecureCookies,
	}))

	guard := portal.NewRouteGuard(auth, opts,
		portal.WithSecureCookies(opts.SecureCookies),
		portal.WithGuardLogger(logger.Named("guard")),
	)

	controller = portal.RegisterPortalRoutes(app,
		portal.WithAPI(api),
		portal.WithPortalAuth(auth),
		portal.WithRouteGuard(guard),
		portal.WithControllerLogger(logger.Named("portal")),
		portal.WithPortalConfig(opts),
	)

	return app
}

func newHTTPClient(opts *config.Options) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureTLS {
		// the API commonly runs with a self signed development certificate
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Timeout:   opts.GetAPITimeout(),
		Transport: transport,
	}
}

// csrfKey stretches the configured key to 32 bytes. An empty key yields
// nil so the middleware picks a random one.
func csrfKey(key string) []byte {
	if key == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

