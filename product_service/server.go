package main

import (
	"encoding/json"
	"net"
	"strings"
	"time"

	"github.com/akmmp241/product-catalog/shared"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Readiness reports whether the service can serve requests that need the
// database.
type Readiness interface {
	State() DatabaseState
}

type AppDependencies struct {
	Products   ProductRepository
	Categories CategoryRepository
	Cache      ProductCache
	Publisher  ProductEventPublisher
	Searcher   ProductSearcher
	Readiness  Readiness
}

type AppServer struct {
	server    *fiber.App
	health    HealthResponse
	readiness Readiness
}

func NewAppServer(cfg Config, deps AppDependencies) *AppServer {
	validate := validator.New()

	server := fiber.New(fiber.Config{
		AppName:               ServiceName,
		ErrorHandler:          shared.ErrorHandler,
		DisableStartupMessage: true,
	})

	app := &AppServer{
		server:    server,
		health:    HealthResponse{Service: ServiceName, Status: "OK", Port: cfg.Port},
		readiness: deps.Readiness,
	}

	if deps.Cache == nil {
		deps.Cache = noopProductCache{}
	}
	if deps.Publisher == nil {
		deps.Publisher = loggingPublisher{}
	}

	server.Use(recover.New())
	server.Use(requestid.New())
	server.Use(cors.New())
	server.Use(JSONBodyParser())

	server.Get("/health", app.handleHealth)
	server.Get("/ready", app.handleReady)

	guard := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.JWTSecret != "" {
		guard = shared.JWTUserMiddleware([]byte(cfg.JWTSecret))
	}

	api := server.Group("/api")

	productService := NewProductService(ProductServiceDeps{
		Validate:   validate,
		Products:   deps.Products,
		Categories: deps.Categories,
		Cache:      deps.Cache,
		Publisher:  deps.Publisher,
		Searcher:   deps.Searcher,
		Guard:      guard,
		DevOnly:    shared.DevOnlyMiddleware(cfg.AppEnv),
	})
	productService.RegisterRoutes(api.Group("/products"))

	categoryService := NewCategoryService(validate, deps.Categories, deps.Products, guard)
	categoryService.RegisterRoutes(api.Group("/categories"))

	return app
}

// Serve accepts connections on an already bound listener.
func (app *AppServer) Serve(listener net.Listener) error {
	return app.server.Listener(listener)
}

func (app *AppServer) Shutdown(timeout time.Duration) error {
	return app.server.ShutdownWithTimeout(timeout)
}

func (app *AppServer) handleHealth(c *fiber.Ctx) error {
	return c.JSON(app.health)
}

func (app *AppServer) handleReady(c *fiber.Ctx) error {
	state := DatabaseConnecting
	if app.readiness != nil {
		state = app.readiness.State()
	}

	res := ReadinessResponse{
		Service:  ServiceName,
		Status:   "READY",
		State:    string(ServiceListening),
		Database: string(state),
	}
	if state != DatabaseReady {
		res.Status = "NOT_READY"
		if state == DatabaseDegraded {
			res.State = string(ServiceDegraded)
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(res)
	}

	return c.JSON(res)
}

// JSONBodyParser rejects requests that declare a JSON body which is not
// well-formed, before any route handler runs.
func JSONBodyParser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) == 0 {
			return c.Next()
		}
		if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
			return c.Next()
		}
		if !json.Valid(body) {
			return fiber.NewError(fiber.StatusBadRequest, "Malformed JSON request body")
		}
		return c.Next()
	}
}
