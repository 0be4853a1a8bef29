package fibersrv

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-micro-dbx/pkg/configx"
	"github.com/marcodd23/go-micro-dbx/pkg/logx"
	"github.com/marcodd23/go-micro-dbx/pkg/serverx"
)

// FiberServer - Fiber server.
type FiberServer struct {
	Server *fiber.App
	config configx.Config
	logger logx.Logger
}

// NewFiberServer - Fiber server constructor.
func NewFiberServer(config configx.Config, logger logx.Logger) serverx.Server[*fiber.App] {
	if logger == nil {
		logger = logx.NopLogger{}
	}

	return &FiberServer{
		Server: fiber.New(buildFiberConfig(config)),
		config: config,
		logger: logger.With(logx.Fields{"component": "server"}),
	}
}

func buildFiberConfig(config configx.Config) fiber.Config {
	return fiber.Config{
		AppName:               config.GetServiceName(),
		Concurrency:           config.GetServerConfig().Concurrency,
		DisableStartupMessage: config.GetServerConfig().DisableStartupMessage,
		Prefork:               false,
		CaseSensitive:         true,
		StrictRouting:         true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	}
}

// GetServer - return the fiber server.
func (srv *FiberServer) GetServer() *fiber.App {
	return srv.Server
}

// RunSync - Run the server sync.
func (srv *FiberServer) RunSync() {
	if srv.Server != nil {
		srv.run()
	}
}

// RunAsync - Run the server async.
func (srv *FiberServer) RunAsync() {
	if srv.Server != nil {
		go srv.run()
	}
}

// Setup - Receive a callback function setupFunc that let to configure the server.
func (srv *FiberServer) Setup(_ context.Context, setupFunc func(fiber *fiber.App)) {
	if srv.Server != nil {
		setupFunc(srv.Server)
	}
}

// Shutdown - shutdown the server.
func (srv *FiberServer) Shutdown(ctx context.Context) {
	if srv.Server == nil {
		return
	}

	if err := srv.Server.ShutdownWithContext(ctx); err != nil {
		srv.logger.LogError(ctx, "Error shutting down the Server", err)
		return
	}

	srv.logger.LogInfo(ctx, "Server shut down.. ")
}

func (srv *FiberServer) run() {
	serverAddr := fmt.Sprintf(":%s", srv.config.GetServerConfig().Port)
	if err := srv.Server.Listen(serverAddr); err != nil {
		srv.logger.LogPanic(context.TODO(), "Oops... server is not running! error:", err)
	}
}
