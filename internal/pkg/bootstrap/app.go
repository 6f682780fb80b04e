// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"storefront/internal/pkg/config"
	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/nacos"
	"storefront/internal/pkg/tracing"
)

// AppCtx 传递给路由注册回调的依赖集合。
type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client
}

// AppInfo 描述启动一个服务所需的信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx)
	// OnShutdown 在服务器关停后按注册顺序的逆序执行（资源清理）。
	OnShutdown []func(ctx context.Context)
}

// Init 加载配置并初始化日志。每个 main 的第一行。
func Init(serviceName string) config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(serviceName, cfg.App.LogLevel)
	return cfg
}

// StartService 封装通用的启动与优雅关停流程:
// tracing -> nacos 注册 -> HTTP server -> 等待信号 -> LIFO 清理。
func StartService(info AppInfo) {
	cfg := config.GetCurrent()

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	naming, err := nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to initialize nacos client")
	}

	ip, err := outboundIP()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to resolve outbound IP")
	}
	if err := naming.Register(info.ServiceName, ip, info.Port); err != nil {
		logger.L().Fatal().Err(err).Msg("failed to register service")
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: naming})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		logger.L().Info().Msgf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info().Msgf("Shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := naming.Deregister(info.ServiceName, ip, info.Port); err != nil {
		logger.L().Error().Err(err).Msg("error deregistering from nacos")
	}
	if err := server.Shutdown(ctx); err != nil {
		logger.L().Error().Err(err).Msg("error shutting down http server")
	}
	for i := len(info.OnShutdown) - 1; i >= 0; i-- {
		info.OnShutdown[i](ctx)
	}
	// 最后关 tracer，确保清理过程中的 Span 也被送出
	if err := tp.Shutdown(ctx); err != nil {
		logger.L().Error().Err(err).Msg("error shutting down tracer provider")
	}

	logger.L().Info().Msgf("Service %s gracefully shut down.", info.ServiceName)
}

// outboundIP 取本机对外 IP，用于注册中心上报。
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
