package main

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/pkg/redis"
	cartapp "storefront/internal/service/cart/application"
	cartinfra "storefront/internal/service/cart/infrastructure"
	cartadapter "storefront/internal/service/cart/infrastructure/adapter"
	"storefront/internal/service/cart/infrastructure/rule"
	cartifaces "storefront/internal/service/cart/interfaces"
	catalogapp "storefront/internal/service/catalog/application"
	cataloginfra "storefront/internal/service/catalog/infrastructure"
	catalogifaces "storefront/internal/service/catalog/interfaces"
	customerinfra "storefront/internal/service/customer/infrastructure"
	orderapp "storefront/internal/service/order/application"
	orderinfra "storefront/internal/service/order/infrastructure"
	orderadapter "storefront/internal/service/order/infrastructure/adapter"
	orderifaces "storefront/internal/service/order/interfaces"
	promoapp "storefront/internal/service/promotion/application"
	promoinfra "storefront/internal/service/promotion/infrastructure"
	promoifaces "storefront/internal/service/promotion/interfaces"
)

const (
	serviceName = "storefront-service"
	servicePort = 8080
)

func main() {
	cfg := bootstrap.Init(serviceName)
	tracer := otel.Tracer(serviceName)

	db, err := gorm.Open(mysql.Open(cfg.Infra.MysqlDSN), &gorm.Config{})
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := db.AutoMigrate(
		&cataloginfra.ProductModel{},
		&customerinfra.CustomerModel{},
		&promoinfra.CouponModel{},
		&orderinfra.OrderModel{},
		&orderinfra.OrderItemModel{},
	); err != nil {
		logger.L().Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := redis.NewClient(cfg.Infra.RedisAddr)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to connect to redis")
	}
	sessionStore := cartinfra.NewSessionStore(redisClient)

	admissionRule, err := rule.NewCELRuleAdapter(cfg.App.Cart.AdmissionRule)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("invalid cart admission rule")
	}

	kafkaWriter := mq.NewKafkaWriter(strings.Split(cfg.Infra.KafkaAddrs, ","), cfg.App.NotificationTopic)
	notifier := orderadapter.NewNotificationKafkaAdapter(kafkaWriter)

	// 目录
	catalogService := catalogapp.NewCatalogService(cataloginfra.NewGormProductRepository(db), tracer)

	// 购物车
	cartService := cartapp.NewCartService(
		sessionStore,
		cartadapter.NewCatalogAdapter(catalogService),
		admissionRule,
		tracer,
	)

	// 优惠券
	promotionService := promoapp.NewPromotionService(
		promoinfra.NewGormCouponRepository(db),
		sessionStore,
		tracer,
	)

	// 订单
	orderRepo := orderinfra.NewGormOrderRepository(db)
	customerDirectory := orderadapter.NewCustomerAdapter(customerinfra.NewGormCustomerRepository(db))
	orderCatalog := orderadapter.NewCatalogAdapter(catalogService)
	checkoutService := orderapp.NewCheckoutService(
		orderRepo,
		orderCatalog,
		orderadapter.NewSessionAdapter(sessionStore),
		customerDirectory,
		notifier,
		cfg.App.AdminUserID,
		tracer,
	)
	lifecycleService := orderapp.NewLifecycleService(orderRepo, customerDirectory, orderCatalog, notifier, tracer)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			catalogifaces.NewProductHandler(catalogService).RegisterRoutes(appCtx.Mux)
			cartifaces.NewCartHandler(cartService).RegisterRoutes(appCtx.Mux)
			promoifaces.NewCouponHandler(promotionService).RegisterRoutes(appCtx.Mux)
			orderifaces.NewOrderHandler(checkoutService, lifecycleService).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: []func(ctx context.Context){
			func(ctx context.Context) {
				if err := notifier.Close(); err != nil {
					logger.L().Error().Err(err).Msg("error closing kafka writer")
				}
			},
			func(ctx context.Context) {
				if err := redisClient.Close(); err != nil {
					logger.L().Error().Err(err).Msg("error closing redis client")
				}
			},
		},
	})
}
