package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"ens_manager/internal/app/port"
	"ens_manager/internal/app/service"
	"ens_manager/internal/domain/entity"
	"ens_manager/internal/infrastructure/activitystore"
	"ens_manager/internal/infrastructure/configloader"
	"ens_manager/internal/infrastructure/credstore"
	"ens_manager/internal/infrastructure/ens"
	"ens_manager/internal/infrastructure/explorer"
	networkclient "ens_manager/internal/infrastructure/network/client"
	networkdefinition "ens_manager/internal/infrastructure/network/definition"
	"ens_manager/internal/infrastructure/restapi"
	"ens_manager/internal/pkg/logger"
	"ens_manager/internal/pkg/metrics"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// Bootstrap logger, used until the structured one is configured.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	logger.InitWithHandler(zapslog.NewHandler(zapLogger.Core()))
	appLogger := logger.NewSlogAdapter()

	cfgPath := getEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Warnf("No configuration loaded from %s, using defaults: %v", cfgPath, err)
		cfg = configloader.Default()
	}
	appLogger.Info("Configuration loaded", "path", cfgPath)

	metrics.MustRegisterMetrics()

	creds := credstore.NewEnvStore(appLogger)

	// A provider URL from the credential store overrides the canonical
	// network's endpoint variable.
	overrides := map[string]string{}
	if url, ok := creds.ActiveProviderURL(); ok {
		overrides[entity.CanonicalNetwork] = url
	}

	definitions := networkdefinition.NewProvider()
	manager := networkclient.NewManager(definitions, overrides, appLogger,
		time.Duration(cfg.Resolution.RPCCallTimeoutSeconds)*time.Second)
	defer manager.Close()

	if len(manager.AvailableNetworks()) == 0 {
		appLogger.Warn("No networks connected; set the RPC endpoint variables to enable resolution")
	}

	gateways := ens.NewProvider(manager, appLogger)

	activityStore, err := activitystore.NewStore(cfg.Activity.ExportDir, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize activity store: %v", err)
	}

	var explorerClient port.ExplorerClient
	if apiKey, ok := creds.ExplorerAPIKey(); ok {
		explorerClient = explorer.NewEtherscanClient(
			cfg.Explorer.BaseURL,
			apiKey,
			time.Duration(cfg.Explorer.RequestTimeoutMillis)*time.Millisecond,
			cfg.Explorer.RequestsPerSecond,
			zapLogger,
		)
	} else {
		appLogger.Info("No explorer API key configured, transaction history disabled")
	}

	resolutionSvc := service.NewResolutionService(gateways, manager, appLogger, cfg)
	registrarSvc := service.NewRegistrarService(gateways, manager, creds, activityStore, appLogger, cfg)
	managerSvc := service.NewManagerService(gateways, manager, resolutionSvc, activityStore, explorerClient, appLogger)
	watcherSvc := service.NewWatcherService(gateways, activityStore, appLogger, cfg, nil)

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go watcherSvc.Run(watchCtx)

	router := restapi.SetupRouter(
		restapi.NewResolutionHandler(resolutionSvc),
		restapi.NewNameHandler(managerSvc, watcherSvc),
		restapi.NewRegistrarHandler(registrarSvc),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	cancelWatch()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exiting")
}
