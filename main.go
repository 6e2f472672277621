package main

import (
	"fmt"

	"github.com/ariebrainware/clinic-therapy/config"
	"github.com/ariebrainware/clinic-therapy/docs"
	"github.com/ariebrainware/clinic-therapy/endpoint"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Clinic Therapy API
// @version         1.0
// @description     Patients, clinical records, therapies and session progress tracking.
// @BasePath        /
// @securityDefinitions.apikey SessionToken
// @in header
// @name session-token
func main() {
	cfg := config.LoadConfig()

	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()
	config.SetLogger(logger)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	util.SetJWTSecret(cfg.JWTSecret)

	db, err := config.ConnectMySQL()
	if err != nil {
		logger.Fatal("error connecting to database", zap.Error(err))
	}
	if err := model.Migrate(db); err != nil {
		logger.Fatal("error migrating database", zap.Error(err))
	}

	if _, err := config.ConnectRedis(); err != nil {
		logger.Warn("redis unavailable, continuing without session cache and rate limiting", zap.Error(err))
	}
	if err := util.InitGeoIP(cfg.GeoIPDBPath); err != nil {
		logger.Warn("geoip database not loaded", zap.Error(err))
	}
	defer util.CloseGeoIP()

	util.SetSecurityLogger(logger)
	util.SetSecurityLoggerDB(db)
	util.InitUserEmailCacheFromEnv()

	gin.SetMode(cfg.GinMode)
	router := endpoint.NewRouter(db, logger, cfg.AppName)
	docs.SwaggerInfo.Title = cfg.AppName + " API"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	address := fmt.Sprintf(":%d", cfg.AppPort)
	logger.Info("starting server", zap.String("app", cfg.AppName), zap.String("address", address))
	if err := router.Run(address); err != nil {
		logger.Fatal("error starting server", zap.Error(err))
	}
}
