package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/floor_report/backend/internal/config"
	"github.com/floor_report/backend/internal/http/handlers"
	"github.com/floor_report/backend/internal/http/middleware"
	"github.com/floor_report/backend/internal/service"

	_ "github.com/floor_report/backend/docs"
)

func Router(cfg config.Config, processor *service.ProcessingService, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = config.SplitList(cfg.CORSAllowed)
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     processor.Store,
		Processor: processor,
		Windows:   service.NewWindowResolver(processor.Windows, processor.Location),
		Validator: validator.New(),
		Logger:    logger,
		Now:       processor.Now,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	{
		api.GET("/runs", h.RunsList)
		api.GET("/runs/latest", h.RunsLatest)
		api.GET("/runs/:id", h.RunGet)
		api.GET("/runs/:id/report.csv", h.RunReportCSV)
		api.GET("/windows", h.WindowsList)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/reports", h.CreateReport)
		admin.GET("/debug/window", h.DebugWindow)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
