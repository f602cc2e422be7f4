package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	checkoutdomain "github.com/smallbiznis/checkout/internal/checkout/domain"
	"github.com/smallbiznis/checkout/internal/config"
	connectdomain "github.com/smallbiznis/checkout/internal/connect/domain"
	transactiondomain "github.com/smallbiznis/checkout/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

type EngineParams struct {
	fx.In

	Log *zap.Logger
	Cfg config.Config
}

func NewEngine(p EngineParams) *gin.Engine {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(p.Log))
	r.Use(ErrorHandlingMiddleware())

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		AbortWithError(c, ErrMethodNotAllowed)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	checkoutSvc   checkoutdomain.Service
	txnSvc        transactiondomain.Service
	connectSvc    connectdomain.Service
	intentLimiter *rateLimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	CheckoutSvc checkoutdomain.Service
	TxnSvc      transactiondomain.Service
	ConnectSvc  connectdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		checkoutSvc:   p.CheckoutSvc,
		txnSvc:        p.TxnSvc,
		connectSvc:    p.ConnectSvc,
		intentLimiter: newRateLimiter(10, time.Minute),
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/config", s.GetPublicConfig)
	s.engine.POST("/create-intent", s.IntentRateLimit(), s.CreateIntent)
	s.engine.POST("/webhook", s.HandleWebhook)

	s.engine.POST("/connected-account", s.CreateConnectedAccount)
	s.engine.POST("/onboarding-link", s.CreateOnboardingLink)
	s.engine.POST("/transfer", s.CreateTransfer)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
