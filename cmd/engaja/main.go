package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/totegamma/engaja/internal/config"
	"github.com/totegamma/engaja/internal/infra/database"
	"github.com/totegamma/engaja/internal/infra/gateway"
	"github.com/totegamma/engaja/internal/infra/repository"
	"github.com/totegamma/engaja/internal/present/rest"
	authmiddleware "github.com/totegamma/engaja/internal/present/rest/middleware"
	"github.com/totegamma/engaja/internal/service"
	"github.com/totegamma/engaja/internal/usecase"
	"github.com/totegamma/engaja/policy"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := config.SetLogger(conf.Server.LogEnv)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := zap.S()

	log.Infow("starting engaja", "version", version, "city", conf.City.Name, "backend", conf.Server.Backend)

	ctx := context.Background()

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint, "engaja", version)
		if err != nil {
			log.Fatalw("failed to setup trace provider", "error", err)
		}
		defer cleanup()
	}

	var repo usecase.IssueRepository
	switch conf.Server.Backend {
	case "postgres":
		db, err := database.NewPostgres(ctx, conf.Server.PostgresDsn)
		if err != nil {
			log.Fatalw("failed to connect database", "error", err)
		}
		err = database.MigratePostgres(db)
		if err != nil {
			log.Fatalw("failed to migrate database", "error", err)
		}
		repo = repository.NewIssueRepository(db)
	case "mongo":
		mdb, err := database.NewMongo(ctx, conf.Server.MongoURI, conf.Server.MongoDatabase)
		if err != nil {
			log.Fatalw("failed to connect mongo", "error", err)
		}
		defer mdb.Client().Disconnect(context.Background())
		err = database.MigrateMongo(ctx, mdb)
		if err != nil {
			log.Fatalw("failed to migrate mongo", "error", err)
		}
		repo = repository.NewMongoIssueRepository(mdb)
	default:
		repo = repository.NewLocalIssueRepository()
	}

	var snapshots usecase.SnapshotStore = repository.NewLocalSnapshotStore()
	var events usecase.EventPublisher
	var signalService *service.SignalService
	if conf.Server.RedisAddr != "" {
		rdb, err := database.NewRedis(ctx, conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
		if err != nil {
			log.Warnw("redis unavailable, snapshots stay in memory and realtime is off", "error", err)
		} else {
			defer rdb.Close()
			snapshots = repository.NewSnapshotStore(rdb)
			signalService = service.NewSignalService(rdb)
			events = signalService
		}
	}

	var classifier usecase.Classifier
	if conf.Classifier.APIKey != "" {
		classifier = gateway.NewClassifier(gateway.ClassifierConfig{
			Endpoint: conf.Classifier.Endpoint,
			APIKey:   conf.Classifier.APIKey,
			Model:    conf.Classifier.Model,
			Timeout:  conf.Classifier.Timeout,
			CacheTTL: conf.Classifier.CacheTTL,
		}, database.NewMemcached(conf.Server.MemcachedAddr))
	} else {
		log.Infow("classifier disabled, every report uses the fallback classification")
	}

	var uploader usecase.Uploader
	if conf.Uploads.CloudName != "" {
		u, err := gateway.NewUploader(gateway.UploaderConfig{
			CloudName: conf.Uploads.CloudName,
			APIKey:    conf.Uploads.APIKey,
			APISecret: conf.Uploads.APISecret,
			Folder:    conf.Uploads.Folder,
		})
		if err != nil {
			log.Warnw("uploader disabled, attachments stay local", "error", err)
		} else {
			uploader = u
		}
	}

	state := usecase.NewState()
	persist := usecase.NewPersister(repo, snapshots, state, conf.Server.PersistTimeout)
	authorizer := service.NewAuthorizer(policy.Default())

	users := usecase.NewUserUsecase(state, persist)
	issues := usecase.NewIssueUsecase(
		state,
		persist,
		classifier,
		uploader,
		authorizer,
		events,
		users,
		usecase.IssueConfig{
			OfficeName:      conf.City.OfficeName,
			UploadTimeout:   conf.Uploads.Timeout,
			ClassifyTimeout: conf.Classifier.Timeout,
		},
	)
	voting := usecase.NewVotingUsecase(state, persist, authorizer, events, users)
	dashboard := usecase.NewDashboardUsecase(state, authorizer, users)

	err = issues.Load(ctx)
	if err != nil {
		log.Warnw("starting with an empty issue list", "error", err)
	}
	now := time.Now()
	voting.Seed(ctx, conf.Seed.Polls(now), conf.Seed.Bills(now))

	auth := service.NewAuthService(conf.Server.JwtSecret, 0)
	handler := rest.NewHandler(
		rest.MapConfig{
			CenterLat: conf.City.CenterLat,
			CenterLng: conf.City.CenterLng,
			PinSpread: conf.City.PinSpread,
		},
		issues,
		voting,
		dashboard,
		users,
		auth,
		signalService,
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(otelecho.Middleware("engaja", otelecho.WithSkipper(func(c echo.Context) bool {
		return c.Path() == "/health" || c.Path() == "/realtime"
	})))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handler.RegisterRoutes(e, authmiddleware.NewAuthMiddleware(auth))

	go func() {
		err := e.Start(conf.Server.Listen)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = e.Shutdown(shutdownCtx)
	if err != nil {
		log.Warnw("shutdown failed", "error", err)
	}

	persist.Checkpoint(shutdownCtx)
	persist.Wait()
	log.Infow("bye")
}
