package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"renova-rooms/internal/config"
	"renova-rooms/internal/database"
	httpapi "renova-rooms/internal/http"
	"renova-rooms/internal/idgen"
	"renova-rooms/internal/logger"
	"renova-rooms/internal/repository"
	"renova-rooms/internal/service"
	"renova-rooms/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "renova-rooms")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cache := store.NewRoomListCache(store.NewRedisKV(redisClient), cfg.Cache.RoomListTTL, log)

	// 仓库装配：DB 可用走 Postgres，否则回退内存仓库（本地 `go run` 不依赖环境）
	var (
		db        *sql.DB
		rooms     repository.RoomsRepository
		projects  repository.ProjectsRepository
		teammates repository.TeammatesRepository
		artisans  repository.ArtisansRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for renova-rooms")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}
	if db != nil {
		rooms = repository.NewPostgresRoomsRepository(db)
		projects = repository.NewPostgresProjectsRepository(db)
		teammates = repository.NewPostgresTeammatesRepository(db)
		artisans = repository.NewPostgresArtisansRepository(db)
	} else {
		mem := repository.NewMemoryRepo()
		rooms, projects, teammates, artisans = mem, mem, mem, mem
	}

	var directory *service.DirectoryClient
	if cfg.Directory.BaseURL != "" {
		directory = service.NewDirectoryClient(cfg.Directory.BaseURL, cfg.Directory.APIKey, log)
	}

	ids := idgen.NewUUIDGenerator()
	roomSvc := service.NewRoomService(rooms, projects, ids, cache, log)
	assignSvc := service.NewAssignmentService(rooms, teammates, artisans, cache, log)
	projectSvc := service.NewProjectService(projects, log)
	teammateSvc := service.NewTeammateService(teammates, log)
	artisanSvc := service.NewArtisanService(artisans, directory, log)
	reportSvc := service.NewReportService(rooms, projects, log)

	router := httpapi.NewRouter(log)
	router.RegisterRenovationRoutes(
		httpapi.NewRoomHandler(roomSvc, log),
		httpapi.NewProjectHandler(projectSvc, roomSvc, reportSvc, log),
		httpapi.NewAssignmentHandler(assignSvc, teammateSvc, log),
		httpapi.NewArtisanHandler(artisanSvc, log),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
