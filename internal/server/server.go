package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/emrgen/graphbase/internal/cache"
	"github.com/emrgen/graphbase/internal/compress"
	"github.com/emrgen/graphbase/internal/config"
	"github.com/emrgen/graphbase/internal/graph"
	"github.com/emrgen/graphbase/internal/job"
	"github.com/emrgen/graphbase/internal/jobs"
	"github.com/emrgen/graphbase/internal/module"
	"github.com/emrgen/graphbase/internal/queue"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/service"
	"github.com/emrgen/graphbase/internal/store"
	"github.com/gobuffalo/packr"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server represents the server
type Server struct {
	httpPort string
}

// NewServer creates a new server
func NewServer(httpPort string) *Server {
	return &Server{
		httpPort: httpPort,
	}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.httpPort); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start starts the http server
func Start(httpPort string) error {
	httpPort = ":" + httpPort

	cnf := config.LoadConfig()
	rdb, err := config.GetDb(cnf)
	if err != nil {
		return err
	}

	rl, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	sch := schema.Default()
	if cnf.SchemaPath != "" {
		sch, err = schema.Load(cnf.SchemaPath)
		if err != nil {
			return err
		}
	}

	gormStore := store.NewGormStore(rdb, sch)
	if err := gormStore.Migrate(); err != nil {
		return err
	}

	provider := store.NewDefaultProvider(gormStore)
	recordStore, err := provider.Provide(uuid.Nil)
	if err != nil {
		return err
	}

	var recordQueue queue.RecordQueue = queue.NewNoopQueue()
	if cnf.KafkaBrokers != "" {
		recordQueue, err = queue.NewKafkaRecordQueue(cnf.KafkaBrokers)
		if err != nil {
			return err
		}
	}
	defer recordQueue.Close()

	records := service.NewRecordService(sch, recordStore, recordQueue)
	links := service.NewLinkService(sch, recordStore, recordQueue)
	options := service.NewOptionService(sch, recordStore)
	events := service.NewEventService(recordStore)
	builder := graph.NewBuilder(sch, recordStore)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(RequestTimeMiddleware(), ActorMiddleware())
	RegisterRoutes(e, NewHandler(sch, records, links, options, events, builder))

	apiMux := http.NewServeMux()
	openapiDocs := packr.NewBox("../../docs/v1")
	docsPath := "/v1/docs/"
	apiMux.Handle(docsPath, http.StripPrefix(docsPath, http.FileServer(openapiDocs)))
	apiMux.Handle("/", e)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // All origins are allowed
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PUT"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", module.ActorHeader},
		AllowCredentials: true,
	})

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: c.Handler(apiMux),
	}

	// periodic snapshot export needs somewhere to put the snapshots
	var cronJobs []jobs.CronJob
	if cnf.RedisAddr != "" {
		codec, err := compress.ByName(cnf.SnapshotCodec)
		if err != nil {
			return err
		}
		graphCache := cache.NewRedisGraphCache(cnf.RedisAddr)
		cronJobs = append(cronJobs, jobs.NewSnapshotTask(builder, graphCache, codec, cnf.SnapshotCodec, cnf.SnapshotCron))
	}
	runner := jobs.NewRunner([]jobs.Job{jobs.NewHeartbeatTask()}, cronJobs)
	runner.Run()

	cleaner := job.NewEventCleaner(recordStore, cnf.EventRetention)
	go cleaner.Run()

	// make sure to wait for the server to stop before exiting
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting rest server on: ", httpPort)
		logrus.Info("click on the following link to view the API documentation: http://localhost", httpPort, "/v1/docs/")
		if err := restServer.Serve(rl); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting rest server: %v", err)
			}
		}
		logrus.Infof("rest server stopped")
	}()

	time.Sleep(1 * time.Second)
	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	runner.Stop()
	cleaner.Stop()
	err = restServer.Shutdown(context.Background())
	if err != nil {
		logrus.Errorf("error stopping rest server: %v", err)
	}

	wg.Wait()

	return nil
}
