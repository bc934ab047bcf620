package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/config"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/db"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/handler"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/logging"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/repository"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/router"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/service"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/storage"
)

// staleUploadAge is how old a leftover staged photo must be before startup removes it.
const staleUploadAge = time.Hour

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP intake server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			log, done, err := logging.New(logging.Options{
				Level:       cfg.Log.Level,
				Development: cfg.Development(),
				GelfAddr:    cfg.Log.GelfAddr,
				Service:     "anketa",
			})
			if err != nil {
				return err
			}
			defer done()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log, nil)
		},
	}
}

// stores holds the opened backends and how to release them.
type stores struct {
	apps    repository.Applications
	archive storage.Archive
	close   func()
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
	defer cancel()

	s := &stores{close: func() {}}
	var pool *db.Pool

	switch cfg.Store.Driver {
	case "oxidb":
		p, err := db.NewPool(cfg.OxiDB.Host, cfg.OxiDB.Port, cfg.OxiDB.PoolSize, cfg.OxiDB.Keepalive, log)
		if err != nil {
			return nil, fmt.Errorf("connect to OxiDB at %s:%d: %w", cfg.OxiDB.Host, cfg.OxiDB.Port, err)
		}
		pool = p
		s.apps = repository.NewApplicationRepo(pool)
		s.close = pool.Close
		log.Info("connected to OxiDB",
			zap.String("host", cfg.OxiDB.Host),
			zap.Int("port", cfg.OxiDB.Port),
			zap.Int("pool_size", cfg.OxiDB.PoolSize),
		)
	case "mongo":
		client, err := db.ConnectMongo(connectCtx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		s.apps = repository.NewMongoApplicationRepo(client.Database(cfg.Mongo.Database))
		s.close = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Disconnect(ctx)
		}
		log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))
	case "memory":
		s.apps = repository.NewMemoryApplicationRepo()
		log.Warn("using in-memory store, submissions are not persisted")
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	switch cfg.Archive.Driver {
	case "oxidb":
		archive := storage.NewOxiArchive(pool, cfg.Archive.Bucket)
		if err := archive.EnsureBucket(connectCtx); err != nil {
			s.close()
			return nil, fmt.Errorf("photo bucket: %w", err)
		}
		s.archive = archive
	case "s3":
		archive, err := storage.NewS3Archive(connectCtx, storage.S3Options{
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			Bucket:    cfg.Archive.Bucket,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
		})
		if err != nil {
			s.close()
			return nil, err
		}
		s.archive = archive
	}
	if s.archive != nil {
		log.Info("photo archive enabled", zap.String("driver", cfg.Archive.Driver))
	}
	return s, nil
}

// serve runs the server until ctx is done. When ready is non-nil it receives
// the bound listener address.
func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, ready chan<- string) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	svc := service.NewApplicationService(st.apps, st.archive, log, service.Options{
		UploadDir:    cfg.HTTP.UploadDir,
		VerifyWrites: cfg.Store.VerifyWrites,
	})
	svc.SweepUploads(staleUploadAge)

	staticDir := ""
	if cfg.Production() {
		staticDir = cfg.HTTP.StaticDir
	}
	r := router.New(
		router.Options{Log: log, CORSOrigin: cfg.HTTP.CORSOrigin, StaticDir: staticDir},
		handler.NewApplicationHandler(svc, log, cfg.Development()),
		handler.NewFormHandler(),
		handler.NewDiagnosticHandler(svc, log),
	)

	ln, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTP.Addr, err)
	}
	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Index builds can be slow on large collections; the server does not wait for them.
	g.Go(func() error {
		start := time.Now()
		if err := st.apps.EnsureIndexes(gctx); err != nil {
			log.Warn("index creation failed", zap.Error(err))
			return nil
		}
		log.Info("indexes ready", zap.Duration("took", time.Since(start).Round(time.Millisecond)))
		return nil
	})

	g.Go(func() error {
		log.Info("anketa server starting", zap.String("addr", ln.Addr().String()), zap.String("env", cfg.Env))
		if ready != nil {
			ready <- ln.Addr().String()
		}
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
