package cmd

import (
	"context"
	"fmt"
	"time"

	"consent-manager/core/config"
	"consent-manager/core/database"
	"consent-manager/core/events"
	"consent-manager/core/instance"
	"consent-manager/core/logger"
	coreredis "consent-manager/core/redis"
	"consent-manager/core/storage"
	"consent-manager/core/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds the connections shared by the commands.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	redis    *coreredis.Client
	storage  storage.Client
	backends store.Backends
	source   instance.Source
	instance *instance.Instance
}

// needsStorage reports whether the configuration reads from the bucket.
func needsStorage(cfg *config.Config) bool {
	return cfg.Consent.Source == "object" || cfg.Consent.Store.Method == string(store.MethodObject)
}

// setup loads the configuration, opens the optional backends and installs the
// configured catalog. Optional backends that fail are logged and skipped.
func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logg}
	if err := rt.openDatabase(ctx); err != nil {
		return nil, err
	}
	if err := rt.openRedis(); err != nil {
		return nil, err
	}
	if err := rt.openStorage(ctx); err != nil {
		return nil, err
	}
	if err := rt.openInstance(ctx); err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) openDatabase(ctx context.Context) error {
	conn, err := database.Connect(rt.cfg.Database)
	if err != nil {
		if rt.cfg.Consent.Store.Method == string(store.MethodLocal) {
			return fmt.Errorf("local store needs a database: %w", err)
		}
		rt.logger.Warn("Optional database connection failed", zap.Error(err))
		return nil
	}
	rt.db = conn

	handle := store.NewDatabaseHandle(conn, rt.cfg.Consent.Store.Table)
	if err := handle.Prepare(ctx); err != nil {
		return err
	}
	rt.backends.Local = handle
	rt.logger.Info("Connected to database", zap.String("driver", rt.cfg.Database.Driver))
	return nil
}

func (rt *runtime) openRedis() error {
	client, err := coreredis.New(rt.cfg.Redis)
	if err != nil {
		if rt.cfg.Consent.Store.Method == string(store.MethodSession) {
			return fmt.Errorf("session store needs redis: %w", err)
		}
		rt.logger.Warn("Optional redis connection failed", zap.Error(err))
		return nil
	}
	if client == nil {
		return nil
	}
	rt.redis = client

	ttl := time.Duration(rt.cfg.Consent.Store.SessionTTLMinutes) * time.Minute
	rt.backends.Session = store.NewRedisHandle(client, rt.cfg.Redis.KeyPrefix, ttl)
	rt.logger.Info("Connected to redis")
	return nil
}

func (rt *runtime) openStorage(ctx context.Context) error {
	if !needsStorage(rt.cfg) {
		return nil
	}

	client, err := storage.NewClient(rt.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	rt.storage = client

	bucket := rt.blobBucket()
	if created, err := storage.EnsureBucket(ctx, client, bucket, rt.cfg.Storage.Region); err != nil {
		return err
	} else if created {
		rt.logger.Info("Created bucket", zap.String("bucket", bucket))
	}
	rt.backends.Object = store.NewObjectHandle(client, bucket, rt.cfg.Consent.Store.ObjectPrefix)
	return nil
}

// blobBucket is the bucket holding consent blobs.
func (rt *runtime) blobBucket() string {
	if rt.cfg.Consent.Store.Bucket != "" {
		return rt.cfg.Consent.Store.Bucket
	}
	return rt.cfg.Storage.Bucket
}

func (rt *runtime) openInstance(ctx context.Context) error {
	switch rt.cfg.Consent.Source {
	case "", "file":
		rt.source = instance.NewFileSource(rt.cfg.Consent.CatalogDir)
	case "object":
		rt.source = instance.NewObjectSource(rt.storage, rt.cfg.Storage.Bucket, rt.cfg.Consent.ConfigPrefix)
	default:
		return fmt.Errorf("unknown catalog source %q", rt.cfg.Consent.Source)
	}

	registry := events.NewRegistry(rt.cfg.Consent.EventLogLimit)
	rt.instance = instance.New(rt.source, registry, rt.logger)
	rt.instance.On(instance.EventConfigsFailed, func(args ...any) events.Result {
		if len(args) > 0 {
			rt.logger.Warn("Catalog load failed", zap.Any("error", args[0]))
		}
		return events.Continue
	})

	if _, err := rt.instance.InitializeFromSource(ctx, rt.cfg.Consent.ConfigName); err != nil {
		return fmt.Errorf("failed to load catalog %s: %w", rt.cfg.Consent.ConfigName, err)
	}
	return nil
}

// close releases the connections.
func (rt *runtime) close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if rt.db != nil {
		if sqlDB, err := rt.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = rt.logger.Sync()
}
