package app

import (
	"context"
	"fmt"

	"github.com/folio-space/folio/internal/backend"
	"github.com/folio-space/folio/internal/backend/blob"
	"github.com/folio-space/folio/internal/backend/gormstore"
	"github.com/folio-space/folio/internal/backend/mongostore"
	"github.com/folio-space/folio/internal/config"
	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/repository"
)

// stores are the record store tables behind the catalog and the identity
// provider, plus the function releasing their connection.
type stores struct {
	tables   repository.Tables
	users    backend.Table[models.AdminUser]
	sessions backend.Table[models.AdminSession]
	close    func() error
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, dev bool) (*stores, error) {
	if cfg.Driver == config.DriverMongo {
		client, db, err := mongostore.Connect(ctx, cfg.DSNValue(), cfg.MongoDatabase())
		if err != nil {
			return nil, err
		}
		users, sessions := mongostore.AccountTables(db)
		return &stores{
			tables:   mongostore.CatalogTables(db),
			users:    users,
			sessions: sessions,
			close:    func() error { return client.Disconnect(context.Background()) },
		}, nil
	}

	db, err := gormstore.Connect(cfg, dev)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	users, sessions := gormstore.AccountTables(db)
	return &stores{
		tables:   gormstore.CatalogTables(db),
		users:    users,
		sessions: sessions,
		close:    sqlDB.Close,
	}, nil
}

// openBlobStore selects the upload backend. Local uploads land in
// <upload dir>/uploads and are served at /uploads.
func openBlobStore(cfg *config.AppConfig) (backend.BlobStore, error) {
	if cfg.Storage.Driver == config.StorageS3 {
		s3, err := blob.NewS3(cfg.Storage.S3)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	return blob.NewLocal(cfg.UploadDir(), cfg.Storage.PublicBase), nil
}
