package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	"firebase.google.com/go/v4/auth"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GregMSThompson/wifi-access-backend/internal/config"
	"github.com/GregMSThompson/wifi-access-backend/pkg/logger"
)

type Bootstrap struct {
	Log          *slog.Logger
	Firestore    *firestore.Client
	Postgres     *pgxpool.Pool
	Firebase     *auth.Client
	KMS          *gcpkms.KeyManagementClient
	RouterSecret string
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	slog.SetDefault(bs.Log)

	switch cfg.StoreBackend {
	case config.StoreFirestore:
		bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	default:
		bs.Postgres, err = InitPostgres(applicationCtx, cfg.DatabaseURL)
	}
	if err != nil {
		return bs, err
	}

	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}

	if cfg.KMSKeyName != "" {
		bs.KMS, err = InitKMS(applicationCtx)
		if err != nil {
			return bs, err
		}
	} else {
		bs.Log.Warn("KMSKEYNAME not set, buyer id numbers and phones are stored in clear")
	}

	bs.RouterSecret, err = ResolveRouterSecret(applicationCtx, cfg)
	if err != nil {
		return bs, err
	}
	if bs.RouterSecret == "" {
		bs.Log.Warn("no router secret configured, router export will reject every request")
	}

	bs.Log.Info("bootstrap complete", "store_backend", cfg.StoreBackend, "timezone", cfg.Timezone)
	return bs, nil
}

// Close releases every client that was opened. It is safe on a partially
// initialised Bootstrap.
func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Postgres != nil {
		bs.Postgres.Close()
	}
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	if bs.KMS != nil {
		errList = append(errList, bs.KMS.Close())
	}
	return errors.Join(errList...)
}
