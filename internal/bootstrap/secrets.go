package bootstrap

import (
	"context"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"

	"github.com/GregMSThompson/wifi-access-backend/internal/config"
	"github.com/GregMSThompson/wifi-access-backend/internal/secrets"
)

// ResolveRouterSecret prefers the literal ROUTERSECRET and otherwise reads
// ROUTERSECRETNAME from Secret Manager. Both empty yields "".
func ResolveRouterSecret(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.RouterSecret != "" || cfg.RouterSecretName == "" {
		return cfg.RouterSecret, nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	return secrets.NewSecretsStore(client, cfg.ProjectID).Get(ctx, cfg.RouterSecretName)
}
