package secrets

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/wifi-access-backend/internal/errs"
)

// Secrets path
// projects/{project}/secrets/{secretID}/versions/latest

type secretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

type secretsStore struct {
	client    secretAccessor
	projectID string
}

func NewSecretsStore(client *secretmanager.Client, projectID string) *secretsStore {
	return &secretsStore{client: client, projectID: projectID}
}

func (s *secretsStore) versionName(secretID string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.projectID, secretID)
}

// Get returns the latest version of the secret, trimmed of surrounding whitespace.
func (s *secretsStore) Get(ctx context.Context, secretID string) (string, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.versionName(secretID),
	})
	if status.Code(err) == codes.NotFound {
		return "", errs.NewNotFoundError("secret not found: " + secretID)
	}
	if err != nil {
		return "", err
	}
	value := strings.TrimSpace(string(res.GetPayload().GetData()))
	if value == "" {
		return "", errs.NewValidationError("secret is empty: " + secretID)
	}
	return value, nil
}
