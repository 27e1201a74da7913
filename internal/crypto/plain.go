package crypto

import (
	"context"

	gcpkms "cloud.google.com/go/kms/apiv1"
)

// plain passes values through unchanged. It is used when no KMS key is configured.
type plain struct{}

func NewPlain() plain { return plain{} }

func (plain) Encrypt(_ context.Context, plaintext string) (string, error) { return plaintext, nil }
func (plain) Decrypt(_ context.Context, ciphertext string) (string, error) { return ciphertext, nil }

// Cipher encrypts buyer fields at rest.
type Cipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// New returns the KMS cipher, or the passthrough one when client is nil.
func New(client *gcpkms.KeyManagementClient, keyName string) Cipher {
	if client == nil {
		return NewPlain()
	}
	return NewKMS(client, keyName)
}
