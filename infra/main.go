package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/wifi-access-backend/infra/cloudrun"
	"github.com/GregMSThompson/wifi-access-backend/infra/docker"
	"github.com/GregMSThompson/wifi-access-backend/infra/firestore"
	"github.com/GregMSThompson/wifi-access-backend/infra/identity"
	"github.com/GregMSThompson/wifi-access-backend/infra/kms"
	"github.com/GregMSThompson/wifi-access-backend/infra/provider"
	"github.com/GregMSThompson/wifi-access-backend/infra/secret"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity platform so admins can sign in with firebase
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// enable firestore and create a database for the project
		err = firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// key for buyer id numbers and phones
		kmsSvc, err := kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		keyName, err := kms.CreateKey(ctx, prov, "wifi-access", "buyer-pii")
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		apiSA, err := cloudrun.CreateServiceAccount(ctx, prov)
		if err != nil {
			return err
		}

		secSvc, err := secret.SetupSecretManager(ctx, prov, apiSA)
		if err != nil {
			return err
		}

		err = kms.GrantEncrypterDecrypter(ctx, prov, apiSA, keyName)
		if err != nil {
			return err
		}

		svc, err := cloudrun.SetupCloudRun(ctx, prov, apiSA, keyName, ident, repo, kmsSvc, secSvc)
		if err != nil {
			return err
		}

		ctx.Export("apiUrl", svc.Statuses.Index(pulumi.Int(0)).Url())
		ctx.Export("kmsKeyName", keyName)
		return nil
	})
}
