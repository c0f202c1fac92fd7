package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

// DialConfig selects the Firebase project and credentials.
type DialConfig struct {
	ProjectID string
	// CredentialsFile is a service-account JSON path. Empty uses Application Default
	// Credentials, which also honors FIRESTORE_EMULATOR_HOST.
	CredentialsFile string
}

// Dialer returns a function that opens a Firestore client through the Firebase Admin SDK.
func Dialer(cfg DialConfig) func(ctx context.Context) (*firestore.Client, error) {
	return func(ctx context.Context) (*firestore.Client, error) {
		if cfg.ProjectID == "" && cfg.CredentialsFile == "" {
			return nil, errors.New("firestore project id or credentials file required")
		}

		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		var fbConfig *firebase.Config
		if cfg.ProjectID != "" {
			fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
		}

		app, err := firebase.NewApp(ctx, fbConfig, opts...)
		if err != nil {
			return nil, fmt.Errorf("initialize firebase app: %w", err)
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("open firestore client: %w", err)
		}
		return client, nil
	}
}
