// utils/firebase.go
package utils

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"tourly/config"
)

var (
	FirebaseApp     *firebase.App
	AuthClient      *auth.Client
	FCMClient       *messaging.Client
	FirestoreClient *firestore.Client
)

// FirebaseInit initializes the Firebase App together with the Auth and Messaging clients.
// The Firestore client is only opened when it backs the document store.
func FirebaseInit(ctx context.Context) error {
	var opts []option.ClientOption
	if path := config.AppConfig.FirebaseCredentialsFile; path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	var fbCfg *firebase.Config
	if id := config.AppConfig.FirebaseProjectID; id != "" {
		fbCfg = &firebase.Config{ProjectID: id}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return fmt.Errorf("firebase: error initializing app: %w", err)
	}
	FirebaseApp = app

	if AuthClient, err = app.Auth(ctx); err != nil {
		return fmt.Errorf("firebase: error getting Auth client: %w", err)
	}
	if config.AppConfig.NotificationsEnabled {
		if FCMClient, err = app.Messaging(ctx); err != nil {
			return fmt.Errorf("firebase: error getting Messaging client: %w", err)
		}
	}
	if config.AppConfig.StoreBackend == config.BackendFirestore {
		if FirestoreClient, err = app.Firestore(ctx); err != nil {
			return fmt.Errorf("firebase: error getting Firestore client: %w", err)
		}
	}
	return nil
}
