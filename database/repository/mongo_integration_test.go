//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourly/config"
)

// TestMongoRepositories runs the backend contract against a single-node replica set,
// which multi-document transactions require.
func TestMongoRepositories(t *testing.T) {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetDirect(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	require.NoError(t, client.Ping(connectCtx, nil))

	cfg := config.Config{StoreBackend: config.BackendMongo, DatabaseName: "tourly_test"}
	repos, err := Open(ctx, cfg, Clients{Mongo: client})
	require.NoError(t, err)

	runContract(t, repos)
}
