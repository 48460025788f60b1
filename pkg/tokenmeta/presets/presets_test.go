package presets

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juke/dril-dao/pkg/tokenmeta"
	"github.com/juke/dril-dao/pkg/tokenmeta/config"
)

func TestNewDevelopment(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		svc, cleanup, err := NewDevelopment()
		require.NoError(t, err)
		require.NotNil(t, svc)
		require.NotNil(t, cleanup)

		// Verify service works
		ctx := context.Background()
		err = svc.PublishTokenMetadata(ctx, tokenmeta.PublishTokenMetadataRequest{
			TokenID:  tokenmeta.TokenID(7),
			Metadata: tokenmeta.TokenMetadata{Name: "dril #7"},
		})
		require.NoError(t, err)

		metadata, err := svc.GetTokenMetadata(ctx, tokenmeta.TokenID(7))
		require.NoError(t, err)
		assert.Equal(t, "dril #7", metadata.Name)

		// Cleanup
		cleanup()

		// Verify storage directory was removed
		_, err = os.Stat("./dev-data")
		assert.True(t, os.IsNotExist(err), "dev-data should be removed after cleanup")
	})

	t.Run("custom storage directory", func(t *testing.T) {
		customDir := "./custom-dev-data"
		svc, cleanup, err := NewDevelopment(WithDevStorage(customDir))
		require.NoError(t, err)
		require.NotNil(t, svc)
		defer cleanup()

		ctx := context.Background()
		err = svc.PublishTokenMetadata(ctx, tokenmeta.PublishTokenMetadataRequest{
			TokenID:  tokenmeta.TokenID(7),
			Metadata: tokenmeta.TokenMetadata{Name: "dril #7"},
		})
		require.NoError(t, err)

		// Verify custom directory exists
		_, err = os.Stat(customDir)
		assert.NoError(t, err, "custom storage directory should exist")
	})

	t.Run("custom default base URI", func(t *testing.T) {
		svc, cleanup, err := NewDevelopment(
			WithDevStorage("./custom-uri-dev-data"),
			WithDevDefaultBaseURI("https://dev.example.com/meta"),
		)
		require.NoError(t, err)
		defer cleanup()

		uri, err := svc.ResolveTokenURI(context.Background(), tokenmeta.TokenID(7))
		require.NoError(t, err)
		assert.Equal(t, "https://dev.example.com/meta", uri)
	})
}

func TestNewTesting(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		svc := NewTesting(t)
		require.NotNil(t, svc)

		ctx := context.Background()
		err := svc.SetTokenURI(ctx, tokenmeta.TokenID(7), "ipfs://QmPinned")
		require.NoError(t, err)

		uri, err := svc.ResolveTokenURI(ctx, tokenmeta.TokenID(7))
		require.NoError(t, err)
		assert.Equal(t, "ipfs://QmPinned", uri)
	})

	t.Run("parallel execution", func(t *testing.T) {
		t.Run("test1", func(t *testing.T) {
			t.Parallel()
			svc := NewTesting(t)
			err := svc.SetTokenURI(context.Background(), tokenmeta.TokenID(1), "ipfs://Qm1")
			require.NoError(t, err)
		})

		t.Run("test2", func(t *testing.T) {
			t.Parallel()
			svc := NewTesting(t)
			err := svc.SetTokenURI(context.Background(), tokenmeta.TokenID(2), "ipfs://Qm2")
			require.NoError(t, err)
		})
	})

	t.Run("custom default base URI", func(t *testing.T) {
		svc := NewTesting(t, WithTestDefaultBaseURI("https://test.example.com/meta"))

		uri, err := svc.ResolveTokenURI(context.Background(), tokenmeta.TokenID(7))
		require.NoError(t, err)
		assert.Equal(t, "https://test.example.com/meta", uri)
	})
}

func TestTestService(t *testing.T) {
	svc := TestService(t)
	require.NotNil(t, svc)

	err := svc.SetTokenBaseURI(context.Background(), tokenmeta.TokenID(7), "https://cdn.example.com", true)
	require.NoError(t, err)
}

func TestNewProduction(t *testing.T) {
	t.Run("validation - rejects memory database", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "memory")

		_, err := NewProduction()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "memory not allowed in production")
	})

	t.Run("validation - rejects memory document storage", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "memory")
		t.Setenv("STORAGE_URL", "memory://")

		_, err := NewProduction(config.WithDatabase("postgres", "postgresql://localhost/test"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "persistent document storage")
	})

	// Building against a live Postgres/S3 belongs to the integration suite;
	// only the validation paths run here.
}

func TestPresetIsolation(t *testing.T) {
	svc1 := NewTesting(t)
	svc2 := NewTesting(t)

	ctx := context.Background()

	err := svc1.SetTokenURI(ctx, tokenmeta.TokenID(7), "ipfs://QmFirst")
	require.NoError(t, err)

	// The override should NOT be visible from svc2 (isolated stores).
	cfg, err := svc2.GetTokenURIConfig(ctx, tokenmeta.TokenID(7))
	require.NoError(t, err)
	assert.Empty(t, cfg.ExplicitURI, "override from svc1 should not exist in svc2")
}
