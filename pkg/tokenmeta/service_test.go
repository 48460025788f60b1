package tokenmeta_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juke/dril-dao/pkg/tokenmeta"
	"github.com/juke/dril-dao/pkg/tokenmeta/repo/memory"
	memorystorage "github.com/juke/dril-dao/pkg/tokenmeta/storage/memory"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []tokenmeta.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []tokenmeta.Option{},
			expectError: true,
		},
		{
			name: "with config store should succeed",
			options: []tokenmeta.Option{
				tokenmeta.WithConfigStore(memory.New("https://example.com/meta")),
			},
			expectError: false,
		},
		{
			name: "with config store and document store should succeed",
			options: []tokenmeta.Option{
				tokenmeta.WithConfigStore(memory.New("https://example.com/meta")),
				tokenmeta.WithDocumentStore(memorystorage.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := tokenmeta.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func setupTestService(t *testing.T) tokenmeta.Service {
	store := memory.New("https://example.com/meta")
	docs := memorystorage.New()

	svc, err := tokenmeta.New(
		tokenmeta.WithConfigStore(store),
		tokenmeta.WithDocumentStore(docs),
		tokenmeta.WithEventSink(tokenmeta.NewNoopEventSink()),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc
}

func TestResolveTokenURI(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("UnconfiguredFallsBackToDefault", func(t *testing.T) {
		uri, err := svc.ResolveTokenURI(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, "https://example.com/meta", uri)
	})

	t.Run("BasePathWithID", func(t *testing.T) {
		err := svc.SetTokenBaseURI(ctx, 2, "https://cdn.example.com/v2", true)
		require.NoError(t, err)

		uri, err := svc.ResolveTokenURI(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/v2/2", uri)
	})

	t.Run("BasePathWithoutID", func(t *testing.T) {
		err := svc.SetTokenBaseURI(ctx, 3, "https://cdn.example.com/static", false)
		require.NoError(t, err)

		uri, err := svc.ResolveTokenURI(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/static", uri)
	})

	t.Run("ExplicitOverridesBasePath", func(t *testing.T) {
		err := svc.SetTokenBaseURI(ctx, 4, "https://cdn.example.com/v2", true)
		require.NoError(t, err)
		err = svc.SetTokenURI(ctx, 4, "ipfs://QmPinned4")
		require.NoError(t, err)

		uri, err := svc.ResolveTokenURI(ctx, 4)
		assert.NoError(t, err)
		assert.Equal(t, "ipfs://QmPinned4", uri)
	})

	t.Run("ClearRestoresBasePath", func(t *testing.T) {
		err := svc.ClearTokenURI(ctx, 4)
		require.NoError(t, err)

		uri, err := svc.ResolveTokenURI(ctx, 4)
		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/v2/4", uri)
	})
}

func TestSetTokenBaseURI(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("EmptyBaseURIRejected", func(t *testing.T) {
		err := svc.SetTokenBaseURI(ctx, 1, "", true)
		assert.Error(t, err)
		assert.ErrorIs(t, err, tokenmeta.ErrInvalidArgument)

		// Nothing was stored
		cfg, err := svc.GetTokenURIConfig(ctx, 1)
		require.NoError(t, err)
		assert.False(t, cfg.IsConfigured)
	})

	t.Run("StoresConfiguration", func(t *testing.T) {
		err := svc.SetTokenBaseURI(ctx, 2, "https://cdn.example.com/v2", true)
		require.NoError(t, err)

		cfg, err := svc.GetTokenURIConfig(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/v2", cfg.BaseURI)
		assert.True(t, cfg.UseIDInPath)
		assert.True(t, cfg.IsConfigured)
	})

	t.Run("ReconfigureOverwrites", func(t *testing.T) {
		err := svc.SetTokenBaseURI(ctx, 2, "https://cdn.example.com/v3", false)
		require.NoError(t, err)

		cfg, err := svc.GetTokenURIConfig(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/v3", cfg.BaseURI)
		assert.False(t, cfg.UseIDInPath)
		assert.True(t, cfg.IsConfigured)
	})
}

func TestSetTokenURI(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("EmptyURIRejected", func(t *testing.T) {
		err := svc.SetTokenURI(ctx, 1, "")
		assert.Error(t, err)
		assert.ErrorIs(t, err, tokenmeta.ErrInvalidArgument)
	})

	t.Run("StoresOverride", func(t *testing.T) {
		err := svc.SetTokenURI(ctx, 1, "ipfs://QmPinned1")
		require.NoError(t, err)

		cfg, err := svc.GetTokenURIConfig(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "ipfs://QmPinned1", cfg.ExplicitURI)
	})

	t.Run("ErrorCarriesTokenAndOperation", func(t *testing.T) {
		err := svc.SetTokenURI(ctx, 77, "")
		require.Error(t, err)

		var opErr *tokenmeta.TokenConfigError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, tokenmeta.TokenID(77), opErr.TokenID)
		assert.Equal(t, "set_uri", opErr.Op)
	})
}

func TestClearTokenURI(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("UnknownTokenIsNoOp", func(t *testing.T) {
		err := svc.ClearTokenURI(ctx, 999)
		assert.NoError(t, err)
	})

	t.Run("ClearKeepsBasePathConfiguration", func(t *testing.T) {
		require.NoError(t, svc.SetTokenBaseURI(ctx, 5, "https://cdn.example.com/v2", true))
		require.NoError(t, svc.SetTokenURI(ctx, 5, "ipfs://QmPinned5"))

		err := svc.ClearTokenURI(ctx, 5)
		require.NoError(t, err)

		cfg, err := svc.GetTokenURIConfig(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, cfg.ExplicitURI)
		assert.True(t, cfg.IsConfigured)
		assert.Equal(t, "https://cdn.example.com/v2", cfg.BaseURI)
	})
}

func TestSetTokenURIBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("AssignsAllPairs", func(t *testing.T) {
		svc := setupTestService(t)
		ids := []tokenmeta.TokenID{10, 11, 12}
		uris := []string{"ipfs://Qm10", "ipfs://Qm11", "ipfs://Qm12"}

		err := svc.SetTokenURIBatch(ctx, ids, uris)
		require.NoError(t, err)

		for i, id := range ids {
			uri, err := svc.ResolveTokenURI(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, uris[i], uri)
		}
	})

	t.Run("OversizedBatchRejected", func(t *testing.T) {
		svc := setupTestService(t)
		ids := make([]tokenmeta.TokenID, tokenmeta.MaxBatchSize+1)
		uris := make([]string, tokenmeta.MaxBatchSize+1)
		for i := range ids {
			ids[i] = tokenmeta.TokenID(i + 1)
			uris[i] = fmt.Sprintf("ipfs://Qm%d", i+1)
		}

		err := svc.SetTokenURIBatch(ctx, ids, uris)
		assert.ErrorIs(t, err, tokenmeta.ErrBatchTooLarge)
	})

	t.Run("ExactCapAccepted", func(t *testing.T) {
		svc := setupTestService(t)
		ids := make([]tokenmeta.TokenID, tokenmeta.MaxBatchSize)
		uris := make([]string, tokenmeta.MaxBatchSize)
		for i := range ids {
			ids[i] = tokenmeta.TokenID(i + 1)
			uris[i] = fmt.Sprintf("ipfs://Qm%d", i+1)
		}

		err := svc.SetTokenURIBatch(ctx, ids, uris)
		assert.NoError(t, err)
	})

	t.Run("LengthMismatchRejected", func(t *testing.T) {
		svc := setupTestService(t)
		err := svc.SetTokenURIBatch(ctx,
			[]tokenmeta.TokenID{1, 2},
			[]string{"ipfs://Qm1"})
		assert.ErrorIs(t, err, tokenmeta.ErrLengthMismatch)
	})

	t.Run("EmptyURIRejectsWholeBatch", func(t *testing.T) {
		svc := setupTestService(t)
		err := svc.SetTokenURIBatch(ctx,
			[]tokenmeta.TokenID{20, 21},
			[]string{"ipfs://Qm20", ""})
		assert.ErrorIs(t, err, tokenmeta.ErrInvalidArgument)

		// No partial writes
		cfg, err := svc.GetTokenURIConfig(ctx, 20)
		require.NoError(t, err)
		assert.Empty(t, cfg.ExplicitURI)
	})

	t.Run("RepeatedIDLastWins", func(t *testing.T) {
		svc := setupTestService(t)
		err := svc.SetTokenURIBatch(ctx,
			[]tokenmeta.TokenID{30, 30},
			[]string{"ipfs://QmFirst", "ipfs://QmSecond"})
		require.NoError(t, err)

		uri, err := svc.ResolveTokenURI(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, "ipfs://QmSecond", uri)
	})
}

func TestCollectionConfig(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("DefaultBaseURIFixedAtConstruction", func(t *testing.T) {
		coll, err := svc.GetCollectionConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/meta", coll.DefaultBaseURI)
		assert.Empty(t, coll.MetadataURI)
	})

	t.Run("SetMetadataURI", func(t *testing.T) {
		err := svc.SetCollectionMetadataURI(ctx, "https://example.com/collection.json")
		require.NoError(t, err)

		coll, err := svc.GetCollectionConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/collection.json", coll.MetadataURI)
	})

	t.Run("EmptyMetadataURIAllowed", func(t *testing.T) {
		err := svc.SetCollectionMetadataURI(ctx, "")
		require.NoError(t, err)

		coll, err := svc.GetCollectionConfig(ctx)
		require.NoError(t, err)
		assert.Empty(t, coll.MetadataURI)
	})
}

func TestAuthorization(t *testing.T) {
	store := memory.New("https://example.com/meta")
	svc, err := tokenmeta.New(
		tokenmeta.WithConfigStore(store),
		tokenmeta.WithAuthorizer(tokenmeta.NewStaticPrincipalAuthorizer("operator")),
	)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("MutationWithoutPrincipalDenied", func(t *testing.T) {
		err := svc.SetTokenURI(ctx, 1, "ipfs://QmPinned")
		assert.ErrorIs(t, err, tokenmeta.ErrUnauthorized)

		cfg, err := svc.GetTokenURIConfig(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, cfg.ExplicitURI)
	})

	t.Run("MutationWithWrongPrincipalDenied", func(t *testing.T) {
		intruder := tokenmeta.WithPrincipal(ctx, "intruder")
		err := svc.SetTokenBaseURI(intruder, 1, "https://cdn.example.com/v2", true)
		assert.ErrorIs(t, err, tokenmeta.ErrUnauthorized)
	})

	t.Run("MutationWithAllowedPrincipalGranted", func(t *testing.T) {
		operator := tokenmeta.WithPrincipal(ctx, "operator")
		err := svc.SetTokenURI(operator, 1, "ipfs://QmPinned")
		assert.NoError(t, err)
	})

	t.Run("ReadsAreNotGated", func(t *testing.T) {
		uri, err := svc.ResolveTokenURI(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, "ipfs://QmPinned", uri)
	})
}

// recordingSink captures every event in call order for assertions.
type recordingSink struct {
	events []string
	fail   bool
}

func (s *recordingSink) BaseURIConfigured(ctx context.Context, id tokenmeta.TokenID, baseURI string, useIDInPath bool) error {
	s.events = append(s.events, fmt.Sprintf("base:%s:%s:%t", id, baseURI, useIDInPath))
	if s.fail {
		return errors.New("sink unavailable")
	}
	return nil
}

func (s *recordingSink) TokenURIChanged(ctx context.Context, id tokenmeta.TokenID, uri string) error {
	s.events = append(s.events, fmt.Sprintf("uri:%s:%s", id, uri))
	if s.fail {
		return errors.New("sink unavailable")
	}
	return nil
}

func TestEventNotifications(t *testing.T) {
	ctx := context.Background()

	newService := func(t *testing.T, sink tokenmeta.EventSink) tokenmeta.Service {
		svc, err := tokenmeta.New(
			tokenmeta.WithConfigStore(memory.New("https://example.com/meta")),
			tokenmeta.WithEventSink(sink),
		)
		require.NoError(t, err)
		return svc
	}

	t.Run("BaseURIConfigured", func(t *testing.T) {
		sink := &recordingSink{}
		svc := newService(t, sink)

		require.NoError(t, svc.SetTokenBaseURI(ctx, 1, "https://cdn.example.com/v2", true))
		assert.Equal(t, []string{"base:1:https://cdn.example.com/v2:true"}, sink.events)
	})

	t.Run("TokenURIChangedOnSetAndClear", func(t *testing.T) {
		sink := &recordingSink{}
		svc := newService(t, sink)

		require.NoError(t, svc.SetTokenURI(ctx, 2, "ipfs://QmPinned"))
		require.NoError(t, svc.ClearTokenURI(ctx, 2))

		assert.Equal(t, []string{"uri:2:ipfs://QmPinned", "uri:2:"}, sink.events)
	})

	t.Run("BatchEmitsPerElementInOrder", func(t *testing.T) {
		sink := &recordingSink{}
		svc := newService(t, sink)

		err := svc.SetTokenURIBatch(ctx,
			[]tokenmeta.TokenID{3, 4},
			[]string{"ipfs://Qm3", "ipfs://Qm4"})
		require.NoError(t, err)

		assert.Equal(t, []string{"uri:3:ipfs://Qm3", "uri:4:ipfs://Qm4"}, sink.events)
	})

	t.Run("RejectedMutationEmitsNothing", func(t *testing.T) {
		sink := &recordingSink{}
		svc := newService(t, sink)

		_ = svc.SetTokenURI(ctx, 5, "")
		assert.Empty(t, sink.events)
	})

	t.Run("SinkFailureDoesNotFailMutation", func(t *testing.T) {
		sink := &recordingSink{fail: true}
		svc := newService(t, sink)

		err := svc.SetTokenURI(ctx, 6, "ipfs://QmPinned")
		assert.NoError(t, err)

		uri, err := svc.ResolveTokenURI(ctx, 6)
		require.NoError(t, err)
		assert.Equal(t, "ipfs://QmPinned", uri)
	})
}

func TestHookExecution(t *testing.T) {
	ctx := context.Background()

	t.Run("BeforeHookRejectsMutation", func(t *testing.T) {
		hooks := &tokenmeta.Hooks{
			BeforeExplicitURISet: []tokenmeta.BeforeExplicitURISetHook{
				tokenmeta.ValidationHook(func(id tokenmeta.TokenID, uri string) error {
					if uri != "" && !strings.HasPrefix(uri, "ipfs://") {
						return fmt.Errorf("%w: only ipfs URIs accepted", tokenmeta.ErrInvalidArgument)
					}
					return nil
				}),
			},
		}

		svc, err := tokenmeta.New(
			tokenmeta.WithConfigStore(memory.New("https://example.com/meta")),
			tokenmeta.WithHooks(hooks),
		)
		require.NoError(t, err)

		err = svc.SetTokenURI(ctx, 1, "https://example.com/1.json")
		assert.ErrorIs(t, err, tokenmeta.ErrInvalidArgument)

		cfg, err := svc.GetTokenURIConfig(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, cfg.ExplicitURI)

		err = svc.SetTokenURI(ctx, 1, "ipfs://QmAccepted")
		assert.NoError(t, err)
	})

	t.Run("AfterHooksObserveCommittedWrites", func(t *testing.T) {
		var seen []string
		hooks := &tokenmeta.Hooks{
			AfterBaseURISet: []tokenmeta.AfterBaseURISetHook{
				func(hctx *tokenmeta.HookContext, id tokenmeta.TokenID, baseURI string, useIDInPath bool) error {
					seen = append(seen, fmt.Sprintf("base:%s", id))
					return nil
				},
			},
			AfterExplicitURISet: []tokenmeta.AfterExplicitURISetHook{
				func(hctx *tokenmeta.HookContext, id tokenmeta.TokenID, uri string) error {
					seen = append(seen, fmt.Sprintf("uri:%s", id))
					return nil
				},
			},
		}

		svc, err := tokenmeta.New(
			tokenmeta.WithConfigStore(memory.New("https://example.com/meta")),
			tokenmeta.WithHooks(hooks),
		)
		require.NoError(t, err)

		require.NoError(t, svc.SetTokenBaseURI(ctx, 2, "https://cdn.example.com/v2", false))
		require.NoError(t, svc.SetTokenURI(ctx, 2, "ipfs://QmPinned"))

		assert.Equal(t, []string{"base:2", "uri:2"}, seen)
	})

	t.Run("ErrorHookObservesStoreFailures", func(t *testing.T) {
		var failures []string
		hooks := &tokenmeta.Hooks{
			OnError: []tokenmeta.ErrorHook{
				func(hctx *tokenmeta.HookContext, operation string, err error) {
					failures = append(failures, operation)
				},
			},
		}

		svc, err := tokenmeta.New(
			tokenmeta.WithConfigStore(memory.New("https://example.com/meta")),
			tokenmeta.WithDocumentStore(memorystorage.New()),
			tokenmeta.WithHooks(hooks),
		)
		require.NoError(t, err)

		// Deleting a document that was never published fails in the backend
		err = svc.DeleteTokenMetadata(ctx, 9)
		require.Error(t, err)
		assert.Equal(t, []string{"delete_metadata"}, failures)
	})
}

func TestMetadataDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("PublishAndRead", func(t *testing.T) {
		svc := setupTestService(t)

		err := svc.PublishTokenMetadata(ctx, tokenmeta.PublishTokenMetadataRequest{
			TokenID: 1,
			Metadata: tokenmeta.TokenMetadata{
				Name:        "token #1",
				Description: "first",
				Image:       "ipfs://QmImage1",
				Attributes: []tokenmeta.TokenAttribute{
					{TraitType: "mood", Value: "calm"},
				},
			},
		})
		require.NoError(t, err)

		meta, err := svc.GetTokenMetadata(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "token #1", meta.Name)
		assert.Equal(t, "first", meta.Description)
		assert.Len(t, meta.Attributes, 1)
		assert.Equal(t, "mood", meta.Attributes[0].TraitType)
	})

	t.Run("NameRequired", func(t *testing.T) {
		svc := setupTestService(t)

		err := svc.PublishTokenMetadata(ctx, tokenmeta.PublishTokenMetadataRequest{
			TokenID:  2,
			Metadata: tokenmeta.TokenMetadata{Description: "nameless"},
		})
		assert.ErrorIs(t, err, tokenmeta.ErrInvalidArgument)
	})

	t.Run("MissingDocument", func(t *testing.T) {
		svc := setupTestService(t)

		_, err := svc.GetTokenMetadata(ctx, 404)
		assert.ErrorIs(t, err, tokenmeta.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		svc := setupTestService(t)

		require.NoError(t, svc.PublishTokenMetadata(ctx, tokenmeta.PublishTokenMetadataRequest{
			TokenID:  3,
			Metadata: tokenmeta.TokenMetadata{Name: "token #3"},
		}))
		require.NoError(t, svc.DeleteTokenMetadata(ctx, 3))

		_, err := svc.GetTokenMetadata(ctx, 3)
		assert.ErrorIs(t, err, tokenmeta.ErrDocumentNotFound)
	})

	t.Run("WithoutDocumentStore", func(t *testing.T) {
		svc, err := tokenmeta.New(
			tokenmeta.WithConfigStore(memory.New("https://example.com/meta")),
		)
		require.NoError(t, err)

		err = svc.PublishTokenMetadata(ctx, tokenmeta.PublishTokenMetadataRequest{
			TokenID:  1,
			Metadata: tokenmeta.TokenMetadata{Name: "token #1"},
		})
		assert.ErrorIs(t, err, tokenmeta.ErrDocumentStoreNotConfigured)

		_, err = svc.GetTokenMetadata(ctx, 1)
		assert.ErrorIs(t, err, tokenmeta.ErrDocumentStoreNotConfigured)

		_, err = svc.GetTokenMetadataURL(ctx, 1)
		assert.ErrorIs(t, err, tokenmeta.ErrDocumentStoreNotConfigured)
	})

	t.Run("MemoryBackendHasNoURLs", func(t *testing.T) {
		svc := setupTestService(t)

		require.NoError(t, svc.PublishTokenMetadata(ctx, tokenmeta.PublishTokenMetadataRequest{
			TokenID:  4,
			Metadata: tokenmeta.TokenMetadata{Name: "token #4"},
		}))

		_, err := svc.GetTokenMetadataURL(ctx, 4)
		require.Error(t, err)

		var docErr *tokenmeta.DocumentError
		require.ErrorAs(t, err, &docErr)
		assert.Equal(t, tokenmeta.TokenID(4), docErr.TokenID)
		assert.Equal(t, "download_url", docErr.Op)
	})
}
