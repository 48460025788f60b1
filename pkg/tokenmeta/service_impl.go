package tokenmeta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/juke/dril-dao/pkg/tokenmeta/dockey"
)

// service implements the Service interface
type service struct {
	store         ConfigStore
	documentStore DocumentStore
	keyGenerator  dockey.Generator
	eventSink     EventSink
	authorizer    Authorizer
	hooks         *Hooks
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithConfigStore sets the configuration store for the service
func WithConfigStore(store ConfigStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithDocumentStore sets the metadata document store for the service
func WithDocumentStore(store DocumentStore) Option {
	return func(s *service) {
		s.documentStore = store
	}
}

// WithKeyGenerator sets the document key generation strategy
func WithKeyGenerator(g dockey.Generator) Option {
	return func(s *service) {
		s.keyGenerator = g
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithAuthorizer sets the authorizer consulted before every mutation
func WithAuthorizer(a Authorizer) Option {
	return func(s *service) {
		s.authorizer = a
	}
}

// WithHooks sets the lifecycle hooks executed around mutations
func WithHooks(h *Hooks) Option {
	return func(s *service) {
		s.hooks = h
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("config store is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}
	if s.authorizer == nil {
		s.authorizer = NewAllowAllAuthorizer()
	}
	if s.keyGenerator == nil {
		s.keyGenerator = dockey.NewRecommendedGenerator()
	}
	if s.hooks == nil {
		s.hooks = &Hooks{}
	}

	return s, nil
}

// Resolution

func (s *service) ResolveTokenURI(ctx context.Context, id TokenID) (string, error) {
	cfg, err := s.store.GetTokenConfig(ctx, id)
	if err != nil {
		return "", &TokenConfigError{TokenID: id, Op: "resolve", Err: err}
	}

	// The default base URI is immutable, so reading the collection config
	// separately cannot tear against a concurrent token write.
	coll, err := s.store.GetCollectionConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load collection config: %w", err)
	}

	return ResolveURI(id, cfg, coll.DefaultBaseURI), nil
}

// Token configuration operations

func (s *service) GetTokenURIConfig(ctx context.Context, id TokenID) (TokenURIConfig, error) {
	cfg, err := s.store.GetTokenConfig(ctx, id)
	if err != nil {
		return TokenURIConfig{}, &TokenConfigError{TokenID: id, Op: "get_config", Err: err}
	}
	return cfg, nil
}

func (s *service) SetTokenBaseURI(ctx context.Context, id TokenID, baseURI string, useIDInPath bool) error {
	if err := s.authorizer.Authorize(ctx, OpSetTokenBaseURI); err != nil {
		return &TokenConfigError{TokenID: id, Op: "set_base_uri", Err: err}
	}
	if baseURI == "" {
		return &TokenConfigError{TokenID: id, Op: "set_base_uri",
			Err: fmt.Errorf("%w: base URI must not be empty", ErrInvalidArgument)}
	}

	if err := s.hooks.executeBeforeBaseURISet(ctx, id, baseURI, useIDInPath); err != nil {
		return &TokenConfigError{TokenID: id, Op: "set_base_uri", Err: err}
	}

	if err := s.store.SetBasePath(ctx, id, baseURI, useIDInPath); err != nil {
		s.hooks.executeOnError(ctx, "set_base_uri", err)
		return &TokenConfigError{TokenID: id, Op: "set_base_uri", Err: err}
	}

	if err := s.hooks.executeAfterBaseURISet(ctx, id, baseURI, useIDInPath); err != nil {
		s.hooks.executeOnError(ctx, "set_base_uri", err)
	}
	if err := s.eventSink.BaseURIConfigured(ctx, id, baseURI, useIDInPath); err != nil {
		s.hooks.executeOnError(ctx, "set_base_uri", err)
	}
	return nil
}

func (s *service) SetTokenURI(ctx context.Context, id TokenID, uri string) error {
	if err := s.authorizer.Authorize(ctx, OpSetTokenURI); err != nil {
		return &TokenConfigError{TokenID: id, Op: "set_uri", Err: err}
	}
	if uri == "" {
		return &TokenConfigError{TokenID: id, Op: "set_uri",
			Err: fmt.Errorf("%w: uri must not be empty", ErrInvalidArgument)}
	}

	if err := s.hooks.executeBeforeExplicitURISet(ctx, id, uri); err != nil {
		return &TokenConfigError{TokenID: id, Op: "set_uri", Err: err}
	}

	if err := s.store.SetExplicitURI(ctx, id, uri); err != nil {
		s.hooks.executeOnError(ctx, "set_uri", err)
		return &TokenConfigError{TokenID: id, Op: "set_uri", Err: err}
	}

	if err := s.hooks.executeAfterExplicitURISet(ctx, id, uri); err != nil {
		s.hooks.executeOnError(ctx, "set_uri", err)
	}
	if err := s.eventSink.TokenURIChanged(ctx, id, uri); err != nil {
		s.hooks.executeOnError(ctx, "set_uri", err)
	}
	return nil
}

func (s *service) ClearTokenURI(ctx context.Context, id TokenID) error {
	if err := s.authorizer.Authorize(ctx, OpClearTokenURI); err != nil {
		return &TokenConfigError{TokenID: id, Op: "clear_uri", Err: err}
	}

	// Clearing never fails validation: tokens without an override are a no-op.
	if err := s.hooks.executeBeforeExplicitURISet(ctx, id, ""); err != nil {
		return &TokenConfigError{TokenID: id, Op: "clear_uri", Err: err}
	}

	if err := s.store.SetExplicitURI(ctx, id, ""); err != nil {
		s.hooks.executeOnError(ctx, "clear_uri", err)
		return &TokenConfigError{TokenID: id, Op: "clear_uri", Err: err}
	}

	if err := s.hooks.executeAfterExplicitURISet(ctx, id, ""); err != nil {
		s.hooks.executeOnError(ctx, "clear_uri", err)
	}
	if err := s.eventSink.TokenURIChanged(ctx, id, ""); err != nil {
		s.hooks.executeOnError(ctx, "clear_uri", err)
	}
	return nil
}

func (s *service) SetTokenURIBatch(ctx context.Context, ids []TokenID, uris []string) error {
	if err := s.authorizer.Authorize(ctx, OpSetTokenURIBatch); err != nil {
		return fmt.Errorf("set token uri batch: %w", err)
	}
	if len(ids) > MaxBatchSize {
		return fmt.Errorf("%w: %d tokens exceeds limit of %d", ErrBatchTooLarge, len(ids), MaxBatchSize)
	}
	if len(ids) != len(uris) {
		return fmt.Errorf("%w: %d token ids, %d uris", ErrLengthMismatch, len(ids), len(uris))
	}
	for i, uri := range uris {
		if uri == "" {
			return &TokenConfigError{TokenID: ids[i], Op: "set_uri_batch",
				Err: fmt.Errorf("%w: uri at index %d must not be empty", ErrInvalidArgument, i)}
		}
	}

	for i := range ids {
		if err := s.hooks.executeBeforeExplicitURISet(ctx, ids[i], uris[i]); err != nil {
			return &TokenConfigError{TokenID: ids[i], Op: "set_uri_batch", Err: err}
		}
	}

	if err := s.store.SetExplicitURIBatch(ctx, ids, uris); err != nil {
		s.hooks.executeOnError(ctx, "set_uri_batch", err)
		return fmt.Errorf("set token uri batch: %w", err)
	}

	// Notifications follow argument order once the whole batch is committed.
	for i := range ids {
		if err := s.hooks.executeAfterExplicitURISet(ctx, ids[i], uris[i]); err != nil {
			s.hooks.executeOnError(ctx, "set_uri_batch", err)
		}
		if err := s.eventSink.TokenURIChanged(ctx, ids[i], uris[i]); err != nil {
			s.hooks.executeOnError(ctx, "set_uri_batch", err)
		}
	}
	return nil
}

// Collection configuration operations

func (s *service) GetCollectionConfig(ctx context.Context) (CollectionConfig, error) {
	coll, err := s.store.GetCollectionConfig(ctx)
	if err != nil {
		return CollectionConfig{}, fmt.Errorf("load collection config: %w", err)
	}
	return coll, nil
}

func (s *service) SetCollectionMetadataURI(ctx context.Context, uri string) error {
	if err := s.authorizer.Authorize(ctx, OpSetCollectionMetadataURI); err != nil {
		return fmt.Errorf("set collection metadata uri: %w", err)
	}

	// Empty is allowed: it unsets the collection-level document location.
	if err := s.store.SetCollectionMetadataURI(ctx, uri); err != nil {
		s.hooks.executeOnError(ctx, "set_collection_metadata_uri", err)
		return fmt.Errorf("set collection metadata uri: %w", err)
	}
	return nil
}

// Metadata document operations

func (s *service) PublishTokenMetadata(ctx context.Context, req PublishTokenMetadataRequest) error {
	if err := s.authorizer.Authorize(ctx, OpPublishTokenMetadata); err != nil {
		return &DocumentError{TokenID: req.TokenID, Op: "publish", Err: err}
	}
	if s.documentStore == nil {
		return ErrDocumentStoreNotConfigured
	}
	if req.Metadata.Name == "" {
		return &DocumentError{TokenID: req.TokenID, Op: "publish",
			Err: fmt.Errorf("%w: metadata name must not be empty", ErrInvalidArgument)}
	}

	if err := s.hooks.executeBeforeMetadataPublish(ctx, &req); err != nil {
		return &DocumentError{TokenID: req.TokenID, Op: "publish", Err: err}
	}

	data, err := json.Marshal(req.Metadata)
	if err != nil {
		return &DocumentError{TokenID: req.TokenID, Op: "publish", Err: err}
	}

	key := s.keyGenerator.GenerateKey(uint64(req.TokenID))
	err = s.documentStore.UploadWithParams(ctx, bytes.NewReader(data), UploadDocumentParams{
		Key:      key,
		MimeType: "application/json",
	})
	if err != nil {
		s.hooks.executeOnError(ctx, "publish_metadata", err)
		return &DocumentError{TokenID: req.TokenID, Key: key, Op: "publish", Err: err}
	}

	if err := s.hooks.executeAfterMetadataPublish(ctx, req.TokenID, key); err != nil {
		s.hooks.executeOnError(ctx, "publish_metadata", err)
	}
	return nil
}

func (s *service) GetTokenMetadata(ctx context.Context, id TokenID) (*TokenMetadata, error) {
	if s.documentStore == nil {
		return nil, ErrDocumentStoreNotConfigured
	}

	key := s.keyGenerator.GenerateKey(uint64(id))
	rc, err := s.documentStore.Download(ctx, key)
	if err != nil {
		return nil, &DocumentError{TokenID: id, Key: key, Op: "download", Err: err}
	}
	defer rc.Close()

	var metadata TokenMetadata
	if err := json.NewDecoder(rc).Decode(&metadata); err != nil {
		return nil, &DocumentError{TokenID: id, Key: key, Op: "decode", Err: err}
	}
	return &metadata, nil
}

func (s *service) DeleteTokenMetadata(ctx context.Context, id TokenID) error {
	if err := s.authorizer.Authorize(ctx, OpDeleteTokenMetadata); err != nil {
		return &DocumentError{TokenID: id, Op: "delete", Err: err}
	}
	if s.documentStore == nil {
		return ErrDocumentStoreNotConfigured
	}

	key := s.keyGenerator.GenerateKey(uint64(id))
	if err := s.documentStore.Delete(ctx, key); err != nil {
		s.hooks.executeOnError(ctx, "delete_metadata", err)
		return &DocumentError{TokenID: id, Key: key, Op: "delete", Err: err}
	}
	return nil
}

func (s *service) GetTokenMetadataURL(ctx context.Context, id TokenID) (string, error) {
	if s.documentStore == nil {
		return "", ErrDocumentStoreNotConfigured
	}

	key := s.keyGenerator.GenerateKey(uint64(id))
	url, err := s.documentStore.GetDownloadURL(ctx, key)
	if err != nil {
		return "", &DocumentError{TokenID: id, Key: key, Op: "download_url", Err: err}
	}
	return url, nil
}

func (s *service) GetTokenMetadataUploadURL(ctx context.Context, id TokenID) (string, error) {
	// Handing out an upload URL grants a write, so it is authorized like one.
	if err := s.authorizer.Authorize(ctx, OpPublishTokenMetadata); err != nil {
		return "", &DocumentError{TokenID: id, Op: "upload_url", Err: err}
	}
	if s.documentStore == nil {
		return "", ErrDocumentStoreNotConfigured
	}

	key := s.keyGenerator.GenerateKey(uint64(id))
	url, err := s.documentStore.GetUploadURL(ctx, key)
	if err != nil {
		return "", &DocumentError{TokenID: id, Key: key, Op: "upload_url", Err: err}
	}
	return url, nil
}
