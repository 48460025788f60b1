package tokenmeta

import (
	"context"
)

// Hook system allows extending token configuration behavior without modifying
// core code. Hooks are called at specific points around mutations.

// Hooks defines all available lifecycle hooks
type Hooks struct {
	// Base path configuration hooks
	BeforeBaseURISet []BeforeBaseURISetHook
	AfterBaseURISet  []AfterBaseURISetHook

	// Explicit URI override hooks. Clearing an override runs these with an
	// empty uri.
	BeforeExplicitURISet []BeforeExplicitURISetHook
	AfterExplicitURISet  []AfterExplicitURISetHook

	// Metadata document hooks
	BeforeMetadataPublish []BeforeMetadataPublishHook
	AfterMetadataPublish  []AfterMetadataPublishHook

	// Error hooks
	OnError []ErrorHook
}

// HookContext carries information through the hook chain
type HookContext struct {
	Context   context.Context
	Metadata  map[string]interface{} // Custom metadata passed between hooks
	StopChain bool                   // Set to true to stop processing remaining hooks
}

// NewHookContext creates a new hook context
func NewHookContext(ctx context.Context) *HookContext {
	return &HookContext{
		Context:  ctx,
		Metadata: make(map[string]interface{}),
	}
}

// BeforeBaseURISetHook is called before a token's base path is stored
type BeforeBaseURISetHook func(hctx *HookContext, id TokenID, baseURI string, useIDInPath bool) error

// AfterBaseURISetHook is called after a token's base path is stored
type AfterBaseURISetHook func(hctx *HookContext, id TokenID, baseURI string, useIDInPath bool) error

// BeforeExplicitURISetHook is called before a token's URI override is stored
type BeforeExplicitURISetHook func(hctx *HookContext, id TokenID, uri string) error

// AfterExplicitURISetHook is called after a token's URI override is stored
type AfterExplicitURISetHook func(hctx *HookContext, id TokenID, uri string) error

// BeforeMetadataPublishHook is called before a metadata document is uploaded
type BeforeMetadataPublishHook func(hctx *HookContext, req *PublishTokenMetadataRequest) error

// AfterMetadataPublishHook is called after a metadata document is uploaded
type AfterMetadataPublishHook func(hctx *HookContext, id TokenID, key string) error

// ErrorHook is called when an operation fails after authorization
type ErrorHook func(hctx *HookContext, operation string, err error)

// Hook execution helpers

func (h *Hooks) executeBeforeBaseURISet(ctx context.Context, id TokenID, baseURI string, useIDInPath bool) error {
	if len(h.BeforeBaseURISet) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.BeforeBaseURISet {
		if err := hook(hctx, id, baseURI, useIDInPath); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeAfterBaseURISet(ctx context.Context, id TokenID, baseURI string, useIDInPath bool) error {
	if len(h.AfterBaseURISet) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterBaseURISet {
		if err := hook(hctx, id, baseURI, useIDInPath); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeBeforeExplicitURISet(ctx context.Context, id TokenID, uri string) error {
	if len(h.BeforeExplicitURISet) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.BeforeExplicitURISet {
		if err := hook(hctx, id, uri); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeAfterExplicitURISet(ctx context.Context, id TokenID, uri string) error {
	if len(h.AfterExplicitURISet) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterExplicitURISet {
		if err := hook(hctx, id, uri); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeBeforeMetadataPublish(ctx context.Context, req *PublishTokenMetadataRequest) error {
	if len(h.BeforeMetadataPublish) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.BeforeMetadataPublish {
		if err := hook(hctx, req); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeAfterMetadataPublish(ctx context.Context, id TokenID, key string) error {
	if len(h.AfterMetadataPublish) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.AfterMetadataPublish {
		if err := hook(hctx, id, key); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeOnError(ctx context.Context, operation string, err error) {
	if len(h.OnError) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.OnError {
		hook(hctx, operation, err)
		if hctx.StopChain {
			break
		}
	}
}

// Common hook implementations

// LoggingHook logs configuration changes through the given printf-style logger
func LoggingHook(logger func(format string, args ...interface{})) *Hooks {
	return &Hooks{
		AfterBaseURISet: []AfterBaseURISetHook{
			func(hctx *HookContext, id TokenID, baseURI string, useIDInPath bool) error {
				logger("Base URI configured: token=%s base=%s id_in_path=%t", id, baseURI, useIDInPath)
				return nil
			},
		},
		AfterExplicitURISet: []AfterExplicitURISetHook{
			func(hctx *HookContext, id TokenID, uri string) error {
				logger("Explicit URI changed: token=%s uri=%q", id, uri)
				return nil
			},
		},
		OnError: []ErrorHook{
			func(hctx *HookContext, operation string, err error) {
				logger("Error in %s: %v", operation, err)
			},
		},
	}
}

// ValidationHook adds custom validation before an explicit URI is stored
func ValidationHook(validator func(TokenID, string) error) BeforeExplicitURISetHook {
	return func(hctx *HookContext, id TokenID, uri string) error {
		return validator(id, uri)
	}
}
