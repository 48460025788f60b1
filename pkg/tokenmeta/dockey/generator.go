package dockey

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
)

// Generator defines the interface for document key generation strategies
type Generator interface {
	// GenerateKey creates a storage key for a token's metadata document
	GenerateKey(tokenID uint64) string
}

// FlatGenerator lays documents out flat: {prefix/}7.json
// Matches the path shape clients expect when a base URI points directly at
// the bucket.
type FlatGenerator struct {
	// Prefix is prepended to every key (no trailing slash required)
	Prefix string
}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) GenerateKey(tokenID uint64) string {
	name := strconv.FormatUint(tokenID, 10) + ".json"
	if g.Prefix == "" {
		return name
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(g.Prefix, "/"), name)
}

// ShardedGenerator provides Git-style sharded storage for large collections:
// {prefix/}ab/7.json where the shard directory comes from a hash of the
// decimal token identifier. Deterministic, so keys can be recomputed from the
// token alone.
type ShardedGenerator struct {
	// ShardLength controls how many hex characters form the shard directory (default: 2)
	ShardLength int

	// Prefix is prepended to every key (no trailing slash required)
	Prefix string
}

func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(tokenID uint64) string {
	decimal := strconv.FormatUint(tokenID, 10)
	hash := sha256.Sum256([]byte(decimal))
	hashStr := fmt.Sprintf("%x", hash)

	shardLength := g.ShardLength
	if shardLength <= 0 || shardLength > len(hashStr) {
		shardLength = 2
	}

	key := fmt.Sprintf("%s/%s.json", hashStr[:shardLength], decimal)
	if g.Prefix == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(g.Prefix, "/"), key)
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(tokenID uint64) string
}

func NewCustomFuncGenerator(fn func(tokenID uint64) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(tokenID uint64) string {
	return g.GenerateFunc(tokenID)
}

// NewRecommendedGenerator returns the recommended generator for new installations
func NewRecommendedGenerator() Generator {
	return NewFlatGenerator()
}

// NewLargeCollectionGenerator returns a generator suited to collections large
// enough that flat listings become slow
func NewLargeCollectionGenerator() Generator {
	return NewShardedGenerator()
}
