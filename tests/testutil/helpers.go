package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// URIResponse represents the response from the URI resolution endpoint
type URIResponse struct {
	TokenID string `json:"token_id"`
	URI     string `json:"uri"`
}

// TokenConfigResponse represents the response from the token config endpoint
type TokenConfigResponse struct {
	TokenID      string `json:"token_id"`
	ExplicitURI  string `json:"explicit_uri,omitempty"`
	BaseURI      string `json:"base_uri,omitempty"`
	UseIDInPath  bool   `json:"use_id_in_path"`
	IsConfigured bool   `json:"is_configured"`
}

// CollectionResponse represents the response from the collection endpoint
type CollectionResponse struct {
	DefaultBaseURI string `json:"default_base_uri"`
	MetadataURI    string `json:"metadata_uri"`
}

// ResolveTokenURI resolves a token's metadata URI via the API
func ResolveTokenURI(t *testing.T, serverURL, tokenID string) URIResponse {
	resp, err := http.Get(serverURL + "/tokens/" + tokenID + "/uri")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result URIResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &result)
	require.NoError(t, err)

	return result
}

// GetTokenConfig retrieves a token's stored configuration via the API
func GetTokenConfig(t *testing.T, serverURL, tokenID string) TokenConfigResponse {
	resp, err := http.Get(serverURL + "/tokens/" + tokenID + "/config")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result TokenConfigResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &result)
	require.NoError(t, err)

	return result
}

// SetTokenBaseURI configures a per-token base path via the API
func SetTokenBaseURI(t *testing.T, serverURL, tokenID, baseURI string, useIDInPath bool) {
	reqBody := map[string]interface{}{
		"base_uri":       baseURI,
		"use_id_in_path": useIDInPath,
	}
	reqJSON, err := json.Marshal(reqBody)
	require.NoError(t, err)

	req, err := http.NewRequest("PUT", serverURL+"/tokens/"+tokenID+"/base-uri", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	defer resp.Body.Close()
}

// SetTokenURI sets an explicit URI override via the API
func SetTokenURI(t *testing.T, serverURL, tokenID, uri string) {
	reqJSON, err := json.Marshal(map[string]string{"uri": uri})
	require.NoError(t, err)

	req, err := http.NewRequest("PUT", serverURL+"/tokens/"+tokenID+"/uri", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	defer resp.Body.Close()
}

// ClearTokenURI removes an explicit URI override via the API
func ClearTokenURI(t *testing.T, serverURL, tokenID string) {
	req, err := http.NewRequest("DELETE", serverURL+"/tokens/"+tokenID+"/uri", nil)
	require.NoError(t, err)

	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	defer resp.Body.Close()
}

// BatchSetURIs assigns explicit URIs in bulk via the API
func BatchSetURIs(t *testing.T, serverURL string, tokenIDs, uris []string) {
	resp := AttemptBatchSetURIs(t, serverURL, tokenIDs, uris)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

// AttemptBatchSetURIs posts a bulk assignment and returns the raw response
func AttemptBatchSetURIs(t *testing.T, serverURL string, tokenIDs, uris []string) *http.Response {
	reqBody := map[string]interface{}{
		"token_ids": tokenIDs,
		"uris":      uris,
	}
	reqJSON, err := json.Marshal(reqBody)
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/tokens/uris", "application/json", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)

	return resp
}

// GetCollectionConfig retrieves the collection configuration via the API
func GetCollectionConfig(t *testing.T, serverURL string) CollectionResponse {
	resp, err := http.Get(serverURL + "/collection/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result CollectionResponse
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &result)
	require.NoError(t, err)

	return result
}

// SetCollectionMetadataURI updates the contract-level metadata URI via the API
func SetCollectionMetadataURI(t *testing.T, serverURL, uri string) {
	reqJSON, err := json.Marshal(map[string]string{"uri": uri})
	require.NoError(t, err)

	req, err := http.NewRequest("PUT", serverURL+"/collection/metadata-uri", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	defer resp.Body.Close()
}

// PublishMetadata stores a metadata document for a token via the API
func PublishMetadata(t *testing.T, serverURL, tokenID string, metadata map[string]interface{}) {
	reqJSON, err := json.Marshal(metadata)
	require.NoError(t, err)

	req, err := http.NewRequest("PUT", serverURL+"/tokens/"+tokenID+"/metadata", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	defer resp.Body.Close()
}

// GetMetadata retrieves a token's metadata document via the API
func GetMetadata(t *testing.T, serverURL, tokenID string) map[string]interface{} {
	resp, err := http.Get(serverURL + "/tokens/" + tokenID + "/metadata")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	err = json.Unmarshal(body, &result)
	require.NoError(t, err)

	return result
}
