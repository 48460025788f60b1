package testutil

import (
	"log"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/juke/dril-dao/pkg/tokenmeta"
	"github.com/juke/dril-dao/pkg/tokenmeta/admin"
	"github.com/juke/dril-dao/pkg/tokenmeta/api"
	memorystore "github.com/juke/dril-dao/pkg/tokenmeta/repo/memory"
	memorydocs "github.com/juke/dril-dao/pkg/tokenmeta/storage/memory"
)

// DefaultBaseURI is the collection-wide fallback configured on test servers.
const DefaultBaseURI = "https://meta.test/tokens"

// SetupTestServer creates a test server with all routes configured
func SetupTestServer() *httptest.Server {
	store := memorystore.New(DefaultBaseURI)
	docs := memorydocs.New()

	svc, err := tokenmeta.New(
		tokenmeta.WithConfigStore(store),
		tokenmeta.WithDocumentStore(docs),
		tokenmeta.WithEventSink(tokenmeta.NewNoopEventSink()),
	)
	if err != nil {
		log.Fatal(err)
	}

	adminSvc := admin.New(store)

	tokenHandler := api.NewTokenHandler(svc)
	collectionHandler := api.NewCollectionHandler(svc)
	adminHandler := api.NewAdminHandler(adminSvc)

	r := chi.NewRouter()

	r.Mount("/tokens", tokenHandler.Routes())
	r.Mount("/collection", collectionHandler.Routes())
	r.Mount("/admin", adminHandler.Routes())

	return httptest.NewServer(r)
}
