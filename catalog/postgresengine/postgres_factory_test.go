package postgresengine_test

import (
	"testing"

	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/library-catalog/catalog"
	"github.com/openshelf/library-catalog/catalog/postgresengine"
)

func Test_FactoryFunctions_CatalogStore_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	testCases := []struct {
		name        string
		factoryFunc func() (postgresengine.CatalogStore, error)
	}{
		{
			name: "NewCatalogStoreFromPGXPool with nil",
			factoryFunc: func() (postgresengine.CatalogStore, error) {
				return postgresengine.NewCatalogStoreFromPGXPool(nil)
			},
		},
		{
			name: "NewCatalogStoreFromSQLDB with nil",
			factoryFunc: func() (postgresengine.CatalogStore, error) {
				return postgresengine.NewCatalogStoreFromSQLDB(nil)
			},
		},
		{
			name: "NewCatalogStoreFromSQLX with nil",
			factoryFunc: func() (postgresengine.CatalogStore, error) {
				return postgresengine.NewCatalogStoreFromSQLX(nil)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := tc.factoryFunc()

			// assert
			assert.ErrorIs(t, err, catalog.ErrNilDatabaseConnection)
		})
	}
}

func Test_FactoryFunctions_CatalogStore_ShouldFail_WithEmptyTableNames(t *testing.T) {
	// setup
	db := openLazySQLDB(t)
	defer func() { _ = db.Close() }()

	testCases := []struct {
		name        string
		option      postgresengine.Option
		expectedErr error
	}{
		{
			name:        "empty books table name",
			option:      postgresengine.WithBooksTableName(""),
			expectedErr: catalog.ErrEmptyBooksTableName,
		},
		{
			name:        "empty issues table name",
			option:      postgresengine.WithIssuesTableName(""),
			expectedErr: catalog.ErrEmptyIssuesTableName,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := postgresengine.NewCatalogStoreFromSQLDB(db, tc.option)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_FactoryFunctions_CatalogStore_ShouldWork_WithCustomTableNames(t *testing.T) {
	// setup
	db := openLazySQLDB(t)
	defer func() { _ = db.Close() }()

	// act
	_, err := postgresengine.NewCatalogStoreFromSQLDB(
		db,
		postgresengine.WithBooksTableName("library_books"),
		postgresengine.WithIssuesTableName("library_issues"),
	)

	// assert
	require.NoError(t, err)
}
