// Package all wires the built-in storage backends into the storage factory.
//
// It exists purely for side effects: importing it (as a blank import) runs
// the init functions of each backend package, which register their factories
// with the storage package. Importing this package makes the following kinds
// available at runtime:
//
//   - "postgres" (listingsetl/internal/storage/postgres)
//   - "mssql"    (listingsetl/internal/storage/mssql)
//   - "sqlite"   (listingsetl/internal/storage/sqlite)
//
// A binary that needs only a subset of backends can blank-import the
// individual backend packages instead.
package all

import (
	_ "listingsetl/internal/storage/mssql"
	_ "listingsetl/internal/storage/postgres"
	_ "listingsetl/internal/storage/sqlite"
)
