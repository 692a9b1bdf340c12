// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories and DDL bootstrappers with the
// storage package.
//
// In other words, importing this package makes the following storage kinds
// available at runtime:
//
//   - "postgres" (ipldash/internal/storage/postgres)
//   - "sqlite"   (ipldash/internal/storage/sqlite)
//
// Typical usage (in cmd/dashboard/main.go or a similar wiring layer):
//
//	import (
//	    _ "ipldash/internal/storage/all" // enable all built-in backends
//
//	    "ipldash/internal/storage"
//	)
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind: cfg.Export.Kind,
//	    DSN:  cfg.Export.DB.DSN,
//	})
//
// This pattern keeps backend-specific wiring in a single, small package and
// allows the rest of the application to depend only on the storage
// abstraction rather than individual backends.
//
// Note: if you want a binary that supports only a subset of backends, you can
// define alternative wiring packages that import only the required backends
// instead of this package.
package all

import (
	_ "ipldash/internal/storage/postgres"
	_ "ipldash/internal/storage/sqlite"
)
