// Package all registers every storage backend with the factory. Binaries
// blank-import it so any configured kind resolves at runtime.
package all

import (
	_ "cdrlens/internal/storage/mssql"
	_ "cdrlens/internal/storage/postgres"
	_ "cdrlens/internal/storage/sqlite"
)
