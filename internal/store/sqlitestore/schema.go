package sqlitestore

const (
	pragmaWAL         = `PRAGMA journal_mode = WAL`
	pragmaFK          = `PRAGMA foreign_keys = ON`
	pragmaBusyTimeout = `PRAGMA busy_timeout = 5000`

	schemaNodes = `
		CREATE TABLE IF NOT EXISTS nodes (
			uuid           TEXT PRIMARY KEY,
			kind           TEXT NOT NULL,
			name           TEXT NOT NULL,
			differentiator TEXT NOT NULL DEFAULT '',
			props          TEXT NOT NULL DEFAULT '{}'
		)`

	schemaEdges = `
		CREATE TABLE IF NOT EXISTS edges (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			type      TEXT NOT NULL,
			from_uuid TEXT NOT NULL REFERENCES nodes(uuid) ON DELETE CASCADE,
			to_uuid   TEXT NOT NULL REFERENCES nodes(uuid) ON DELETE CASCADE,
			position  INTEGER NOT NULL DEFAULT 0,
			props     TEXT NOT NULL DEFAULT '{}'
		)`

	indexNodesKey  = `CREATE INDEX IF NOT EXISTS idx_nodes_key ON nodes(kind, name, differentiator)`
	indexEdgesFrom = `CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_uuid, type)`
	indexEdgesTo   = `CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_uuid, type)`
)

func allPragmas() []string {
	return []string{pragmaWAL, pragmaFK, pragmaBusyTimeout}
}

func allSchemaStatements() []string {
	return []string{schemaNodes, schemaEdges, indexNodesKey, indexEdgesFrom, indexEdgesTo}
}
