package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Neo4jDriver struct {
	Driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

func NewNeo4jDriver(ctx context.Context, uri, username, password, database string, logger *slog.Logger) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	logger.Info("connected to neo4j", "uri", uri, "database", database)
	return &Neo4jDriver{Driver: driver, database: database, logger: logger}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return d.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: d.database})
}

// ExecuteRead runs work in a managed read transaction. The driver may
// retry work on transient failures.
func (d *Neo4jDriver) ExecuteRead(ctx context.Context, work func(Runner) error) error {
	session := d.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, work(managedRunner{tx: tx})
	})
	return err
}

func (d *Neo4jDriver) ExecuteWrite(ctx context.Context, work func(Runner) error) error {
	session := d.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, work(managedRunner{tx: tx})
	})
	return err
}

type managedRunner struct {
	tx neo4j.ManagedTransaction
}

func (r managedRunner) Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := r.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect results: %w", err)
	}
	return records, nil
}

func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	for _, q := range indexQueries() {
		_, err := neo4j.ExecuteQuery(ctx, d.Driver, q, nil, neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(d.database))
		if err != nil {
			// Usually an equivalent index created under another name.
			d.logger.Warn("failed to create index", "query", q, "error", err)
		}
	}
	return nil
}
