package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Runner executes Cypher inside an open transaction.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

type GraphDriver interface {
	ExecuteRead(ctx context.Context, work func(Runner) error) error
	ExecuteWrite(ctx context.Context, work func(Runner) error) error
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
