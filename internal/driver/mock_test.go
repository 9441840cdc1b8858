package driver

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type executedQuery struct {
	Query  string
	Params map[string]any
}

// MockDriver records every statement and answers from Results, keyed by
// a substring of the statement.
type MockDriver struct {
	Executed []executedQuery
	Results  map[string][]*neo4j.Record
	Err      error
	Writes   int
}

func (m *MockDriver) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	m.Executed = append(m.Executed, executedQuery{Query: query, Params: params})
	if m.Err != nil {
		return nil, m.Err
	}
	for fragment, records := range m.Results {
		if strings.Contains(query, fragment) {
			return records, nil
		}
	}
	return nil, nil
}

func (m *MockDriver) ExecuteRead(ctx context.Context, work func(Runner) error) error {
	return work(m)
}

func (m *MockDriver) ExecuteWrite(ctx context.Context, work func(Runner) error) error {
	m.Writes++
	return work(m)
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}
