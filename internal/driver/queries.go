package driver

import (
	"fmt"
	"strings"

	"github.com/agenthands/playbill/internal/core/model"
)

// Labels and relationship types cannot be parameters, so statements are
// generated once per kind and edge type.

// nodeLabel is carried by every node next to its kind label, so lookups by
// uuid hit a single uniqueness constraint.
const nodeLabel = "Node"

type nodeQueries struct {
	create string
	find   string
	list   string
}

type edgeQueries struct {
	create     string
	outgoing   string
	incoming   string
	deleteFrom string
	deleteTo   string
}

const (
	getNodeQuery = `
		MATCH (n:Node {uuid: $uuid})
		RETURN n AS node
	`

	updateNodeQuery = `
		MATCH (n:Node {uuid: $uuid})
		SET n = $props
		RETURN count(n) AS matched
	`

	deleteNodeQuery = `
		MATCH (n:Node {uuid: $uuid})
		DETACH DELETE n
		RETURN count(n) AS matched
	`

	neighboursQuery = `
		MATCH (a:Node {uuid: $uuid})-[r]-(b)
		RETURN type(r) AS type,
			startNode(r).uuid AS from,
			endNode(r).uuid AS to,
			properties(r) AS props,
			b AS node
	`
)

var (
	nodeStatements = map[model.Kind]nodeQueries{}
	edgeStatements = map[model.EdgeType]edgeQueries{}
)

func init() {
	for _, k := range model.Kinds {
		label := k.Label()
		nodeStatements[k] = nodeQueries{
			create: fmt.Sprintf(`
		CREATE (n:%s:%s)
		SET n = $props
		RETURN n.uuid AS uuid
	`, nodeLabel, label),
			find: fmt.Sprintf(`
		MATCH (n:%s {name: $name})
		WHERE coalesce(n.differentiator, '') = $differentiator
		RETURN n AS node
		ORDER BY n.uuid
		LIMIT 1
	`, label),
			list: fmt.Sprintf(`
		MATCH (n:%s)
		RETURN n AS node
	`, label),
		}
	}

	for _, t := range model.EdgeTypes {
		edgeStatements[t] = edgeQueries{
			create: fmt.Sprintf(`
		MATCH (a:Node {uuid: $from})
		MATCH (b:Node {uuid: $to})
		CREATE (a)-[r:%s]->(b)
		SET r = $props
		RETURN count(r) AS created
	`, t),
			outgoing: fmt.Sprintf(`
		MATCH (a:Node {uuid: $uuid})-[r:%s]->(b)
		RETURN a.uuid AS from, b.uuid AS to, properties(r) AS props, b AS node
	`, t),
			incoming: fmt.Sprintf(`
		MATCH (a)-[r:%s]->(b:Node {uuid: $uuid})
		RETURN a.uuid AS from, b.uuid AS to, properties(r) AS props, a AS node
	`, t),
			deleteFrom: fmt.Sprintf(`
		MATCH (:Node {uuid: $uuid})-[r:%s]->()
		DELETE r
	`, t),
			deleteTo: fmt.Sprintf(`
		MATCH ()-[r:%s]->(:Node {uuid: $uuid})
		DELETE r
	`, t),
		}
	}
}

func indexQueries() []string {
	queries := []string{
		fmt.Sprintf("CREATE CONSTRAINT node_uuid IF NOT EXISTS FOR (n:%s) REQUIRE n.uuid IS UNIQUE", nodeLabel),
	}
	for _, k := range model.Kinds {
		name, label := strings.ToLower(string(k)), k.Label()
		if k.HasNaturalKey() {
			queries = append(queries, fmt.Sprintf(
				"CREATE CONSTRAINT %s_natural_key IF NOT EXISTS FOR (n:%s) REQUIRE (n.name, n.differentiator) IS UNIQUE", name, label))
			continue
		}
		queries = append(queries, fmt.Sprintf("CREATE INDEX %s_name IF NOT EXISTS FOR (n:%s) ON (n.name)", name, label))
	}
	return queries
}
