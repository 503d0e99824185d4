package graph

import (
	"context"
	"fmt"

	"feynman_tutor/src/model"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Repository is the Neo4j-backed catalog. Concepts are (:Concept {name})
// nodes joined by weighted RELATES_TO relationships.
type Repository struct {
	driver     neo4j.DriverWithContext
	maxRelated int
	depth      int
}

// NewRepository connects to Neo4j and verifies connectivity
func NewRepository(ctx context.Context, cfg model.GraphConfig) (*Repository, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	maxRelated, depth := cfg.MaxRelated, cfg.Depth
	if maxRelated <= 0 {
		maxRelated = 5
	}
	if depth <= 0 {
		depth = 2
	}
	return &Repository{driver: driver, maxRelated: maxRelated, depth: depth}, nil
}

func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.driver.VerifyConnectivity(ctx)
}

// EnsureSchema creates the uniqueness constraint on concept names
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `CREATE CONSTRAINT concept_name IF NOT EXISTS FOR (c:Concept) REQUIRE c.name IS UNIQUE`, nil)
	if err != nil {
		return fmt.Errorf("failed to create concept constraint: %w", err)
	}
	return nil
}

func (r *Repository) Search(ctx context.Context, query string) ([]string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (c:Concept)
		WHERE toLower(c.name) CONTAINS $query
		RETURN c.name AS name
		ORDER BY name
		LIMIT $limit
	`, map[string]interface{}{
		"query": normalizeQuery(query),
		"limit": maxSearchHits,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search concepts: %w", err)
	}

	names := []string{}
	for result.Next(ctx) {
		names = append(names, getString(result.Record(), "name"))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}
	return names, nil
}

func (r *Repository) Get(ctx context.Context, name string) (model.Concept, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (c:Concept {name: $name})
		OPTIONAL MATCH (c)-[r:RELATES_TO]-(o:Concept)
		WITH c, o, r ORDER BY r.weight DESC
		RETURN c.name AS name,
		       coalesce(c.description, '') AS description,
		       coalesce(c.category, '') AS category,
		       coalesce(c.difficulty, '') AS difficulty,
		       [x IN collect(o.name) WHERE x IS NOT NULL] AS related
	`, map[string]interface{}{"name": name})
	if err != nil {
		return model.Concept{}, fmt.Errorf("failed to get concept: %w", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return model.Concept{}, fmt.Errorf("failed to get concept: %w", err)
		}
		return model.Concept{}, fmt.Errorf("%w: %s", ErrConceptNotFound, name)
	}

	record := result.Record()
	return model.Concept{
		Name:            getString(record, "name"),
		Description:     getString(record, "description"),
		Category:        getString(record, "category"),
		Difficulty:      getString(record, "difficulty"),
		RelatedConcepts: getStrings(record, "related"),
	}, nil
}

// ConceptGraph returns the concept's neighbourhood up to the configured depth,
// limited to maxRelated paths
func (r *Repository) ConceptGraph(ctx context.Context, name string) (model.KnowledgeGraph, error) {
	root, err := r.Get(ctx, name)
	if err != nil {
		return model.KnowledgeGraph{}, err
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	// variable-length bounds cannot be parameters; depth is an int from config
	query := fmt.Sprintf(`
		MATCH p = (c:Concept {name: $name})-[:RELATES_TO*1..%d]-(related:Concept)
		WHERE related <> c
		RETURN [n IN nodes(p) | {name: n.name, description: coalesce(n.description, '')}] AS nodes,
		       [x IN relationships(p) | {from: startNode(x).name, to: endNode(x).name, type: type(x), weight: coalesce(x.weight, 1.0)}] AS rels
		LIMIT $limit
	`, r.depth)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"name":  name,
		"limit": r.maxRelated,
	})
	if err != nil {
		return model.KnowledgeGraph{}, fmt.Errorf("failed to get concept graph: %w", err)
	}

	builder := newGraphBuilder(name, root.Description)
	for result.Next(ctx) {
		record := result.Record()
		builder.addPath(getMaps(record, "nodes"), getMaps(record, "rels"))
	}
	if err := result.Err(); err != nil {
		return model.KnowledgeGraph{}, fmt.Errorf("failed to read concept graph: %w", err)
	}
	return builder.graph, nil
}

// graphBuilder merges path rows into one graph. Nodes and undirected edges
// appear once; a node's group is its hop distance on the first path seen.
type graphBuilder struct {
	graph     model.KnowledgeGraph
	seenNodes map[string]bool
	seenEdges map[edgeKey]bool
}

func newGraphBuilder(root, description string) *graphBuilder {
	return &graphBuilder{
		graph: model.KnowledgeGraph{
			Nodes: []model.GraphNode{{ID: root, Label: root, Type: nodeMain, Description: description, Group: 0}},
			Edges: []model.GraphEdge{},
		},
		seenNodes: map[string]bool{root: true},
		seenEdges: map[edgeKey]bool{},
	}
}

func (b *graphBuilder) addPath(nodes, rels []map[string]any) {
	for hop, n := range nodes {
		id, _ := n["name"].(string)
		if id == "" || b.seenNodes[id] {
			continue
		}
		b.seenNodes[id] = true
		desc, _ := n["description"].(string)
		b.graph.Nodes = append(b.graph.Nodes, model.GraphNode{ID: id, Label: id, Type: nodeRelated, Description: desc, Group: hop})
	}
	for _, rel := range rels {
		from, _ := rel["from"].(string)
		to, _ := rel["to"].(string)
		if from == "" || to == "" {
			continue
		}
		k := keyOf(from, to)
		if b.seenEdges[k] {
			continue
		}
		b.seenEdges[k] = true
		relType, _ := rel["type"].(string)
		b.graph.Edges = append(b.graph.Edges, model.GraphEdge{From: from, To: to, Type: relType, Weight: toFloat(rel["weight"])})
	}
}

func (r *Repository) Related(ctx context.Context, name string, limit int) ([]model.RelatedConcept, error) {
	if limit <= 0 {
		limit = r.maxRelated
	}
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (c:Concept {name: $name})-[r:RELATES_TO]-(related:Concept)
		RETURN related.name AS name, coalesce(related.description, '') AS description, coalesce(r.weight, 1.0) AS weight
		ORDER BY weight DESC
		LIMIT $limit
	`, map[string]interface{}{
		"name":  name,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get related concepts: %w", err)
	}

	related := []model.RelatedConcept{}
	for result.Next(ctx) {
		record := result.Record()
		weight, _ := record.Get("weight")
		related = append(related, model.RelatedConcept{
			Name:        getString(record, "name"),
			Description: getString(record, "description"),
			Weight:      toFloat(weight),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read related concepts: %w", err)
	}
	return related, nil
}

// AddConcept merges the concept node and its RELATES_TO edges in one transaction
func (r *Repository) AddConcept(ctx context.Context, concept model.Concept) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (c:Concept {name: $name})
			SET c.description = CASE WHEN $description <> '' THEN $description ELSE coalesce(c.description, '') END,
			    c.category = CASE WHEN $category <> '' THEN $category ELSE c.category END,
			    c.difficulty = CASE WHEN $difficulty <> '' THEN $difficulty ELSE c.difficulty END
		`, map[string]interface{}{
			"name":        concept.Name,
			"description": concept.Description,
			"category":    concept.Category,
			"difficulty":  concept.Difficulty,
		}); err != nil {
			return nil, err
		}

		for _, related := range concept.RelatedConcepts {
			if related == "" || related == concept.Name {
				continue
			}
			if _, err := tx.Run(ctx, `
				MATCH (c:Concept {name: $name})
				MERGE (r:Concept {name: $related})
				MERGE (c)-[rel:RELATES_TO]->(r)
				SET rel.weight = $weight
			`, map[string]interface{}{
				"name":    concept.Name,
				"related": related,
				"weight":  DefaultWeight,
			}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to add concept %s: %w", concept.Name, err)
	}
	return nil
}

func (r *Repository) UpdateRelationship(ctx context.Context, from, to string, weight float64) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (c1:Concept {name: $from})-[r:RELATES_TO]-(c2:Concept {name: $to})
		SET r.weight = $weight
		RETURN count(r) AS updated
	`, map[string]interface{}{
		"from":   from,
		"to":     to,
		"weight": weight,
	})
	if err != nil {
		return fmt.Errorf("failed to update relationship: %w", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return fmt.Errorf("failed to update relationship: %w", err)
	}
	if n, _ := record.Get("updated"); n == int64(0) {
		return fmt.Errorf("%w: no relationship between %s and %s", ErrConceptNotFound, from, to)
	}
	return nil
}

func getString(record *neo4j.Record, key string) string {
	if v, ok := record.Get(key); ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getStrings(record *neo4j.Record, key string) []string {
	v, _ := record.Get(key)
	return stringsOf(v)
}

func getMaps(record *neo4j.Record, key string) []map[string]any {
	v, _ := record.Get(key)
	return mapsOf(v)
}

// stringsOf keeps the string items of a Cypher list
func stringsOf(v any) []string {
	out := []string{}
	list, _ := v.([]any)
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// mapsOf keeps the map items of a Cypher list
func mapsOf(v any) []map[string]any {
	var out []map[string]any
	list, _ := v.([]any)
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// toFloat reads a Cypher number. Weights written as integers come back as int64.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return DefaultWeight
	}
}
