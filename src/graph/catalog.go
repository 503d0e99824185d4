// Package graph serves the concept catalog and its knowledge graph,
// backed by Neo4j or by a static in-process catalog.
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"feynman_tutor/src/model"
)

var ErrConceptNotFound = errors.New("graph: concept not found")

const (
	RelatesTo     = "RELATES_TO"
	DefaultWeight = 1.0
	maxSearchHits = 50

	nodeMain    = "main"
	nodeRelated = "related"
)

// Catalog is the concept store the services read from
type Catalog interface {
	Search(ctx context.Context, query string) ([]string, error)
	Get(ctx context.Context, name string) (model.Concept, error)
	ConceptGraph(ctx context.Context, name string) (model.KnowledgeGraph, error)
	Related(ctx context.Context, name string, limit int) ([]model.RelatedConcept, error)
	AddConcept(ctx context.Context, concept model.Concept) error
	UpdateRelationship(ctx context.Context, from, to string, weight float64) error
}

// Seed adds every concept to the catalog. AddConcept merges, so reseeding is safe.
func Seed(ctx context.Context, catalog Catalog, concepts []model.Concept) error {
	for _, c := range concepts {
		if err := catalog.AddConcept(ctx, c); err != nil {
			return fmt.Errorf("failed to seed concept %s: %w", c.Name, err)
		}
	}
	return nil
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
