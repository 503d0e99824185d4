package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"feynman_tutor/src/model"
)

type edgeKey struct{ a, b string }

func keyOf(x, y string) edgeKey {
	if x > y {
		x, y = y, x
	}
	return edgeKey{a: x, b: y}
}

type staticEdge struct {
	from, to string
	weight   float64
}

// StaticCatalog keeps the catalog in memory. Relationships are undirected
// for lookups but remember the direction they were added in.
type StaticCatalog struct {
	mu         sync.RWMutex
	order      []string
	concepts   map[string]model.Concept
	edges      map[edgeKey]*staticEdge
	adjacent   map[string][]string
	maxRelated int
	depth      int
}

func NewStaticCatalog(concepts []model.Concept, maxRelated, depth int) *StaticCatalog {
	if maxRelated <= 0 {
		maxRelated = 5
	}
	if depth <= 0 {
		depth = 2
	}
	s := &StaticCatalog{
		concepts:   make(map[string]model.Concept),
		edges:      make(map[edgeKey]*staticEdge),
		adjacent:   make(map[string][]string),
		maxRelated: maxRelated,
		depth:      depth,
	}
	for _, c := range concepts {
		s.add(c)
	}
	return s
}

func (s *StaticCatalog) Search(_ context.Context, query string) ([]string, error) {
	q := normalizeQuery(query)
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []string{}
	for _, name := range s.order {
		if strings.Contains(strings.ToLower(name), q) {
			results = append(results, name)
			if len(results) == maxSearchHits {
				break
			}
		}
	}
	return results, nil
}

func (s *StaticCatalog) Get(_ context.Context, name string) (model.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.concepts[name]
	if !ok {
		return model.Concept{}, fmt.Errorf("%w: %s", ErrConceptNotFound, name)
	}
	c.RelatedConcepts = s.neighbours(name)
	return c, nil
}

// ConceptGraph walks relationships breadth-first up to the configured depth,
// keeping at most maxRelated concepts besides the root.
func (s *StaticCatalog) ConceptGraph(_ context.Context, name string) (model.KnowledgeGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root, ok := s.concepts[name]
	if !ok {
		return model.KnowledgeGraph{}, fmt.Errorf("%w: %s", ErrConceptNotFound, name)
	}

	graph := model.KnowledgeGraph{
		Nodes: []model.GraphNode{{ID: name, Label: name, Type: nodeMain, Description: root.Description, Group: 0}},
		Edges: []model.GraphEdge{},
	}
	visited := map[string]bool{name: true}
	added := map[edgeKey]bool{}
	frontier := []string{name}

	for hop := 1; hop <= s.depth && len(frontier) > 0; hop++ {
		var next []string
		for _, cur := range frontier {
			for _, nb := range s.neighbours(cur) {
				if !visited[nb] {
					if len(graph.Nodes)-1 >= s.maxRelated {
						continue
					}
					visited[nb] = true
					next = append(next, nb)
					graph.Nodes = append(graph.Nodes, model.GraphNode{
						ID:          nb,
						Label:       nb,
						Type:        nodeRelated,
						Description: s.concepts[nb].Description,
						Group:       hop,
					})
				}
				k := keyOf(cur, nb)
				if added[k] {
					continue
				}
				added[k] = true
				e := s.edges[k]
				graph.Edges = append(graph.Edges, model.GraphEdge{From: e.from, To: e.to, Type: RelatesTo, Weight: e.weight})
			}
		}
		frontier = next
	}
	return graph, nil
}

func (s *StaticCatalog) Related(_ context.Context, name string, limit int) ([]model.RelatedConcept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.concepts[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrConceptNotFound, name)
	}

	related := []model.RelatedConcept{}
	for _, nb := range s.neighbours(name) {
		if limit > 0 && len(related) == limit {
			break
		}
		related = append(related, model.RelatedConcept{
			Name:        nb,
			Description: s.concepts[nb].Description,
			Weight:      s.edges[keyOf(name, nb)].weight,
		})
	}
	return related, nil
}

// AddConcept merges the concept's fields and links it to each related
// concept with the default weight, creating bare related concepts as needed.
func (s *StaticCatalog) AddConcept(_ context.Context, concept model.Concept) error {
	if strings.TrimSpace(concept.Name) == "" {
		return fmt.Errorf("concept name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(concept)
	return nil
}

func (s *StaticCatalog) UpdateRelationship(_ context.Context, from, to string, weight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.edges[keyOf(from, to)]
	if !ok {
		return fmt.Errorf("%w: no relationship between %s and %s", ErrConceptNotFound, from, to)
	}
	e.weight = weight
	return nil
}

func (s *StaticCatalog) add(c model.Concept) {
	existing, ok := s.concepts[c.Name]
	if !ok {
		s.order = append(s.order, c.Name)
	}
	if c.Description != "" || !ok {
		existing.Description = c.Description
	}
	if c.Category != "" {
		existing.Category = c.Category
	}
	if c.Difficulty != "" {
		existing.Difficulty = c.Difficulty
	}
	existing.Name = c.Name
	existing.RelatedConcepts = nil
	s.concepts[c.Name] = existing

	for _, rel := range c.RelatedConcepts {
		rel = strings.TrimSpace(rel)
		if rel == "" || rel == c.Name {
			continue
		}
		if _, ok := s.concepts[rel]; !ok {
			s.order = append(s.order, rel)
			s.concepts[rel] = model.Concept{Name: rel}
		}
		k := keyOf(c.Name, rel)
		if e, ok := s.edges[k]; ok {
			e.weight = DefaultWeight
			continue
		}
		s.edges[k] = &staticEdge{from: c.Name, to: rel, weight: DefaultWeight}
		s.adjacent[c.Name] = append(s.adjacent[c.Name], rel)
		s.adjacent[rel] = append(s.adjacent[rel], c.Name)
	}
}

// neighbours returns adjacent concepts by weight, heaviest first, ties in insertion order
func (s *StaticCatalog) neighbours(name string) []string {
	adj := append([]string(nil), s.adjacent[name]...)
	sort.SliceStable(adj, func(i, j int) bool {
		return s.edges[keyOf(name, adj[i])].weight > s.edges[keyOf(name, adj[j])].weight
	})
	if adj == nil {
		adj = []string{}
	}
	return adj
}
