package knowledge

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cnclabs/kgfeed/pkg/sampler"
)

// Monitor is the number of lines between progress log entries
const Monitor = 100000

// KnowledgeGraph holds attributed triples with entities and relations
// mapped to dense ids
type KnowledgeGraph struct {
	// Entity and relation mappings
	EntityHash   map[string]int64
	RelationHash map[string]int64
	EntityKeys   []string
	RelationKeys []string

	Triples []sampler.Triple

	// Statistics
	NumEntities  int64
	NumRelations int64
	NumTriples   int64

	logger logrus.FieldLogger
}

// NewKnowledgeGraph creates an empty knowledge graph.
// A nil logger falls back to the logrus standard logger.
func NewKnowledgeGraph(logger logrus.FieldLogger) *KnowledgeGraph {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &KnowledgeGraph{
		EntityHash:   make(map[string]int64),
		RelationHash: make(map[string]int64),
		EntityKeys:   make([]string, 0),
		RelationKeys: make([]string, 0),
		Triples:      make([]sampler.Triple, 0),
		logger:       logger,
	}
}

// LoadTriples loads attributed triples from a file
// Format: head relation tail [attr ...]
// Example: "Barack_Obama born_in Hawaii 0.3 1961"
func (kg *KnowledgeGraph) LoadTriples(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	kg.logger.WithField("file", filename).Info("loading knowledge graph")
	return kg.Read(file)
}

type line struct {
	head, relation, tail string
	attr                 []float64
}

// Read parses triples from r, one per line. Lines with fewer than three
// fields are skipped; an attribute that is not a number is an error.
//
// New entities that appear as a head get their ids before entities that
// only appear as a tail, so the heads read here occupy one contiguous id
// range. Negative sampling draws entities from the head range.
func (kg *KnowledgeGraph) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	lines := make([]line, 0)

	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			continue
		}

		attr := make([]float64, 0, len(parts)-3)
		for _, field := range parts[3:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("line %d: attribute %q: %w", lineNo, field, err)
			}
			attr = append(attr, v)
		}

		lines = append(lines, line{head: parts[0], relation: parts[1], tail: parts[2], attr: attr})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading triples at line %d: %w", lineNo, err)
	}

	for _, l := range lines {
		kg.getOrCreateEntity(l.head)
	}
	for _, l := range lines {
		kg.AddTriple(l.head, l.relation, l.tail, l.attr)

		if kg.NumTriples%Monitor == 0 {
			kg.logger.WithField("triples", kg.NumTriples).Debug("loading")
		}
	}

	kg.logger.WithFields(logrus.Fields{
		"entities":  kg.NumEntities,
		"relations": kg.NumRelations,
		"triples":   kg.NumTriples,
	}).Info("knowledge graph loaded")

	return nil
}

// AddTriple adds one named triple, creating ids for unseen names
func (kg *KnowledgeGraph) AddTriple(head, relation, tail string, attr []float64) {
	kg.Triples = append(kg.Triples, sampler.Triple{
		Head:     kg.getOrCreateEntity(head),
		Relation: kg.getOrCreateRelation(relation),
		Tail:     kg.getOrCreateEntity(tail),
		Attr:     attr,
	})
	kg.NumTriples = int64(len(kg.Triples))
	kg.NumEntities = int64(len(kg.EntityKeys))
	kg.NumRelations = int64(len(kg.RelationKeys))
}

// getOrCreateEntity gets or creates an entity ID
func (kg *KnowledgeGraph) getOrCreateEntity(name string) int64 {
	if id, exists := kg.EntityHash[name]; exists {
		return id
	}

	id := int64(len(kg.EntityKeys))
	kg.EntityHash[name] = id
	kg.EntityKeys = append(kg.EntityKeys, name)
	return id
}

// getOrCreateRelation gets or creates a relation ID
func (kg *KnowledgeGraph) getOrCreateRelation(name string) int64 {
	if id, exists := kg.RelationHash[name]; exists {
		return id
	}

	id := int64(len(kg.RelationKeys))
	kg.RelationHash[name] = id
	kg.RelationKeys = append(kg.RelationKeys, name)
	return id
}

// GetEntityName returns the name of an entity by ID
func (kg *KnowledgeGraph) GetEntityName(id int64) string {
	if id < 0 || id >= int64(len(kg.EntityKeys)) {
		return ""
	}
	return kg.EntityKeys[id]
}

// GetRelationName returns the name of a relation by ID
func (kg *KnowledgeGraph) GetRelationName(id int64) string {
	if id < 0 || id >= int64(len(kg.RelationKeys)) {
		return ""
	}
	return kg.RelationKeys[id]
}

// GetTriple returns the triple at the given index
func (kg *KnowledgeGraph) GetTriple(idx int64) sampler.Triple {
	if idx < 0 || idx >= int64(len(kg.Triples)) {
		return sampler.Triple{}
	}
	return kg.Triples[idx]
}

// Dataset builds a sampler dataset over the loaded triples with the graph's
// entity and relation counts filled in
func (kg *KnowledgeGraph) Dataset(cfg sampler.Config) (*sampler.Dataset, error) {
	cfg.NumEntities = kg.NumEntities
	cfg.NumRelations = kg.NumRelations
	if cfg.Logger == nil {
		cfg.Logger = kg.logger
	}
	return sampler.New(kg.Triples, cfg)
}
