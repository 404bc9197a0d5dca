package neo4jgraph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Graph links quiz topics to the concepts their questions touched.
// Edge weights count how often a concept appeared for a topic.
type Graph struct {
	driver   neo4j.DriverWithContext
	database string
}

func New(uri, user, password, database string) (*Graph, error) {
	auth := neo4j.BasicAuth(user, password, "")
	driver, err := neo4j.NewDriverWithContext(uri, auth, func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = 25
		cfg.SocketConnectTimeout = 10 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("init neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	g := &Graph{driver: driver, database: database}
	g.ensureSchema(ctx)
	return g, nil
}

func (g *Graph) Close(ctx context.Context) error {
	if g == nil || g.driver == nil {
		return nil
	}
	return g.driver.Close(ctx)
}

// ensureSchema is best-effort; constraint DDL may fail for restricted users.
func (g *Graph) ensureSchema(ctx context.Context) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.database,
	})
	defer session.Close(ctx)

	statements := []string{
		`CREATE CONSTRAINT topic_name_unique IF NOT EXISTS FOR (t:Topic) REQUIRE t.name IS UNIQUE`,
		`CREATE CONSTRAINT concept_name_unique IF NOT EXISTS FOR (c:Concept) REQUIRE c.name IS UNIQUE`,
	}
	for _, stmt := range statements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			slog.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

func (g *Graph) UpsertConcepts(ctx context.Context, topic string, concepts []string) error {
	if topic == "" || len(concepts) == 0 {
		return nil
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (t:Topic {name: $topic})
WITH t
UNWIND $concepts AS name
MERGE (c:Concept {name: name})
MERGE (t)-[r:COVERS]->(c)
ON CREATE SET r.weight = 1
ON MATCH SET r.weight = r.weight + 1
`, map[string]any{"topic": topic, "concepts": concepts})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("upsert concepts for topic %s: %w", topic, err)
	}
	return nil
}

func (g *Graph) RelatedConcepts(ctx context.Context, topic string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: g.database,
	})
	defer session.Close(ctx)

	names, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (t:Topic {name: $topic})-[r:COVERS]->(c:Concept)
RETURN c.name AS name
ORDER BY r.weight DESC, name
LIMIT $limit
`, map[string]any{"topic": topic, "limit": limit})
		if err != nil {
			return nil, err
		}

		out := make([]string, 0, limit)
		for res.Next(ctx) {
			value, ok := res.Record().Get("name")
			if !ok {
				continue
			}
			if name, ok := value.(string); ok {
				out = append(out, name)
			}
		}
		return out, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("related concepts for topic %s: %w", topic, err)
	}
	return names.([]string), nil
}
