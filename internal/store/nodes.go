package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rootedlabs/trellis/internal/models"
)

// nodeColumns is the canonical column list for all SELECT queries.
// Order must match scanOne/scanMany.
const nodeColumns = `id, user_id, domain, priority, node_type, content,
	confidence, reinforcement_count, root_alignment, vector_synced,
	created_at, last_used_at`

// NodeStore handles MemoryNode CRUD operations on SQLite.
type NodeStore struct {
	db *DB
}

func NewNodeStore(db *DB) *NodeStore {
	return &NodeStore{db: db}
}

// Insert stores a new node. The caller must set all fields including ID.
func (s *NodeStore) Insert(n *models.MemoryNode) error {
	_, err := s.db.Exec(`
		INSERT INTO memory_nodes (
			id, user_id, domain, priority, node_type, content,
			confidence, reinforcement_count, root_alignment, vector_synced,
			created_at, last_used_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.ID, n.UserID, n.Domain, string(n.Priority), string(n.NodeType), n.Content,
		n.Confidence, n.ReinforcementCount, string(n.RootAlignment), boolToInt(n.VectorSynced),
		n.CreatedAt, n.LastUsedAt,
	)
	if err != nil {
		return fmt.Errorf("insert node: %w", err)
	}
	return nil
}

// GetByID fetches a single node by ID, or nil if not found.
func (s *NodeStore) GetByID(id string) (*models.MemoryNode, error) {
	n, err := s.scanOne(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM memory_nodes WHERE id = ?`, nodeColumns), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

// Reinforce applies a reinforcement update: new count, confidence, alignment,
// possibly promoted priority, and a refreshed last_used_at.
func (s *NodeStore) Reinforce(id string, count int, confidence float64,
	alignment models.Alignment, priority models.Priority, lastUsedAt int64) error {

	res, err := s.db.Exec(`
		UPDATE memory_nodes
		SET reinforcement_count = ?, confidence = ?, root_alignment = ?, priority = ?, last_used_at = ?
		WHERE id = ?
	`, count, confidence, string(alignment), string(priority), lastUsedAt, id)
	if err != nil {
		return fmt.Errorf("reinforce node: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("node not found: %s", id)
	}
	return nil
}

// MarkVectorSynced records whether the node's vector-index twin is in place.
func (s *NodeStore) MarkVectorSynced(id string, synced bool) error {
	_, err := s.db.Exec(`UPDATE memory_nodes SET vector_synced = ? WHERE id = ?`,
		boolToInt(synced), id)
	if err != nil {
		return fmt.Errorf("mark vector synced: %w", err)
	}
	return nil
}

// ContentByPriority returns the content of every node at a tier for a user,
// in insertion order. Used for the unconditional STEM fetch.
func (s *NodeStore) ContentByPriority(userID string, priority models.Priority) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT content FROM memory_nodes
		WHERE user_id = ? AND priority = ?
		ORDER BY rowid
	`, userID, string(priority))
	if err != nil {
		return nil, fmt.Errorf("content by priority: %w", err)
	}
	defer rows.Close()
	return scanContents(rows)
}

// ContentByPriorityDomains returns node content at a tier restricted to a
// domain set. An empty domain set yields an empty result.
func (s *NodeStore) ContentByPriorityDomains(userID string, priority models.Priority, domains []string) ([]string, error) {
	if len(domains) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(domains))
	args := []any{userID, string(priority)}
	for i, d := range domains {
		placeholders[i] = "?"
		args = append(args, d)
	}
	query := fmt.Sprintf(`
		SELECT content FROM memory_nodes
		WHERE user_id = ? AND priority = ? AND domain IN (%s)
		ORDER BY rowid
	`, strings.Join(placeholders, ","))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("content by domains: %w", err)
	}
	defer rows.Close()
	return scanContents(rows)
}

// ExpiredLeafIDs returns the IDs of LEAF nodes created before the cutoff.
func (s *NodeStore) ExpiredLeafIDs(userID string, cutoff int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT id FROM memory_nodes
		WHERE user_id = ? AND priority = ? AND created_at < ?
	`, userID, string(models.PriorityLeaf), cutoff)
	if err != nil {
		return nil, fmt.Errorf("expired leaf ids: %w", err)
	}
	defer rows.Close()
	return scanContents(rows)
}

// StaleBranchIDs returns the IDs of BRANCH nodes last used before the cutoff.
func (s *NodeStore) StaleBranchIDs(userID string, cutoff int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT id FROM memory_nodes
		WHERE user_id = ? AND priority = ? AND last_used_at < ?
	`, userID, string(models.PriorityBranch), cutoff)
	if err != nil {
		return nil, fmt.Errorf("stale branch ids: %w", err)
	}
	defer rows.Close()
	return scanContents(rows)
}

// DeleteByIDs removes nodes in bulk. Returns the number deleted.
func (s *NodeStore) DeleteByIDs(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	res, err := s.db.Exec(
		fmt.Sprintf(`DELETE FROM memory_nodes WHERE id IN (%s)`, strings.Join(placeholders, ",")),
		args...)
	if err != nil {
		return 0, fmt.Errorf("delete nodes: %w", err)
	}
	return res.RowsAffected()
}

// DemoteToLeaf lowers the given nodes to the LEAF tier. Returns the number
// demoted.
func (s *NodeStore) DemoteToLeaf(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := []any{string(models.PriorityLeaf)}
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	res, err := s.db.Exec(
		fmt.Sprintf(`UPDATE memory_nodes SET priority = ? WHERE id IN (%s)`, strings.Join(placeholders, ",")),
		args...)
	if err != nil {
		return 0, fmt.Errorf("demote nodes: %w", err)
	}
	return res.RowsAffected()
}

// CountByUser returns per-tier node counts for a user.
func (s *NodeStore) CountByUser(userID string) (map[models.Priority]int, error) {
	rows, err := s.db.Query(`
		SELECT priority, COUNT(*) FROM memory_nodes WHERE user_id = ? GROUP BY priority
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("count by user: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Priority]int)
	for rows.Next() {
		var p string
		var c int
		if err := rows.Scan(&p, &c); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[models.Priority(p)] = c
	}
	return counts, rows.Err()
}

func (s *NodeStore) scanOne(row *sql.Row) (*models.MemoryNode, error) {
	var n models.MemoryNode
	var priority, nodeType, alignment string
	var synced int

	err := row.Scan(&n.ID, &n.UserID, &n.Domain, &priority, &nodeType, &n.Content,
		&n.Confidence, &n.ReinforcementCount, &alignment, &synced,
		&n.CreatedAt, &n.LastUsedAt)
	if err != nil {
		return nil, err
	}
	n.Priority = models.Priority(priority)
	n.NodeType = models.Category(nodeType)
	n.RootAlignment = models.Alignment(alignment)
	n.VectorSynced = synced != 0
	return &n, nil
}

func scanContents(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
