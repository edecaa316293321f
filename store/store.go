// Package store persists canvases, nodes and edges in SQLite and is the
// single source of truth the sync gateway broadcasts from.
package store

import (
	"context"
	"database/sql"
	"math"

	"github.com/google/uuid"

	"github.com/polemica/polemica/canvas"
	"github.com/polemica/polemica/errors"
)

// GraphStore reads and writes the canvas graph.
type GraphStore struct {
	db *sql.DB
}

// NewGraphStore creates a store over an open database connection.
func NewGraphStore(db *sql.DB) *GraphStore {
	return &GraphStore{db: db}
}

// ListCanvases returns all canvases, newest first.
func (s *GraphStore) ListCanvases(ctx context.Context) ([]canvas.Canvas, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title FROM canvases ORDER BY created_at DESC")
	if err != nil {
		return nil, errors.Wrap(err, "query canvases")
	}
	defer rows.Close()

	var out []canvas.Canvas
	for rows.Next() {
		var c canvas.Canvas
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, errors.Wrap(err, "scan canvas")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCanvas creates a new canvas with a generated id.
func (s *GraphStore) CreateCanvas(ctx context.Context, title string) (canvas.Canvas, error) {
	c := canvas.Canvas{ID: uuid.NewString(), Title: title}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO canvases (id, title) VALUES (?, ?)", c.ID, c.Title)
	if err != nil {
		return canvas.Canvas{}, errors.Wrap(err, "insert canvas")
	}
	return c, nil
}

// GetCanvas returns a single canvas or ErrNotFound.
func (s *GraphStore) GetCanvas(ctx context.Context, id string) (canvas.Canvas, error) {
	var c canvas.Canvas
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title FROM canvases WHERE id = ?", id).Scan(&c.ID, &c.Title)
	if err == sql.ErrNoRows {
		return canvas.Canvas{}, errors.NewNotFoundError("canvas %s", id)
	}
	if err != nil {
		return canvas.Canvas{}, errors.Wrap(err, "query canvas")
	}
	return c, nil
}

// ListNodes returns every node on a canvas. Nodes stored with NULL
// coordinates come back with NaN positions so callers can filter them the
// same way as any other non-finite node.
func (s *GraphStore) ListNodes(ctx context.Context, canvasID string) ([]canvas.Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, kind, url, position_x, position_y
		 FROM nodes WHERE canvas_id = ? ORDER BY created_at`, canvasID)
	if err != nil {
		return nil, errors.Wrap(err, "query nodes")
	}
	defer rows.Close()

	var out []canvas.Node
	for rows.Next() {
		var n canvas.Node
		var x, y sql.NullFloat64
		if err := rows.Scan(&n.ID, &n.Data.Label, &n.Data.Kind, &n.Data.URL, &x, &y); err != nil {
			return nil, errors.Wrap(err, "scan node")
		}
		n.Position = canvas.Position{X: nullToNaN(x), Y: nullToNaN(y)}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CreateNode inserts a node. Re-inserting an existing id is a no-op so
// creation facts can be replayed safely.
func (s *GraphStore) CreateNode(ctx context.Context, canvasID string, n canvas.Node) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes (id, canvas_id, label, kind, url, position_x, position_y)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		n.ID, canvasID, n.Data.Label, n.Data.Kind, n.Data.URL,
		finiteToNull(n.Position.X), finiteToNull(n.Position.Y))
	return errors.Wrap(err, "insert node")
}

// UpdatePosition moves a node. Last write wins; concurrent moves resolve
// to whichever update lands last. Returns ErrNotFound when the node does
// not exist on the canvas.
func (s *GraphStore) UpdatePosition(ctx context.Context, canvasID, nodeID string, pos canvas.Position) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET position_x = ?, position_y = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND canvas_id = ?`,
		finiteToNull(pos.X), finiteToNull(pos.Y), nodeID, canvasID)
	if err != nil {
		return errors.Wrap(err, "update position")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.NewNotFoundError("node %s", nodeID)
	}
	return nil
}

// DeleteNode removes a node and every edge touching it in one
// transaction. Returns ErrNotFound when the node does not exist. The
// schema does not enforce edge endpoints, so this cascade is the only
// place edges are removed.
func (s *GraphStore) DeleteNode(ctx context.Context, canvasID, nodeID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM nodes WHERE id = ? AND canvas_id = ?", nodeID, canvasID)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "delete node")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		tx.Rollback()
		return errors.NewNotFoundError("node %s", nodeID)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM edges WHERE canvas_id = ? AND (source_id = ? OR target_id = ?)",
		canvasID, nodeID, nodeID); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "delete edges")
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

// ListEdges returns every edge on a canvas.
func (s *GraphStore) ListEdges(ctx context.Context, canvasID string) ([]canvas.Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_id, target_id, animated
		 FROM edges WHERE canvas_id = ? ORDER BY created_at`, canvasID)
	if err != nil {
		return nil, errors.Wrap(err, "query edges")
	}
	defer rows.Close()

	var out []canvas.Edge
	for rows.Next() {
		var e canvas.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.Animated); err != nil {
			return nil, errors.Wrap(err, "scan edge")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateEdge inserts an edge. The canonical edge id makes duplicate
// inserts of the same source/target pair a no-op.
func (s *GraphStore) CreateEdge(ctx context.Context, canvasID string, e canvas.Edge) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO edges (id, canvas_id, source_id, target_id, animated)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		e.ID, canvasID, e.Source, e.Target, e.Animated)
	return errors.Wrap(err, "insert edge")
}

// UpdatePositions applies a batch of moves in one transaction, used when
// an auto-layout rewrites every position on a canvas at once.
func (s *GraphStore) UpdatePositions(ctx context.Context, canvasID string, nodes []canvas.Node) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	stmt, err := tx.PrepareContext(ctx,
		`UPDATE nodes SET position_x = ?, position_y = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND canvas_id = ?`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare update")
	}
	defer stmt.Close()

	for _, n := range nodes {
		if _, err := stmt.ExecContext(ctx,
			finiteToNull(n.Position.X), finiteToNull(n.Position.Y), n.ID, canvasID); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "update position for %s", n.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func finiteToNull(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
