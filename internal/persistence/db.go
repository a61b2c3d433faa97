// Package persistence provides SQLite-based storage for world maps and traversals.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexroute/internal/travel"
	"github.com/talgya/hexroute/internal/world"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hexes (
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		terrain TEXT NOT NULL,
		features_json TEXT NOT NULL,
		elevation REAL NOT NULL,
		rainfall REAL NOT NULL,
		temperature REAL NOT NULL,
		PRIMARY KEY (q, r)
	);

	CREATE TABLE IF NOT EXISTS traversals (
		id TEXT PRIMARY KEY,
		origin_q INTEGER NOT NULL,
		origin_r INTEGER NOT NULL,
		dest_q INTEGER NOT NULL,
		dest_r INTEGER NOT NULL,
		route_json TEXT NOT NULL,
		arrivals_json TEXT NOT NULL,
		terrains_json TEXT NOT NULL,
		speed REAL NOT NULL,
		unit_ns INTEGER NOT NULL,
		current_index INTEGER NOT NULL,
		elapsed REAL NOT NULL,
		total REAL NOT NULL,
		started_at TEXT NOT NULL,
		eta TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_traversals_started ON traversals(started_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type hexRow struct {
	Q            int     `db:"q"`
	R            int     `db:"r"`
	Terrain      string  `db:"terrain"`
	FeaturesJSON string  `db:"features_json"`
	Elevation    float64 `db:"elevation"`
	Rainfall     float64 `db:"rainfall"`
	Temperature  float64 `db:"temperature"`
}

// SaveMap writes all hexes of the map (full replace) along with its shape.
func (db *DB) SaveMap(m *world.Map) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM hexes"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO hexes
		(q, r, terrain, features_json, elevation, rainfall, temperature)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for coord, hex := range m.Hexes {
		features := hex.Features
		if features == nil {
			features = []world.Feature{}
		}
		featuresJSON, _ := json.Marshal(features)
		_, err := stmt.Exec(
			coord.Q, coord.R, hex.Terrain.String(), string(featuresJSON),
			hex.Elevation, hex.Rainfall, hex.Temperature,
		)
		if err != nil {
			return fmt.Errorf("insert hex %s: %w", coord.Key(), err)
		}
	}

	for key, value := range map[string]int{"map_radius": m.Radius, "map_width": m.Width} {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
			key, strconv.Itoa(value),
		); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("world map saved", "hexes", m.HexCount())
	return nil
}

// HasMap reports whether a map has been saved.
func (db *DB) HasMap() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM hexes"); err != nil {
		return false
	}
	return n > 0
}

// LoadMap reads the saved map.
func (db *DB) LoadMap() (*world.Map, error) {
	var rows []hexRow
	if err := db.conn.Select(&rows, "SELECT q, r, terrain, features_json, elevation, rainfall, temperature FROM hexes"); err != nil {
		return nil, fmt.Errorf("select hexes: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("load map: %w", ErrNotFound)
	}

	radius, err := db.metaIntOrZero("map_radius")
	if err != nil {
		return nil, err
	}
	width, err := db.metaIntOrZero("map_width")
	if err != nil {
		return nil, err
	}

	m := world.NewMap(radius)
	m.Width = width
	for _, row := range rows {
		terrain, err := world.ParseTerrain(row.Terrain)
		if err != nil {
			return nil, fmt.Errorf("hex %d,%d: %w", row.Q, row.R, err)
		}
		var features []world.Feature
		if err := json.Unmarshal([]byte(row.FeaturesJSON), &features); err != nil {
			return nil, fmt.Errorf("hex %d,%d features: %w", row.Q, row.R, err)
		}
		if len(features) == 0 {
			features = nil
		}
		m.Set(&world.Hex{
			Coord:       world.HexCoord{Q: row.Q, R: row.R},
			Terrain:     terrain,
			Features:    features,
			Elevation:   row.Elevation,
			Rainfall:    row.Rainfall,
			Temperature: row.Temperature,
		})
	}
	return m, nil
}

type traversalRow struct {
	ID           string  `db:"id"`
	OriginQ      int     `db:"origin_q"`
	OriginR      int     `db:"origin_r"`
	DestQ        int     `db:"dest_q"`
	DestR        int     `db:"dest_r"`
	RouteJSON    string  `db:"route_json"`
	ArrivalsJSON string  `db:"arrivals_json"`
	TerrainsJSON string  `db:"terrains_json"`
	Speed        float64 `db:"speed"`
	UnitNS       int64   `db:"unit_ns"`
	CurrentIndex int     `db:"current_index"`
	Elapsed      float64 `db:"elapsed"`
	Total        float64 `db:"total"`
	StartedAt    string  `db:"started_at"`
	ETA          string  `db:"eta"`
}

// SaveTraversal inserts or replaces a traversal.
func (db *DB) SaveTraversal(t *travel.Traversal) error {
	routeJSON, err := json.Marshal(t.Route)
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}
	arrivalsJSON, _ := json.Marshal(t.Arrivals)
	terrainsJSON, _ := json.Marshal(t.Terrains)

	_, err = db.conn.Exec(`INSERT OR REPLACE INTO traversals
		(id, origin_q, origin_r, dest_q, dest_r, route_json, arrivals_json, terrains_json,
		 speed, unit_ns, current_index, elapsed, total, started_at, eta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Origin.Q, t.Origin.R, t.Destination.Q, t.Destination.R,
		string(routeJSON), string(arrivalsJSON), string(terrainsJSON),
		t.Speed, int64(t.Unit), t.CurrentIndex, t.Elapsed, t.Total,
		t.StartedAt.UTC().Format(timeLayout), t.ETA.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save traversal %s: %w", t.ID, err)
	}
	return nil
}

// LoadTraversal reads a traversal by ID.
func (db *DB) LoadTraversal(id uuid.UUID) (*travel.Traversal, error) {
	var row traversalRow
	err := db.conn.Get(&row, "SELECT * FROM traversals WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("traversal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load traversal %s: %w", id, err)
	}
	return row.traversal()
}

// ListTraversals returns the most recently started traversals first.
func (db *DB) ListTraversals(limit int) ([]*travel.Traversal, error) {
	var rows []traversalRow
	if err := db.conn.Select(&rows, "SELECT * FROM traversals ORDER BY started_at DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("list traversals: %w", err)
	}
	out := make([]*travel.Traversal, 0, len(rows))
	for _, row := range rows {
		t, err := row.traversal()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (row traversalRow) traversal() (*travel.Traversal, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("traversal id %q: %w", row.ID, err)
	}
	t := &travel.Traversal{
		ID:           id,
		Origin:       world.HexCoord{Q: row.OriginQ, R: row.OriginR},
		Destination:  world.HexCoord{Q: row.DestQ, R: row.DestR},
		Speed:        row.Speed,
		Unit:         time.Duration(row.UnitNS),
		CurrentIndex: row.CurrentIndex,
		Elapsed:      row.Elapsed,
		Total:        row.Total,
	}
	if err := json.Unmarshal([]byte(row.RouteJSON), &t.Route); err != nil {
		return nil, fmt.Errorf("traversal %s route: %w", id, err)
	}
	if err := json.Unmarshal([]byte(row.ArrivalsJSON), &t.Arrivals); err != nil {
		return nil, fmt.Errorf("traversal %s arrivals: %w", id, err)
	}
	if err := json.Unmarshal([]byte(row.TerrainsJSON), &t.Terrains); err != nil {
		return nil, fmt.Errorf("traversal %s terrains: %w", id, err)
	}
	if t.StartedAt, err = time.Parse(timeLayout, row.StartedAt); err != nil {
		return nil, fmt.Errorf("traversal %s started_at: %w", id, err)
	}
	if t.ETA, err = time.Parse(timeLayout, row.ETA); err != nil {
		return nil, fmt.Errorf("traversal %s eta: %w", id, err)
	}
	if t.CurrentIndex < len(t.Terrains) {
		t.CurrentTerrain = t.Terrains[t.CurrentIndex]
	}
	return t, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// DeleteMeta removes a metadata value. Missing keys are not an error.
func (db *DB) DeleteMeta(key string) error {
	if _, err := db.conn.Exec("DELETE FROM world_meta WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete meta %s: %w", key, err)
	}
	return nil
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s: %w", key, ErrNotFound)
	}
	return value, err
}

// metaIntOrZero reads an integer meta value, treating a missing key as 0.
func (db *DB) metaIntOrZero(key string) (int, error) {
	v, err := db.GetMeta(key)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("meta %s: %w", key, err)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("meta %s: %w", key, err)
	}
	return n, nil
}
