// Package archive records explicitly published trajectories in SQLite so they outlive the session.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/publish"
	"go.viam.com/waypoints/ros"
	"go.viam.com/waypoints/utils"
)

const schema = `CREATE TABLE IF NOT EXISTS trajectories (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session      TEXT    NOT NULL,
	topic        TEXT    NOT NULL,
	frame        TEXT    NOT NULL,
	seq          INTEGER NOT NULL,
	published_at INTEGER NOT NULL,
	poses        TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS trajectories_session ON trajectories (session);`

// Record is one archived trajectory.
type Record struct {
	ID        int64      `json:"id"`
	Session   uuid.UUID  `json:"session"`
	Topic     string     `json:"topic"`
	Frame     string     `json:"frame"`
	Seq       uint64     `json:"seq"`
	Published time.Time  `json:"published"`
	Poses     []ros.Pose `json:"poses"`
}

// Archive is a transport that stores every pose array published on its topics. Messages on any
// other topic are ignored, so it can be teed with the live transport.
type Archive struct {
	db      *sql.DB
	session uuid.UUID
	topics  map[string]struct{}
	logger  logging.Logger
}

var _ publish.Transport = (*Archive)(nil)

// Open opens or creates the archive at path. Rows written through it are tagged with session.
func Open(path string, session uuid.UUID, topics []string, logger logging.Logger) (*Archive, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("archive path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite archive")
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging sqlite archive")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating archive schema")
	}

	a := &Archive{db: db, session: session, topics: map[string]struct{}{}, logger: logger}
	for _, topic := range topics {
		a.topics[topic] = struct{}{}
	}
	return a, nil
}

// Session returns the id rows are tagged with.
func (a *Archive) Session() uuid.UUID {
	return a.session
}

// Publish records msg if topic is archived.
func (a *Archive) Publish(ctx context.Context, topic string, msg interface{}) error {
	if _, ok := a.topics[topic]; !ok {
		return nil
	}
	poses, ok := msg.(ros.PoseArray)
	if !ok {
		return utils.NewUnexpectedTypeError(poses, msg)
	}
	encoded, err := json.Marshal(poses.Poses)
	if err != nil {
		return errors.Wrap(err, "encoding poses")
	}
	_, err = a.db.ExecContext(
		ctx,
		`INSERT INTO trajectories (session, topic, frame, seq, published_at, poses) VALUES (?, ?, ?, ?, ?, ?)`,
		a.session.String(),
		topic,
		poses.Header.FrameID,
		int64(poses.Header.Seq),
		poses.Header.Stamp.UTC().UnixMilli(),
		string(encoded),
	)
	if err != nil {
		return errors.Wrap(err, "archiving trajectory")
	}
	a.logger.Debugw("trajectory archived", "topic", topic, "waypoints", len(poses.Poses))
	return nil
}

// List returns up to limit records, newest first. A limit of zero or less returns every record.
func (a *Archive) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.QueryContext(
		ctx,
		`SELECT id, session, topic, frame, seq, published_at, poses FROM trajectories ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "listing archived trajectories")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []Record{}
	for rows.Next() {
		var (
			record    Record
			session   string
			seq       int64
			published int64
			poses     string
		)
		if err := rows.Scan(&record.ID, &session, &record.Topic, &record.Frame, &seq, &published, &poses); err != nil {
			return nil, errors.Wrap(err, "scanning archived trajectory")
		}
		if record.Session, err = uuid.Parse(session); err != nil {
			return nil, errors.Wrapf(err, "archived trajectory %d", record.ID)
		}
		if err := json.Unmarshal([]byte(poses), &record.Poses); err != nil {
			return nil, errors.Wrapf(err, "archived trajectory %d", record.ID)
		}
		record.Seq = uint64(seq)
		record.Published = time.UnixMilli(published).UTC()
		records = append(records, record)
	}
	return records, errors.Wrap(rows.Err(), "listing archived trajectories")
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}
