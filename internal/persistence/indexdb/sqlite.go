// Package indexdb maintains a queryable sqlite index of a match. The JSONL
// command log is the source of truth; this index exists for tooling
// (digest lookups, detonation stats) and may drop writes under pressure.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"landfall.gg/internal/sim/tuning"
	"landfall.gg/internal/sim/world"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// mu orders sends against Close so a writer can never hit a closed
	// channel. Writers hold it shared, Close exclusively.
	mu     sync.RWMutex
	closed bool
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqDetonation
)

type req struct {
	kind reqKind

	tick world.CommandLogEntry
	det  detonationRow
}

type detonationRow struct {
	Tick     uint64
	Attacker uint16
	Tiles    int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 16384),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			joins INTEGER NOT NULL,
			leaves INTEGER NOT NULL,
			commands INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS players (
			player_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			joined_tick INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS detonations (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			attacker INTEGER NOT NULL,
			tiles_destroyed INTEGER NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_detonations_attacker_tick ON detonations(attacker, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordMatch stores the match parameters up front so tooling can
// reconstruct the world configuration from the index alone.
func (s *SQLiteIndex) RecordMatch(id string, seed int64, width, height int, tun tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, _ := json.Marshal(tun)
	sum := sha256.Sum256(b)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows := [][2]string{
		{"schema_version", "1"},
		{"match_id", id},
		{"seed", fmt.Sprintf("%d", seed)},
		{"map_width", fmt.Sprintf("%d", width)},
		{"map_height", fmt.Sprintf("%d", height)},
		{"tuning_json", string(b)},
		{"tuning_digest", hex.EncodeToString(sum[:])},
		{"recorded_at", time.Now().UTC().Format(time.RFC3339Nano)},
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r[0], r[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// WriteTick queues one tick for indexing. Drops under pressure; the JSONL
// command log remains authoritative.
func (s *SQLiteIndex) WriteTick(entry world.CommandLogEntry) error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
	}
	return nil
}

// RecordDetonation queues a blast event.
func (s *SQLiteIndex) RecordDetonation(tick uint64, attacker uint16, tilesDestroyed int) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- req{kind: reqDetonation, det: detonationRow{Tick: tick, Attacker: attacker, Tiles: tilesDestroyed}}:
	default:
	}
}

// DigestAt reads back the digest recorded for a tick.
func (s *SQLiteIndex) DigestAt(tick uint64) (string, error) {
	var d string
	err := s.db.QueryRow(`SELECT digest FROM ticks WHERE tick = ?`, int64(tick)).Scan(&d)
	return d, err
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,digest,joins,leaves,commands,raw_json) VALUES(?,?,?,?,?,?)`)
	insertPlayer, _ := s.db.Prepare(`INSERT OR REPLACE INTO players(player_id,name,joined_tick) VALUES(?,?,?)`)
	insertDet, _ := s.db.Prepare(`INSERT OR REPLACE INTO detonations(tick,seq,attacker,tiles_destroyed) VALUES(?,?,?,?)`)
	defer func() {
		if insertTick != nil {
			_ = insertTick.Close()
		}
		if insertPlayer != nil {
			_ = insertPlayer.Close()
		}
		if insertDet != nil {
			_ = insertDet.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second

		lastDetTick uint64
		detSeq      int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			b, _ := json.Marshal(r.tick)
			if insertTick != nil {
				if _, err := tx.Stmt(insertTick).Exec(
					int64(r.tick.Tick),
					r.tick.Digest,
					len(r.tick.Joins),
					len(r.tick.Leaves),
					len(r.tick.Commands),
					string(b),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
			for _, j := range r.tick.Joins {
				if insertPlayer == nil {
					break
				}
				if _, err := tx.Stmt(insertPlayer).Exec(int64(j.PlayerID), j.Name, int64(r.tick.Tick)); err != nil {
					rollback()
					break
				}
				opCount++
			}

		case reqDetonation:
			d := r.det
			if d.Tick != lastDetTick {
				lastDetTick = d.Tick
				detSeq = 0
			}
			seq := detSeq
			detSeq++
			if insertDet != nil {
				if _, err := tx.Stmt(insertDet).Exec(int64(d.Tick), seq, int64(d.Attacker), d.Tiles); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}

		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}
	commit()
}
