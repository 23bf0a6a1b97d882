package storage

import (
	"database/sql"
	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	Close() error
}

// UsageStats aggregates the commands recorded for one category.
type UsageStats struct {
	Count    int
	Commands map[string]int
}

// TimeSeriesPoint is the number of commands recorded in one time bucket.
type TimeSeriesPoint struct {
	Timestamp int64
	Count     int
}

type Store struct{ db DB }

func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

func InitSchema(db DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS usage(
		chat_id INTEGER, user_id INTEGER, command TEXT, category TEXT, ts INTEGER
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS usage_ts ON usage(ts)`)
	return err
}

func NewStore(db DB) *Store { return &Store{db: db} }

// SaveUsage records one handled command. Only the command name is stored,
// never its arguments or uploaded data.
func (s *Store) SaveUsage(chatID, userID int64, command, category string, ts int64) error {
	_, err := s.db.Exec(`INSERT INTO usage(chat_id,user_id,command,category,ts) VALUES(?,?,?,?,?)`,
		chatID, userID, command, category, ts)
	return err
}

// UsageStatsSince returns per-category command counts recorded at or after since.
func (s *Store) UsageStatsSince(since int64) (map[string]*UsageStats, error) {
	rows, err := s.db.Query(`SELECT category, command, COUNT(*) FROM usage WHERE ts>=? GROUP BY category, command`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]*UsageStats{}
	for rows.Next() {
		var category, command string
		var n int
		if err := rows.Scan(&category, &command, &n); err != nil {
			return nil, err
		}
		st, ok := out[category]
		if !ok {
			st = &UsageStats{Commands: map[string]int{}}
			out[category] = st
		}
		st.Count += n
		st.Commands[command] += n
	}
	return out, rows.Err()
}

// UsageTimeSeries buckets command counts per category into bucket-second windows.
func (s *Store) UsageTimeSeries(since, bucket int64) (map[string][]TimeSeriesPoint, error) {
	if bucket <= 0 {
		bucket = 3600
	}
	rows, err := s.db.Query(`SELECT category, (ts/?)*?, COUNT(*) FROM usage WHERE ts>=? GROUP BY 1, 2 ORDER BY 2 ASC`,
		bucket, bucket, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]TimeSeriesPoint{}
	for rows.Next() {
		var category string
		var p TimeSeriesPoint
		if err := rows.Scan(&category, &p.Timestamp, &p.Count); err != nil {
			return nil, err
		}
		out[category] = append(out[category], p)
	}
	return out, rows.Err()
}
