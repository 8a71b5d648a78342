package state

import (
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/tides/internal/db"
)

// PlayRecord is one row of the play history.
type PlayRecord struct {
	ID             int64
	TrackID        string
	Name           string
	ArtistName     string
	ArtistID       string
	PlayedAt       time.Time
	DurationPlayed time.Duration
	Skipped        bool
}

// RecordPlay appends p to the play history.
func (m *Manager) RecordPlay(p PlayRecord) error {
	_, err := m.db.Exec(`
		INSERT INTO play_history
		(track_id, name, artist_name, artist_id, played_at, duration_played_ms, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.TrackID, p.Name, dbutil.Optional(p.ArtistName), dbutil.Optional(p.ArtistID), p.PlayedAt.Unix(),
		p.DurationPlayed.Milliseconds(), p.Skipped)
	return err
}

// RecentPlays returns up to limit plays, newest first.
func (m *Manager) RecentPlays(limit int) ([]PlayRecord, error) {
	rows, err := m.db.Query(`
		SELECT id, track_id, name, artist_name, artist_id, played_at, duration_played_ms, skipped
		FROM play_history
		ORDER BY played_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []PlayRecord
	for rows.Next() {
		var p PlayRecord
		var artistName, artistID sql.Null[string]
		var playedAt, durationMS int64
		if err := rows.Scan(&p.ID, &p.TrackID, &p.Name, &artistName, &artistID,
			&playedAt, &durationMS, &p.Skipped); err != nil {
			return nil, err
		}
		p.ArtistName = artistName.V
		p.ArtistID = artistID.V
		p.PlayedAt = time.Unix(playedAt, 0)
		p.DurationPlayed = time.Duration(durationMS) * time.Millisecond
		plays = append(plays, p)
	}
	return plays, rows.Err()
}
