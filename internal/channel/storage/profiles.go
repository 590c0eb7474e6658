package storage

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

type ProfileProvider interface {
	ProfilesByIDs(ctx context.Context, q Querier, ids []int64) ([]Profile, error)
}

// ProfilesByIDs returns the rows that exist among ids. Missing users are
// silently skipped.
func (s *PostgresStorage) ProfilesByIDs(ctx context.Context, q Querier, ids []int64) ([]Profile, error) {
	if len(ids) == 0 {
		return []Profile{}, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_name, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(photo_url, '')
		FROM users
		WHERE id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to select profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0, len(ids))
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.UserName, &p.FirstName, &p.LastName, &p.PhotoURL); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
