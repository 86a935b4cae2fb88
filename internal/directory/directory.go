// Package directory resolves device identity and the users subscribed to a
// device through the relational store. All lookups are read-only and nothing
// is cached across events.
package directory

import (
	"context"
	"database/sql"
	"fmt"
)

// Resolver performs device and user lookups against the store.
type Resolver struct {
	db *sql.DB
}

// NewResolver creates a resolver over an existing connection pool.
func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{db: db}
}

// DeviceID resolves a device's external identifier to its internal numeric id.
// The boolean reports whether the device exists; a missing device is not an error.
func (r *Resolver) DeviceID(ctx context.Context, externalID string) (int64, bool, error) {
	query := `SELECT id FROM devices WHERE device_id = $1`

	var id int64
	err := r.db.QueryRowContext(ctx, query, externalID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve device id for %s: %w", externalID, err)
	}
	return id, true, nil
}

// DeviceName resolves a device's external identifier to its display name.
// The boolean reports whether the device exists; a missing device is not an error.
func (r *Resolver) DeviceName(ctx context.Context, externalID string) (string, bool, error) {
	query := `SELECT name FROM devices WHERE device_id = $1`

	var name string
	err := r.db.QueryRowContext(ctx, query, externalID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve device name for %s: %w", externalID, err)
	}
	return name, true, nil
}

// RecipientTags resolves the push notification tags of all users subscribed
// to the device. A device with no subscribed users yields an empty slice,
// not an error; callers must tolerate empty recipient lists.
func (r *Resolver) RecipientTags(ctx context.Context, deviceID int64) ([]string, error) {
	userIDs, err := r.userIDs(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, userID := range userIDs {
		tag, ok, err := r.userTag(ctx, userID)
		if err != nil {
			return nil, err
		}
		if ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// userIDs returns the ids of users mapped to the device.
func (r *Resolver) userIDs(ctx context.Context, deviceID int64) ([]int64, error) {
	query := `SELECT user_id FROM user_devices WHERE device_id = $1`

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user mappings for device %d: %w", deviceID, err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user mapping: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user mappings: %w", err)
	}

	return userIDs, nil
}

// userTag resolves a numeric user id to the tag the push hub targets.
func (r *Resolver) userTag(ctx context.Context, userID int64) (string, bool, error) {
	query := `SELECT user_uid FROM users WHERE id = $1`

	var tag string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&tag)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve tag for user %d: %w", userID, err)
	}
	return tag, true, nil
}
