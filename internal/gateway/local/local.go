// Package local implements the notification gateway against an embedded
// SQLite database with in-process row-change fan-out. It backs the
// --offline mode and the test suite.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

// defaultPageSize is used when FetchPage is called with a non-positive limit.
const defaultPageSize = 50

// Backend implements the notification gateway on a local SQLite database.
type Backend struct {
	db          *sqlx.DB
	recipientID string
	hub         *hub
}

// Open opens (or creates) a SQLite database at dbPath, enables WAL mode,
// runs any pending schema migrations, and scopes all operations to
// recipientID. Pass ":memory:" for an ephemeral database.
func Open(dbPath, recipientID string) (*Backend, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	b := &Backend{
		db:          db,
		recipientID: recipientID,
		hub:         newHub(),
	}
	if err := b.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return b, nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (b *Backend) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := b.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = b.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := b.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// FetchPage retrieves up to limit notifications for the recipient,
// newest first.
func (b *Backend) FetchPage(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	rows, err := b.db.QueryxContext(ctx, `
		SELECT id, type, title, message, is_read, created_at, metadata, recipient_id
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		b.recipientID, limit,
	)
	if err != nil {
		return nil, b.wrapError("fetch page", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		row, err := scanNotification(rows)
		if err != nil {
			return nil, b.wrapError("fetch page", err)
		}
		notifications = append(notifications, row.toModel())
	}

	return notifications, rows.Err()
}

// FetchUnreadCount counts the recipient's unread rows server-side.
func (b *Backend) FetchUnreadCount(ctx context.Context) (int, error) {
	var count int
	err := b.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0",
		b.recipientID,
	)
	if err != nil {
		return 0, b.wrapError("fetch unread count", err)
	}
	return count, nil
}

// MarkRead marks a single notification read and publishes the updated row.
// Marking an already-read row succeeds silently.
func (b *Backend) MarkRead(ctx context.Context, id string) error {
	res, err := b.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND is_read = 0", id,
	)
	if err != nil {
		return b.wrapError("mark read", err)
	}

	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return nil
	}

	b.publishRow(ctx, eventUpdate, id)
	return nil
}

// MarkAllRead marks every unread notification for the recipient read and
// publishes an update for each changed row. Idempotent.
func (b *Backend) MarkAllRead(ctx context.Context) error {
	var ids []string
	err := b.db.SelectContext(ctx, &ids,
		"SELECT id FROM notifications WHERE recipient_id = ? AND is_read = 0",
		b.recipientID,
	)
	if err != nil {
		return b.wrapError("mark all read", err)
	}
	if len(ids) == 0 {
		return nil
	}

	_, err = b.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0",
		b.recipientID,
	)
	if err != nil {
		return b.wrapError("mark all read", err)
	}

	for _, id := range ids {
		b.publishRow(ctx, eventUpdate, id)
	}
	return nil
}

// Delete removes a notification row. Deleting a row that is already gone
// returns a NotFound error.
func (b *Backend) Delete(ctx context.Context, id string) error {
	res, err := b.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		return b.wrapError("delete", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return b.wrapError("delete", err)
	}
	if affected == 0 {
		return gateway.NewError(gateway.KindNotFound, "delete",
			fmt.Errorf("notification %s", id))
	}
	return nil
}

// Create inserts a new notification, filling a missing ID and CreatedAt,
// and publishes the stored row on the insert stream.
func (b *Backend) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.RecipientID == "" {
		n.RecipientID = b.recipientID
	}

	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return model.Notification{}, gateway.NewError(gateway.KindTransport, "create",
			fmt.Errorf("marshaling metadata: %w", err))
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO notifications (id, type, title, message, is_read, created_at, metadata, recipient_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Type), n.Title, n.Message,
		boolToInt(n.IsRead), n.CreatedAt.UTC(), string(metadata), n.RecipientID,
	)
	if err != nil {
		return model.Notification{}, b.wrapError("create", err)
	}

	b.publishRow(ctx, eventInsert, n.ID)
	return n, nil
}

// SubscribeInserts registers fn for new rows addressed to recipientID.
func (b *Backend) SubscribeInserts(
	_ context.Context,
	recipientID string,
	fn gateway.InsertFunc,
) (gateway.Subscription, error) {
	id := b.hub.subscribe(recipientID, eventInsert, func(row notificationRow) {
		fn(row.toModel())
	})
	return &localSubscription{hub: b.hub, id: id}, nil
}

// SubscribeUpdates registers fn for changed rows addressed to recipientID.
func (b *Backend) SubscribeUpdates(
	_ context.Context,
	recipientID string,
	fn gateway.UpdateFunc,
) (gateway.Subscription, error) {
	id := b.hub.subscribe(recipientID, eventUpdate, func(row notificationRow) {
		fn(row.toModel())
	})
	return &localSubscription{hub: b.hub, id: id}, nil
}

// publishRow re-reads a row and fans it out to matching subscribers.
// Best effort: a row that vanished between the write and the read is
// simply not published.
func (b *Backend) publishRow(ctx context.Context, kind eventKind, id string) {
	row := b.db.QueryRowxContext(ctx, `
		SELECT id, type, title, message, is_read, created_at, metadata, recipient_id
		FROM notifications WHERE id = ?`, id,
	)

	n, err := scanNotificationRow(row)
	if err != nil {
		return
	}
	b.hub.publish(kind, n)
}

// wrapError maps a driver failure onto the tagged gateway error kinds.
// The sqlite driver only exposes missing-table failures as message text,
// so that one check happens here, at the gateway boundary, and nowhere
// above it.
func (b *Backend) wrapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return gateway.NewError(gateway.KindNotFound, op, err)
	}
	if strings.Contains(err.Error(), "no such table") {
		return gateway.NewError(gateway.KindSchemaMissing, op, err)
	}
	return gateway.NewError(gateway.KindTransport, op, err)
}

// notificationRow is the scanned database row shape.
type notificationRow struct {
	ID          string
	Type        string
	Title       string
	Message     string
	IsRead      bool
	CreatedAt   time.Time
	Metadata    map[string]string
	RecipientID string
}

// toModel converts a database row to the canonical notification shape.
func (r notificationRow) toModel() model.Notification {
	return model.Notification{
		ID:          r.ID,
		Type:        model.ParseNotificationType(r.Type),
		Title:       r.Title,
		Message:     r.Message,
		IsRead:      r.IsRead,
		CreatedAt:   r.CreatedAt,
		Metadata:    r.Metadata,
		RecipientID: r.RecipientID,
	}
}

// scanNotification scans a notification from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (notificationRow, error) {
	var (
		n            notificationRow
		readInt      int
		createdAt    time.Time
		metadataJSON string
	)

	err := rows.Scan(
		&n.ID, &n.Type, &n.Title, &n.Message,
		&readInt, &createdAt, &metadataJSON, &n.RecipientID,
	)
	if err != nil {
		return notificationRow{}, fmt.Errorf("scanning notification row: %w", err)
	}

	return finishScan(n, readInt, createdAt, metadataJSON)
}

// scanNotificationRow scans a single notification from a sqlx.Row.
func scanNotificationRow(row *sqlx.Row) (notificationRow, error) {
	var (
		n            notificationRow
		readInt      int
		createdAt    time.Time
		metadataJSON string
	)

	err := row.Scan(
		&n.ID, &n.Type, &n.Title, &n.Message,
		&readInt, &createdAt, &metadataJSON, &n.RecipientID,
	)
	if err != nil {
		return notificationRow{}, fmt.Errorf("scanning notification row: %w", err)
	}

	return finishScan(n, readInt, createdAt, metadataJSON)
}

func finishScan(
	n notificationRow,
	readInt int,
	createdAt time.Time,
	metadataJSON string,
) (notificationRow, error) {
	n.IsRead = readInt != 0
	n.CreatedAt = createdAt

	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &n.Metadata); err != nil {
			return notificationRow{}, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return n, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
