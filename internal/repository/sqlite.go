package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"farmtrade-bidding/internal/biddingerrors"
	model "farmtrade-bidding/internal/models"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id  TEXT PRIMARY KEY,
    username TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    item_id       TEXT PRIMARY KEY,
    farmer_id     TEXT NOT NULL REFERENCES users(user_id),
    category      TEXT NOT NULL,
    name          TEXT NOT NULL,
    quantity      REAL NOT NULL,
    unit          TEXT NOT NULL,
    is_organic    INTEGER NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    is_bid_active INTEGER NOT NULL DEFAULT 1,
    date_added    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bids (
    bid_id    TEXT NOT NULL,
    item_id   TEXT NOT NULL REFERENCES items(item_id) ON DELETE CASCADE,
    user_id   TEXT NOT NULL REFERENCES users(user_id),
    amount    TEXT NOT NULL,
    placed_at INTEGER NOT NULL,
    UNIQUE (item_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_bids_item ON bids(item_id);
CREATE INDEX IF NOT EXISTS idx_bids_user ON bids(user_id);
CREATE INDEX IF NOT EXISTS idx_items_farmer ON items(farmer_id);
`

// SQLiteRepo is a durable AuctionDB backed by SQLite. The UNIQUE
// (item_id, user_id) index plus ON CONFLICT upsert enforces the
// one-bid-per-user-per-item invariant at the storage level.
type SQLiteRepo struct {
	sqlDB *sql.DB
}

// OpenSQLite opens the SQLite store at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteRepo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteRepo{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (r *SQLiteRepo) Close() error {
	if r == nil || r.sqlDB == nil {
		return nil
	}
	return r.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// storageErr wraps a driver failure so callers can match ErrStorage.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, biddingerrors.ErrStorage, err)
}

// GetItem returns the item with the given ID
func (r *SQLiteRepo) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	row := r.sqlDB.QueryRowContext(ctx,
		`SELECT item_id, farmer_id, category, name, quantity, unit, is_organic, description, is_bid_active, date_added
		 FROM items WHERE item_id = ?`, itemID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, fmt.Errorf("get item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	if err != nil {
		return model.Item{}, storageErr("get item", err)
	}
	return item, nil
}

// GetUser returns the user with the given ID
func (r *SQLiteRepo) GetUser(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	err := r.sqlDB.QueryRowContext(ctx,
		`SELECT user_id, username FROM users WHERE user_id = ?`, userID).
		Scan(&user.UserID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, storageErr("get user", err)
	}
	return user, nil
}

// FindBid returns the existing bid for (itemID, userID), if any
func (r *SQLiteRepo) FindBid(ctx context.Context, itemID, userID string) (model.Bid, bool, error) {
	row := r.sqlDB.QueryRowContext(ctx,
		`SELECT bid_id, item_id, user_id, amount, placed_at
		 FROM bids WHERE item_id = ? AND user_id = ?`, itemID, userID)
	bid, err := scanBid(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, false, nil
	}
	if err != nil {
		return model.Bid{}, false, storageErr("find bid", err)
	}
	return bid, true, nil
}

// UpsertBid atomically creates or replaces the bid keyed by (ItemID, UserID)
func (r *SQLiteRepo) UpsertBid(ctx context.Context, bid model.Bid) error {
	_, err := r.sqlDB.ExecContext(ctx,
		`INSERT INTO bids (bid_id, item_id, user_id, amount, placed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (item_id, user_id) DO UPDATE SET
		     amount    = excluded.amount,
		     placed_at = excluded.placed_at`,
		bid.BidID, bid.ItemID, bid.UserID, bid.Amount.String(), toMillis(bid.PlacedAt))
	if err != nil {
		return storageErr("upsert bid", err)
	}
	return nil
}

// GetBidsByItem returns all bids for an item, descending by amount,
// ties broken by earliest placement
func (r *SQLiteRepo) GetBidsByItem(ctx context.Context, itemID string) ([]model.Bid, error) {
	rows, err := r.sqlDB.QueryContext(ctx,
		`SELECT bid_id, item_id, user_id, amount, placed_at
		 FROM bids WHERE item_id = ?
		 ORDER BY CAST(amount AS REAL) DESC, placed_at ASC`, itemID)
	if err != nil {
		return nil, storageErr("list bids for item", err)
	}
	defer rows.Close()
	return collectBids(rows)
}

// GetMaxBid returns the highest bid amount for an item, or zero when none
func (r *SQLiteRepo) GetMaxBid(ctx context.Context, itemID string) (decimal.Decimal, error) {
	var raw string
	err := r.sqlDB.QueryRowContext(ctx,
		`SELECT amount FROM bids WHERE item_id = ?
		 ORDER BY CAST(amount AS REAL) DESC, placed_at ASC LIMIT 1`, itemID).
		Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, storageErr("max bid for item", err)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, storageErr("parse max bid amount", err)
	}
	return amount, nil
}

// SetBidActive updates the item's bidding flag and returns the updated item
func (r *SQLiteRepo) SetBidActive(ctx context.Context, itemID string, active bool) (model.Item, error) {
	res, err := r.sqlDB.ExecContext(ctx,
		`UPDATE items SET is_bid_active = ? WHERE item_id = ?`, boolToInt(active), itemID)
	if err != nil {
		return model.Item{}, storageErr("set bid active", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Item{}, storageErr("set bid active", err)
	}
	if affected == 0 {
		return model.Item{}, fmt.Errorf("set bid active for item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	return r.GetItem(ctx, itemID)
}

// GetBidsByUser returns all bids placed by a user, newest first
func (r *SQLiteRepo) GetBidsByUser(ctx context.Context, userID string) ([]model.Bid, error) {
	rows, err := r.sqlDB.QueryContext(ctx,
		`SELECT bid_id, item_id, user_id, amount, placed_at
		 FROM bids WHERE user_id = ?
		 ORDER BY placed_at DESC`, userID)
	if err != nil {
		return nil, storageErr("list bids for user", err)
	}
	defer rows.Close()
	return collectBids(rows)
}

// GetItemsByFarmer returns all items listed by a farmer
func (r *SQLiteRepo) GetItemsByFarmer(ctx context.Context, farmerID string) ([]model.Item, error) {
	rows, err := r.sqlDB.QueryContext(ctx,
		`SELECT item_id, farmer_id, category, name, quantity, unit, is_organic, description, is_bid_active, date_added
		 FROM items WHERE farmer_id = ? ORDER BY item_id`, farmerID)
	if err != nil {
		return nil, storageErr("list items for farmer", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, storageErr("scan item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate items", err)
	}
	return items, nil
}

// AddItem inserts or replaces an item. Used for seeding and tests.
func (r *SQLiteRepo) AddItem(ctx context.Context, item model.Item) error {
	_, err := r.sqlDB.ExecContext(ctx,
		`INSERT INTO items (item_id, farmer_id, category, name, quantity, unit, is_organic, description, is_bid_active, date_added)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (item_id) DO UPDATE SET
		     category = excluded.category, name = excluded.name,
		     quantity = excluded.quantity, unit = excluded.unit,
		     is_organic = excluded.is_organic, description = excluded.description,
		     is_bid_active = excluded.is_bid_active`,
		item.ItemID, item.FarmerID, item.Category, item.Name, item.Quantity,
		item.Unit, boolToInt(item.IsOrganic), item.Description,
		boolToInt(item.IsBidActive), toMillis(item.DateAdded))
	if err != nil {
		return storageErr("add item", err)
	}
	return nil
}

// AddUser inserts or replaces a user. Used for seeding and tests.
func (r *SQLiteRepo) AddUser(ctx context.Context, user model.User) error {
	_, err := r.sqlDB.ExecContext(ctx,
		`INSERT INTO users (user_id, username) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET username = excluded.username`,
		user.UserID, user.Username)
	if err != nil {
		return storageErr("add user", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var (
		item      model.Item
		organic   int
		active    int
		dateAdded int64
	)
	err := row.Scan(&item.ItemID, &item.FarmerID, &item.Category, &item.Name,
		&item.Quantity, &item.Unit, &organic, &item.Description, &active, &dateAdded)
	if err != nil {
		return model.Item{}, err
	}
	item.IsOrganic = organic != 0
	item.IsBidActive = active != 0
	item.DateAdded = fromMillis(dateAdded)
	return item, nil
}

func scanBid(row rowScanner) (model.Bid, error) {
	var (
		bid      model.Bid
		raw      string
		placedAt int64
	)
	err := row.Scan(&bid.BidID, &bid.ItemID, &bid.UserID, &raw, &placedAt)
	if err != nil {
		return model.Bid{}, err
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Bid{}, fmt.Errorf("parse bid amount %q: %w", raw, err)
	}
	bid.Amount = amount
	bid.PlacedAt = fromMillis(placedAt)
	return bid, nil
}

func collectBids(rows *sql.Rows) ([]model.Bid, error) {
	bids := []model.Bid{}
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, storageErr("scan bid", err)
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate bids", err)
	}
	return bids, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
