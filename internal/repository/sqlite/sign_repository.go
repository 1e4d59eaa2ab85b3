package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"roadwatch/internal/models"
)

// SignRepository implements repository.SignRepository for SQLite.
type SignRepository struct {
	db *DB
}

// NewSignRepository creates a new SQLite sign repository.
func NewSignRepository(db *DB) *SignRepository {
	return &SignRepository{db: db}
}

// Insert stores a sign record. A sign that is already stored keeps its
// existing details.
func (r *SignRepository) Insert(info *models.SignInfo) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO sign_info (sign, details, action)
		VALUES (?, ?, ?)
		ON CONFLICT(sign) DO NOTHING
	`, info.Sign, info.Details, info.Action)
	if err != nil {
		return fmt.Errorf("failed to insert sign %q: %w", info.Sign, err)
	}
	return nil
}

// FindBySign retrieves a sign record. It returns nil, nil when the sign is not stored.
func (r *SignRepository) FindBySign(sign string) (*models.SignInfo, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var info models.SignInfo
	err := r.db.Conn().QueryRow(`
		SELECT sign, details, action FROM sign_info WHERE sign = ?
	`, sign).Scan(&info.Sign, &info.Details, &info.Action)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sign %q: %w", sign, err)
	}
	return &info, nil
}

// GetAll returns every stored sign in insertion order.
func (r *SignRepository) GetAll() ([]models.SignInfo, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT sign, details, action FROM sign_info ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query signs: %w", err)
	}
	defer rows.Close()

	signs := []models.SignInfo{}
	for rows.Next() {
		var info models.SignInfo
		if err := rows.Scan(&info.Sign, &info.Details, &info.Action); err != nil {
			return nil, fmt.Errorf("failed to scan sign: %w", err)
		}
		signs = append(signs, info)
	}

	return signs, rows.Err()
}

// Count returns the number of stored signs.
func (r *SignRepository) Count() (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM sign_info`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count signs: %w", err)
	}
	return count, nil
}
