package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

// backupEnvelope is the serialized backup format.
type backupEnvelope struct {
	Version   string            `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	CardCount int               `json:"card_count"`
	Cards     []*cards.CardFace `json:"cards"`
}

const backupVersion = "1"

// Backup writes the whole catalog to w as JSON, encrypted when a password is
// given.
func (db *DB) Backup(ctx context.Context, w io.Writer, password string) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, supertype, subtypes, types, hp, evolves_from,
			attacks, abilities, retreat_cost, rules, set_code, number, rarity
		FROM cards ORDER BY id`)
	if err != nil {
		return fmt.Errorf("querying cards for backup: %w", err)
	}
	defer rows.Close()

	env := backupEnvelope{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC(),
	}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return fmt.Errorf("reading card for backup: %w", err)
		}
		env.Cards = append(env.Cards, card)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading cards for backup: %w", err)
	}
	env.CardCount = len(env.Cards)

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	if password != "" {
		payload, err = encryptData(payload, password)
		if err != nil {
			return fmt.Errorf("encrypting backup: %w", err)
		}
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup into the catalog. Encrypted
// backups require the password they were written with.
func (db *DB) Restore(ctx context.Context, r io.Reader, password string) (int, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("reading backup: %w", err)
	}

	if IsEncrypted(payload) {
		if password == "" {
			return 0, fmt.Errorf("backup is encrypted, password required")
		}
		payload, err = decryptData(payload, password)
		if err != nil {
			return 0, err
		}
	}

	var env backupEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return 0, fmt.Errorf("decoding backup: %w", err)
	}
	if env.Version != backupVersion {
		return 0, fmt.Errorf("unsupported backup version %q", env.Version)
	}

	raw, err := json.Marshal(env.Cards)
	if err != nil {
		return 0, fmt.Errorf("re-encoding backup cards: %w", err)
	}
	return db.ImportBulk(ctx, bytes.NewReader(raw))
}
