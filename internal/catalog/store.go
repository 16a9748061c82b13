package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

// ErrCardNotFound is returned when a card id is not in the catalog.
var ErrCardNotFound = errors.New("card not found in catalog")

// UpsertCard inserts or replaces a card.
func (db *DB) UpsertCard(ctx context.Context, card *cards.CardFace) error {
	if card == nil || card.ID == "" {
		return fmt.Errorf("card with non-empty id required")
	}

	subtypes, err := json.Marshal(card.Subtypes)
	if err != nil {
		return fmt.Errorf("encoding subtypes for %s: %w", card.ID, err)
	}
	types, _ := json.Marshal(card.Types)
	attacks, err := json.Marshal(card.Attacks)
	if err != nil {
		return fmt.Errorf("encoding attacks for %s: %w", card.ID, err)
	}
	abilities, _ := json.Marshal(card.Abilities)
	rules, _ := json.Marshal(card.Rules)
	retreat, _ := json.Marshal(card.RetreatCost)

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO cards (id, name, supertype, subtypes, types, hp, evolves_from,
			attacks, abilities, retreat_cost, rules, set_code, number, rarity, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			supertype = excluded.supertype,
			subtypes = excluded.subtypes,
			types = excluded.types,
			hp = excluded.hp,
			evolves_from = excluded.evolves_from,
			attacks = excluded.attacks,
			abilities = excluded.abilities,
			retreat_cost = excluded.retreat_cost,
			rules = excluded.rules,
			set_code = excluded.set_code,
			number = excluded.number,
			rarity = excluded.rarity,
			updated_at = CURRENT_TIMESTAMP`,
		card.ID, card.Name, string(card.Supertype), string(subtypes), string(types),
		card.HP, card.EvolvesFrom, string(attacks), string(abilities),
		string(retreat), string(rules), card.SetCode, card.Number, card.Rarity)
	if err != nil {
		return fmt.Errorf("upserting card %s: %w", card.ID, err)
	}
	return nil
}

// GetCard fetches a card by id.
func (db *DB) GetCard(ctx context.Context, id string) (*cards.CardFace, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, supertype, subtypes, types, hp, evolves_from,
			attacks, abilities, retreat_cost, rules, set_code, number, rarity
		FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return card, err
}

// GetCards fetches a batch of cards by id. Missing ids are simply absent
// from the result; callers that care check the map.
func (db *DB) GetCards(ctx context.Context, ids []string) (map[string]*cards.CardFace, error) {
	out := make(map[string]*cards.CardFace, len(ids))
	for _, id := range ids {
		card, err := db.GetCard(ctx, id)
		if errors.Is(err, ErrCardNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = card
	}
	return out, nil
}

// FindByName fetches all printings of a card name.
func (db *DB) FindByName(ctx context.Context, name string) ([]*cards.CardFace, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, supertype, subtypes, types, hp, evolves_from,
			attacks, abilities, retreat_cost, rules, set_code, number, rarity
		FROM cards WHERE name = ? ORDER BY set_code, number`, name)
	if err != nil {
		return nil, fmt.Errorf("querying cards named %q: %w", name, err)
	}
	defer rows.Close()

	var out []*cards.CardFace
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, card)
	}
	return out, rows.Err()
}

// FindBySetNumber fetches a card by set code and collector number.
func (db *DB) FindBySetNumber(ctx context.Context, setCode, number string) (*cards.CardFace, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, supertype, subtypes, types, hp, evolves_from,
			attacks, abilities, retreat_cost, rules, set_code, number, rarity
		FROM cards WHERE set_code = ? AND number = ?`, setCode, number)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", ErrCardNotFound, setCode, number)
	}
	return card, err
}

// Count returns the number of cards in the catalog.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cards: %w", err)
	}
	return n, nil
}

// ImportBulk reads a JSON array of card faces and upserts them in one
// transaction. Returns the number of cards imported.
func (db *DB) ImportBulk(ctx context.Context, r io.Reader) (int, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("reading bulk data: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return 0, fmt.Errorf("bulk data must be a JSON array")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting import transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO cards (id, name, supertype, subtypes, types, hp,
			evolves_from, attacks, abilities, retreat_cost, rules, set_code,
			number, rarity, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return 0, fmt.Errorf("preparing import statement: %w", err)
	}
	defer stmt.Close()

	imported := 0
	for dec.More() {
		var card cards.CardFace
		if err := dec.Decode(&card); err != nil {
			return imported, fmt.Errorf("decoding card %d: %w", imported, err)
		}
		if card.ID == "" {
			continue
		}
		subtypes, _ := json.Marshal(card.Subtypes)
		types, _ := json.Marshal(card.Types)
		attacks, _ := json.Marshal(card.Attacks)
		abilities, _ := json.Marshal(card.Abilities)
		rules, _ := json.Marshal(card.Rules)
		retreat, _ := json.Marshal(card.RetreatCost)

		if _, err := stmt.ExecContext(ctx,
			card.ID, card.Name, string(card.Supertype), string(subtypes), string(types),
			card.HP, card.EvolvesFrom, string(attacks), string(abilities),
			string(retreat), string(rules), card.SetCode, card.Number, card.Rarity); err != nil {
			return imported, fmt.Errorf("importing card %s: %w", card.ID, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return imported, fmt.Errorf("committing import: %w", err)
	}
	return imported, nil
}

// scanner is the shared subset of sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (*cards.CardFace, error) {
	var (
		card                                              cards.CardFace
		supertype                                         string
		subtypes, types, attacks, abilities, retreat, rls string
	)
	err := s.Scan(&card.ID, &card.Name, &supertype, &subtypes, &types, &card.HP,
		&card.EvolvesFrom, &attacks, &abilities, &retreat, &rls,
		&card.SetCode, &card.Number, &card.Rarity)
	if err != nil {
		return nil, err
	}
	card.Supertype = cards.Supertype(supertype)

	for _, col := range []struct {
		raw string
		dst any
	}{
		{subtypes, &card.Subtypes},
		{types, &card.Types},
		{attacks, &card.Attacks},
		{abilities, &card.Abilities},
		{retreat, &card.RetreatCost},
		{rls, &card.Rules},
	} {
		if col.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return nil, fmt.Errorf("decoding card %s columns: %w", card.ID, err)
		}
	}
	return &card, nil
}
