package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/bdaybook/internal/errs"
	"github.com/and161185/bdaybook/internal/model"
)

// PersonRepo implements PersonRepository using PostgreSQL.
type PersonRepo struct{ db *DB }

// NewPersonRepo constructs a person repository.
func NewPersonRepo(db *DB) *PersonRepo { return &PersonRepo{db: db} }

const personColumns = `id, user_id, name, nickname, phone_digits, birth_date, relationship,
zodiac, photo_ref, message, favorite_color, hobbies, gift_ideas, notes, created_at, updated_at`

// Create inserts a new record inside its own transaction.
func (r *PersonRepo) Create(ctx context.Context, p *model.Person) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const ins = `
INSERT INTO persons (id, user_id, name, nickname, phone_digits, birth_date, relationship,
zodiac, photo_ref, message, favorite_color, hobbies, gift_ideas, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err = tx.Exec(ctx, ins,
		p.ID, p.OwnerID, p.Name, p.Nickname, p.PhoneDigits, p.BirthDate, p.Relationship,
		p.Zodiac, p.PhotoRef, p.Message, p.FavoriteColor, p.Hobbies, p.GiftIdeas, p.Notes)
	return err
}

// Get loads one record scoped by owner.
func (r *PersonRepo) Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Person, error) {
	const q = `SELECT ` + personColumns + ` FROM persons WHERE user_id=$1 AND id=$2`
	p, err := scanPerson(r.db.Pool.QueryRow(ctx, q, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns all of the owner's records ordered by id.
func (r *PersonRepo) List(ctx context.Context, ownerID uuid.UUID) ([]model.Person, error) {
	const q = `SELECT ` + personColumns + ` FROM persons WHERE user_id=$1 ORDER BY id ASC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update rewrites the full row; the service merges patches beforehand.
func (r *PersonRepo) Update(ctx context.Context, p *model.Person) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const upd = `
UPDATE persons SET name=$3, nickname=$4, phone_digits=$5, birth_date=$6, relationship=$7,
zodiac=$8, photo_ref=$9, message=$10, favorite_color=$11, hobbies=$12, gift_ideas=$13,
notes=$14, updated_at=now()
WHERE id=$1 AND user_id=$2`
	tag, err := tx.Exec(ctx, upd,
		p.ID, p.OwnerID, p.Name, p.Nickname, p.PhoneDigits, p.BirthDate, p.Relationship,
		p.Zodiac, p.PhotoRef, p.Message, p.FavoriteColor, p.Hobbies, p.GiftIdeas, p.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the row inside its own transaction.
func (r *PersonRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const del = `DELETE FROM persons WHERE id=$1 AND user_id=$2`
	tag, err := tx.Exec(ctx, del, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// scanPerson reads one row in personColumns order.
func scanPerson(row pgx.Row) (*model.Person, error) {
	var p model.Person
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Nickname, &p.PhoneDigits, &p.BirthDate,
		&p.Relationship, &p.Zodiac, &p.PhotoRef, &p.Message, &p.FavoriteColor, &p.Hobbies,
		&p.GiftIdeas, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
