package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"loremaster/internal/entities"
)

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	err := r.db.QueryRow(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at",
		user.Username, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	return translate(err, "user")
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*entities.User, error) {
	return r.get(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.get(ctx, sq.Eq{"username": username})
}

func (r *UserRepository) get(ctx context.Context, where sq.Sqlizer) (*entities.User, error) {
	row, err := queryRow(ctx, r.db, psql.Select("id", "username", "email", "password_hash", "created_at").
		From("users").Where(where))
	if err != nil {
		return nil, err
	}
	var user entities.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, hash string) error {
	return execOne(ctx, r.db, psql.Update("users").
		Set("password_hash", hash).
		Where(sq.Eq{"id": id}), "user")
}
