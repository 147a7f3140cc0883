package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/webshop/internal/database"
	"github.com/iliyamo/webshop/internal/model"
	"github.com/iliyamo/webshop/internal/utils"
)

// UserRepo is the credential store over the `user` table.
type UserRepo struct {
	db   database.Handle
	cost int
	// dummyHash is compared against when a username is unknown so that
	// VerifyPassword spends the same bcrypt time either way.
	dummyHash string
}

// NewUserRepo builds a UserRepo hashing with the given bcrypt cost.
func NewUserRepo(db database.Handle, cost int) (*UserRepo, error) {
	dummy, err := utils.HashPassword("webshop-dummy-password", cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &UserRepo{db: db, cost: cost, dummyHash: dummy}, nil
}

const selectUser = "SELECT id, first_name, last_name, username, pw, user_permissions FROM user WHERE username=? LIMIT 1"

// FindByUsername fetches a user by exact username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, selectUser, username).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.PasswordHash, &u.Permissions)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Create hashes the password and inserts a standard-permission user.
func (r *UserRepo) Create(ctx context.Context, firstName, lastName, username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, r.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO user (first_name, last_name, username, pw, user_permissions) VALUES (?,?,?,?,?)",
		firstName, lastName, username, hash, model.PermissionStandard)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return model.User{}, ErrDuplicateUsername
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return model.User{
		ID:           uint64(id),
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		PasswordHash: hash,
		Permissions:  model.PermissionStandard,
	}, nil
}

// VerifyPassword reports whether password matches the stored hash for
// username.  Unknown users and wrong passwords both yield false; only a
// storage failure returns an error.
func (r *UserRepo) VerifyPassword(ctx context.Context, username, password string) (bool, error) {
	_, ok, err := r.Authenticate(ctx, username, password)
	return ok, err
}

// Authenticate is VerifyPassword that also returns the stored user on
// success.  The stored username may differ in case from the one given, since
// the column collation is case-insensitive.
func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (model.User, bool, error) {
	u, err := r.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		utils.VerifyPassword(r.dummyHash, password)
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, false, nil
	}
	return u, true, nil
}

// Permissions returns the permission level of username.
func (r *UserRepo) Permissions(ctx context.Context, username string) (int, error) {
	var p int
	err := r.db.QueryRowContext(ctx, "SELECT user_permissions FROM user WHERE username=? LIMIT 1", username).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load permissions: %w", err)
	}
	return p, nil
}
