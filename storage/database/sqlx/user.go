package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/user"
)

const userTable = `"user"`

var userColumns = []string{
	"id", "name", "username", "email", "is_active", "roles",
	"password_hash", "created_at", "updated_at", "last_login",
}

type dbUser struct {
	ID           int            `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (u dbUser) toUser() user.User {
	return user.User{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		IsActive:     u.IsActive,
		Roles:        u.Roles,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLogin:    u.LastLogin.Time,
	}
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	base := psql.Select("1").From(userTable)
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		base = base.Where(sq.NotEq{"id": ids})
	}

	taken, err := exists(ctx, repo.exec, base.Where(sq.Eq{"username": username}))
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if taken {
		return user.ErrUsernameExists
	}

	taken, err = exists(ctx, repo.exec, base.Where(sq.Eq{"email": email}))
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if taken {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	stmt, args, err := psql.Insert(userTable).
		Columns("name", "username", "email", "is_active", "roles", "password_hash", "created_at", "updated_at").
		Values(usr.Name, usr.Username, usr.Email, usr.IsActive, pq.StringArray(usr.Roles),
			usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return user.User{}, err
	}
	if err = getExec(repo.exec, exec).QueryRowContext(ctx, stmt, args...).Scan(&usr.ID); err != nil {
		return user.User{}, wrapWriteError(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) queryUsers(ctx context.Context, query sq.SelectBuilder) ([]user.User, error) {
	var rows []dbUser
	if err := selectStructs(ctx, repo.exec, query, &rows); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo userRepository) getUser(ctx context.Context, pred interface{}, args ...interface{}) (user.User, error) {
	users, err := repo.queryUsers(ctx, psql.Select(userColumns...).From(userTable).Where(pred, args...))
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	return repo.queryUsers(ctx, psql.Select(userColumns...).From(userTable).OrderBy("id"))
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"id": id})
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"username": username})
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"email": email})
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, sq.Or{sq.Eq{"username": username}, sq.Eq{"email": username}})
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	query := psql.Select(userColumns...).From(userTable)

	// users with Name, Username or Email matching the search keyword
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		query = query.Where(sq.Or{
			sq.ILike{"name": val}, sq.ILike{"username": val}, sq.ILike{"email": val},
		})
	}
	// users with any role that starts with any of the provided roles
	if len(filter.Roles) > 0 {
		pred := make(sq.Or, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			pred = append(pred, sq.Expr(
				`id IN (SELECT id FROM "user", UNNEST(roles) user_role WHERE user_role ILIKE ?)`, role+"%"))
		}
		query = query.Where(pred)
	}
	if filter.IsActive != nil {
		query = query.Where(sq.Eq{"is_active": *filter.IsActive})
	}
	if !filter.CreatedFrom.IsZero() {
		query = query.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
	}
	if !filter.CreatedTo.IsZero() {
		query = query.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
	}

	if len(ordering) > 0 {
		for _, ord := range ordering {
			query = query.OrderBy(ord.String())
		}
	} else {
		query = query.OrderBy("id")
	}
	return repo.queryUsers(ctx, query)
}

// UpdateUser only updates the non-zero fields of usr. isActive is applied
// when non-nil.
func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	query := psql.Update(userTable).Where(sq.Eq{"id": usr.ID})
	if usr.Name != "" {
		query = query.Set("name", usr.Name)
	}
	if usr.Username != "" {
		query = query.Set("username", usr.Username)
	}
	if usr.Email != "" {
		query = query.Set("email", usr.Email)
	}
	if usr.Roles != nil {
		query = query.Set("roles", pq.StringArray(usr.Roles))
	}
	if usr.PasswordHash != nil {
		query = query.Set("password_hash", usr.PasswordHash)
	}
	if isActive != nil {
		query = query.Set("is_active", *isActive)
	}
	query = query.Set("updated_at", usr.UpdatedAt)

	if err := execStmt(ctx, getExec(repo.exec, exec), query); err != nil {
		return user.User{}, wrapWriteError(err, "updating user")
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	existing, err := repo.GetUserByUsernameOrEmail(ctx, usr.Username)
	if err == user.ErrNotFound {
		return repo.CreateUser(ctx, usr)
	}
	if err != nil {
		return user.User{}, err
	}
	usr.ID = existing.ID
	return repo.UpdateUser(ctx, usr, &usr.IsActive)
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	usr.LastLogin = time.Now().UTC()
	query := psql.Update(userTable).
		Set("last_login", usr.LastLogin).
		Where(sq.Eq{"id": usr.ID})
	if err := execStmt(ctx, repo.exec, query); err != nil {
		return user.User{}, errors.Wrap(err, "setting last login")
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return errors.Wrap(execStmt(ctx, repo.exec, psql.Delete(userTable).Where(sq.Eq{"id": ids})), "deleting users")
}
