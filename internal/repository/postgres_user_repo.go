package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
// dbがnilの場合は縮退モードとして動作する。
type PostgresUserRepo struct {
	db          *sql.DB
	ownerOpenID string
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
// ownerOpenIDに一致するopen_idのユーザーは、role未指定のUPSERT時に
// 自動的にadminロールが付与される。
func NewPostgresUserRepo(db *sql.DB, ownerOpenID string) *PostgresUserRepo {
	return &PostgresUserRepo{db: db, ownerOpenID: ownerOpenID}
}

// FindByOpenID は外部IdPのopenIdでユーザーを検索する。
// 見つからない場合・DB未接続の場合はnilを返す。
func (r *PostgresUserRepo) FindByOpenID(ctx context.Context, openID string) (*model.User, error) {
	if r.db == nil {
		return nil, nil
	}

	user := &model.User{}
	var name, email, loginMethod sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, open_id, name, email, login_method, role, created_at, updated_at, last_signed_in
		 FROM users WHERE open_id = $1`,
		openID,
	).Scan(&user.ID, &user.OpenID, &name, &email, &loginMethod,
		&user.Role, &user.CreatedAt, &user.UpdatedAt, &user.LastSignedIn)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by open_id: %w", err)
	}

	user.Name = name.String
	user.Email = email.String
	user.LoginMethod = loginMethod.String

	return user, nil
}

// Upsert はopen_idをキーにユーザーをINSERTまたはUPDATEする。
// nilフィールドは既存行の値を変更しない。
func (r *PostgresUserRepo) Upsert(ctx context.Context, u model.UserUpsert) error {
	if u.OpenID == "" {
		return fmt.Errorf("open_id is required for upsert")
	}
	if r.db == nil {
		return model.NewDatabaseUnavailableError()
	}

	query, args := buildUserUpsert(u, r.ownerOpenID, time.Now())
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// buildUserUpsert はUPSERT文と引数を構築する純関数。
// 指定されたフィールドのみをINSERT列・UPDATE SET句に含めることで
// 「未指定は変更しない」契約を実現する。
// roleが未指定かつopen_idがownerOpenIDに一致する場合はadminを強制する。
// last_signed_inが未指定の場合はnowで補完する。
// UPDATE SET句が空になる場合はlast_signed_in = nowのみを更新する
// （ログインの都度呼ばれるため、最低限サインイン時刻は進める）。
func buildUserUpsert(u model.UserUpsert, ownerOpenID string, now time.Time) (string, []any) {
	cols := []string{"open_id"}
	args := []any{u.OpenID}
	var sets []string

	add := func(col string, val any) {
		cols = append(cols, col)
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.LoginMethod != nil {
		add("login_method", *u.LoginMethod)
	}

	switch {
	case u.Role != nil:
		add("role", string(*u.Role))
	case ownerOpenID != "" && u.OpenID == ownerOpenID:
		// オーナー識別子には自動的に管理者権限を付与する
		add("role", string(model.RoleAdmin))
	}

	if u.LastSignedIn != nil {
		add("last_signed_in", *u.LastSignedIn)
	} else {
		cols = append(cols, "last_signed_in")
		args = append(args, now)
	}

	if len(sets) == 0 {
		sets = append(sets, "last_signed_in = EXCLUDED.last_signed_in")
	}
	sets = append(sets, "updated_at = now()")

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		`INSERT INTO users (%s) VALUES (%s) ON CONFLICT (open_id) DO UPDATE SET %s`,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(sets, ", "),
	)

	return query, args
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
