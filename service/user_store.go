package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/nileshkulkarniy/emotionsense/model"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists      = errors.New("user already exists with this email or username")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrNoChanges       = errors.New("no changes made to profile")
)

// 资料更新只允许这些字段；id 和 email 由 handler 层剥离
var updatableFields = map[string]string{
	"username":  "username",
	"full_name": "full_name",
	"password":  "password_hash",
}

// UserStore 唯一拥有账号记录的组件，负责密码散列和唯一性约束
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(dataSourceName string) (*UserStore, error) {
	db, err := sqlx.Connect("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &UserStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *UserStore) Close() error {
	return s.db.Close()
}

func (s *UserStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		last_login TIMESTAMP
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (username);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Register 创建新账号，用户名和邮箱各自全局唯一
func (s *UserStore) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`, email, username)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		// 并发注册时唯一索引仍然兜底
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrUserExists
		}
		return nil, err
	}

	utils.Logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", username))

	return user, nil
}

// Authenticate 按邮箱查找并校验密码，成功后记录最近登录时间
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`, now, user.ID); err != nil {
		utils.Logger.Warn("failed to stamp last login",
			zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	return &user, nil
}

// GetByID 按ID查询账号
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile 更新资料字段；password 字段会重新散列，
// 未命中任何行时报告 ErrNoChanges
func (s *UserStore) UpdateProfile(ctx context.Context, id string, updates map[string]any) (*model.User, error) {
	setClauses := make([]string, 0, len(updates))
	args := make([]any, 0, len(updates)+1)

	for field, value := range updates {
		column, ok := updatableFields[field]
		if !ok {
			continue // 未知字段直接忽略
		}

		if field == "password" {
			password, ok := value.(string)
			if !ok {
				return nil, ErrInvalidPassword
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			value = string(hash)
		}

		setClauses = append(setClauses, column+" = ?")
		args = append(args, value)
	}

	if len(setClauses) == 0 {
		return nil, ErrNoChanges
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = ?`, strings.Join(setClauses, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrUserExists
		}
		return nil, err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, ErrNoChanges
	}

	return s.GetByID(ctx, id)
}

// VerifyPassword 校验某个账号的当前密码
func (s *UserStore) VerifyPassword(ctx context.Context, id, password string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
