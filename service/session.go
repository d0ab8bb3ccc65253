package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nileshkulkarniy/emotionsense/config"
	"github.com/nileshkulkarniy/emotionsense/model"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionService 将登录会话写入Redis，依靠TTL自动过期
type SessionService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionService(cfg *config.RedisConfig) *SessionService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &SessionService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *SessionService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Create 为用户创建一个会话记录
func (s *SessionService) Create(ctx context.Context, userID string) (*model.Session, error) {
	now := time.Now()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}

	if err := s.client.Set(ctx, "session:"+session.ID, data, s.ttl).Err(); err != nil {
		return nil, err
	}
	return session, nil
}

// Get 查询会话；过期或不存在返回 nil
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	data, err := s.client.Get(ctx, "session:"+sessionID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 会话不存在或已过期
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		utils.Logger.Error("failed to unmarshal session",
			zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	return &session, nil
}

// Delete 删除会话
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, "session:"+sessionID).Err()
}

func (s *SessionService) Close() error {
	return s.client.Close()
}
