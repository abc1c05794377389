package storage

import (
	"context"
	"fmt"
	"time"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/constants"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss 键不存在，包装redis.Nil以屏蔽底层实现
var ErrCacheMiss = redis.Nil

// Redis 键值存储，承载简历文本MD5去重集合与岗位技能文本缓存
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端连接
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis配置不能为空")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis地址不能为空")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	// 注册OpenTelemetry追踪钩子
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("注册Redis追踪钩子失败: %w", err)
	}

	return &Redis{Client: client, config: cfg}, nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	return r.Client.Close()
}

// CheckTextMD5Exists 检查简历文本MD5是否已出现过（重复投递识别）
func (r *Redis) CheckTextMD5Exists(ctx context.Context, md5Hex string) (bool, error) {
	exists, err := r.Client.SIsMember(ctx, constants.KeyResumeTextMD5Set, md5Hex).Result()
	if err != nil {
		return false, fmt.Errorf("查询MD5去重集合失败: %w", err)
	}
	return exists, nil
}

// RecordTextMD5 将简历文本MD5记入去重集合，并刷新集合过期时间
func (r *Redis) RecordTextMD5(ctx context.Context, md5Hex string) error {
	if err := r.Client.SAdd(ctx, constants.KeyResumeTextMD5Set, md5Hex).Err(); err != nil {
		return fmt.Errorf("写入MD5去重集合失败: %w", err)
	}
	if r.config.MD5RecordExpireDays > 0 {
		expire := time.Duration(r.config.MD5RecordExpireDays) * 24 * time.Hour
		if err := r.Client.Expire(ctx, constants.KeyResumeTextMD5Set, expire).Err(); err != nil {
			return fmt.Errorf("设置MD5去重集合过期时间失败: %w", err)
		}
	}
	return nil
}

// GetRoleSkillsText 读取岗位技能文本缓存，未命中返回ErrCacheMiss
func (r *Redis) GetRoleSkillsText(ctx context.Context, roleID string) (string, error) {
	key := fmt.Sprintf(constants.KeyRoleSkillsText, roleID)
	return r.Client.Get(ctx, key).Result()
}

// SetRoleSkillsText 写入岗位技能文本缓存
func (r *Redis) SetRoleSkillsText(ctx context.Context, roleID string, skillsText string) error {
	key := fmt.Sprintf(constants.KeyRoleSkillsText, roleID)
	return r.Client.Set(ctx, key, skillsText, constants.RoleSkillsCacheDuration).Err()
}

// InvalidateRoleSkillsText 岗位变更后失效缓存
func (r *Redis) InvalidateRoleSkillsText(ctx context.Context, roleID string) error {
	key := fmt.Sprintf(constants.KeyRoleSkillsText, roleID)
	return r.Client.Del(ctx, key).Err()
}
