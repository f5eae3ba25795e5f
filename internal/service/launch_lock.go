package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var errLaunchLockBusy = errors.New("launch lock busy")

// LaunchLocker 串行化同一 (user, course) 的 find-or-create
type LaunchLocker interface {
	Lock(ctx context.Context, userID, courseID string) (unlock func(), err error)
}

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisLaunchLocker struct {
	Client     *redis.Client
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

func NewRedisLaunchLocker(client *redis.Client, ttl time.Duration) *RedisLaunchLocker {
	return &RedisLaunchLocker{
		Client:     client,
		TTL:        ttl,
		Retries:    20,
		RetryDelay: 50 * time.Millisecond,
	}
}

func launchLockKey(userID, courseID string) string {
	return fmt.Sprintf("scorm:launch:%s:%s", userID, courseID)
}

func (l *RedisLaunchLocker) Lock(ctx context.Context, userID, courseID string) (func(), error) {
	key := launchLockKey(userID, courseID)
	token := uuid.NewString()

	for i := 0; i <= l.Retries; i++ {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return func() {}, err
		}
		if ok {
			return func() {
				// 请求 ctx 可能已取消，释放锁使用独立 ctx
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				releaseScript.Run(releaseCtx, l.Client, []string{key}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return func() {}, ctx.Err()
		case <-time.After(l.RetryDelay):
		}
	}
	return func() {}, errLaunchLockBusy
}
