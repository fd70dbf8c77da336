package out

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"dsaboost/internal/modules/session/domain"
	sessionout "dsaboost/internal/modules/session/port/out"
)

// RedisChangeFeed fans active-session writes out to every device of a user
// over a per-user pub/sub channel.
type RedisChangeFeed struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisChangeFeed(client *redis.Client, logger *slog.Logger) *RedisChangeFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisChangeFeed{client: client, logger: logger.With("component", "change_feed")}
}

var _ sessionout.ChangeFeed = (*RedisChangeFeed)(nil)

func ConnectRedis(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password})
}

type wireRecord struct {
	UserID          string     `json:"user_id"`
	IsActive        bool       `json:"is_active"`
	TopicID         string     `json:"topic_id,omitempty"`
	TopicTitle      string     `json:"topic_title,omitempty"`
	StartTime       *time.Time `json:"start_time"`
	TimeLeft        int        `json:"time_left"`
	PlannedDuration int        `json:"planned_duration"`
	ProblemsSolved  int        `json:"problems_solved"`
	DeviceID        string     `json:"device_id"`
	LastUpdated     time.Time  `json:"last_updated"`
	Seq             string     `json:"seq"`
}

func (f *RedisChangeFeed) Publish(ctx context.Context, record domain.ActiveSessionRecord) error {
	payload, err := json.Marshal(toWire(record))
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := f.client.Publish(ctx, channelFor(record.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Subscribe returns once the subscription is confirmed and delivers messages
// until ctx is cancelled.
func (f *RedisChangeFeed) Subscribe(ctx context.Context, userID string, fn func(domain.ActiveSessionRecord)) error {
	pubsub := f.client.Subscribe(ctx, channelFor(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", userID, err)
	}
	go func() {
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				wire := wireRecord{}
				if err := json.Unmarshal([]byte(msg.Payload), &wire); err != nil {
					f.logger.Warn("ignore malformed change", "user_id", userID, "error", err)
					continue
				}
				fn(fromWire(wire))
			}
		}
	}()
	return nil
}

func channelFor(userID string) string {
	return "active_sessions:" + userID + ":changes"
}

func toWire(r domain.ActiveSessionRecord) wireRecord {
	return wireRecord{
		UserID:          r.UserID,
		IsActive:        r.IsActive,
		TopicID:         r.TopicID,
		TopicTitle:      r.TopicTitle,
		StartTime:       r.StartTime,
		TimeLeft:        r.TimeLeft,
		PlannedDuration: r.PlannedDurationSeconds,
		ProblemsSolved:  r.ProblemsSolved,
		DeviceID:        r.DeviceID,
		LastUpdated:     r.LastUpdated,
		Seq:             r.Seq,
	}
}

func fromWire(w wireRecord) domain.ActiveSessionRecord {
	return domain.ActiveSessionRecord{
		UserID:                 w.UserID,
		IsActive:               w.IsActive,
		TopicID:                w.TopicID,
		TopicTitle:             w.TopicTitle,
		StartTime:              w.StartTime,
		TimeLeft:               w.TimeLeft,
		PlannedDurationSeconds: w.PlannedDuration,
		ProblemsSolved:         w.ProblemsSolved,
		DeviceID:               w.DeviceID,
		LastUpdated:            w.LastUpdated,
		Seq:                    w.Seq,
	}
}
