package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dsaboost/internal/modules/activity/domain"
	"dsaboost/internal/modules/activity/dto"
	activityin "dsaboost/internal/modules/activity/port/in"
	activityout "dsaboost/internal/modules/activity/port/out"
	"dsaboost/internal/platform/clock"
	apperrors "dsaboost/internal/platform/errors"
)

// TopicURL is the pseudo address logged for the topic view itself.
func TopicURL(topicID string) string {
	return "dsaboost://topics/" + topicID
}

type Interactor struct {
	clock  clock.Clock
	kv     activityout.KeyValue
	logger *slog.Logger
	mu     sync.Mutex
}

func NewInteractor(clk clock.Clock, kv activityout.KeyValue, logger *slog.Logger) activityin.Usecase {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Interactor{clock: clk, kv: kv, logger: logger.With("component", "activity")}
}

func (i *Interactor) StartTracking(ctx context.Context, topicID, topicTitle string) error {
	if strings.TrimSpace(topicID) == "" {
		return fmt.Errorf("%w: topic is required", apperrors.ErrInvalidInput)
	}
	if topicTitle == "" {
		topicTitle = topicID
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	now := i.clock.Now()
	initial := domain.Visit{URL: TopicURL(topicID), Title: topicTitle, Timestamp: now}
	return i.saveTracking(ctx, domain.NewTracking(topicID, topicTitle, initial, now))
}

func (i *Interactor) Visit(ctx context.Context, url, title string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: url is required", apperrors.ErrInvalidInput)
	}
	if title == "" {
		title = url
	}
	return i.mutate(ctx, func(t *domain.Tracking, now time.Time) bool {
		t.Navigate(domain.Visit{URL: url, Title: title, Timestamp: now}, now)
		return true
	})
}

func (i *Interactor) Hidden(ctx context.Context) error {
	return i.mutate(ctx, func(t *domain.Tracking, now time.Time) bool {
		if t.Current == nil {
			return false
		}
		t.Hide(now)
		return true
	})
}

// Visible reopens the most recent page after the user comes back.
func (i *Interactor) Visible(ctx context.Context) error {
	return i.mutate(ctx, func(t *domain.Tracking, now time.Time) bool {
		visit := domain.Visit{URL: TopicURL(t.TopicInfo.TopicID), Title: t.TopicInfo.TopicTitle, Timestamp: now}
		if n := len(t.History); n > 0 {
			visit.URL = t.History[n-1].URL
			visit.Title = t.History[n-1].Title
		}
		return t.Show(visit)
	})
}

// StopTracking ends the log. Only completed sessions are kept.
func (i *Interactor) StopTracking(ctx context.Context, completed bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	tracking, err := i.loadTracking(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if completed {
		done := tracking.Finish(i.clock.Now())
		sessions, err := i.loadCompleted(ctx)
		if err != nil {
			return err
		}
		sessions = append(sessions, done)
		if err := i.setJSON(ctx, domain.CompletedKey, sessions); err != nil {
			return err
		}
	}
	return i.kv.Remove(ctx, domain.TrackingKey)
}

func (i *Interactor) Current(ctx context.Context) (dto.TrackingOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	tracking, err := i.loadTracking(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return dto.TrackingOutput{Visits: []dto.VisitOutput{}}, nil
	}
	if err != nil {
		return dto.TrackingOutput{}, err
	}
	now := i.clock.Now()
	out := dto.TrackingOutput{
		Tracking:   true,
		TopicID:    tracking.TopicInfo.TopicID,
		TopicTitle: tracking.TopicInfo.TopicTitle,
		StartTime:  time.UnixMilli(tracking.StartTime),
		Visits:     toVisits(tracking.History),
	}
	if tracking.Current != nil {
		open := toVisit(*tracking.Current)
		open.Open = true
		open.Duration = now.Sub(tracking.Current.Timestamp)
		out.Visits = append(out.Visits, open)
	}
	return out, nil
}

func (i *Interactor) Completed(ctx context.Context) ([]dto.CompletedOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	sessions, err := i.loadCompleted(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CompletedOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.CompletedOutput{
			TopicID:    session.TopicID,
			TopicTitle: session.TopicTitle,
			StartTime:  time.UnixMilli(session.StartTime),
			Total:      session.TotalDuration(),
			Visits:     toVisits(session.History),
		})
	}
	return out, nil
}

// Clear drops the visits logged so far but keeps tracking the session.
func (i *Interactor) Clear(ctx context.Context) error {
	return i.mutate(ctx, func(t *domain.Tracking, _ time.Time) bool {
		t.Clear()
		return true
	})
}

func (i *Interactor) ClearCompleted(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.kv.Remove(ctx, domain.CompletedKey)
}

func (i *Interactor) mutate(ctx context.Context, fn func(*domain.Tracking, time.Time) bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	tracking, err := i.loadTracking(ctx)
	if err != nil {
		return err
	}
	if !fn(&tracking, i.clock.Now()) {
		return nil
	}
	return i.saveTracking(ctx, tracking)
}

func (i *Interactor) loadTracking(ctx context.Context) (domain.Tracking, error) {
	raw, err := i.kv.Get(ctx, domain.TrackingKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.Tracking{}, apperrors.ErrNoActiveSession
	}
	if err != nil {
		return domain.Tracking{}, err
	}
	tracking := domain.Tracking{}
	if err := json.Unmarshal(raw, &tracking); err != nil {
		i.logger.Warn("discard unreadable activity log", "op", "load", "error", err)
		return domain.Tracking{}, apperrors.ErrNoActiveSession
	}
	return tracking, nil
}

func (i *Interactor) saveTracking(ctx context.Context, tracking domain.Tracking) error {
	return i.setJSON(ctx, domain.TrackingKey, tracking)
}

func (i *Interactor) loadCompleted(ctx context.Context) ([]domain.CompletedSession, error) {
	raw, err := i.kv.Get(ctx, domain.CompletedKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return []domain.CompletedSession{}, nil
	}
	if err != nil {
		return nil, err
	}
	sessions := []domain.CompletedSession{}
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, fmt.Errorf("decode completed sessions: %w", err)
	}
	return sessions, nil
}

func (i *Interactor) setJSON(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return i.kv.Set(ctx, key, payload)
}

func toVisits(visits []domain.Visit) []dto.VisitOutput {
	out := make([]dto.VisitOutput, 0, len(visits))
	for _, visit := range visits {
		out = append(out, toVisit(visit))
	}
	return out
}

func toVisit(visit domain.Visit) dto.VisitOutput {
	out := dto.VisitOutput{URL: visit.URL, Title: visit.Title, Timestamp: visit.Timestamp}
	if visit.VisitDuration != nil {
		out.Duration = time.Duration(*visit.VisitDuration) * time.Millisecond
	}
	return out
}
