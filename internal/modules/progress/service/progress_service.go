package service

import (
	"fmt"
	"strings"
	"time"

	"dsaboost/internal/modules/progress/domain"
	"dsaboost/internal/modules/progress/dto"
	progressout "dsaboost/internal/modules/progress/port/out"
	"dsaboost/internal/platform/clock"
	apperrors "dsaboost/internal/platform/errors"
	"dsaboost/internal/platform/id"
)

type ProgressService struct {
	clock   clock.Clock
	ids     id.Generator
	catalog progressout.Catalog
}

func NewProgressService(clk clock.Clock, ids id.Generator, catalog progressout.Catalog) *ProgressService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if ids == nil {
		ids = id.UUID{}
	}
	return &ProgressService{clock: clk, ids: ids, catalog: catalog}
}

func (s *ProgressService) Now() time.Time {
	return s.clock.Now()
}

func (s *ProgressService) Catalog() progressout.Catalog {
	return s.catalog
}

// MaxProblems falls back to the default for topics outside the catalog.
func (s *ProgressService) MaxProblems(topicID string) int {
	if topic, ok := s.catalog.Find(topicID); ok {
		return topic.MaxProblems()
	}
	return domain.DefaultMaxProblems
}

func (s *ProgressService) Validate(userID, topicID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(topicID) == "" {
		return fmt.Errorf("%w: user and topic are required", apperrors.ErrInvalidInput)
	}
	return nil
}

// Seed returns current, or a fresh row when none exists yet.
func (s *ProgressService) Seed(current domain.Progress, found bool, userID, topicID string) domain.Progress {
	if found {
		return current
	}
	return domain.NewProgress(s.ids.New(), userID, topicID, s.clock.Now())
}

func ToOutput(p domain.Progress) dto.ProgressOutput {
	return dto.ProgressOutput{
		TopicID:        p.TopicID,
		ProblemsSolved: p.ProblemsSolved,
		MasteryLevel:   p.MasteryLevel,
		Completed:      p.Completed,
		StudyMinutes:   p.StudyMinutes,
		LastStudied:    p.LastStudied,
	}
}

func ToTopicOutput(topic domain.Topic, p domain.Progress) dto.TopicOutput {
	out := ToOutput(p)
	out.TopicID = topic.ID
	return dto.TopicOutput{
		ID:            topic.ID,
		Title:         topic.Title,
		Category:      topic.Category,
		Difficulty:    topic.Difficulty,
		EstimatedTime: topic.EstimatedTime,
		ProblemsCount: topic.MaxProblems(),
		Progress:      out,
	}
}
