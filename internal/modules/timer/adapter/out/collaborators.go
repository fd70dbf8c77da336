package out

import (
	"context"

	activityin "dsaboost/internal/modules/activity/port/in"
	historydto "dsaboost/internal/modules/history/dto"
	historyin "dsaboost/internal/modules/history/port/in"
	identityin "dsaboost/internal/modules/identity/port/in"
	notifydto "dsaboost/internal/modules/notify/dto"
	notifyin "dsaboost/internal/modules/notify/port/in"
	progressin "dsaboost/internal/modules/progress/port/in"
	"dsaboost/internal/modules/timer/dto"
	timerout "dsaboost/internal/modules/timer/port/out"
)

type HistoryRecorder struct {
	history historyin.Usecase
}

func NewHistoryRecorder(history historyin.Usecase) timerout.HistoryRecorder {
	return &HistoryRecorder{history: history}
}

func (r *HistoryRecorder) Record(ctx context.Context, userID string, result dto.Result) (bool, error) {
	out, err := r.history.Record(ctx, historydto.RecordInput{
		UserID:                 userID,
		TopicID:                result.TopicID,
		TopicTitle:             result.TopicTitle,
		StartTime:              result.StartTime,
		EndTime:                result.EndTime,
		PlannedDurationSeconds: result.PlannedDurationSeconds,
		ProblemsSolved:         result.ProblemsSolved,
		Completed:              result.Trigger == dto.TriggerCompletion,
	})
	if err != nil {
		return false, err
	}
	return out.Recorded, nil
}

type ProgressRecorder struct {
	progress progressin.Usecase
}

func NewProgressRecorder(progress progressin.Usecase) timerout.ProgressRecorder {
	return &ProgressRecorder{progress: progress}
}

func (r *ProgressRecorder) RecordStudy(ctx context.Context, userID, topicID string, minutes int) error {
	_, err := r.progress.RecordStudy(ctx, userID, topicID, minutes)
	return err
}

// ActivityTracker is the activity usecase seen through the timer's port.
type ActivityTracker struct {
	activityin.Usecase
}

func NewActivityTracker(activity activityin.Usecase) timerout.ActivityTracker {
	return ActivityTracker{Usecase: activity}
}

type Notifier struct {
	notify notifyin.Usecase
}

func NewNotifier(notify notifyin.Usecase) timerout.Notifier {
	return &Notifier{notify: notify}
}

func (n *Notifier) SessionEnded(ctx context.Context, userID string, result dto.Result) error {
	return n.notify.SessionEnded(ctx, notifydto.SessionEndedInput{
		UserID:          userID,
		Completed:       result.Trigger == dto.TriggerCompletion,
		TopicID:         result.TopicID,
		TopicTitle:      result.TopicTitle,
		ActualMinutes:   result.ActualMinutes,
		PlannedMinutes:  result.PlannedMinutes,
		OvertimeMinutes: result.OvertimeMinutes,
		ProblemsSolved:  result.ProblemsSolved,
	})
}

type IdentityProvider struct {
	identity identityin.Usecase
}

func NewIdentityProvider(identity identityin.Usecase) timerout.IdentityProvider {
	return &IdentityProvider{identity: identity}
}

func (p *IdentityProvider) CurrentUserID(ctx context.Context) string {
	current, err := p.identity.Current(ctx)
	if err != nil {
		return ""
	}
	return current.UserID
}
