package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dsaboost/internal/modules/history/domain"
	historyout "dsaboost/internal/modules/history/port/out"
	"dsaboost/internal/platform/markdown"
	"dsaboost/internal/platform/slug"
)

const dailyBlock = "sessions"

type VaultNoteWriter struct {
	vaultPath string
	loc       *time.Location
}

// NewVaultNoteWriter files notes by local date in loc; nil means time.Local.
func NewVaultNoteWriter(vaultPath string, loc *time.Location) historyout.NoteWriter {
	if loc == nil {
		loc = time.Local
	}
	return &VaultNoteWriter{vaultPath: vaultPath, loc: loc}
}

type sessionFrontmatter struct {
	ID                string `yaml:"id"`
	Topic             string `yaml:"topic"`
	TopicTitle        string `yaml:"topic_title"`
	StartedAt         string `yaml:"started_at"`
	EndedAt           string `yaml:"ended_at"`
	PlannedMinutes    int    `yaml:"planned_minutes"`
	ActualMinutes     int    `yaml:"actual_minutes"`
	OvertimeMinutes   int    `yaml:"overtime_minutes"`
	ProblemsSolved    int    `yaml:"problems_solved"`
	CompletedNormally bool   `yaml:"completed_normally"`
}

type dailyFrontmatter struct {
	Date            string `yaml:"date"`
	Sessions        int    `yaml:"sessions"`
	StudyMinutes    int    `yaml:"study_minutes"`
	OvertimeMinutes int    `yaml:"overtime_minutes"`
	ProblemsSolved  int    `yaml:"problems_solved"`
}

// Write stores the note under sessions/YYYY/MM/DD/HHMMSS-<topic>.md and adds
// a line to that day's sessions/YYYY/MM/DD.md summary.
func (w *VaultNoteWriter) Write(_ context.Context, entry domain.Entry) (string, error) {
	end := entry.EndTime.In(w.loc)
	dayDir := filepath.Join(w.vaultPath, "sessions", end.Format("2006"), end.Format("01"), end.Format("02"))
	notePath := filepath.Join(dayDir, slug.SessionFile(entry.TopicTitle, end))
	if err := os.MkdirAll(dayDir, 0o755); err != nil {
		return "", fmt.Errorf("create session note dir: %w", err)
	}

	meta := sessionFrontmatter{
		ID:                entry.ID,
		Topic:             entry.TopicID,
		TopicTitle:        entry.TopicTitle,
		StartedAt:         entry.StartTime.In(w.loc).Format(time.RFC3339),
		EndedAt:           end.Format(time.RFC3339),
		PlannedMinutes:    entry.PlannedMinutes,
		ActualMinutes:     entry.ActualMinutes,
		OvertimeMinutes:   entry.OvertimeMinutes,
		ProblemsSolved:    entry.ProblemsSolved,
		CompletedNormally: entry.CompletedNormally,
	}
	rendered, err := markdown.Encode(meta, noteBody(entry))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(notePath, rendered, 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	if err := w.appendDaily(dayDir+".md", end, entry, strings.TrimSuffix(filepath.Base(notePath), ".md")); err != nil {
		return notePath, err
	}
	return notePath, nil
}

func (w *VaultNoteWriter) appendDaily(path string, end time.Time, entry domain.Entry, link string) error {
	meta := dailyFrontmatter{Date: end.Format("2006-01-02")}
	body := "# " + meta.Date + "\n"
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if body, err = markdown.Decode(raw, &meta); err != nil {
			return fmt.Errorf("read daily note: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("read daily note: %w", err)
	}

	meta.Sessions++
	meta.StudyMinutes += entry.ActualMinutes
	meta.OvertimeMinutes += entry.OvertimeMinutes
	meta.ProblemsSolved += entry.ProblemsSolved
	line := fmt.Sprintf("- %s [[%s|%s]] %d min, %d problems", end.Format("15:04"), link, entry.TopicTitle, entry.ActualMinutes, entry.ProblemsSolved)
	body = markdown.AppendToBlock(body, dailyBlock, line)

	rendered, err := markdown.Encode(meta, body)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return fmt.Errorf("write daily note: %w", err)
	}
	return nil
}

func noteBody(entry domain.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", entry.TopicTitle)
	outcome := "Stopped early"
	if entry.CompletedNormally {
		outcome = "Completed"
	}
	fmt.Fprintf(&b, "- %s after %d of %d planned minutes\n", outcome, entry.ActualMinutes, entry.PlannedMinutes)
	if entry.OvertimeMinutes > 0 {
		fmt.Fprintf(&b, "- Overtime: %d min\n", entry.OvertimeMinutes)
	}
	fmt.Fprintf(&b, "- Problems solved: %d\n\n## Notes\n", entry.ProblemsSolved)
	return b.String()
}
