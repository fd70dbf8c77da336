package out_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	historyoutadapter "dsaboost/internal/modules/history/adapter/out"
	"dsaboost/internal/modules/history/domain"
	"dsaboost/internal/platform/markdown"
)

func TestVaultNoteWriterWritesSessionAndDailyNotes(t *testing.T) {
	t.Parallel()
	vault := t.TempDir()
	writer := historyoutadapter.NewVaultNoteWriter(vault, time.UTC)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := domain.Entry{
		ID: "e1", TopicID: "arrays", TopicTitle: "Arrays & Hashing",
		StartTime: start, EndTime: start.Add(27 * time.Minute),
		PlannedMinutes: 25, ActualMinutes: 27, OvertimeMinutes: 2, ProblemsSolved: 3, CompletedNormally: true,
	}
	second := domain.Entry{
		ID: "e2", TopicID: "heaps", TopicTitle: "Heaps",
		StartTime: start.Add(time.Hour), EndTime: start.Add(time.Hour + 10*time.Minute),
		PlannedMinutes: 25, ActualMinutes: 10, ProblemsSolved: 1,
	}

	path, err := writer.Write(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(vault, "sessions", "2026", "03", "01", "092700-arrays-hashing.md"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "completed_normally: true")
	assert.Contains(t, string(raw), "- Overtime: 2 min")

	_, err = writer.Write(ctx, second)
	require.NoError(t, err)

	daily, err := os.ReadFile(filepath.Join(vault, "sessions", "2026", "03", "01.md"))
	require.NoError(t, err)
	var meta struct {
		Sessions        int `yaml:"sessions"`
		StudyMinutes    int `yaml:"study_minutes"`
		OvertimeMinutes int `yaml:"overtime_minutes"`
		ProblemsSolved  int `yaml:"problems_solved"`
	}
	body, err := markdown.Decode(daily, &meta)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Sessions)
	assert.Equal(t, 37, meta.StudyMinutes)
	assert.Equal(t, 2, meta.OvertimeMinutes)
	assert.Equal(t, 4, meta.ProblemsSolved)

	lines := markdown.BlockLines(body, "sessions")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "- 09:27 [[092700-arrays-hashing|Arrays & Hashing]]"), lines[0])
	assert.Equal(t, "- 10:10 [[101000-heaps|Heaps]] 10 min, 1 problems", lines[1])
}
