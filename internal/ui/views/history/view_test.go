package history_test

import (
	"testing"
	"time"

	historydto "dsaboost/internal/modules/history/dto"
	"dsaboost/internal/ui/views/history"
)

func TestRows(t *testing.T) {
	t.Parallel()
	rows := history.Rows([]historydto.EntryOutput{{
		TopicTitle: "Graphs", StartTime: time.Now(), ActualMinutes: 27,
		PlannedDurationSeconds: 1500, OvertimeMinutes: 2, ProblemsSolved: 3, CompletedNormally: true,
	}})
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	got := rows[0]
	if got[1] != "Graphs" || got[2] != "27" || got[3] != "25" || got[4] != "2" || got[5] != "3" || got[6] != "✓" {
		t.Fatalf("row = %v", got)
	}
}
