package postgres

import (
	"fmt"

	sonic "github.com/bytedance/sonic"

	"github.com/courtwire/courtwire/internal/domain/gamestate"
)

// stateJSON sorts map keys so serialized snapshots compare byte-for-byte
// across refetches.
var stateJSON = sonic.Config{SortMapKeys: true}.Froze()

type gameStateTableModel struct {
	EventID       string `db:"event_id"`
	SequenceIndex int    `db:"sequence_index"`
	Period        int    `db:"period"`
	Clock         string `db:"clock"`
	HomeScore     int    `db:"home_score"`
	AwayScore     int    `db:"away_score"`
	PlayerPoints  string `db:"player_points"`
	IsFinalState  bool   `db:"is_final_state"`
}

func mapGameStateToRow(item gamestate.GameState) (gameStateTableModel, error) {
	points := item.PlayerPoints
	if points == nil {
		points = map[string]map[int64]int{}
	}
	encoded, err := stateJSON.Marshal(points)
	if err != nil {
		return gameStateTableModel{}, fmt.Errorf("encode player points event=%s seq=%d: %w", item.EventID, item.SequenceIndex, err)
	}

	return gameStateTableModel{
		EventID:       item.EventID,
		SequenceIndex: item.SequenceIndex,
		Period:        item.Period,
		Clock:         item.Clock,
		HomeScore:     item.HomeScore,
		AwayScore:     item.AwayScore,
		PlayerPoints:  string(encoded),
		IsFinalState:  item.IsFinalState,
	}, nil
}

func mapGameStateRow(row gameStateTableModel) (gamestate.GameState, error) {
	points := map[string]map[int64]int{}
	if row.PlayerPoints != "" {
		if err := sonic.Unmarshal([]byte(row.PlayerPoints), &points); err != nil {
			return gamestate.GameState{}, fmt.Errorf("decode player points event=%s seq=%d: %w", row.EventID, row.SequenceIndex, err)
		}
	}

	return gamestate.GameState{
		EventID:       row.EventID,
		SequenceIndex: row.SequenceIndex,
		Period:        row.Period,
		Clock:         row.Clock,
		HomeScore:     row.HomeScore,
		AwayScore:     row.AwayScore,
		PlayerPoints:  points,
		IsFinalState:  row.IsFinalState,
	}, nil
}
