package gameserver

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
	"github.com/mitchelldurbincs/go2048/internal/game/rules"
)

// ErrBadRequest is returned when a request struct is missing a field or
// carries one of the wrong kind
var ErrBadRequest = errors.New("bad request")

// Request and state field names
const (
	fieldGameID     = "game_id"
	fieldPlayer     = "player"
	fieldSeed       = "seed"
	fieldDirection  = "direction"
	fieldRequestID  = "request_id"
	fieldBoard      = "board"
	fieldMoves      = "moves"
	fieldMaxMoves   = "max_moves"
	fieldScore      = "score"
	fieldMaxTile    = "max_tile"
	fieldWon        = "won"
	fieldStuck      = "stuck"
	fieldOver       = "over"
	fieldOutcome    = "outcome"
	fieldPhase      = "phase"
	fieldLegalMoves = "legal_moves"
	fieldActionMask = "action_mask"
	fieldMoved      = "moved"
)

func stringField(req *structpb.Struct, name string, required bool) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok || v.GetKind() == nil {
		if required {
			return "", fmt.Errorf("%w: %s is required", ErrBadRequest, name)
		}
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrBadRequest, name)
	}
	return s.StringValue, nil
}

func integerValue(v *structpb.Value, name string) (int64, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", ErrBadRequest, name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > 1<<53 {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, name)
	}
	return int64(n.NumberValue), nil
}

// parseCreateRequest reads {player?, seed?}
func parseCreateRequest(req *structpb.Struct) (string, *int64, error) {
	player, err := stringField(req, fieldPlayer, false)
	if err != nil {
		return "", nil, err
	}

	v, ok := req.GetFields()[fieldSeed]
	if !ok {
		return player, nil, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return player, nil, nil
	}
	seed, err := integerValue(v, fieldSeed)
	if err != nil {
		return "", nil, err
	}
	return player, &seed, nil
}

// parseGameID reads {game_id}
func parseGameID(req *structpb.Struct) (string, error) {
	return stringField(req, fieldGameID, true)
}

// parseMoveRequest reads {game_id, direction, request_id?}. direction is a
// code 0-3 or a name such as "left"; an out-of-range code is passed through
// so the engine rejects it.
func parseMoveRequest(req *structpb.Struct) (string, int, string, error) {
	gameID, err := parseGameID(req)
	if err != nil {
		return "", 0, "", err
	}
	requestID, err := stringField(req, fieldRequestID, false)
	if err != nil {
		return "", 0, "", err
	}

	v, ok := req.GetFields()[fieldDirection]
	if !ok {
		return "", 0, "", fmt.Errorf("%w: %s is required", ErrBadRequest, fieldDirection)
	}
	if s, isString := v.GetKind().(*structpb.Value_StringValue); isString {
		d, ok := core.DirectionFromName(s.StringValue)
		if !ok {
			return "", 0, "", fmt.Errorf("%w: %q", core.ErrInvalidDirection, s.StringValue)
		}
		return gameID, int(d), requestID, nil
	}
	code, err := integerValue(v, fieldDirection)
	if err != nil {
		return "", 0, "", err
	}
	return gameID, int(code), requestID, nil
}

func boardToList(b core.Board) []interface{} {
	rows := make([]interface{}, core.Size)
	for r := 0; r < core.Size; r++ {
		row := make([]interface{}, core.Size)
		for c := 0; c < core.Size; c++ {
			row[c] = b[r][c]
		}
		rows[r] = row
	}
	return rows
}

// stateMap is the JSON-shaped form of a GameState. action_mask is indexed
// by direction code, for agents that want a fixed-width action vector.
func stateMap(s GameState) map[string]interface{} {
	legal := make([]interface{}, len(s.LegalMoves))
	for i, code := range s.LegalMoves {
		legal[i] = code
	}
	var mask []interface{}
	for _, ok := range rules.ActionMask(s.Board) {
		mask = append(mask, ok)
	}
	return map[string]interface{}{
		fieldGameID:     s.GameID,
		fieldPlayer:     s.Player,
		fieldBoard:      boardToList(s.Board),
		fieldMoves:      s.Moves,
		fieldMaxMoves:   s.MaxMoves,
		fieldScore:      s.Score,
		fieldMaxTile:    s.MaxTile,
		fieldWon:        s.Won,
		fieldStuck:      s.Stuck,
		fieldOver:       s.Over,
		fieldOutcome:    s.Outcome,
		fieldPhase:      s.Phase,
		fieldLegalMoves: legal,
		fieldActionMask: mask,
	}
}

// StateMap exposes the wire form of a state for other transports
func StateMap(s GameState) map[string]interface{} { return stateMap(s) }

func stateToStruct(s GameState) (*structpb.Struct, error) {
	return structpb.NewStruct(stateMap(s))
}

func moveResultToStruct(r MoveResult) (*structpb.Struct, error) {
	m := stateMap(r.State)
	m[fieldMoved] = r.Moved
	return structpb.NewStruct(m)
}

// stateFromStruct decodes a state response
func stateFromStruct(st *structpb.Struct) (GameState, error) {
	f := st.GetFields()
	s := GameState{
		GameID:   f[fieldGameID].GetStringValue(),
		Player:   f[fieldPlayer].GetStringValue(),
		Moves:    int(f[fieldMoves].GetNumberValue()),
		MaxMoves: int(f[fieldMaxMoves].GetNumberValue()),
		Score:    uint64(f[fieldScore].GetNumberValue()),
		MaxTile:  uint32(f[fieldMaxTile].GetNumberValue()),
		Won:      f[fieldWon].GetBoolValue(),
		Stuck:    f[fieldStuck].GetBoolValue(),
		Over:     f[fieldOver].GetBoolValue(),
		Outcome:  f[fieldOutcome].GetStringValue(),
		Phase:    f[fieldPhase].GetStringValue(),
	}

	rows := f[fieldBoard].GetListValue().GetValues()
	if len(rows) != core.Size {
		return GameState{}, core.ErrInvalidShape
	}
	for r, row := range rows {
		cells := row.GetListValue().GetValues()
		if len(cells) != core.Size {
			return GameState{}, core.ErrInvalidShape
		}
		for c, cell := range cells {
			s.Board[r][c] = uint32(cell.GetNumberValue())
		}
	}

	for _, v := range f[fieldLegalMoves].GetListValue().GetValues() {
		s.LegalMoves = append(s.LegalMoves, int(v.GetNumberValue()))
	}
	return s, nil
}
