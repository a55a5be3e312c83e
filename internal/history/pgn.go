package history

import (
	"fmt"
	"strings"
)

const standardStartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// BuildPGN renders the record as PGN text with headers and numbered
// SAN movetext. Non-standard starting positions get SetUp/FEN tags.
func BuildPGN(rec *Record) string {
	if rec == nil {
		return ""
	}
	result := pgnResult(rec.Result)

	var b strings.Builder
	b.WriteString("[Event \"Chess960 Arena\"]\n")
	date := rec.EndedAt
	if date.IsZero() {
		date = rec.StartedAt
	}
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(rec.WhiteID)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(rec.BlackID)))
	if strings.TrimSpace(rec.TimeControl) != "" {
		b.WriteString(fmt.Sprintf("[TimeControl \"%s\"]\n", sanitizePGN(rec.TimeControl)))
	}
	if fen := strings.TrimSpace(rec.InitialFEN); fen != "" && fen != standardStartFEN {
		b.WriteString("[SetUp \"1\"]\n")
		b.WriteString(fmt.Sprintf("[FEN \"%s\"]\n", sanitizePGN(fen)))
	}
	if strings.TrimSpace(rec.EndReason) != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(strings.ToLower(rec.EndReason))))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", result))

	for i := 0; i < len(rec.MovesSAN); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, strings.TrimSpace(rec.MovesSAN[i])))
		if i+1 < len(rec.MovesSAN) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(rec.MovesSAN[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

func pgnResult(result string) string {
	switch strings.ToUpper(strings.TrimSpace(result)) {
	case "WHITE_WON":
		return "1-0"
	case "BLACK_WON":
		return "0-1"
	case "DRAW":
		return "1/2-1/2"
	default:
		return "*"
	}
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
