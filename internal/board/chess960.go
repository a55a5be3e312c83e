package board

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// GenerateChess960FEN returns a random Fischer-random starting
// position: bishops on opposite colors, king between the rooks.
// Castling rights are omitted; the rules engine does not implement
// Chess960 castling, so games from these positions are castle-free.
func GenerateChess960FEN() string {
	var rank [8]byte

	// bishops first, one on a light square, one on a dark square
	rank[randN(4)*2+1] = 'B'
	rank[randN(4)*2] = 'B'

	placeRandom(&rank, 'Q')
	placeRandom(&rank, 'N')
	placeRandom(&rank, 'N')

	// remaining three empty squares get R, K, R left to right,
	// which keeps the king between the rooks
	order := []byte{'R', 'K', 'R'}
	for i, j := 0, 0; i < 8 && j < len(order); i++ {
		if rank[i] == 0 {
			rank[i] = order[j]
			j++
		}
	}

	white := string(rank[:])
	black := strings.ToLower(white)

	return black + "/pppppppp/8/8/8/8/PPPPPPPP/" + white + " w - - 0 1"
}

func placeRandom(rank *[8]byte, piece byte) {
	var empty []int
	for i := 0; i < 8; i++ {
		if rank[i] == 0 {
			empty = append(empty, i)
		}
	}
	rank[empty[randN(len(empty))]] = piece
}

func randN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
