package wallet

import (
	"fmt"
	"math"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// LamportsToSOL converts lamports to SOL.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSOL
}

// SOLToLamports converts SOL to lamports, rounding to the nearest lamport.
func SOLToLamports(sol float64) uint64 {
	if sol <= 0 {
		return 0
	}
	return uint64(math.Round(sol * LamportsPerSOL))
}

// FormatBalance renders a SOL amount the way the wallet panel shows it.
func FormatBalance(sol float64) string {
	if sol == 0 {
		return "0 SOL"
	}
	return fmt.Sprintf("%.3f SOL", sol)
}

// ShortenPK keeps the first and last chars of a key with "..." between.
// chars <= 0 uses 5.
func ShortenPK(pk string, chars int) string {
	if chars <= 0 {
		chars = 5
	}
	if len(pk) <= chars*2 {
		return pk
	}

	return pk[:chars] + "..." + pk[len(pk)-chars:]
}
