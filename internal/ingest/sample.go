package ingest

import "math/rand"

// Sample reduces rows to at most limit entries chosen uniformly at random.
// A limit <= 0 or >= len(rows) returns the input unchanged. Otherwise the
// slice is shuffled in place with Fisher–Yates and truncated, so every row
// has equal selection probability. math/rand is adequate here; sampling is
// not adversarial.
func Sample(rows []Row, limit int) []Row {
	if limit <= 0 || limit >= len(rows) {
		return rows
	}
	for i := len(rows) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows[:limit]
}
