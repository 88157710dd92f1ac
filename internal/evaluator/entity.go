package evaluator

import "log/slog"

// runEntity contains a panic to the one entity being processed, so a bad
// record cannot abort the remainder of a sweep.
func runEntity(sweep string, id int64, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("entity processing panic recovered",
				"sweep", sweep, "entity_id", id, "panic", r)
		}
	}()
	fn()
}
