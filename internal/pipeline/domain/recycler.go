package domain

import "time"

// ScanResult splits a pipeline load into leads due for recycling and the rest.
type ScanResult struct {
	ToRestore []CRMLead
	Unchanged []CRMLead
}

// Scan selects leads whose recycle time has passed. It does not modify its
// input; ToRestore holds copies with the lost -> prospecting edge applied.
// Rescanning restored leads is a no-op since their RecycleAt is nil.
func Scan(leads []CRMLead, now time.Time) ScanResult {
	var res ScanResult
	for _, l := range leads {
		if !l.RecycleDue(now) {
			res.Unchanged = append(res.Unchanged, l)
			continue
		}
		restored := l.Clone()
		restored.Recycle(now)
		res.ToRestore = append(res.ToRestore, restored)
	}
	return res
}
