package dedupe

// Package dedupe provides shared singleflight groups used to deduplicate
// concurrent collaborator requests. Only one generation job runs for a given
// key while other callers wait for the result.

import "golang.org/x/sync/singleflight"

// ScanGroup deduplicates environment generation keyed by keys.ScanKey.
var ScanGroup singleflight.Group

// EvaluateGroup deduplicates narration keyed by keys.EvaluateKey.
var EvaluateGroup singleflight.Group
