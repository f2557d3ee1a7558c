package domain

import (
	"time"

	"go.trai.ch/bake/internal/core/fingerprint"
)

// CacheEntry is the persisted record of a builder's last successful run.
type CacheEntry struct {
	UID         string               `json:"uid" msgpack:"uid"`
	Fingerprint fingerprint.Protocol `json:"fingerprint" msgpack:"fingerprint"`
	Outputs     OutputSet            `json:"outputs" msgpack:"outputs"`
	RecordedAt  time.Time            `json:"recorded_at" msgpack:"recorded_at"`
}
