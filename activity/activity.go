// Package activity keeps a local audit log of the writes the admin panel
// made against the backend.
package activity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Kind names the entity collection an entry belongs to.
type Kind string

const (
	KindBlog       Kind = "blog"
	KindKeyFeature Kind = "key_feature"
	KindType       Kind = "type"
	KindCategory   Kind = "category"
)

// Action is the write that was confirmed by the backend.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionToggle Action = "toggle"
)

// Entry is one confirmed write.
type Entry struct {
	ID        int64     `json:"-"`
	Kind      Kind      `json:"kind"`
	EntityID  string    `json:"entity_id"`
	Action    Action    `json:"action"`
	Name      string    `json:"name"`
	ActorHash string    `json:"-"`
	At        time.Time `json:"at"`
}

// Summary aggregates the log over a period.
type Summary struct {
	Period   string      `json:"period"`
	Total    int         `json:"total"`
	ByKind   []CountStat `json:"by_kind"`
	ByAction []CountStat `json:"by_action"`
	Daily    []CountStat `json:"daily"`
	Latest   []Entry     `json:"latest"`
}

// CountStat is a named count.
type CountStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// salt holds the per-installation random salt for actor hashing.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads or generates the persistent salt used by HashActor.
// Call it once at startup before recording entries.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("read hash salt: %w", err)
			return
		}
		if s == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				initErr = fmt.Errorf("generate salt: %w", err)
				return
			}
			s = hex.EncodeToString(b)
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

// HashActor returns a salted, truncated SHA-256 of the acting client's IP,
// so entries can be grouped by actor without storing addresses.
func HashActor(ip string) string {
	h := sha256.New()
	h.Write([]byte(salt.value + ip))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// parsePeriod maps the period query parameter to a day count.
func parsePeriod(period string) (string, int) {
	switch period {
	case "today":
		return period, 1
	case "month":
		return period, 30
	case "year":
		return period, 365
	default:
		return "week", 7
	}
}

// calcTimeRange returns the from/to times covering days whole days up to
// and including today.
func calcTimeRange(now time.Time, days int) (time.Time, time.Time) {
	to := now.Add(24 * time.Hour).Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -days)
	return from, to
}
