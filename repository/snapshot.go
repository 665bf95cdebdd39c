package repository

import "context"

// Storage keys for whole-object snapshots. Both stores write the full
// snapshot on every mutation and read it back once at startup.
const (
	KeySession    = "auth-session-storage"
	KeyTheme      = "theme-storage"
	KeyCredential = "sessionId"
)

// SnapshotRepository persists whole-object state snapshots durably across
// process restarts. Last write wins when the backing file is shared.
type SnapshotRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}
