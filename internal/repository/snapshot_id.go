package repository

import (
	"fmt"

	"github.com/google/uuid"
)

// newSnapshotID スナップショットIDを生成
func newSnapshotID() string {
	return fmt.Sprintf("trail_%s", uuid.New().String())
}
