package agent

import (
	"fmt"

	"taskboard/pkg/task"
)

const (
	shortIDPrefix    = "TASK-"
	shortIDSuffixLen = 4
)

// FormatTaskID derives the display id for a task: "TASK-" plus the last
// four characters of the full id. Not unique across the whole task
// universe; the per-command index disambiguates against current tasks.
func FormatTaskID(fullID string) string {
	if len(fullID) <= shortIDSuffixLen {
		return shortIDPrefix + fullID
	}
	return shortIDPrefix + fullID[len(fullID)-shortIDSuffixLen:]
}

// shortIDIndex maps short display ids back to full ids for one command
// invocation. Rebuilt from a fresh snapshot every time, so it is never
// stale versus concurrent creates and deletes.
type shortIDIndex struct {
	byShort map[string]string
	full    map[string]bool
}

func buildShortIDIndex(tasks []task.Task) *shortIDIndex {
	idx := &shortIDIndex{
		byShort: make(map[string]string, len(tasks)),
		full:    make(map[string]bool, len(tasks)),
	}
	for _, t := range tasks {
		// Suffix collisions: the later task wins. Accepted trade-off
		// of the 4-character scheme.
		idx.byShort[FormatTaskID(t.ID)] = t.ID
		idx.full[t.ID] = true
	}
	return idx
}

// resolve maps one id supplied by the model to a full task id. Both the
// short form and an exact full id are accepted.
func (idx *shortIDIndex) resolve(id string) (string, error) {
	if full, ok := idx.byShort[id]; ok {
		return full, nil
	}
	if idx.full[id] {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidTaskID, id)
}

// resolveAll resolves every id, failing fast on the first unknown one.
func (idx *shortIDIndex) resolveAll(ids []string) ([]string, error) {
	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		full, err := idx.resolve(id)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, full)
	}
	return resolved, nil
}
