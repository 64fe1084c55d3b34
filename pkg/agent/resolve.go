package agent

import (
	"context"
	"fmt"

	"taskboard/pkg/task"
)

// resolveAssignee turns a free-text name into a canonical user reference
// via case-insensitive substring match against the directory. When the
// pattern matches several users the first match wins; zero matches fail
// the command so the caller can surface the unknown name.
func (a *Agent) resolveAssignee(ctx context.Context, name string) (task.UserRef, error) {
	matches, err := a.users.MatchName(ctx, name)
	if err != nil {
		return task.UserRef{}, fmt.Errorf("match assignee %q: %w", name, err)
	}
	if len(matches) == 0 {
		return task.UserRef{}, fmt.Errorf("%w: %s", ErrNoUserMatch, name)
	}
	u := matches[0]
	return task.UserRef{UserID: u.ID, Name: u.Name, Email: u.Email}, nil
}
