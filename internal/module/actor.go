package module

import (
	"context"
	"strconv"
)

// ActorHeader carries the id of the user a request acts as. Requests
// without it are treated as anonymous.
const ActorHeader = "X-Acting-User"

type actorKey struct{}

// WithActor returns a context carrying the acting user id.
func WithActor(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// ActorFrom returns the acting user id stashed in the context.
func ActorFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(actorKey{}).(int64)
	return id, ok
}

// ParseActor parses an actor header value into a user id.
func ParseActor(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}
