package shared

import "context"

// Actor identifies the caller of an operation. Authentication itself is an
// external collaborator; the HTTP layer fills this in from request metadata.
type Actor struct {
	ID   int64
	Role string
}

type actorContextKey struct{}

// ContextWithActor stores the actor in the context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext retrieves the actor, or a zero Actor when absent.
func ActorFromContext(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorContextKey{}).(Actor); ok {
		return actor
	}
	return Actor{}
}
