package identity

import "context"

// Kind distinguishes the classes of actors that issue commands against the
// core. The automation process is just another actor: it gets extra
// entry points, not extra concurrency privileges.
type Kind string

const (
	KindUser       Kind = "user"
	KindAgent      Kind = "agent"
	KindAutomation Kind = "automation"
)

// Actor identifies who is issuing a command. Resolved by the embedding
// layer (session cookie, API key, ...) before the core is invoked.
type Actor struct {
	ID   string
	Kind Kind
}

func (a Actor) IsZero() bool {
	return a.ID == ""
}

type actorKey struct{}

func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
