// Package appcontext provides request-scoped values extraction.
package appcontext

import (
	"context"
)

// Actor contains the authenticated user identity attached to every mutating
// call. It is issued by the upstream auth service; this core only carries it
// for audit attribution.
type Actor struct {
	UserID string
	Email  string
	Name   string
}

type actorContextKey struct{}

// WithActor adds Actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns Actor from context.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorContextKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// GetActorID returns the acting user id from context or empty string.
func GetActorID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.UserID
	}
	return ""
}
