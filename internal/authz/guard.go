// Package authz holds the ownership and visibility predicates applied before
// mutations and reads. Handlers translate the sentinel errors into the HTTP
// taxonomy: ErrNotOwner becomes 403, ErrHidden becomes 404 on direct
// fetches and a row filter on listings.
package authz

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotOwner indicates the acting user does not own the target entity.
	ErrNotOwner = errors.New("actor is not the owner")
	// ErrHidden indicates the entity is unpublished and the actor is not its owner.
	ErrHidden = errors.New("entity is not visible to actor")
	// ErrInvalidID indicates an externally supplied ID fails the store's format predicate.
	ErrInvalidID = errors.New("malformed entity id")
)

// ValidateID rejects malformed entity IDs before any store lookup.
func ValidateID(raw string) error {
	if _, err := uuid.Parse(raw); err != nil {
		return ErrInvalidID
	}
	return nil
}

// CanMutate allows update/delete/toggle-publish actions only for the owner.
func CanMutate(actorID, ownerID string) error {
	if actorID == "" || actorID != ownerID {
		return ErrNotOwner
	}
	return nil
}

// CanView allows reads of published entities by anyone and of unpublished
// entities only by their owner.
func CanView(actorID, ownerID string, published bool) error {
	if published {
		return nil
	}
	if actorID != "" && actorID == ownerID {
		return nil
	}
	return ErrHidden
}
