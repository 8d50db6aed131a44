// Package policy decides whether an actor may change a resource.
package policy

import (
	"fmt"

	"github.com/utafrali/devcamper/internal/domain"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
)

// CanMutate reports whether actor may update or delete a resource owned by ownerID.
func CanMutate(ownerID string, actor domain.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID != "" && ownerID == actor.ID
}

// CanCreateBootcamp reports whether actor may publish another bootcamp.
// Non-admins are limited to one.
func CanCreateBootcamp(actor domain.Actor, alreadyOwnsOne bool) bool {
	return actor.IsAdmin() || !alreadyOwnsOne
}

// Authorize returns a Forbidden error unless actor may mutate the resource
// identified by kind and id.
func Authorize(ownerID string, actor domain.Actor, kind, id string) error {
	if CanMutate(ownerID, actor) {
		return nil
	}
	return apperrors.Forbidden(fmt.Sprintf("user %s is not authorized to modify %s %s", actor.ID, kind, id))
}

// AuthorizeBootcampCreation returns a Forbidden error when a non-admin already owns a bootcamp.
func AuthorizeBootcampCreation(actor domain.Actor, alreadyOwnsOne bool) error {
	if CanCreateBootcamp(actor, alreadyOwnsOne) {
		return nil
	}
	return apperrors.Forbidden(fmt.Sprintf("the user with id %s has already published a bootcamp", actor.ID))
}
