// Package authz decides whether an identity may perform an operation on a
// resource.
//
// Every operation in the catalog has a short list of voters registered
// against it. A voter either grants or abstains; it never vetoes. The engine
// grants when any voter grants, so adding a voter can only widen access.
//
// Voters come in four archetypes:
//   - admin: the identity holds the admin role
//   - guest: the resource is publicly visible; nobody needs to be logged in
//   - role: the identity holds a capability role (owner, tenant, user) and
//     the operation needs no relationship to a specific instance
//   - relationship: the identity is the owner, tenant, author or user the
//     resource refers to, subject to the resource's state
//
// When nobody grants, an absent identity yields ErrNotAuthenticated and a
// present one ErrForbidden.
//
// Resources are passed already loaded, with the relationships the voters
// read populated: an item's owner id, a loan's item and tenant, a protocol's
// loan (and its item), an image's parent, a review's loan and item.
//
// # Thread Safety
//
// An Engine is safe for concurrent use once construction (including any
// Register calls) is finished.
package authz
