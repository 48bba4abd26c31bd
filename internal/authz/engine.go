package authz

import "fmt"

// Archetype classifies voters.
type Archetype string

// Voter archetypes.
const (
	ArchetypeAdmin        Archetype = "admin"
	ArchetypeGuest        Archetype = "guest"
	ArchetypeRole         Archetype = "role"
	ArchetypeRelationship Archetype = "relationship"
)

// Request is what a voter sees.
type Request struct {
	Identity  *Identity
	Operation Operation
	Resource  any
}

// Voter grants an operation or abstains. Grants must not have side effects.
type Voter struct {
	Archetype Archetype
	Grants    func(Request) bool
}

// Decision is the outcome of one authorization check.
type Decision struct {
	Allowed   bool
	GrantedBy Archetype // empty when denied
	Err       error     // *DeniedError when denied
}

// Engine holds the voter table.
type Engine struct {
	voters map[Operation][]Voter
}

// NewEngine returns an engine with the marketplace policy table.
func NewEngine() *Engine {
	e := &Engine{voters: make(map[Operation][]Voter)}
	registerPolicies(e)
	return e
}

// Register appends voters for op. It must not be called concurrently with
// Decide or Authorize.
func (e *Engine) Register(op Operation, voters ...Voter) {
	e.voters[op] = append(e.voters[op], voters...)
}

// Supports reports whether op has voters registered.
func (e *Engine) Supports(op Operation) bool {
	_, ok := e.voters[op]
	return ok
}

// Decide runs every voter registered for op against the request. It panics
// with ErrUnsupportedOperation if op has none.
func (e *Engine) Decide(id *Identity, op Operation, resource any) Decision {
	voters, ok := e.voters[op]
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnsupportedOperation, op))
	}

	req := Request{Identity: id, Operation: op, Resource: resource}
	for _, v := range voters {
		if v.Grants(req) {
			return Decision{Allowed: true, GrantedBy: v.Archetype}
		}
	}

	if id == nil {
		return Decision{Err: &DeniedError{Operation: op, Err: ErrNotAuthenticated}}
	}
	return Decision{Err: &DeniedError{Operation: op, Err: ErrForbidden}}
}

// Authorize returns nil when id may perform op on resource, otherwise a
// *DeniedError wrapping ErrNotAuthenticated or ErrForbidden.
func (e *Engine) Authorize(id *Identity, op Operation, resource any) error {
	return e.Decide(id, op, resource).Err
}
