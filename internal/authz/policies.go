package authz

import (
	"github.com/erazemk/izposoja/internal/loan"
	"github.com/erazemk/izposoja/internal/model"
)

func registerPolicies(e *Engine) {
	registerItemPolicies(e)
	registerLoanPolicies(e)
	registerImagePolicies(e)
	registerProtocolPolicies(e)
	registerProfilePolicies(e)
	registerReviewPolicies(e)
	registerCategoryPolicies(e)
}

// Archetype constructors.

func admin() Voter {
	return Voter{ArchetypeAdmin, func(r Request) bool {
		return r.Identity.HasRole(model.RoleAdmin)
	}}
}

func guest(visible func(Request) bool) Voter {
	return Voter{ArchetypeGuest, visible}
}

func roleGate(role model.Role) Voter {
	return Voter{ArchetypeRole, func(r Request) bool {
		return r.Identity.HasRole(role)
	}}
}

func relationship(related func(Request) bool) Voter {
	return Voter{ArchetypeRelationship, related}
}

// isParty reports whether the identity is the loan's tenant or item owner.
func isParty(id *Identity, l *model.Loan) bool {
	return l != nil && (id.Is(l.TenantID) || id.Is(l.OwnerID()))
}

func isLoanOwner(id *Identity, l *model.Loan) bool {
	return l != nil && id.Is(l.OwnerID())
}

// Items.

func itemOf(r Request) *model.Item {
	it, _ := r.Resource.(*model.Item)
	return it
}

func registerItemPolicies(e *Engine) {
	public := func(r Request) bool {
		it := itemOf(r)
		return it != nil && it.Status == model.ItemStatusPublic
	}
	owner := func(r Request) bool {
		it := itemOf(r)
		return it != nil && r.Identity.Is(it.OwnerID)
	}
	liveOwner := func(r Request) bool {
		return owner(r) && itemOf(r).Status != model.ItemStatusDeleted
	}

	e.Register(ItemCreate, admin(), roleGate(model.RoleOwner))
	e.Register(ItemRead, admin(), guest(public), relationship(owner))
	e.Register(ItemUpdate, admin(), relationship(liveOwner))
	e.Register(ItemDelete, admin(), relationship(liveOwner))
	e.Register(ItemCreateImage, admin(), relationship(liveOwner))
}

// Loans.

func loanOf(r Request) *model.Loan {
	l, _ := r.Resource.(*model.Loan)
	return l
}

func registerLoanPolicies(e *Engine) {
	party := func(r Request) bool {
		return isParty(r.Identity, loanOf(r))
	}
	ownerWhen := func(eligible func(model.LoanStatus) bool) func(Request) bool {
		return func(r Request) bool {
			l := loanOf(r)
			return isLoanOwner(r.Identity, l) && eligible(l.Status)
		}
	}
	reviewer := func(r Request) bool {
		l := loanOf(r)
		return isParty(r.Identity, l) && l.Status == model.LoanStatusReturned
	}

	e.Register(LoanCreate, admin(), roleGate(model.RoleTenant))
	e.Register(LoanRead, admin(), relationship(party))
	e.Register(LoanUpdate, admin(), relationship(party))
	e.Register(LoanDelete, admin())
	e.Register(LoanCreatePickupProtocol, admin(), relationship(ownerWhen(loan.CanEditPickupProtocol)))
	e.Register(LoanCreateReturnProtocol, admin(), relationship(ownerWhen(loan.CanEditReturnProtocol)))
	e.Register(LoanCreateReview, admin(), relationship(reviewer))
}

// Images.

func imageOf(r Request) *model.Image {
	img, _ := r.Resource.(*model.Image)
	return img
}

// imageLoan returns the loan of a protocol image, or nil.
func imageLoan(img *model.Image) *model.Loan {
	switch {
	case img.PickupProtocol != nil:
		return img.PickupProtocol.Loan
	case img.ReturnProtocol != nil:
		return img.ReturnProtocol.Loan
	}
	return nil
}

func registerImagePolicies(e *Engine) {
	public := func(r Request) bool {
		img := imageOf(r)
		return img != nil && img.Item != nil && img.Item.Status == model.ItemStatusPublic
	}
	uploader := func(r Request) bool {
		img := imageOf(r)
		return img != nil && r.Identity.Is(img.OwnerID)
	}
	itemOwner := func(r Request) bool {
		img := imageOf(r)
		return img != nil && img.Item != nil && r.Identity.Is(img.Item.OwnerID)
	}
	loanParty := func(r Request) bool {
		img := imageOf(r)
		return img != nil && isParty(r.Identity, imageLoan(img))
	}
	// Item images go with the item; protocol images only while the
	// protocol is still editable.
	removable := func(r Request) bool {
		if !uploader(r) {
			return false
		}
		img := imageOf(r)
		switch {
		case img.Item != nil:
			return img.Item.Status != model.ItemStatusDeleted
		case img.PickupProtocol != nil:
			l := img.PickupProtocol.Loan
			return l != nil && loan.CanEditPickupProtocol(l.Status)
		case img.ReturnProtocol != nil:
			l := img.ReturnProtocol.Loan
			return l != nil && loan.CanEditReturnProtocol(l.Status)
		}
		return false
	}

	e.Register(ImageRead, admin(), guest(public), relationship(uploader), relationship(itemOwner), relationship(loanParty))
	e.Register(ImageDelete, admin(), relationship(removable))
}

// Protocols.

func pickupOf(r Request) *model.PickupProtocol {
	p, _ := r.Resource.(*model.PickupProtocol)
	return p
}

func returnOf(r Request) *model.ReturnProtocol {
	p, _ := r.Resource.(*model.ReturnProtocol)
	return p
}

func registerProtocolPolicies(e *Engine) {
	pickupParty := func(r Request) bool {
		p := pickupOf(r)
		return p != nil && isParty(r.Identity, p.Loan)
	}
	pickupEditor := func(r Request) bool {
		p := pickupOf(r)
		return p != nil && isLoanOwner(r.Identity, p.Loan) && loan.CanEditPickupProtocol(p.Loan.Status)
	}
	returnParty := func(r Request) bool {
		p := returnOf(r)
		return p != nil && isParty(r.Identity, p.Loan)
	}
	returnEditor := func(r Request) bool {
		p := returnOf(r)
		return p != nil && isLoanOwner(r.Identity, p.Loan) && loan.CanEditReturnProtocol(p.Loan.Status)
	}

	// Protocols are never deleted; only the admin override applies.
	e.Register(PickupProtocolCreate, admin(), relationship(pickupEditor))
	e.Register(PickupProtocolRead, admin(), relationship(pickupParty))
	e.Register(PickupProtocolUpdate, admin(), relationship(pickupEditor))
	e.Register(PickupProtocolDelete, admin())

	e.Register(ReturnProtocolCreate, admin(), relationship(returnEditor))
	e.Register(ReturnProtocolRead, admin(), relationship(returnParty))
	e.Register(ReturnProtocolUpdate, admin(), relationship(returnEditor))
	e.Register(ReturnProtocolDelete, admin())
}

// Profiles.

func registerProfilePolicies(e *Engine) {
	self := func(r Request) bool {
		p, _ := r.Resource.(*model.Profile)
		return p != nil && r.Identity.Is(p.UserID)
	}

	e.Register(ProfileCreate, admin(), relationship(self))
	e.Register(ProfileRead, admin(), roleGate(model.RoleUser), relationship(self))
	e.Register(ProfileUpdate, admin(), relationship(self))
	e.Register(ProfileDelete, admin(), relationship(self))
}

// Reviews.

func reviewOf(r Request) *model.Review {
	rv, _ := r.Resource.(*model.Review)
	return rv
}

func registerReviewPolicies(e *Engine) {
	public := func(r Request) bool {
		rv := reviewOf(r)
		return rv != nil && rv.Loan != nil && rv.Loan.Item != nil &&
			rv.Loan.Item.Status == model.ItemStatusPublic
	}
	author := func(r Request) bool {
		rv := reviewOf(r)
		return rv != nil && r.Identity.Is(rv.AuthorID)
	}
	party := func(r Request) bool {
		rv := reviewOf(r)
		return rv != nil && isParty(r.Identity, rv.Loan)
	}

	e.Register(ReviewRead, admin(), guest(public), relationship(author), relationship(party))
	e.Register(ReviewUpdate, admin(), relationship(author))
	e.Register(ReviewDelete, admin(), relationship(author))
}

// Categories.

func registerCategoryPolicies(e *Engine) {
	anyone := func(Request) bool { return true }

	e.Register(ItemCategoryCreate, admin())
	e.Register(ItemCategoryRead, admin(), guest(anyone))
	e.Register(ItemCategoryUpdate, admin())
	e.Register(ItemCategoryDelete, admin())
}
