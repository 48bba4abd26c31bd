package authz

// Entity is a protected resource type.
type Entity string

// Entities.
const (
	EntityItem           Entity = "Item"
	EntityLoan           Entity = "Loan"
	EntityImage          Entity = "Image"
	EntityPickupProtocol Entity = "PickupProtocol"
	EntityReturnProtocol Entity = "ReturnProtocol"
	EntityProfile        Entity = "Profile"
	EntityReview         Entity = "Review"
	EntityItemCategory   Entity = "ItemCategory"
)

// Operation is a named capability on one entity type. The values below are
// the only ones; the zero Operation is not part of the catalog.
type Operation struct {
	entity Entity
	name   string
}

// Entity returns the entity type the operation applies to.
func (o Operation) Entity() Entity { return o.entity }

// Name returns the bare operation name, e.g. "Update".
func (o Operation) Name() string { return o.name }

func (o Operation) String() string {
	if o.entity == "" {
		return "<none>"
	}
	return string(o.entity) + "." + o.name
}

// Item operations.
var (
	ItemCreate      = Operation{EntityItem, "Create"}
	ItemRead        = Operation{EntityItem, "Read"}
	ItemUpdate      = Operation{EntityItem, "Update"}
	ItemDelete      = Operation{EntityItem, "Delete"}
	ItemCreateImage = Operation{EntityItem, "CreateImage"}
)

// Loan operations.
var (
	LoanCreate               = Operation{EntityLoan, "Create"}
	LoanRead                 = Operation{EntityLoan, "Read"}
	LoanUpdate               = Operation{EntityLoan, "Update"}
	LoanDelete               = Operation{EntityLoan, "Delete"}
	LoanCreatePickupProtocol = Operation{EntityLoan, "CreatePickupProtocol"}
	LoanCreateReturnProtocol = Operation{EntityLoan, "CreateReturnProtocol"}
	LoanCreateReview         = Operation{EntityLoan, "CreateReview"}
)

// Image operations.
var (
	ImageRead   = Operation{EntityImage, "Read"}
	ImageDelete = Operation{EntityImage, "Delete"}
)

// Pickup protocol operations.
var (
	PickupProtocolCreate = Operation{EntityPickupProtocol, "Create"}
	PickupProtocolRead   = Operation{EntityPickupProtocol, "Read"}
	PickupProtocolUpdate = Operation{EntityPickupProtocol, "Update"}
	PickupProtocolDelete = Operation{EntityPickupProtocol, "Delete"}
)

// Return protocol operations.
var (
	ReturnProtocolCreate = Operation{EntityReturnProtocol, "Create"}
	ReturnProtocolRead   = Operation{EntityReturnProtocol, "Read"}
	ReturnProtocolUpdate = Operation{EntityReturnProtocol, "Update"}
	ReturnProtocolDelete = Operation{EntityReturnProtocol, "Delete"}
)

// Profile operations.
var (
	ProfileCreate = Operation{EntityProfile, "Create"}
	ProfileRead   = Operation{EntityProfile, "Read"}
	ProfileUpdate = Operation{EntityProfile, "Update"}
	ProfileDelete = Operation{EntityProfile, "Delete"}
)

// Review operations.
var (
	ReviewRead   = Operation{EntityReview, "Read"}
	ReviewUpdate = Operation{EntityReview, "Update"}
	ReviewDelete = Operation{EntityReview, "Delete"}
)

// Item category operations.
var (
	ItemCategoryCreate = Operation{EntityItemCategory, "Create"}
	ItemCategoryRead   = Operation{EntityItemCategory, "Read"}
	ItemCategoryUpdate = Operation{EntityItemCategory, "Update"}
	ItemCategoryDelete = Operation{EntityItemCategory, "Delete"}
)

// Catalog lists every operation per entity.
var Catalog = map[Entity][]Operation{
	EntityItem:           {ItemCreate, ItemRead, ItemUpdate, ItemDelete, ItemCreateImage},
	EntityLoan:           {LoanCreate, LoanRead, LoanUpdate, LoanDelete, LoanCreatePickupProtocol, LoanCreateReturnProtocol, LoanCreateReview},
	EntityImage:          {ImageRead, ImageDelete},
	EntityPickupProtocol: {PickupProtocolCreate, PickupProtocolRead, PickupProtocolUpdate, PickupProtocolDelete},
	EntityReturnProtocol: {ReturnProtocolCreate, ReturnProtocolRead, ReturnProtocolUpdate, ReturnProtocolDelete},
	EntityProfile:        {ProfileCreate, ProfileRead, ProfileUpdate, ProfileDelete},
	EntityReview:         {ReviewRead, ReviewUpdate, ReviewDelete},
	EntityItemCategory:   {ItemCategoryCreate, ItemCategoryRead, ItemCategoryUpdate, ItemCategoryDelete},
}
