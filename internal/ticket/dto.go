package ticket

// CreateTicketDTO is the body of POST /api/tickets. Any status sent by the
// caller is ignored.
type CreateTicketDTO struct {
	Title       string  `json:"title" validate:"notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Priority    string  `json:"priority"`
	AssetID     *int64  `json:"assetId" validate:"omitempty,gt=0"`
}

// UpdateTicketDTO is a merge-patch: nil fields are left untouched.
type UpdateTicketDTO struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *int64  `json:"assignedTo" validate:"omitempty,gt=0"`
}
