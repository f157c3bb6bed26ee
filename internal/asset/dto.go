package asset

// CreateAssetDTO is the body of POST /api/assets. A missing status means
// Available and a missing or blank qrCode is generated.
type CreateAssetDTO struct {
	Name        string  `json:"name" validate:"notblank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	QRCode      *string `json:"qrCode" validate:"omitempty,max=100"`
	Status      string  `json:"status"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
}

// UpdateAssetDTO is a merge-patch: nil fields are left untouched.
type UpdateAssetDTO struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	QRCode      *string `json:"qrCode" validate:"omitempty,max=100"`
	Status      *string `json:"status"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
}
