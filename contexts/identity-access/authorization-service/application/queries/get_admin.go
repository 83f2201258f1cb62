package queries

// GetAdminUseCase exposes the configured admin account identity.
type GetAdminUseCase struct {
	AdminID string
}

func (uc GetAdminUseCase) Execute() string {
	return uc.AdminID
}
