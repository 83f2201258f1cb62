package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GrantAccessRequest authorizes an account to record lifecycle events.
type GrantAccessRequest struct {
	AccountID string `json:"account_id"`
}

type GrantAccessResponse struct {
	AccountID  string `json:"account_id"`
	Authorized bool   `json:"authorized"`
}

// RevokeAccessRequest removes an account from the authorized set.
type RevokeAccessRequest struct {
	AccountID string `json:"account_id"`
}

type RevokeAccessResponse struct {
	AccountID  string `json:"account_id"`
	Authorized bool   `json:"authorized"`
}

type CheckAccessResponse struct {
	AccountID  string `json:"account_id"`
	Authorized bool   `json:"authorized"`
}

type GetAdminResponse struct {
	AdminID string `json:"admin_id"`
}
