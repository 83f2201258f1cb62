package httpadapter

import (
	"context"
	"log/slog"

	"tracechain/contexts/identity-access/authorization-service/application/commands"
	"tracechain/contexts/identity-access/authorization-service/application/queries"
	httptransport "tracechain/contexts/identity-access/authorization-service/transport/http"
)

type Handler struct {
	GrantAccess  commands.GrantAccessUseCase
	RevokeAccess commands.RevokeAccessUseCase
	CheckAccess  queries.CheckAccessUseCase
	GetAdmin     queries.GetAdminUseCase
	Logger       *slog.Logger
}

func (h Handler) GrantAccessHandler(
	ctx context.Context,
	accountID string,
	req httptransport.GrantAccessRequest,
) (httptransport.GrantAccessResponse, error) {
	err := h.GrantAccess.Execute(ctx, commands.GrantAccessCommand{
		CallerID:  accountID,
		AccountID: req.AccountID,
	})
	if err != nil {
		return httptransport.GrantAccessResponse{}, err
	}
	return httptransport.GrantAccessResponse{
		AccountID:  req.AccountID,
		Authorized: true,
	}, nil
}

func (h Handler) RevokeAccessHandler(
	ctx context.Context,
	accountID string,
	req httptransport.RevokeAccessRequest,
) (httptransport.RevokeAccessResponse, error) {
	err := h.RevokeAccess.Execute(ctx, commands.RevokeAccessCommand{
		CallerID:  accountID,
		AccountID: req.AccountID,
	})
	if err != nil {
		return httptransport.RevokeAccessResponse{}, err
	}
	return httptransport.RevokeAccessResponse{
		AccountID:  req.AccountID,
		Authorized: false,
	}, nil
}

func (h Handler) CheckAccessHandler(ctx context.Context, accountID string) (httptransport.CheckAccessResponse, error) {
	authorized, err := h.CheckAccess.IsAuthorized(ctx, accountID)
	if err != nil {
		return httptransport.CheckAccessResponse{}, err
	}
	return httptransport.CheckAccessResponse{
		AccountID:  accountID,
		Authorized: authorized,
	}, nil
}

func (h Handler) GetAdminHandler(_ context.Context) httptransport.GetAdminResponse {
	return httptransport.GetAdminResponse{AdminID: h.GetAdmin.Execute()}
}
