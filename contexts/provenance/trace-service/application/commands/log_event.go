package commands

import (
	"context"
	"log/slog"
	"strings"

	application "tracechain/contexts/provenance/trace-service/application"
	"tracechain/contexts/provenance/trace-service/domain/entities"
	domainerrors "tracechain/contexts/provenance/trace-service/domain/errors"
	"tracechain/contexts/provenance/trace-service/ports"
)

type LogEventCommand struct {
	CallerID  string
	ProductID uint64
	Kind      string
}

type LogEventUseCase struct {
	Repo        ports.Repository
	Authorizer  ports.Authorizer
	Clock       ports.Clock
	RepeatLimit int
	Logger      *slog.Logger
}

type LogEventResult struct {
	Event         entities.Event
	Product       entities.Product
	OwnerChanged  bool
	PreviousOwner string
}

func (uc LogEventUseCase) Execute(ctx context.Context, cmd LogEventCommand) (LogEventResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	if caller == "" {
		return LogEventResult{}, domainerrors.ErrInvalidAccountID
	}

	authorized, err := uc.Authorizer.IsAuthorized(ctx, caller)
	if err != nil {
		return LogEventResult{}, err
	}
	if !authorized {
		return LogEventResult{}, domainerrors.ErrUnauthorized
	}

	kind, ok := entities.ParseEventKind(cmd.Kind)
	if !ok {
		return LogEventResult{}, domainerrors.ErrInvalidEventKind
	}

	result, err := uc.Repo.AppendEvent(ctx, ports.AppendEventInput{
		ProductID:   cmd.ProductID,
		Actor:       caller,
		Kind:        kind,
		Now:         uc.Clock.Now().UTC(),
		RepeatLimit: uc.RepeatLimit,
	})
	if err != nil {
		return LogEventResult{}, err
	}

	logger.Info("lifecycle event logged",
		"event", "lifecycle_event_logged",
		"module", "provenance/trace-service",
		"layer", "application",
		"product_id", result.Event.ProductID,
		"kind", string(result.Event.Kind),
		"sequence", result.Event.Sequence,
		"actor", result.Event.Actor,
	)
	if result.OwnerChanged {
		logger.Info("ownership transferred",
			"event", "ownership_transferred",
			"module", "provenance/trace-service",
			"layer", "application",
			"product_id", result.Event.ProductID,
			"from_owner", result.PreviousOwner,
			"to_owner", result.Product.Owner,
		)
	}
	return LogEventResult{
		Event:         result.Event,
		Product:       result.Product,
		OwnerChanged:  result.OwnerChanged,
		PreviousOwner: result.PreviousOwner,
	}, nil
}
