package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/siwes-hub/logbook-api/internal/dto"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
	"github.com/siwes-hub/logbook-api/pkg/kvstore"
)

// UIStateService persists the portal's per-user view state (selected week,
// active tab) between sessions. State is keyed by the user's email; a request
// without one maps onto the store's sentinel key and persists nothing.
type UIStateService struct {
	store  kvstore.Store
	logger *zap.Logger
}

// NewUIStateService constructs a UIStateService.
func NewUIStateService(store kvstore.Store, logger *zap.Logger) *UIStateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UIStateService{store: store, logger: logger}
}

// Get returns the stored view state, zero values when nothing is stored.
func (s *UIStateService) Get(ctx context.Context, email string) (*dto.UIStateResponse, error) {
	raw, ok, err := s.store.Get(ctx, stateKey(email))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read view state")
	}
	resp := &dto.UIStateResponse{}
	if !ok {
		return resp, nil
	}
	if err := json.Unmarshal([]byte(raw), resp); err != nil {
		// Corrupt state is discarded rather than surfaced.
		s.logger.Warn("discarding unreadable view state", zap.String("key", stateKey(email)), zap.Error(err))
		return &dto.UIStateResponse{}, nil
	}
	return resp, nil
}

// Set stores the view state for the user.
func (s *UIStateService) Set(ctx context.Context, email string, req dto.UIStateRequest) error {
	data, err := json.Marshal(dto.UIStateResponse{SelectedWeek: req.SelectedWeek, ActiveTab: req.ActiveTab})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode view state")
	}
	if err := s.store.Set(ctx, stateKey(email), string(data)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store view state")
	}
	return nil
}

// Clear removes the stored view state.
func (s *UIStateService) Clear(ctx context.Context, email string) error {
	if err := s.store.Remove(ctx, stateKey(email)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear view state")
	}
	return nil
}

func stateKey(email string) string {
	if email == "" {
		return kvstore.Sentinel
	}
	return email
}
