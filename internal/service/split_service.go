// Package service exposes the session operations as a Connect RPC API.
package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitflow/internal/auth"
	"github.com/mmynk/splitflow/internal/dashboard"
	"github.com/mmynk/splitflow/internal/middleware"
	"github.com/mmynk/splitflow/internal/models"
	"github.com/mmynk/splitflow/internal/session"
	"github.com/mmynk/splitflow/internal/splitform"
	"github.com/mmynk/splitflow/internal/storage"
)

// SplitService implements splitflow.v1.SplitService.
type SplitService struct {
	sessions   *session.Manager
	jwtManager *auth.JWTManager
	dashboards *dashboard.Builder
}

// NewSplitService creates a new SplitService.
func NewSplitService(sessions *session.Manager, jwtManager *auth.JWTManager, dashboards *dashboard.Builder) *SplitService {
	return &SplitService{sessions: sessions, jwtManager: jwtManager, dashboards: dashboards}
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, session.ErrSplitNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, splitform.ErrUnknownField), errors.Is(err, session.ErrUnknownTab):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, splitform.ErrNotSubmittable),
		errors.Is(err, session.ErrWalletNotConnected),
		errors.Is(err, session.ErrFormClosed):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// stateResponse wraps a mutation result, logging failures.
func stateResponse(procedure string, sess *models.Session, err error) (*connect.Response[StateResponse], error) {
	if err != nil {
		slog.Error(procedure+" failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&StateResponse{State: NewState(sess)}), nil
}

// StartSession creates a session and returns the bearer token for it.
func (s *SplitService) StartSession(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StartSessionResponse], error) {
	sess, err := s.sessions.Start(ctx)
	if err != nil {
		slog.Error("StartSession failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(sess.ID)
	if err != nil {
		slog.Error("Failed to generate token", "session_id", sess.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Session started", "session_id", sess.ID)
	return connect.NewResponse(&StartSessionResponse{Token: token, State: NewState(sess)}), nil
}

// GetState returns the current session state.
func (s *SplitService) GetState(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	sess, err := s.sessions.Get(ctx, middleware.GetSessionID(ctx))
	return stateResponse("GetState", sess, err)
}

// ConnectWallet simulates connecting a wallet.
func (s *SplitService) ConnectWallet(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	sess, err := s.sessions.ConnectWallet(ctx, middleware.GetSessionID(ctx))
	return stateResponse("ConnectWallet", sess, err)
}

// OpenCreateSplit opens a fresh create-split form.
func (s *SplitService) OpenCreateSplit(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	sess, err := s.sessions.OpenCreateSplit(ctx, middleware.GetSessionID(ctx))
	return stateResponse("OpenCreateSplit", sess, err)
}

// CloseCreateSplit discards the form ("Back").
func (s *SplitService) CloseCreateSplit(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	sess, err := s.sessions.CloseCreateSplit(ctx, middleware.GetSessionID(ctx))
	return stateResponse("CloseCreateSplit", sess, err)
}

// SetSplitName sets the split name on the open form.
func (s *SplitService) SetSplitName(ctx context.Context, req *connect.Request[SetSplitNameRequest]) (*connect.Response[StateResponse], error) {
	sess, err := s.sessions.SetSplitName(ctx, middleware.GetSessionID(ctx), req.Msg.Name)
	return stateResponse("SetSplitName", sess, err)
}

// AddRecipient appends a blank recipient to the open form.
func (s *SplitService) AddRecipient(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	sess, err := s.sessions.AddRecipient(ctx, middleware.GetSessionID(ctx))
	return stateResponse("AddRecipient", sess, err)
}

// RemoveRecipient removes a recipient unless it is the last one.
func (s *SplitService) RemoveRecipient(ctx context.Context, req *connect.Request[RemoveRecipientRequest]) (*connect.Response[StateResponse], error) {
	sess, err := s.sessions.RemoveRecipient(ctx, middleware.GetSessionID(ctx), req.Msg.ID)
	return stateResponse("RemoveRecipient", sess, err)
}

// UpdateRecipient sets one recipient field on the open form.
func (s *SplitService) UpdateRecipient(ctx context.Context, req *connect.Request[UpdateRecipientRequest]) (*connect.Response[StateResponse], error) {
	slog.Debug("UpdateRecipient",
		"recipient_id", req.Msg.ID,
		"field", req.Msg.Field,
	)
	sess, err := s.sessions.UpdateRecipient(ctx, middleware.GetSessionID(ctx), req.Msg.ID, splitform.Field(req.Msg.Field), req.Msg.Value)
	return stateResponse("UpdateRecipient", sess, err)
}

// CreateSplit submits the open form.
func (s *SplitService) CreateSplit(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[CreateSplitResponse], error) {
	split, sess, err := s.sessions.SubmitSplit(ctx, middleware.GetSessionID(ctx))
	if err != nil {
		slog.Warn("CreateSplit refused", "error", err)
		return nil, toConnectError(err)
	}
	if split.Recipients == nil {
		split.Recipients = []models.Recipient{}
	}
	return connect.NewResponse(&CreateSplitResponse{Split: split, State: NewState(sess)}), nil
}

// SelectSplit changes the split shown on the dashboard.
func (s *SplitService) SelectSplit(ctx context.Context, req *connect.Request[SelectSplitRequest]) (*connect.Response[StateResponse], error) {
	sess, err := s.sessions.SelectSplit(ctx, middleware.GetSessionID(ctx), req.Msg.ID)
	return stateResponse("SelectSplit", sess, err)
}

// SelectTab switches the dashboard detail tab.
func (s *SplitService) SelectTab(ctx context.Context, req *connect.Request[SelectTabRequest]) (*connect.Response[StateResponse], error) {
	sess, err := s.sessions.SelectTab(ctx, middleware.GetSessionID(ctx), models.DashboardTab(req.Msg.Tab))
	return stateResponse("SelectTab", sess, err)
}

// GetDashboard returns the dashboard page model.
func (s *SplitService) GetDashboard(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[GetDashboardResponse], error) {
	sess, err := s.sessions.Get(ctx, middleware.GetSessionID(ctx))
	if err != nil {
		slog.Error("GetDashboard failed", "error", err)
		return nil, toConnectError(err)
	}
	d, err := s.dashboards.Build(sess)
	if err != nil {
		slog.Error("GetDashboard build failed", "session_id", sess.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&GetDashboardResponse{Dashboard: d}), nil
}
