package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitflow/internal/auth"
	"github.com/mmynk/splitflow/internal/middleware"
)

// SplitServiceName is the fully-qualified name of the service.
const SplitServiceName = "splitflow.v1.SplitService"

// Procedure paths.
const (
	StartSessionProcedure     = "/" + SplitServiceName + "/StartSession"
	GetStateProcedure         = "/" + SplitServiceName + "/GetState"
	ConnectWalletProcedure    = "/" + SplitServiceName + "/ConnectWallet"
	OpenCreateSplitProcedure  = "/" + SplitServiceName + "/OpenCreateSplit"
	CloseCreateSplitProcedure = "/" + SplitServiceName + "/CloseCreateSplit"
	SetSplitNameProcedure     = "/" + SplitServiceName + "/SetSplitName"
	AddRecipientProcedure     = "/" + SplitServiceName + "/AddRecipient"
	RemoveRecipientProcedure  = "/" + SplitServiceName + "/RemoveRecipient"
	UpdateRecipientProcedure  = "/" + SplitServiceName + "/UpdateRecipient"
	CreateSplitProcedure      = "/" + SplitServiceName + "/CreateSplit"
	SelectSplitProcedure      = "/" + SplitServiceName + "/SelectSplit"
	SelectTabProcedure        = "/" + SplitServiceName + "/SelectTab"
	GetDashboardProcedure     = "/" + SplitServiceName + "/GetDashboard"
)

// NewSplitServiceHandler builds an HTTP handler serving every procedure of svc.
// All procedures except StartSession require a session token. It returns the
// path to mount the handler on.
func NewSplitServiceHandler(svc *SplitService, jwtManager *auth.JWTManager, opts ...connect.HandlerOption) (string, http.Handler) {
	base := connect.WithHandlerOptions(append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)...)
	open := connect.WithHandlerOptions(base, connect.WithInterceptors(middleware.LoggingInterceptor()))
	guarded := connect.WithHandlerOptions(base, connect.WithInterceptors(
		middleware.RequireSession(jwtManager),
		middleware.LoggingInterceptor(),
	))

	mux := http.NewServeMux()
	mux.Handle(StartSessionProcedure, connect.NewUnaryHandler(StartSessionProcedure, svc.StartSession, open))
	mux.Handle(GetStateProcedure, connect.NewUnaryHandler(GetStateProcedure, svc.GetState, guarded))
	mux.Handle(ConnectWalletProcedure, connect.NewUnaryHandler(ConnectWalletProcedure, svc.ConnectWallet, guarded))
	mux.Handle(OpenCreateSplitProcedure, connect.NewUnaryHandler(OpenCreateSplitProcedure, svc.OpenCreateSplit, guarded))
	mux.Handle(CloseCreateSplitProcedure, connect.NewUnaryHandler(CloseCreateSplitProcedure, svc.CloseCreateSplit, guarded))
	mux.Handle(SetSplitNameProcedure, connect.NewUnaryHandler(SetSplitNameProcedure, svc.SetSplitName, guarded))
	mux.Handle(AddRecipientProcedure, connect.NewUnaryHandler(AddRecipientProcedure, svc.AddRecipient, guarded))
	mux.Handle(RemoveRecipientProcedure, connect.NewUnaryHandler(RemoveRecipientProcedure, svc.RemoveRecipient, guarded))
	mux.Handle(UpdateRecipientProcedure, connect.NewUnaryHandler(UpdateRecipientProcedure, svc.UpdateRecipient, guarded))
	mux.Handle(CreateSplitProcedure, connect.NewUnaryHandler(CreateSplitProcedure, svc.CreateSplit, guarded))
	mux.Handle(SelectSplitProcedure, connect.NewUnaryHandler(SelectSplitProcedure, svc.SelectSplit, guarded))
	mux.Handle(SelectTabProcedure, connect.NewUnaryHandler(SelectTabProcedure, svc.SelectTab, guarded))
	mux.Handle(GetDashboardProcedure, connect.NewUnaryHandler(GetDashboardProcedure, svc.GetDashboard, guarded))

	return "/" + SplitServiceName + "/", mux
}

// SplitServiceClient calls splitflow.v1.SplitService over HTTP.
type SplitServiceClient struct {
	startSession     *connect.Client[Empty, StartSessionResponse]
	getState         *connect.Client[Empty, StateResponse]
	connectWallet    *connect.Client[Empty, StateResponse]
	openCreateSplit  *connect.Client[Empty, StateResponse]
	closeCreateSplit *connect.Client[Empty, StateResponse]
	setSplitName     *connect.Client[SetSplitNameRequest, StateResponse]
	addRecipient     *connect.Client[Empty, StateResponse]
	removeRecipient  *connect.Client[RemoveRecipientRequest, StateResponse]
	updateRecipient  *connect.Client[UpdateRecipientRequest, StateResponse]
	createSplit      *connect.Client[Empty, CreateSplitResponse]
	selectSplit      *connect.Client[SelectSplitRequest, StateResponse]
	selectTab        *connect.Client[SelectTabRequest, StateResponse]
	getDashboard     *connect.Client[Empty, GetDashboardResponse]
}

// NewSplitServiceClient constructs a client for the service at baseURL.
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SplitServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &SplitServiceClient{
		startSession:     connect.NewClient[Empty, StartSessionResponse](httpClient, baseURL+StartSessionProcedure, opts...),
		getState:         connect.NewClient[Empty, StateResponse](httpClient, baseURL+GetStateProcedure, opts...),
		connectWallet:    connect.NewClient[Empty, StateResponse](httpClient, baseURL+ConnectWalletProcedure, opts...),
		openCreateSplit:  connect.NewClient[Empty, StateResponse](httpClient, baseURL+OpenCreateSplitProcedure, opts...),
		closeCreateSplit: connect.NewClient[Empty, StateResponse](httpClient, baseURL+CloseCreateSplitProcedure, opts...),
		setSplitName:     connect.NewClient[SetSplitNameRequest, StateResponse](httpClient, baseURL+SetSplitNameProcedure, opts...),
		addRecipient:     connect.NewClient[Empty, StateResponse](httpClient, baseURL+AddRecipientProcedure, opts...),
		removeRecipient:  connect.NewClient[RemoveRecipientRequest, StateResponse](httpClient, baseURL+RemoveRecipientProcedure, opts...),
		updateRecipient:  connect.NewClient[UpdateRecipientRequest, StateResponse](httpClient, baseURL+UpdateRecipientProcedure, opts...),
		createSplit:      connect.NewClient[Empty, CreateSplitResponse](httpClient, baseURL+CreateSplitProcedure, opts...),
		selectSplit:      connect.NewClient[SelectSplitRequest, StateResponse](httpClient, baseURL+SelectSplitProcedure, opts...),
		selectTab:        connect.NewClient[SelectTabRequest, StateResponse](httpClient, baseURL+SelectTabProcedure, opts...),
		getDashboard:     connect.NewClient[Empty, GetDashboardResponse](httpClient, baseURL+GetDashboardProcedure, opts...),
	}
}

func (c *SplitServiceClient) StartSession(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StartSessionResponse], error) {
	return c.startSession.CallUnary(ctx, req)
}

func (c *SplitServiceClient) GetState(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	return c.getState.CallUnary(ctx, req)
}

func (c *SplitServiceClient) ConnectWallet(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	return c.connectWallet.CallUnary(ctx, req)
}

func (c *SplitServiceClient) OpenCreateSplit(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	return c.openCreateSplit.CallUnary(ctx, req)
}

func (c *SplitServiceClient) CloseCreateSplit(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	return c.closeCreateSplit.CallUnary(ctx, req)
}

func (c *SplitServiceClient) SetSplitName(ctx context.Context, req *connect.Request[SetSplitNameRequest]) (*connect.Response[StateResponse], error) {
	return c.setSplitName.CallUnary(ctx, req)
}

func (c *SplitServiceClient) AddRecipient(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	return c.addRecipient.CallUnary(ctx, req)
}

func (c *SplitServiceClient) RemoveRecipient(ctx context.Context, req *connect.Request[RemoveRecipientRequest]) (*connect.Response[StateResponse], error) {
	return c.removeRecipient.CallUnary(ctx, req)
}

func (c *SplitServiceClient) UpdateRecipient(ctx context.Context, req *connect.Request[UpdateRecipientRequest]) (*connect.Response[StateResponse], error) {
	return c.updateRecipient.CallUnary(ctx, req)
}

func (c *SplitServiceClient) CreateSplit(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[CreateSplitResponse], error) {
	return c.createSplit.CallUnary(ctx, req)
}

func (c *SplitServiceClient) SelectSplit(ctx context.Context, req *connect.Request[SelectSplitRequest]) (*connect.Response[StateResponse], error) {
	return c.selectSplit.CallUnary(ctx, req)
}

func (c *SplitServiceClient) SelectTab(ctx context.Context, req *connect.Request[SelectTabRequest]) (*connect.Response[StateResponse], error) {
	return c.selectTab.CallUnary(ctx, req)
}

func (c *SplitServiceClient) GetDashboard(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}
