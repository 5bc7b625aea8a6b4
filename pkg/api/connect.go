package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	AuthServiceName       = "housesplit.v1.AuthService"
	ExpenseServiceName    = "housesplit.v1.ExpenseService"
	SettlementServiceName = "housesplit.v1.SettlementService"
)

const (
	AuthServiceLoginProcedure = "/housesplit.v1.AuthService/Login"

	ExpenseServiceCreateExpenseProcedure = "/housesplit.v1.ExpenseService/CreateExpense"
	ExpenseServiceUpdateExpenseProcedure = "/housesplit.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure = "/housesplit.v1.ExpenseService/DeleteExpense"
	ExpenseServiceListExpensesProcedure  = "/housesplit.v1.ExpenseService/ListExpenses"

	SettlementServiceGetReportProcedure           = "/housesplit.v1.SettlementService/GetReport"
	SettlementServiceMarkPaidProcedure            = "/housesplit.v1.SettlementService/MarkPaid"
	SettlementServiceConfirmProcedure             = "/housesplit.v1.SettlementService/Confirm"
	SettlementServiceGetSettlementStatusProcedure = "/housesplit.v1.SettlementService/GetSettlementStatus"
)

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
}

// ExpenseServiceHandler is implemented by the expense service.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
}

// SettlementServiceHandler is implemented by the settlement service.
type SettlementServiceHandler interface {
	GetReport(context.Context, *connect.Request[GetReportRequest]) (*connect.Response[GetReportResponse], error)
	MarkPaid(context.Context, *connect.Request[MarkPaidRequest]) (*connect.Response[MarkPaidResponse], error)
	Confirm(context.Context, *connect.Request[ConfirmRequest]) (*connect.Response[ConfirmResponse], error)
	GetSettlementStatus(context.Context, *connect.Request[GetSettlementStatusRequest]) (*connect.Response[GetSettlementStatusResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSONCodec()}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSONCodec()}, opts...)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	login := connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...)

	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceLoginProcedure:
			login.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	create := connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...)
	update := connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...)
	del := connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...)
	list := connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...)

	return "/" + ExpenseServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ExpenseServiceCreateExpenseProcedure:
			create.ServeHTTP(w, r)
		case ExpenseServiceUpdateExpenseProcedure:
			update.ServeHTTP(w, r)
		case ExpenseServiceDeleteExpenseProcedure:
			del.ServeHTTP(w, r)
		case ExpenseServiceListExpensesProcedure:
			list.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	report := connect.NewUnaryHandler(SettlementServiceGetReportProcedure, svc.GetReport, opts...)
	markPaid := connect.NewUnaryHandler(SettlementServiceMarkPaidProcedure, svc.MarkPaid, opts...)
	confirm := connect.NewUnaryHandler(SettlementServiceConfirmProcedure, svc.Confirm, opts...)
	status := connect.NewUnaryHandler(SettlementServiceGetSettlementStatusProcedure, svc.GetSettlementStatus, opts...)

	return "/" + SettlementServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SettlementServiceGetReportProcedure:
			report.ServeHTTP(w, r)
		case SettlementServiceMarkPaidProcedure:
			markPaid.ServeHTTP(w, r)
		case SettlementServiceConfirmProcedure:
			confirm.ServeHTTP(w, r)
		case SettlementServiceGetSettlementStatusProcedure:
			status.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// AuthServiceClient calls AuthService over Connect.
type AuthServiceClient struct {
	login *connect.Client[LoginRequest, LoginResponse]
}

// NewAuthServiceClient constructs a client for the service at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &AuthServiceClient{
		login: connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
	}
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

// ExpenseServiceClient calls ExpenseService over Connect.
type ExpenseServiceClient struct {
	create *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	update *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	del    *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	list   *connect.Client[ListExpensesRequest, ListExpensesResponse]
}

// NewExpenseServiceClient constructs a client for the service at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ExpenseServiceClient{
		create: connect.NewClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		update: connect.NewClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opts...),
		del:    connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		list:   connect.NewClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return c.update.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.del.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.list.CallUnary(ctx, req)
}

// SettlementServiceClient calls SettlementService over Connect.
type SettlementServiceClient struct {
	report   *connect.Client[GetReportRequest, GetReportResponse]
	markPaid *connect.Client[MarkPaidRequest, MarkPaidResponse]
	confirm  *connect.Client[ConfirmRequest, ConfirmResponse]
	status   *connect.Client[GetSettlementStatusRequest, GetSettlementStatusResponse]
}

// NewSettlementServiceClient constructs a client for the service at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &SettlementServiceClient{
		report:   connect.NewClient[GetReportRequest, GetReportResponse](httpClient, baseURL+SettlementServiceGetReportProcedure, opts...),
		markPaid: connect.NewClient[MarkPaidRequest, MarkPaidResponse](httpClient, baseURL+SettlementServiceMarkPaidProcedure, opts...),
		confirm:  connect.NewClient[ConfirmRequest, ConfirmResponse](httpClient, baseURL+SettlementServiceConfirmProcedure, opts...),
		status:   connect.NewClient[GetSettlementStatusRequest, GetSettlementStatusResponse](httpClient, baseURL+SettlementServiceGetSettlementStatusProcedure, opts...),
	}
}

func (c *SettlementServiceClient) GetReport(ctx context.Context, req *connect.Request[GetReportRequest]) (*connect.Response[GetReportResponse], error) {
	return c.report.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) MarkPaid(ctx context.Context, req *connect.Request[MarkPaidRequest]) (*connect.Response[MarkPaidResponse], error) {
	return c.markPaid.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) Confirm(ctx context.Context, req *connect.Request[ConfirmRequest]) (*connect.Response[ConfirmResponse], error) {
	return c.confirm.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetSettlementStatus(ctx context.Context, req *connect.Request[GetSettlementStatusRequest]) (*connect.Response[GetSettlementStatusResponse], error) {
	return c.status.CallUnary(ctx, req)
}
