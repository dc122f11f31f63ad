package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// SummaryServiceName is the fully-qualified name of the SummaryService.
const SummaryServiceName = "splitperfect.v1.SummaryService"

// Procedure names, used for routing and in interceptors.
const (
	SummaryServiceGetGroupSummaryProcedure = "/" + SummaryServiceName + "/GetGroupSummary"
)

// SummaryServiceHandler computes balances and settlement plans.
type SummaryServiceHandler interface {
	// GetGroupSummary returns every member's balance and the payments that settle the group.
	GetGroupSummary(context.Context, *connect.Request[GetGroupSummaryRequest]) (*connect.Response[GetGroupSummaryResponse], error)
}

// NewSummaryServiceHandler builds an HTTP handler for svc. It returns the path to
// mount it on.
func NewSummaryServiceHandler(svc SummaryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SummaryServiceGetGroupSummaryProcedure, connect.NewUnaryHandler(SummaryServiceGetGroupSummaryProcedure, svc.GetGroupSummary, opts...))
	return "/" + SummaryServiceName + "/", mux
}

// SummaryServiceClient is a client for the SummaryService.
type SummaryServiceClient interface {
	GetGroupSummary(context.Context, *connect.Request[GetGroupSummaryRequest]) (*connect.Response[GetGroupSummaryResponse], error)
}

// NewSummaryServiceClient constructs a client for the SummaryService at baseURL
// (for example, http://localhost:8080).
func NewSummaryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SummaryServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &summaryServiceClient{
		getGroupSummary: connect.NewClient[GetGroupSummaryRequest, GetGroupSummaryResponse](httpClient, baseURL+SummaryServiceGetGroupSummaryProcedure, opts...),
	}
}

type summaryServiceClient struct {
	getGroupSummary *connect.Client[GetGroupSummaryRequest, GetGroupSummaryResponse]
}

func (c *summaryServiceClient) GetGroupSummary(ctx context.Context, req *connect.Request[GetGroupSummaryRequest]) (*connect.Response[GetGroupSummaryResponse], error) {
	return c.getGroupSummary.CallUnary(ctx, req)
}
