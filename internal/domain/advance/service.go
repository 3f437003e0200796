package advance

import "context"

type AdvanceService interface {
	RequestAdvance(ctx context.Context, req CreateAdvanceRequest) (AdvanceResponse, error)
	GetAdvance(ctx context.Context, id string) (AdvanceResponse, error)
	ListAdvances(ctx context.Context, filter AdvanceFilter) ([]AdvanceResponse, error)
	ApproveAdvance(ctx context.Context, id string) (AdvanceResponse, error)
	RejectAdvance(ctx context.Context, req RejectAdvanceRequest) (AdvanceResponse, error)
	DisburseAdvance(ctx context.Context, id string) (AdvanceResponse, error)
}
