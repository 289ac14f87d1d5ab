package dto

import (
	"ganji/internal/core/types"
	"ganji/internal/domain/target"
)

// CreateTargetRequest is the body of POST /targets.
type CreateTargetRequest struct {
	OwnerID     string              `json:"ownerId" binding:"required"`
	Name        string              `json:"name" binding:"required,max=200"`
	Metric      string              `json:"metric" binding:"required"`
	Period      string              `json:"period" binding:"required"`
	TargetValue types.Money         `json:"targetValue"`
	BonusAmount types.OptionalMoney `json:"bonusAmount"`
}

// ToInput converts the request for the target service.
func (r CreateTargetRequest) ToInput() (target.CreateInput, error) {
	ownerID, err := ParseID("ownerId", r.OwnerID)
	if err != nil {
		return target.CreateInput{}, err
	}
	return target.CreateInput{
		OwnerID:     ownerID,
		Name:        r.Name,
		Metric:      target.Metric(r.Metric),
		Period:      target.Period(r.Period),
		TargetValue: r.TargetValue,
		BonusAmount: r.BonusAmount,
	}, nil
}

// ListTargetsRequest is the query string of GET /targets.
type ListTargetsRequest struct {
	OwnerID string `form:"ownerId"`
	Status  string `form:"status"`
	Limit   int    `form:"limit" binding:"min=0,max=1000"`
	Offset  int    `form:"offset" binding:"min=0"`
}

// ToFilter converts the request into a list filter.
func (r ListTargetsRequest) ToFilter() (target.ListFilter, error) {
	ownerID, err := ParseOptionalID("ownerId", r.OwnerID)
	if err != nil {
		return target.ListFilter{}, err
	}
	return target.ListFilter{
		OwnerID: ownerID,
		Status:  target.Status(r.Status),
		Limit:   r.Limit,
		Offset:  r.Offset,
	}, nil
}

// EvaluationResponse is the body of POST /targets/:id/evaluate.
type EvaluationResponse struct {
	*target.Evaluation
	Period WindowResponse `json:"period"`
}
