package task

import "github.com/shopspring/decimal"

// CreateTaskRequest for POST /admin/tasks
type CreateTaskRequest struct {
	Platform string          `json:"platform" validate:"required,max=64"`
	Type     string          `json:"type" validate:"required,max=64"`
	Link     string          `json:"link" validate:"required,url"`
	Currency string          `json:"currency" validate:"required,currency"`
	Price    decimal.Decimal `json:"price" validate:"money"`
	MaxUsers int             `json:"max_users" validate:"required,gte=1"`
}

// ReviewRequest for POST /admin/submissions/{id}/review
type ReviewRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}
