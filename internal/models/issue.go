// internal/models/issue.go
package models

import "time"

// IssueCategory classifies a post-order support issue.
type IssueCategory string

const (
	IssueMissingItems IssueCategory = "missing_items"
	IssueWrongOrder   IssueCategory = "wrong_order"
	IssueFoodQuality  IssueCategory = "food_quality"
	IssueLateDelivery IssueCategory = "late_delivery"
	IssueDriverIssue  IssueCategory = "driver_issue"
	IssuePayment      IssueCategory = "payment_issue"
	IssueOther        IssueCategory = "other"
)

// IssueStatus moves forward only: reported -> under_review -> resolved|refunded.
type IssueStatus string

const (
	IssueReported    IssueStatus = "reported"
	IssueUnderReview IssueStatus = "under_review"
	IssueResolved    IssueStatus = "resolved"
	IssueRefunded    IssueStatus = "refunded"
)

type Issue struct {
	ID              string        `json:"id"`
	OrderID         string        `json:"orderId"`
	Category        IssueCategory `json:"category"`
	Description     string        `json:"description"`
	PhotoURLs       []string      `json:"photoUrls,omitempty"`
	AffectedItemIDs []string      `json:"affectedItemIds,omitempty"`
	Status          IssueStatus   `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	ResolvedAt      *time.Time    `json:"resolvedAt,omitempty"`
}
