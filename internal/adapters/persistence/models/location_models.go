package models

import (
	"time"

	"census-backend/internal/core/domain"
)

// LocationNode is the row shape shared by every level table. Code stays NULL
// while the node is only a provisioned name; the unique index ignores NULLs.
// A name is unique among the children of one parent.
type LocationNode struct {
	ID          string    `gorm:"primaryKey;size:36" json:"-"`
	Code        *string   `gorm:"uniqueIndex;size:16" json:"code"`
	Name        string    `gorm:"size:150;not null;index;uniqueIndex:,composite:parent_name,priority:2" json:"name"`
	ParentsCode string    `gorm:"size:16;index;uniqueIndex:,composite:parent_name,priority:1" json:"parents_code"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"-"`
}

// CodeValue returns the code or "" when unassigned.
func (n *LocationNode) CodeValue() string {
	if n.Code == nil {
		return ""
	}
	return *n.Code
}

func (n *LocationNode) State() domain.LocationState {
	if n.Code == nil {
		return domain.LocationUnassigned
	}
	return domain.LocationCoded
}

// LocationResponse DTO
type LocationResponse struct {
	Name  string               `json:"name"`
	Code  string               `json:"code"`
	State domain.LocationState `json:"state"`
}

func (n *LocationNode) ToResponse() *LocationResponse {
	return &LocationResponse{
		Name:  n.Name,
		Code:  n.CodeValue(),
		State: n.State(),
	}
}

// One table per level. They share LocationNode's columns; the distinct types
// only exist so each table gets its own table and index names.

type Country struct{ LocationNode }

func (Country) TableName() string { return domain.CollectionCountry }

type City struct{ LocationNode }

func (City) TableName() string { return domain.CollectionCity }

type District struct{ LocationNode }

func (District) TableName() string { return domain.CollectionDistrict }

type Ward struct{ LocationNode }

func (Ward) TableName() string { return domain.CollectionWard }

type CivilGroup struct{ LocationNode }

func (CivilGroup) TableName() string { return domain.CollectionCivilGroup }

// LocationLink is one entry of a parent's ordered child-reference list.
// A node without a link is not discoverable as a child.
type LocationLink struct {
	ID         uint      `gorm:"primaryKey"`
	ParentID   string    `gorm:"size:36;not null;index:idx_location_links_parent"`
	ChildID    string    `gorm:"size:36;not null;uniqueIndex"`
	ChildLevel string    `gorm:"size:20;not null"`
	Position   int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (LocationLink) TableName() string {
	return "location_links"
}
