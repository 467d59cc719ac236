package models

import "time"

// Address holds the resolved location codes of one survey address.
type Address struct {
	City        string `gorm:"size:16;index" json:"city"`
	District    string `gorm:"size:16;index" json:"district"`
	Ward        string `gorm:"size:16;index" json:"ward"`
	CivilGroup  string `gorm:"size:16;index" json:"civil_group"`
	HomeAddress string `gorm:"size:255" json:"home_address"`
}

// Survey represents surveys table, one row per citizen.
type Survey struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	IdentityNumber   string    `gorm:"uniqueIndex;size:20;not null" json:"identity_number"`
	Fullname         string    `gorm:"size:150;not null;index" json:"fullname"`
	Dob              string    `gorm:"size:10;not null" json:"dob"`
	Gender           string    `gorm:"size:10;not null;index" json:"gender"`
	Hometown         string    `gorm:"size:16" json:"hometown"`
	PermanentAddress Address   `gorm:"embedded;embeddedPrefix:permanent_" json:"permanent_address"`
	TemporaryAddress Address   `gorm:"embedded;embeddedPrefix:temporary_" json:"temporary_address"`
	Religion         string    `gorm:"size:50" json:"religion"`
	Job              string    `gorm:"size:100;index" json:"job"`
	EduLevel         string    `gorm:"size:50" json:"edu_level"`
	CollectedBy      uint      `gorm:"index" json:"-"`
	CreateAt         time.Time `gorm:"column:create_at;not null" json:"createAt"`
}

func (Survey) TableName() string {
	return "surveys"
}

// OccupationCountRow is one (unit, job) group of the occupation report.
type OccupationCountRow struct {
	Code  string
	Job   string
	Count int64
}

// SearchCandidate is the projection scored by keyword search.
type SearchCandidate struct {
	IdentityNumber string
	Fullname       string
}
