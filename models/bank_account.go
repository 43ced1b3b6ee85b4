package models

import "time"

type BankAccount struct {
	ID            string    `db:"id" json:"id"`
	CompanyID     *string   `db:"company_id" json:"companyId,omitempty"`
	UserID        *string   `db:"user_id" json:"userId,omitempty"`
	AccountHolder string    `db:"account_holder" json:"accountHolder"`
	BankName      string    `db:"bank_name" json:"bankName"`
	AccountNumber *string   `db:"account_number" json:"accountNumber,omitempty"`
	IBAN          *string   `db:"iban" json:"iban,omitempty"`
	Currency      string    `db:"currency" json:"currency"`
	BankAddress   string    `db:"bank_address" json:"bankAddress"`
	BankCountry   string    `db:"bank_country" json:"bankCountry"`
	IsActive      bool      `db:"is_active" json:"isActive"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// BankAccountInput needs at least one of AccountNumber and IBAN.
type BankAccountInput struct {
	CompanyID     *string `json:"companyId"`
	AccountHolder string  `json:"accountHolder" validate:"required,max=128"`
	BankName      string  `json:"bankName" validate:"required,max=128"`
	AccountNumber string  `json:"accountNumber" validate:"omitempty,min=4,max=34,alphanum"`
	IBAN          string  `json:"iban" validate:"omitempty,iban"`
	Currency      string  `json:"currency" validate:"required,len=3,uppercase"`
	BankAddress   string  `json:"bankAddress" validate:"required,max=256"`
	BankCountry   string  `json:"bankCountry" validate:"required,iso3166_1_alpha2"`
}
