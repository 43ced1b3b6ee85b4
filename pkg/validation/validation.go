// Package validation checks the shape of form submissions before they reach a service.
package validation

import (
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"enenni_wallet_back/internal/wallet"
	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseCurrency(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("wallet_type", func(fl validator.FieldLevel) bool {
		return models.WalletType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("iban", func(fl validator.FieldLevel) bool {
		return validIBAN(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Result is Ok(Value) when Errors is empty, Err(Errors) otherwise.
type Result[T any] struct {
	Value  T
	Errors apperr.FieldErrors
}

func (r Result[T]) OK() bool { return len(r.Errors) == 0 }

// Err converts a failed result into a *apperr.ValidationError, nil when the result is ok.
func (r Result[T]) Err() error {
	if r.OK() {
		return nil
	}
	return &apperr.ValidationError{Fields: r.Errors}
}

// Struct runs the tag rules of any input struct.
func Struct[T any](in T) Result[T] {
	return Result[T]{Value: in, Errors: fieldErrors(validate.Struct(in))}
}

// Wallet normalises and validates a wallet form, including the per-chain address rule.
func Wallet(in models.WalletInput) Result[models.WalletInput] {
	in.Chain = strings.TrimSpace(in.Chain)
	in.Address = strings.TrimSpace(in.Address)
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))

	res := Struct(in)
	if cur, ok := models.ParseCurrency(in.Currency); ok && in.Address != "" {
		if err := wallet.ValidateChainAddress(in.Chain, cur, in.Address); err != nil {
			res.Errors = append(res.Errors, apperr.FieldError{
				Field:   "address",
				Message: "Invalid " + cur.String() + " address: " + err.Error(),
				Tag:     "address",
			})
		}
	}
	return res
}

// BankAccount validates a bank account form; an account number or an IBAN must be present.
func BankAccount(in models.BankAccountInput) Result[models.BankAccountInput] {
	in.IBAN = strings.ToUpper(strings.ReplaceAll(in.IBAN, " ", ""))
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.BankCountry = strings.ToUpper(strings.TrimSpace(in.BankCountry))

	res := Struct(in)
	if in.AccountNumber == "" && in.IBAN == "" {
		res.Errors = append(res.Errors, apperr.FieldError{
			Field:   "accountNumber",
			Message: "Account number or IBAN is required",
			Tag:     "required_without",
		})
	}
	return res
}

func fieldErrors(err error) apperr.FieldErrors {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.FieldErrors{{Field: "", Message: err.Error(), Tag: "invalid"}}
	}
	out := make(apperr.FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperr.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
			Tag:     fe.Tag(),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "len":
		return "Value must be " + fe.Param() + " characters long"
	case "currency":
		return "Currency must be one of BTC, ETH, USDT, USDC"
	case "wallet_type":
		return "Type must be First-party or Third-party"
	case "iban":
		return "Invalid IBAN"
	case "iso3166_1_alpha2":
		return "Country must be a two letter ISO code"
	default:
		return "Invalid value"
	}
}

// validIBAN runs the ISO 13616 mod-97 check.
func validIBAN(s string) bool {
	s = strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	if len(s) < 15 || len(s) > 34 {
		return false
	}
	rearranged := s[4:] + s[:4]
	var digits strings.Builder
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			digits.WriteString(strconv.Itoa(int(r-'A') + 10))
		default:
			return false
		}
	}
	n, ok := new(big.Int).SetString(digits.String(), 10)
	if !ok {
		return false
	}
	return new(big.Int).Mod(n, big.NewInt(97)).Int64() == 1
}
