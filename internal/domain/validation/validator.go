// Package validation holds the input validators for checkout and identity
// data. All functions are pure; errors carry the user-facing message in
// Portuguese, ready for the response envelope.
package validation

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrDocumentRequired  = errors.New("CPF ou CNPJ é obrigatório")
	ErrInvalidCPF        = errors.New("CPF inválido")
	ErrInvalidCNPJ       = errors.New("CNPJ inválido")
	ErrDocumentLength    = errors.New("Documento deve ter 11 dígitos (CPF) ou 14 dígitos (CNPJ)")
	ErrEmailRequired     = errors.New("Email é obrigatório")
	ErrInvalidEmail      = errors.New("Email inválido")
	ErrPhoneRequired     = errors.New("Telefone é obrigatório")
	ErrPhoneLength       = errors.New("Telefone deve ter 10 ou 11 dígitos")
	ErrNameRequired      = errors.New("Nome é obrigatório")
	ErrNameTooShort      = errors.New("Nome muito curto")
	ErrNameTooLong       = errors.New("Nome muito longo")
	ErrNameNotFull       = errors.New("Informe nome completo")
	ErrHolderNameInvalid = errors.New("Nome ou Razão Social é obrigatório (mínimo 3 caracteres)")
	ErrHolderNameTooLong = errors.New("Nome ou Razão Social muito longo (máximo 100 caracteres)")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// OnlyDigits strips every non-digit character from s.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Document validates a CPF (11 digits) or CNPJ (14 digits) and returns the
// normalized digit string. A document made of one repeated digit is invalid
// even though it satisfies the check-digit scheme.
func Document(doc string) (string, error) {
	if doc == "" {
		return "", ErrDocumentRequired
	}

	clean := OnlyDigits(doc)

	switch len(clean) {
	case 11:
		if allSameDigit(clean) {
			return "", ErrInvalidCPF
		}
		return clean, nil
	case 14:
		if allSameDigit(clean) {
			return "", ErrInvalidCNPJ
		}
		return clean, nil
	default:
		return "", ErrDocumentLength
	}
}

// CPF validates strictly an 11-digit CPF.
func CPF(cpf string) (string, error) {
	if cpf == "" {
		return "", ErrDocumentRequired
	}
	clean := OnlyDigits(cpf)
	if len(clean) != 11 {
		return "", errors.New("CPF deve ter 11 dígitos")
	}
	if allSameDigit(clean) {
		return "", ErrInvalidCPF
	}
	return clean, nil
}

// Email checks the local@domain.tld shape. No DNS or MX verification.
func Email(email string) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Phone validates a Brazilian phone number: 10 digits (landline) or 11
// (mobile with the leading 9). Returns the normalized digits.
func Phone(phone string) (string, error) {
	if phone == "" {
		return "", ErrPhoneRequired
	}
	clean := OnlyDigits(phone)
	if len(clean) < 10 || len(clean) > 11 {
		return "", ErrPhoneLength
	}
	return clean, nil
}

// FullName validates a person's full name: 3-100 characters and at least
// two words. Used in the CPF-holder identity flow.
func FullName(name string) (string, error) {
	if name == "" {
		return "", ErrNameRequired
	}
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return "", ErrNameTooShort
	}
	if len(name) > 100 {
		return "", ErrNameTooLong
	}
	if len(strings.Fields(name)) < 2 {
		return "", ErrNameNotFull
	}
	return name, nil
}

// HolderName is the relaxed name check for checkout: a CNPJ holder supplies
// a company legal name, which may be a single word, so only length applies.
func HolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return "", ErrHolderNameInvalid
	}
	if len(name) > 100 {
		return "", ErrHolderNameTooLong
	}
	return name, nil
}

// CheckoutInput carries the identity fields of a checkout payload.
type CheckoutInput struct {
	Document string
	FullName string
	Email    string
	Phone    string
}

// Checkout validates every identity field of a checkout payload and
// aggregates all failures, so the caller can report every problem at once
// instead of the first one found. On success the returned input carries the
// normalized values.
func Checkout(in CheckoutInput) (CheckoutInput, []string) {
	var problems []string

	if doc, err := Document(in.Document); err != nil {
		problems = append(problems, err.Error())
	} else {
		in.Document = doc
	}

	if name, err := HolderName(in.FullName); err != nil {
		problems = append(problems, err.Error())
	} else {
		in.FullName = name
	}

	if _, err := Email(in.Email); err != nil {
		problems = append(problems, err.Error())
	}

	if phone, err := Phone(in.Phone); err != nil {
		problems = append(problems, err.Error())
	} else {
		in.Phone = phone
	}

	return in, problems
}

func allSameDigit(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
