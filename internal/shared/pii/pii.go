// Package pii masks personal data before it reaches log output.
// A CPF/CNPJ, email, phone, name or address must never be logged raw.
package pii

import (
	"strings"
	"unicode"
)

// MaskDocument masks a CPF for logs: 12345678901 -> 123.***.***-01.
// CNPJs get the same head/tail treatment. Anything shorter than a CPF
// is fully redacted.
func MaskDocument(doc string) string {
	clean := onlyDigits(doc)
	if len(clean) < 11 {
		return "***.***.***-**"
	}
	return clean[:3] + ".***.***-" + clean[len(clean)-2:]
}

// MaskEmail masks the local part: usuario@dominio.com -> u******@dominio.com.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 1 {
		return "*@" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + "@" + domain
}

// MaskPhone masks a Brazilian phone: 11987654321 -> (11) 9****-**21.
func MaskPhone(phone string) string {
	clean := onlyDigits(phone)
	if len(clean) < 10 {
		return "(**) ****-****"
	}
	return "(" + clean[:2] + ") " + clean[2:3] + "****-**" + clean[len(clean)-2:]
}

// MaskName keeps only the first word: João da Silva -> João ***.
func MaskName(name string) string {
	parts := strings.Fields(name)
	if len(parts) <= 1 {
		return name
	}
	return parts[0] + " ***"
}

// MaskAddress replaces every digit run with ***: Rua das Flores, 123 -> Rua das Flores, ***.
func MaskAddress(address string) string {
	var b strings.Builder
	inDigits := false
	for _, r := range address {
		if unicode.IsDigit(r) {
			if !inDigits {
				b.WriteString("***")
				inDigits = true
			}
			continue
		}
		inDigits = false
		b.WriteRune(r)
	}
	return b.String()
}

// maskers maps payload field names (both our and the providers' casing)
// to the masking function for that field.
var maskers = map[string]func(string) string{
	"cpf":           MaskDocument,
	"CPF":           MaskDocument,
	"cnpj":          MaskDocument,
	"CNPJ":          MaskDocument,
	"Identity":      MaskDocument,
	"email":         MaskEmail,
	"Email":         MaskEmail,
	"telefone":      MaskPhone,
	"Phone":         MaskPhone,
	"Telefone":      MaskPhone,
	"nome":          MaskName,
	"Name":          MaskName,
	"Nome":          MaskName,
	"nome_completo": MaskName,
	"nomeCompleto":  MaskName,
	"endereco":      MaskAddress,
	"Street":        MaskAddress,
	"Logradouro":    MaskAddress,
}

// MaskMap returns a deep copy of a decoded JSON payload with every known
// sensitive field masked. Safe to hand to log.Printf.
func MaskMap(data map[string]any) map[string]any {
	masked := make(map[string]any, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case string:
			if mask, ok := maskers[key]; ok {
				masked[key] = mask(v)
			} else {
				masked[key] = v
			}
		case map[string]any:
			masked[key] = MaskMap(v)
		case []any:
			items := make([]any, len(v))
			for i, item := range v {
				if m, ok := item.(map[string]any); ok {
					items[i] = MaskMap(m)
				} else {
					items[i] = item
				}
			}
			masked[key] = items
		default:
			masked[key] = value
		}
	}
	return masked
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
