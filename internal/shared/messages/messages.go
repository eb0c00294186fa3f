package messages

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type MessageText struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Messages struct {
	PaymentApproved MessageText `json:"payment_approved"`
}

// Default returns the built-in notification texts, used when no
// messages file is configured.
func Default() *Messages {
	return &Messages{
		PaymentApproved: MessageText{
			Title: "Pagamento aprovado",
			Body:  "Seu pagamento PIX foi confirmado.",
		},
	}
}

var (
	loaded   Messages
	loadOnce sync.Once
	loadErr  error
)

// Load reads the notifications JSON file and caches the result.
// Safe to call from multiple goroutines. Texts missing from the file
// fall back to the defaults.
func Load(path string) (*Messages, error) {
	loadOnce.Do(func() {
		loaded = *Default()
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read messages file: %w", err)
			return
		}
		if err := json.Unmarshal(data, &loaded); err != nil {
			loadErr = fmt.Errorf("failed to parse messages file: %w", err)
		}
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return &loaded, nil
}
