package uid

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// Generator は注文番号（UUIDv7, 時刻順）と支払い番号（短いランダム文字列）を発行する。
type Generator struct{}

func New() Generator {
	return Generator{}
}

func (Generator) OrderUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate order uid: %w", err)
	}
	return id.String(), nil
}

func (Generator) PaymentUID() string {
	return "pay_" + shortuuid.New()
}
