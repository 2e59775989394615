package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateResultID() string {
	return fmt.Sprintf("res_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateRoundID() string {
	return fmt.Sprintf("round_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateSessionID() string {
	return uuid.New().String()
}
