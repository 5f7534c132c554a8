package infrastructure

import (
	"github.com/google/uuid"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

var _ ports.TokenGenerator = (*UUIDTokenGenerator)(nil)

// UUIDTokenGenerator issues random (version 4) UUIDs.
type UUIDTokenGenerator struct{}

func NewUUIDTokenGenerator() *UUIDTokenGenerator {
	return &UUIDTokenGenerator{}
}

func (g *UUIDTokenGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", errors.NewConfigurationError("failed to read random source for token", err)
	}
	return id.String(), nil
}
