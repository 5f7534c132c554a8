package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"weathersub.app/internal/core/subscription"
	"weathersub.app/pkg/errors"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the custom binding tags used by request structs
// to gin's validator. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.NewConfigurationError("gin validator engine is not go-playground/validator", nil)
			return
		}
		registerErr = v.RegisterValidation("frequency", validateFrequency)
	})
	return registerErr
}

func validateFrequency(fl validator.FieldLevel) bool {
	return subscription.FrequencyFromString(fl.Field().String()).IsValid()
}
