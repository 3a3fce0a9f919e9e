// Package validation registers the domain enum tags on gin's validator so
// request structs can declare `binding:"user_type"` and friends.
package validation

import (
	"sync"

	"storynest/pkg/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var once sync.Once

// Register installs the domain tags on gin's validator. It panics if a tag
// cannot be registered.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := RegisterOn(v); err != nil {
			panic(err)
		}
	})
}

var enumTags = map[string]validator.Func{
	"user_type": func(fl validator.FieldLevel) bool {
		return models.UserType(fl.Field().String()).Valid()
	},
	"content_type": func(fl validator.FieldLevel) bool {
		return models.ContentType(fl.Field().String()).Valid()
	},
	"notification_type": func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.NotificationType(s).Valid()
	},
}

func RegisterOn(v *validator.Validate) error {
	for tag, fn := range enumTags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return errors.Wrapf(err, "register %s validation", tag)
		}
	}
	return nil
}

// FieldErrors flattens validator errors into field -> failed tag.
func FieldErrors(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
