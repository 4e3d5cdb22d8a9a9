// Package validation registers custom binding rules on gin's validator.
package validation

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"osapio-backend/internal/shared/util"
)

var registerOnce sync.Once

// Register installs the custom rules. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("safefilename", safeFileName)
	})
}

func safeFileName(fl validator.FieldLevel) bool {
	_, err := util.SanitizeFileName(fl.Field().String())
	return err == nil
}
