package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// Value sets behind the custom binding tags. Kept here rather than imported
// from models so the validator has no dependency on the domain packages.
var (
	validTiers       = []string{"BASIC", "BRONZE", "SILVER", "GOLD", "PLATINUM_VIP"}
	validTrxStatuses = []string{"QUEUED", "WASHING", "FINISHING", "DONE"}
	validWashTypes   = []string{"regular", "express", "other"}
	validUserRoles   = []string{"superadmin", "admin", "employee", "customer"}
)

// RegisterValidators adds the custom binding tags (tier, trxstatus, washtype,
// userrole, isodate) to gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	rules := map[string]validator.Func{
		"tier":      oneOfFold(validTiers),
		"trxstatus": oneOf(validTrxStatuses),
		"washtype":  oneOf(validWashTypes),
		"userrole":  oneOf(validUserRoles),
		"isodate":   isoDate,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("registering %s validator: %w", tag, err)
		}
	}
	return nil
}

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}

func oneOfFold(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		for _, v := range values {
			if strings.EqualFold(s, v) {
				return true
			}
		}
		return false
	}
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateLayout, fl.Field().String())
	return err == nil
}

// ValidationDetails flattens binding errors into "field: rule" pairs.
func ValidationDetails(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
