package blockconfig

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/LeonardoBeccarini/irrixa/internal/apperrors"
	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// enum membership; "sandy loam" rules out oneof
	rules := map[string]func(string) bool{
		"crop":              func(s string) bool { return entities.Crop(s).Valid() },
		"crop_stage":        func(s string) bool { return entities.Stage(s).Valid() },
		"irrigation_type":   func(s string) bool { return entities.IrrigationType(s).Valid() },
		"soil_type":         func(s string) bool { return entities.SoilType(s).Valid() },
		"ndvi_display_mode": func(s string) bool { return entities.NDVIDisplayMode(s).Valid() },
		"notblank":          func(s string) bool { return strings.TrimSpace(s) != "" },
	}
	for tag, check := range rules {
		check := check
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	return v
}

func validateConfig(cfg entities.BlockConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &apperrors.ValidationError{Err: err}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &apperrors.ValidationError{Fields: fields, Err: err}
}
