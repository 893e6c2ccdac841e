package model

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	apperrors "github.com/Dudrie/scheinprogramm.releases-sub000/pkg/errors"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	criteriaRangeTag  = "criteria_range"
	criteriaRangeText = "{0} must be at most 100 for percentage based systems"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterStructValidation(lectureSystemStructValidation, LectureSystem{})
	_ = validate.RegisterTranslation(
		criteriaRangeTag, translator,
		func(t ut.Translator) error { return t.Add(criteriaRangeTag, criteriaRangeText, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(criteriaRangeTag, fe.Field())
			return s
		},
	)
}

// lectureSystemStructValidation percentage criteria live in (0, 100].
func lectureSystemStructValidation(sl validator.StructLevel) {
	sys, ok := sl.Current().Interface().(LectureSystem)
	if !ok {
		return
	}
	if sys.Type.IsPercentage() && sys.Criteria > 100 {
		sl.ReportError(sys.Criteria, "criteria", "Criteria", criteriaRangeTag, "")
	}
}

// validateEntity runs the struct validator and converts its errors into a ValidationError.
func validateEntity(entity string, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		// drop the top level type name: "Lecture.systems[0].name" -> "systems[0].name"
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		fields = append(fields, apperrors.FieldError{Field: field, Message: fe.Translate(translator)})
	}
	return apperrors.NewValidationError(entity, fields...)
}
