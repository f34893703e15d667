// Package validation wraps go-playground/validator to give incoming
// simulation requests a defense-in-depth validation pass before they
// reach internal/engine's own descriptor parser. Failing fast here with
// field-level messages is cheaper than letting a malformed request fall
// all the way through to a per-action construction error deep inside the
// engine (spec §7.1 still applies as the authoritative check).
package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pf2e-sim/combat-engine/pkg/errors"
)

// Validator wraps the go-playground validator.
type Validator struct {
	validator *validator.Validate
}

// New creates a new validator instance.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations(v)

	return &Validator{validator: v}
}

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("dicenotation", validateDiceNotation)
	_ = v.RegisterValidation("damagetype", validateDamageType)
	_ = v.RegisterValidation("savetype", validateSaveType)
	_ = v.RegisterValidation("areashape", validateAreaShape)
}

// Validate validates a struct.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// ValidateRequest decodes and validates an HTTP request body.
func (v *Validator) ValidateRequest(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return errors.NewBadRequestError("Request body is empty")
		}
		return errors.NewBadRequestError("Invalid JSON format").WithInternal(err)
	}
	return v.Validate(dst)
}

func (v *Validator) formatValidationError(err error) error {
	validationErrors := &errors.ValidationErrors{}

	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()
			param := fe.Param()

			message := v.getErrorMessage(field, tag, param)
			validationErrors.Add(field, message)
		}
	}

	return validationErrors.ToAppError()
}

func (v *Validator) getErrorMessage(field, tag, param string) string {
	messages := map[string]string{
		"required":     fmt.Sprintf("%s is required", field),
		"min":          fmt.Sprintf("%s must be at least %s", field, param),
		"max":          fmt.Sprintf("%s must be at most %s", field, param),
		"oneof":        fmt.Sprintf("%s must be one of: %s", field, param),
		"dicenotation": fmt.Sprintf("%s must be valid damage notation (e.g., 2d6+3)", field),
		"damagetype":   fmt.Sprintf("%s must be a recognized damage type", field),
		"savetype":     fmt.Sprintf("%s must be one of fortitude, reflex, will, none", field),
		"areashape":    fmt.Sprintf("%s must be one of burst, cone, emanation, line", field),
	}

	if msg, ok := messages[tag]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}

// Custom validation functions

// diceNotationRegex matches spec §6's damage expression grammar:
// NdS([+-]B)?
var diceNotationRegex = regexp.MustCompile(`^\d+d\d+(?:[+-]\d+)?$`)

func validateDiceNotation(fl validator.FieldLevel) bool {
	return diceNotationRegex.MatchString(fl.Field().String())
}

// knownDamageTypes is the closed set the engine's weakness/resistance and
// immunity handling recognizes. "all-damage" is a resistance-map key, not
// a damage type itself, so it is excluded here.
var knownDamageTypes = map[string]bool{
	"acid": true, "bludgeoning": true, "cold": true, "electricity": true,
	"fire": true, "force": true, "mental": true, "piercing": true,
	"poison": true, "slashing": true, "sonic": true, "vitality": true,
	"void": true, "chaotic": true, "evil": true, "good": true, "lawful": true,
}

func validateDamageType(fl validator.FieldLevel) bool {
	return knownDamageTypes[strings.ToLower(fl.Field().String())]
}

func validateSaveType(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "fortitude", "reflex", "will", "none", "":
		return true
	default:
		return false
	}
}

func validateAreaShape(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "burst", "cone", "emanation", "line", "":
		return true
	default:
		return false
	}
}

// Global validator instance

var defaultValidator *Validator

// Init initializes the global validator.
func Init() {
	defaultValidator = New()
}

// GetValidator returns the global validator instance.
func GetValidator() *Validator {
	if defaultValidator == nil {
		Init()
	}
	return defaultValidator
}

// ValidateStruct validates a struct using the global validator.
func ValidateStruct(s interface{}) error {
	return GetValidator().Validate(s)
}

// ValidateRequestBody validates and decodes a request body using the
// global validator.
func ValidateRequestBody(r *http.Request, dst interface{}) error {
	return GetValidator().ValidateRequest(r, dst)
}
