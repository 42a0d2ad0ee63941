package runtime

import (
	"fmt"
	"log/slog"
	"net/url"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Package-level validator instance
var validate *validator.Validate

// init initializes the validator and registers custom validation functions
func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(taggedFieldName)

	registerCustomValidators()
}

// InitializeConfig prepares a node Config struct: defaults from struct tags,
// then raw values (yaml tags, env references resolved), then validation.
func InitializeConfig(config any, rawValues map[string]any) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ApplyDefaults(config); err != nil {
		slog.Error("Node config: failed to apply defaults",
			"config_type", reflect.TypeOf(config).String(),
			"error", err)
		return fmt.Errorf("failed to apply defaults: %w", err)
	}

	if len(rawValues) > 0 {
		resolved, err := ResolveEnvMap(rawValues)
		if err != nil {
			return fmt.Errorf("failed to resolve config values: %w", err)
		}
		if err := mapToStructFromYAML(resolved, config); err != nil {
			slog.Error("Node config: failed to apply config values",
				"config_type", reflect.TypeOf(config).String(),
				"error", err)
			return fmt.Errorf("failed to apply config values: %w", err)
		}
	}

	if err := validateStruct(config); err != nil {
		slog.Error("Node config validation failed",
			"config_type", reflect.TypeOf(config).String(),
			"error", err)
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// DecodeParameters fills a typed parameter struct (json tags) from resolved
// node parameters: defaults first, then the supplied values with weak typing,
// then validation.
func DecodeParameters(raw map[string]any, target any) error {
	if err := ApplyDefaults(target); err != nil {
		return err
	}
	if err := mapToStruct(raw, target); err != nil {
		return err
	}
	return validateStruct(target)
}

// registerCustomValidators registers framework-provided custom validation functions
func registerCustomValidators() {
	// url_format validates URL structure
	validate.RegisterValidation("url_format", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	})

	// endpoint_path validates an API path relative to a base URL
	validate.RegisterValidation("endpoint_path", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), "/")
	})
}

func ApplyDefaults(config any) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := defaults.Set(config); err != nil {
		return fmt.Errorf("failed to apply default values: %w", err)
	}

	return nil
}

func validateStruct(target any) error {
	if target == nil {
		return fmt.Errorf("config cannot be nil")
	}

	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if err := validate.Struct(v.Interface()); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMessages []string
			for _, fieldErr := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"field '%s' failed validation (rule: %s)",
					fieldName(fieldErr),
					fieldErr.Tag(),
				))
			}
			return fmt.Errorf("%s", strings.Join(errMessages, "; "))
		}
		return err
	}

	return nil
}

// taggedFieldName reports fields by their json or yaml name so messages match
// what users wrote in parameters and config files.
func taggedFieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "yaml"} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

func fieldName(fieldErr validator.FieldError) string {
	ns := fieldErr.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func RegisterCustomValidator(tag string, fn validator.Func) error {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("failed to register custom validator '%s': %w", tag, err)
	}
	return nil
}
