package runner

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	v1 "github.com/docshrink/docshrink/apis/v1"
	"github.com/docshrink/docshrink/internal/engine"
	"github.com/google/uuid"
)

// BuildVariables returns the variables available to ${VAR} templates: the job
// name, the job date in two formats, a fresh run ID and every allowed
// environment variable. An allowed variable that is not set is an error.
func BuildVariables(job v1.CompressJob, date time.Time, allowedEnv []string) (map[string]string, error) {
	date = date.UTC()
	variables := map[string]string{
		"JOB_NAME":         job.Metadata.Name,
		"JOB_DATE_ISO8601": date.Format(engine.ISO8601Basic),
		"JOB_DATE_RFC3339": date.Format(time.RFC3339),
		"RUN_ID":           uuid.NewString(),
	}

	var errs error
	for _, name := range allowedEnv {
		val, ok := os.LookupEnv(name)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", name))
			continue
		}
		variables[name] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}

// ExpandTemplates expands, in place, every string field of the struct pointed to
// by in that carries a `template` tag. Nested structs, pointers to structs and
// slices of either are walked whatever their tag; `template:"-"` opts a string
// out. Errors from every field are joined.
func ExpandTemplates[T any](in *T, variables map[string]string) error {
	if in == nil {
		return nil
	}

	v := reflect.ValueOf(in).Elem()
	switch v.Kind() {
	case reflect.Struct, reflect.Slice:
		return expandValue(v, false, variables)
	default:
		return fmt.Errorf("ExpandTemplates expects *struct or *[]struct; got *%s", v.Type())
	}
}

func expandValue(v reflect.Value, templated bool, variables map[string]string) error {
	switch v.Kind() {
	case reflect.String:
		if !templated {
			return nil
		}
		expanded, err := Expand(v.String(), variables)
		if err != nil {
			return err
		}
		v.SetString(expanded)
		return nil

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return expandValue(v.Elem(), templated, variables)

	case reflect.Slice:
		var errs error
		for i := range v.Len() {
			errs = errors.Join(errs, expandValue(v.Index(i), templated, variables))
		}
		return errs

	case reflect.Struct:
		var errs error
		typ := v.Type()
		for i := range typ.NumField() {
			sf := typ.Field(i)
			if !sf.IsExported() {
				continue
			}
			tag, ok := sf.Tag.Lookup("template")
			errs = errors.Join(errs, expandValue(v.Field(i), ok && tag != "-", variables))
		}
		return errs

	default:
		return nil
	}
}

// Expand replaces ${VAR} and $VAR references in value. Every reference must be
// present in variables.
func Expand(value string, variables map[string]string) (string, error) {
	var errs error

	result := os.Expand(value, func(key string) string {
		if val, ok := variables[key]; ok {
			return val
		}
		errs = errors.Join(errs, fmt.Errorf("environment variable %q is not in the allowed list", key))
		return ""
	})

	if errs != nil {
		return "", errs
	}

	return result, nil
}
