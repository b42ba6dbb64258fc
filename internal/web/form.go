package web

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/api/middleware"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/errors"
)

// isIDField reports whether a form key carries a row id.
func isIDField(key string) bool {
	return key == "id" || strings.HasSuffix(key, "Id")
}

// bindForm decodes a posted form into the API model. Id fields are parsed
// as unsigned integers and an empty id means "none". The raw values are
// returned for re-rendering the form.
func bindForm[A any](c echo.Context) (A, map[string]string, map[string][]string) {
	var model A
	params, err := c.FormParams()
	if err != nil {
		return model, nil, map[string][]string{"$": {"The form could not be read."}}
	}

	values := make(map[string]string, len(params))
	data := make(map[string]any, len(params))
	problems := map[string][]string{}
	for key, vals := range params {
		if key == middleware.CSRFFormField || len(vals) == 0 {
			continue
		}
		raw := vals[0]
		values[key] = raw

		if !isIDField(key) {
			data[key] = raw
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			problems[key] = append(problems[key], fmt.Sprintf("The value '%s' is not valid.", raw))
			continue
		}
		data[key] = n
	}
	if len(problems) > 0 {
		return model, values, problems
	}

	encoded, err := json.Marshal(data)
	if err == nil {
		err = json.Unmarshal(encoded, &model)
	}
	if err != nil {
		return model, values, map[string][]string{"$": {err.Error()}}
	}
	return model, values, nil
}

// toMap flattens a model through its json encoding.
func toMap(v any) map[string]any {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil
	}
	return out
}

// formValues renders an API model as form field values.
func formValues(model any) map[string]string {
	m := toMap(model)
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = display(v)
	}
	return out
}

// display renders one json value for a table cell or input. Nested
// objects are Simple references and show their name.
func display(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any:
		if name, ok := val["name"]; ok {
			return display(name)
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// storeProblems turns repository conflicts into form errors. It returns
// nil for errors the form cannot explain.
func storeProblems(err error) map[string][]string {
	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		problems := map[string][]string{}
		for _, f := range dup.Fields {
			problems[f] = append(problems[f], fmt.Sprintf("Another %s already uses this value.", dup.Entity))
		}
		if len(problems) == 0 {
			problems["$"] = []string{err.Error()}
		}
		return problems
	}

	var ref *repository.ReferenceError
	if errors.As(err, &ref) {
		return map[string][]string{ref.Field: {fmt.Sprintf("The selected record %d does not exist.", ref.ID)}}
	}

	if errors.Is(err, repository.ErrDuplicateKey) || errors.Is(err, repository.ErrInvalidInput) ||
		errors.Is(err, repository.ErrMissingReference) {
		return map[string][]string{"$": {err.Error()}}
	}
	return nil
}
