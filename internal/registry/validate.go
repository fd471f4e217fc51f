package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	bodyType       = reflect.TypeOf((*hcl.Body)(nil)).Elem()
	expressionType = reflect.TypeOf((*hcl.Expression)(nil)).Elem()
)

// Validate checks that every runner's input can be decoded from an arguments
// block: NewInput must return a non-nil struct pointer and every attribute
// field must have a type that maps onto a cty type.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, runnerType := range r.RunnerTypes() {
		handler, _ := r.Runner(runnerType)
		if handler.NewInput == nil {
			continue
		}

		input := handler.NewInput()
		v := reflect.ValueOf(input)
		if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("runner '%s': NewInput must return a non-nil struct pointer, got %T", runnerType, input))
			continue
		}

		inputType := v.Elem().Type()
		for i := 0; i < inputType.NumField(); i++ {
			field := inputType.Field(i)
			tag, ok := field.Tag.Lookup("hcl")
			if !ok || !field.IsExported() {
				continue
			}
			name, kind, _ := strings.Cut(tag, ",")
			if kind != "" && kind != "optional" {
				// block, label and remain fields are left to gohcl.
				continue
			}
			if field.Type == bodyType || field.Type == expressionType || field.Type.Kind() == reflect.Interface {
				continue
			}
			if _, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface()); err != nil {
				errs = append(errs, fmt.Sprintf("runner '%s', input '%s': Go field %s of type %s has no cty equivalent: %v",
					runnerType, name, field.Name, field.Type, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "runners", r.Len())
	return nil
}
