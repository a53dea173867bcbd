// Package autowire assigns component fields tagged `infra:"dep:<name>"`
// from the container. A trailing '?' marks the dependency optional.
// Every injected name is also appended to the component's runtime
// dependencies so start/stop ordering follows the wiring.
package autowire

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/warehouse-management/warehouse/internal/application/core"
)

const tagKey = "infra"

type dependencyAdder interface {
	AddDependencies(...string)
}

// InjectAll wires every registered component. Errors are collected and
// reported together, sorted by component name.
func InjectAll(c *core.Container) error {
	registered := c.ListRegistered()
	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []string
	for _, name := range names {
		if err := Inject(c, registered[name]); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("autowire errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Inject wires a single component. Non-pointer and non-struct components
// are ignored.
func Inject(c *core.Container, comp core.Component) error {
	if comp == nil {
		return nil
	}
	val := reflect.ValueOf(comp)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return nil
	}
	val = val.Elem()
	adder, _ := comp.(dependencyAdder)

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		raw, ok := strings.CutPrefix(field.Tag.Get(tagKey), "dep:")
		if !ok {
			continue
		}
		name, optional := core.ParseDependency(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		resolved, err := c.Resolve(name)
		if err != nil {
			if optional {
				continue
			}
			return fmt.Errorf("resolve %s failed: %w", name, err)
		}
		if err := assign(val.Field(i), resolved); err != nil {
			return fmt.Errorf("assign %s to field %s failed: %w", name, field.Name, err)
		}
		if adder != nil {
			adder.AddDependencies(name)
		}
	}
	return nil
}

func assign(dst reflect.Value, src any) error {
	if !dst.CanSet() {
		return fmt.Errorf("destination not settable")
	}
	sv := reflect.ValueOf(src)
	switch {
	case dst.Kind() == reflect.Interface && sv.Type().Implements(dst.Type()):
		dst.Set(sv)
	case sv.Type().AssignableTo(dst.Type()):
		dst.Set(sv)
	default:
		return fmt.Errorf("incompatible types: %s -> %s", sv.Type(), dst.Type())
	}
	return nil
}
