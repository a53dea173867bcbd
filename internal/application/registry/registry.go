package registry

import (
	"fmt"
	"log"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/warehouse-management/warehouse/internal/application/config"
	"github.com/warehouse-management/warehouse/internal/application/core"
)

// BuilderFunc returns (enabled, component, error). enabled=false skips registration.
type BuilderFunc func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error)

// Builder holds a builder function and its ordering metadata. Auto builders
// get Name and Deps inferred from the component they build.
type Builder struct {
	Name       string
	Fn         BuilderFunc
	Auto       bool
	Deps       []string
	prebuilt   core.Component
	preEnabled bool
}

var (
	buildersMu sync.Mutex
	builders   []*Builder
)

func findBuilder(name string) *Builder {
	for _, b := range builders {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Register adds a builder with an explicit name. Duplicates panic at init.
func Register(name string, fn BuilderFunc) {
	RegisterWithDeps(name, nil, fn)
}

// RegisterWithDeps adds a builder that must run after the builders named in deps.
func RegisterWithDeps(name string, deps []string, fn BuilderFunc) {
	if name == "" {
		panic("registry: empty name in Register")
	}
	buildersMu.Lock()
	defer buildersMu.Unlock()
	if findBuilder(name) != nil {
		panic("registry: duplicate builder name " + name)
	}
	builders = append(builders, &Builder{Name: name, Fn: fn, Deps: deps})
}

// RegisterAuto adds a builder whose component name and build-time deps are
// inferred from the component it returns (see `infra:"dep:<name>"` tags).
func RegisterAuto(fn BuilderFunc) {
	buildersMu.Lock()
	builders = append(builders, &Builder{Auto: true, Fn: fn})
	buildersMu.Unlock()
}

// BuildAndRegisterAll runs every builder in dependency order and registers
// the enabled components. A name already present in the container (a
// plugin registered by the application) wins over its builder.
func BuildAndRegisterAll(cfg *config.AppConfig, c *core.Container) error {
	buildersMu.Lock()
	defer buildersMu.Unlock()

	// auto builders run again on every boot so each app gets fresh components
	for _, b := range builders {
		if !b.Auto {
			continue
		}
		b.Name, b.Deps = "", nil
		enabled, comp, err := b.Fn(cfg, c)
		if err != nil {
			return fmt.Errorf("auto builder failed: %w", err)
		}
		b.preEnabled, b.prebuilt = enabled, comp
		if !enabled || comp == nil {
			continue
		}
		name := comp.Name()
		if name == "" {
			return fmt.Errorf("auto builder produced unnamed component")
		}
		if existing := findBuilder(name); existing != nil && existing != b {
			return fmt.Errorf("duplicate inferred name: %s", name)
		}
		b.Name = name
	}
	for _, b := range builders {
		if !b.Auto || len(b.Deps) > 0 || b.prebuilt == nil || !b.preEnabled {
			continue
		}
		for _, d := range inferTagDependencies(b.prebuilt) {
			if findBuilder(d) != nil {
				b.Deps = append(b.Deps, d)
			}
		}
	}

	ordered, err := topoSortBuilders(builders)
	if err != nil {
		return err
	}

	for _, b := range ordered {
		if c.Has(b.Name) {
			log.Printf("registry: %s provided by plugin, builder skipped", b.Name)
			continue
		}
		var enabled bool
		var comp core.Component
		if b.Auto {
			enabled, comp = b.preEnabled, b.prebuilt
		} else {
			enabled, comp, err = b.Fn(cfg, c)
			if err != nil {
				return fmt.Errorf("build %s failed: %w", b.Name, err)
			}
		}
		if !enabled || comp == nil {
			continue
		}
		if err := c.Register(b.Name, comp); err != nil {
			return fmt.Errorf("register %s failed: %w", b.Name, err)
		}
	}
	applyRuntimeDepExtensions(c)
	return nil
}

// inferTagDependencies extracts component names from `infra:"dep:<name>"` tags.
func inferTagDependencies(comp core.Component) []string {
	v := reflect.ValueOf(comp)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	seen := map[string]struct{}{}
	var out []string
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("infra")
		if !strings.HasPrefix(tag, "dep:") {
			continue
		}
		name, _ := core.ParseDependency(strings.TrimSpace(strings.TrimPrefix(tag, "dep:")))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// topoSortBuilders orders builders by Deps; ties are broken by name.
func topoSortBuilders(list []*Builder) ([]*Builder, error) {
	nameMap := map[string]*Builder{}
	inDeg := map[string]int{}
	adj := map[string][]string{}
	for _, b := range list {
		if b.Name != "" {
			nameMap[b.Name] = b
			inDeg[b.Name] = 0
		}
	}
	for _, b := range list {
		if b.Name == "" {
			continue
		}
		for _, d := range b.Deps {
			if _, ok := nameMap[d]; !ok {
				continue
			}
			adj[d] = append(adj[d], b.Name)
			inDeg[b.Name]++
		}
	}
	var zero []string
	for n, d := range inDeg {
		if d == 0 {
			zero = append(zero, n)
		}
	}
	sort.Strings(zero)
	var ordered []*Builder
	for len(zero) > 0 {
		n := zero[0]
		zero = zero[1:]
		ordered = append(ordered, nameMap[n])
		for _, nxt := range adj[n] {
			inDeg[nxt]--
			if inDeg[nxt] == 0 {
				zero = append(zero, nxt)
			}
		}
		sort.Strings(zero)
	}
	if len(ordered) != len(nameMap) {
		var cyc []string
		for n, d := range inDeg {
			if d > 0 {
				cyc = append(cyc, n)
			}
		}
		sort.Strings(cyc)
		return nil, fmt.Errorf("registry: cyclic builder deps: %v", cyc)
	}
	return ordered, nil
}
