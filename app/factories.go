package app

import (
	"fmt"
	"reflect"
)

// Factories maps service names to constructor functions. Constructor
// arguments are resolved by type from the results of other factories.
type Factories map[string]interface{}

type dependencies map[string]dependency
type instances map[string]reflect.Value

type dependency struct {
	Rv  reflect.Value
	Out reflect.Type
	In  []reflect.Type
}

func (i instances) With(k string, v any) instances {
	i[k] = reflect.ValueOf(v)
	return i
}

func (i instances) Singletons() Singletons {
	singletons := Singletons{}
	for k, v := range i {
		singletons[k] = v.Interface()
	}
	return singletons
}

func (c Factories) Init() (Singletons, error) {
	deps, err := c.dependencies()
	if err != nil {
		return nil, err
	}
	inst := instances{}
	for k := range deps {
		_, err := deps.resolve(k, inst)
		if err != nil {
			return nil, err
		}
	}
	return inst.Singletons(), nil
}

func (c Factories) dependencies() (dependencies, error) {
	deps := dependencies{}
	for k, v := range c {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Func {
			return nil, fmt.Errorf("%s is not a function", k)
		}
		t := rv.Type()
		if t.NumOut() == 0 || t.NumOut() > 2 {
			return nil, fmt.Errorf("%s is not a factory", k)
		}
		if t.NumOut() == 2 && t.Out(1) != errorType {
			// two-output factories return an error second
			return nil, fmt.Errorf("%s is not a factory", k)
		}
		d := dependency{Rv: rv, Out: t.Out(0)}
		for i := 0; i < t.NumIn(); i++ {
			d.In = append(d.In, t.In(i))
		}
		deps[k] = d
	}
	return deps, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func (deps dependencies) provides(in reflect.Type) []string {
	found := []string{}
	for name, other := range deps {
		if other.Out == in {
			found = append(found, name)
			continue
		}
		if in.Kind() == reflect.Interface && other.Out.Implements(in) {
			found = append(found, name)
		}
	}
	return found
}

func (deps dependencies) resolve(k string, inst instances) (reflect.Value, error) {
	ex, ok := inst[k]
	if ok {
		return ex, nil
	}
	t, ok := deps[k]
	if !ok {
		return reflect.Value{}, fmt.Errorf("%s is not declared", k)
	}
	args := []reflect.Value{}
	for _, in := range t.In {
		providers := deps.provides(in)
		if len(providers) == 0 {
			return reflect.Value{}, fmt.Errorf("cannot find %s for %s", in, k)
		}
		if len(providers) > 1 {
			return reflect.Value{}, fmt.Errorf("ambiguous %s for %s: %v", in, k, providers)
		}
		dep, err := deps.resolve(providers[0], inst)
		if err != nil {
			return reflect.Value{}, fmt.Errorf(
				"cannot resolve %s because of %s: %s", k, providers[0], err)
		}
		args = append(args, dep)
	}
	res := t.Rv.Call(args)
	if len(res) == 2 && !res[1].IsNil() {
		return reflect.Value{}, res[1].Interface().(error)
	}
	inst[k] = res[0]
	return res[0], nil
}
