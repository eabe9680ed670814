package policy

import (
	"maps"
	"reflect"
	"strings"
)

// resolveDotNotation walks nested maps along key, e.g. "requester.role".
func resolveDotNotation(obj map[string]any, key string) (any, bool) {
	var current any = obj
	for _, k := range strings.Split(key, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[k]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := node[k]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

func structToMap(obj any) map[string]any {
	result := make(map[string]any)
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)

		if field.Anonymous {
			embedded := structToMap(v.Field(i).Interface())
			maps.Copy(result, embedded)
			continue
		}

		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}

		result[tag] = v.Field(i).Interface()
	}
	return result
}
