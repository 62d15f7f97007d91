package core

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// scanner maps result columns onto struct fields by db tag, case-insensitively.
type scanner struct {
	mu    sync.RWMutex
	cache map[reflect.Type]map[string][]int
}

var globalScanner = &scanner{cache: make(map[reflect.Type]map[string][]int)}

// fields returns the lower-cased column name to field index path map of typ,
// building and caching it on first use.
func (s *scanner) fields(typ reflect.Type) map[string][]int {
	s.mu.RLock()
	m, ok := s.cache[typ]
	s.mu.RUnlock()
	if ok {
		return m
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.cache[typ]; ok {
		return m
	}
	m = make(map[string][]int)
	collectFields(typ, nil, m)
	s.cache[typ] = m
	return m
}

// collectFields walks exported fields, flattening embedded structs.
// The db tag names the column; "-" skips the field; untagged fields use the field name.
func collectFields(typ reflect.Type, index []int, out map[string][]int) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		path := append(append([]int(nil), index...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, path, out)
			continue
		}

		name := f.Name
		if tag, ok := f.Tag.Lookup("db"); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}
		name = strings.ToLower(name)
		if _, dup := out[name]; !dup {
			out[name] = path
		}
	}
}

// targets returns scan destinations for the columns pointing into elem.
// Columns without a matching field are discarded.
func (s *scanner) targets(elem reflect.Value, columns []string) []any {
	fields := s.fields(elem.Type())
	dests := make([]any, len(columns))
	for i, col := range columns {
		if path, ok := fields[strings.ToLower(col)]; ok {
			dests[i] = elem.FieldByIndex(path).Addr().Interface()
		} else {
			dests[i] = new(any)
		}
	}
	return dests
}

// scanOne scans the first row into dest, a pointer to a struct.
func (s *scanner) scanOne(rows *sql.Rows, dest any) (int64, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return 0, fmt.Errorf("scanner: dest must be pointer to struct, got %T", dest)
	}

	columns, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("scanner: failed to get columns: %w", err)
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("scanner: rows iteration failed: %w", err)
		}
		return 0, ErrNoRows
	}
	if err := rows.Scan(s.targets(rv.Elem(), columns)...); err != nil {
		return 0, fmt.Errorf("scanner: scan failed: %w", err)
	}
	return 1, nil
}

// scanAll appends every row to dest, a pointer to a slice of structs or struct pointers.
func (s *scanner) scanAll(rows *sql.Rows, dest any) (int64, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return 0, fmt.Errorf("scanner: dest must be pointer to slice, got %T", dest)
	}
	slice := rv.Elem()

	elemType := slice.Type().Elem()
	isPtr := elemType.Kind() == reflect.Pointer
	if isPtr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return 0, fmt.Errorf("scanner: slice element must be struct or *struct, got %s", elemType.Kind())
	}

	columns, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("scanner: failed to get columns: %w", err)
	}

	var n int64
	for rows.Next() {
		elem := reflect.New(elemType)
		if err := rows.Scan(s.targets(elem.Elem(), columns)...); err != nil {
			return n, fmt.Errorf("scanner: scan failed: %w", err)
		}
		if isPtr {
			slice.Set(reflect.Append(slice, elem))
		} else {
			slice.Set(reflect.Append(slice, elem.Elem()))
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("scanner: rows iteration failed: %w", err)
	}
	return n, nil
}

// scanMaps reads every row into a column name to value map.
// []byte values are converted to string.
func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("scanner: failed to get columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return out, fmt.Errorf("scanner: scan failed: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("scanner: rows iteration failed: %w", err)
	}
	return out, nil
}
