package schema

import (
	"cmp"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/schema/field"
)

// Registry derives and caches one Table per entity type. It is safe for
// concurrent use: lookups of built tables are lock-free, and concurrent
// first lookups of the same type share a single build. Builds of
// unrelated types do not wait on each other.
type Registry struct {
	tables     sync.Map // reflect.Type => *Table
	group      singleflight.Group
	mu         sync.RWMutex // guards mappings and interfaces
	mappings   map[reflect.Type]Mapping
	interfaces map[reflect.Type]reflect.Type
	naming     Naming
	log        *slog.Logger
	builds     atomic.Int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithNaming sets the strategy used for synthesized table and column names.
func WithNaming(n Naming) Option {
	return func(r *Registry) { r.naming = n }
}

// WithLogger sets the logger used to report table builds. Builds are logged
// at debug level. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		mappings:   make(map[reflect.Type]Mapping),
		interfaces: make(map[reflect.Type]reflect.Type),
		naming:     IdentityNaming,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register records the declarations of an entity type. It must be called
// before the first lookup of that type.
func (r *Registry) Register(d Declaration) error {
	m := d.Mapping()
	t := m.Type
	if t == nil {
		return rowmap.NewMappingError("<nil>", "declaration without type")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
		m.Type = t
	}
	if t.Kind() != reflect.Struct {
		return rowmap.NewMappingError(t.String(), "only struct types can be declared")
	}
	if _, ok := r.tables.Load(t); ok {
		return rowmap.NewMappingError(t.String(), "declared after the table was built")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings[t] = m
	return nil
}

// RegisterInterface registers concrete as the mapped substitute of the
// interface type iface. Lookups of iface resolve to the table of concrete.
func (r *Registry) RegisterInterface(iface, concrete reflect.Type) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return rowmap.NewMappingError(fmt.Sprint(iface), "not an interface type")
	}
	if concrete == nil {
		return rowmap.NewMappingError(iface.String(), "nil concrete type")
	}
	if !concrete.Implements(iface) && !reflect.PointerTo(concrete).Implements(iface) {
		return rowmap.NewMappingError(iface.String(), fmt.Sprintf("%s does not implement the interface", concrete))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interfaces[iface] = concrete
	return nil
}

// Lookup returns the table of T from r.
func Lookup[T any](r *Registry) (*Table, error) {
	return r.Get(reflect.TypeFor[T]())
}

// Get returns the table of t, building it on first access. Pointer types
// resolve to their element type. Interface types fail with a MappingError
// unless a concrete substitute was registered.
func (r *Registry) Get(t reflect.Type) (*Table, error) {
	t, err := r.resolve(t)
	if err != nil {
		return nil, err
	}
	if v, ok := r.tables.Load(t); ok {
		return v.(*Table), nil
	}
	v, err, _ := r.group.Do(typeKey(t), func() (any, error) {
		// A build for t may have completed between Load and Do.
		if v, ok := r.tables.Load(t); ok {
			return v, nil
		}
		tbl, err := r.build(t)
		if err != nil {
			return nil, err
		}
		r.tables.Store(t, tbl)
		return tbl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Builds returns the number of tables built so far.
func (r *Registry) Builds() int64 { return r.builds.Load() }

func (r *Registry) resolve(t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, rowmap.NewMappingError("<nil>", "nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Interface {
		r.mu.RLock()
		c, ok := r.interfaces[t]
		r.mu.RUnlock()
		if !ok {
			return nil, rowmap.NewMappingError(t.String(), "cannot map an interface type, register a concrete type with RegisterInterface")
		}
		t = c
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
	}
	if t.Kind() != reflect.Struct {
		return nil, rowmap.NewMappingError(t.String(), "only struct types can be mapped")
	}
	return t, nil
}

var stateType = reflect.TypeFor[rowmap.State]()

// build derives the table of the struct type t.
func (r *Registry) build(t reflect.Type) (*Table, error) {
	r.mu.RLock()
	m, declared := r.mappings[t]
	r.mu.RUnlock()

	tbl := &Table{
		name:   m.Table,
		schema: m.Schema,
		typ:    t,
		mapped: declared,
		newFn:  m.New,
	}
	if tbl.newFn == nil {
		tbl.newFn = func() any { return reflect.New(t).Interface() }
	}
	if tbl.name == "" {
		tbl.name = r.tableName(t)
	}

	fields, err := collectFields(t)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f.Name] = true
	}
	for name := range m.Columns {
		if !seen[name] {
			return nil, rowmap.NewPropertyMappingError(t.String(), name, "column declared for unknown field")
		}
	}
	keys := make(map[string]int, len(m.Keys))
	for i, k := range m.Keys {
		if !seen[k] {
			return nil, rowmap.NewPropertyMappingError(t.String(), k, "key declared for unknown field")
		}
		keys[k] = i
	}

	var (
		probe   reflect.Value
		storage = make(map[string]string, len(fields))
	)
	for _, f := range fields {
		spec := m.Columns[f.Name]
		if spec.Skip {
			if _, ok := keys[f.Name]; ok {
				return nil, rowmap.NewPropertyMappingError(t.String(), f.Name, "key field cannot be skipped")
			}
			continue
		}
		c := &Column{
			name:     spec.Name,
			field:    f.Name,
			declared: f.Type,
			goType:   f.Type,
			typ:      spec.Type,
			writable: !spec.ReadOnly,
			owner:    t,
			index:    f.Index,
		}
		if c.name == "" {
			c.name = r.naming.column(f.Name)
		}
		if f.Type.Kind() == reflect.Interface {
			if !probe.IsValid() {
				probe = reflect.ValueOf(tbl.newFn())
			}
			if ct := probeType(probe, c); ct != nil {
				c.goType = ct
			}
		}
		if !c.typ.Valid() {
			c.typ = field.Infer(c.goType)
		}
		if spec.Nullable != nil {
			c.nullable = *spec.Nullable
		} else {
			c.nullable = field.Nullable(f.Type)
		}
		if _, ok := keys[f.Name]; ok {
			c.key = true
		}
		lower := strings.ToLower(c.name)
		if prev, ok := storage[lower]; ok {
			return nil, rowmap.NewPropertyMappingError(t.String(), f.Name, fmt.Sprintf("column name %q already used by field %s", c.name, prev))
		}
		storage[lower] = f.Name
		tbl.columns = append(tbl.columns, c)
	}
	for _, c := range tbl.columns {
		if c.key {
			tbl.keys = append(tbl.keys, c)
		}
	}
	slices.SortStableFunc(tbl.keys, func(a, b *Column) int {
		return keys[a.field] - keys[b.field]
	})
	tbl.index()

	r.builds.Add(1)
	r.log.Debug("schema: table built",
		"type", t.String(),
		"table", tbl.QualifiedName(),
		"columns", len(tbl.columns),
		"keys", len(tbl.keys),
		"declared", declared,
	)
	return tbl, nil
}

// tabler is implemented by entities that name their own table.
type tabler interface {
	TableName() string
}

func (r *Registry) tableName(t reflect.Type) string {
	if tn, ok := reflect.New(t).Interface().(tabler); ok {
		if name := tn.TableName(); name != "" {
			return name
		}
	}
	return r.naming.table(t.Name())
}

// collectFields returns the mappable fields of t: its own exported fields
// first, then the fields of each embedded struct, recursively and in
// declaration order.
//
// Names resolve as in Go field promotion: a field shadows deeper fields of
// the same name, and two fields of the same name at the same depth make the
// name ambiguous. Embedded struct names do not shadow the fields they
// promote.
func collectFields(t reflect.Type) ([]reflect.StructField, error) {
	type level struct {
		typ   reflect.Type
		index []int
	}
	var (
		out     []reflect.StructField
		current = []level{{typ: t}}
		visited = map[reflect.Type]bool{t: true}
		visible = make(map[string]bool)
	)
	for len(current) > 0 {
		var (
			next  []level
			found = make(map[string][]reflect.StructField)
		)
		for _, l := range current {
			for i := range l.typ.NumField() {
				f := l.typ.Field(i)
				f.Index = append(slices.Clone(l.index), i)
				if f.Anonymous {
					if et, ok := embeddedStruct(f); ok && !visited[et] {
						next = append(next, level{typ: et, index: f.Index})
					}
					continue
				}
				if !f.IsExported() || visible[f.Name] {
					continue
				}
				found[f.Name] = append(found[f.Name], f)
			}
		}
		for name, fs := range found {
			if len(fs) > 1 {
				return nil, rowmap.NewPropertyMappingError(t.String(), name, "ambiguous field promoted from embedded structs at the same depth")
			}
			visible[name] = true
			out = append(out, fs[0])
		}
		for _, l := range next {
			visited[l.typ] = true
		}
		current = next
	}
	slices.SortFunc(out, func(a, b reflect.StructField) int {
		return compareIndex(a.Index, b.Index)
	})
	return out, nil
}

// embeddedStruct returns the struct type embedded by f, if f embeds a
// mappable struct or a pointer to one.
func embeddedStruct(f reflect.StructField) (reflect.Type, bool) {
	ft := f.Type
	if ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	return ft, ft.Kind() == reflect.Struct && ft != stateType
}

// compareIndex orders field index paths: at each level, the fields of a
// struct come before the fields it embeds, then by position.
func compareIndex(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		aLeaf, bLeaf := i == len(a)-1, i == len(b)-1
		switch {
		case aLeaf && !bLeaf:
			return -1
		case bLeaf && !aLeaf:
			return 1
		}
		return cmp.Compare(a[i], b[i])
	}
	return cmp.Compare(len(a), len(b))
}

// probeType returns the dynamic type held by the interface field of c on
// the default instance v, or nil if the field is nil.
func probeType(v reflect.Value, c *Column) reflect.Type {
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != c.owner {
		return nil
	}
	val := c.Get(v.Interface())
	if val == nil {
		return nil
	}
	return reflect.TypeOf(val)
}

func typeKey(t reflect.Type) string {
	return fmt.Sprintf("%s@%p", t, t)
}
