package schema_test

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
)

type Audit struct {
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Base struct {
	ID int64
	Audit
}

type User struct {
	rowmap.State
	Base
	Name     string
	Nickname *string
	Age      int
	secret   string
}

type Shape interface {
	Area() float64
}

type Square struct{ Side float64 }

func (s Square) Area() float64 { return s.Side * s.Side }

type Drawing struct {
	ID    int
	Shape Shape
	Label fmt.Stringer
}

type Account struct {
	ID    int
	Email string
}

func (Account) TableName() string { return "accounts" }

func names(cols []*schema.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name()
	}
	return out
}

func TestRegistryDefaults(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	tbl, err := schema.Lookup[User](reg)
	require.NoError(t, err)

	assert.Equal(t, "User", tbl.Name())
	assert.Empty(t, tbl.Schema())
	assert.False(t, tbl.Mapped())
	assert.False(t, tbl.HasKeys())
	assert.Equal(t, reflect.TypeFor[User](), tbl.Type())
	// Own fields first, then embedded ancestors in declaration order.
	assert.Equal(t, []string{"Name", "Nickname", "Age", "ID", "CreatedAt", "UpdatedAt"}, names(tbl.Columns()))

	name, ok := tbl.Column("Name")
	require.True(t, ok)
	assert.Equal(t, field.TypeString, name.Type())
	assert.False(t, name.Nullable())
	assert.True(t, name.Writable())

	nick, ok := tbl.Column("nickname")
	require.True(t, ok)
	assert.True(t, nick.Nullable())
	assert.Equal(t, field.TypeString, nick.Type())

	updated, ok := tbl.Column("UpdatedAt")
	require.True(t, ok)
	assert.Equal(t, field.TypeTime, updated.Type())
	assert.True(t, updated.Nullable())

	_, ok = tbl.Column("secret")
	assert.False(t, ok, "unexported fields are not mapped")
}

func TestRegistryDeclarations(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	err := reg.Register(schema.For[User]().
		Table("users").
		Schema("main").
		Key("ID").
		Column("Name", schema.Name("full_name"), schema.StorageType(field.TypeOther)).
		Column("Age", schema.Nullable()).
		Column("Nickname", schema.NotNull()).
		ReadOnly("CreatedAt").
		Skip("UpdatedAt"))
	require.NoError(t, err)

	tbl, err := schema.Lookup[*User](reg)
	require.NoError(t, err)
	assert.Equal(t, "users", tbl.Name())
	assert.Equal(t, "main.users", tbl.QualifiedName())
	assert.True(t, tbl.Mapped())
	assert.Equal(t, []string{"full_name", "Nickname", "Age", "ID", "CreatedAt"}, names(tbl.Columns()))
	assert.Equal(t, []string{"ID"}, names(tbl.PrimaryKeys()))

	name, ok := tbl.Column("Name")
	require.True(t, ok, "lookup by field name")
	assert.Equal(t, "full_name", name.Name())
	assert.Equal(t, field.TypeOther, name.Type())
	byStorage, ok := tbl.Column("FULL_NAME")
	require.True(t, ok, "lookup by storage name, case-insensitive")
	assert.Same(t, name, byStorage)

	age, _ := tbl.Column("Age")
	assert.True(t, age.Nullable())
	nick, _ := tbl.Column("Nickname")
	assert.False(t, nick.Nullable())
	created, _ := tbl.Column("CreatedAt")
	assert.False(t, created.Writable())
	id, _ := tbl.Column("ID")
	assert.True(t, id.Key())
}

func TestRegistryKeyOrder(t *testing.T) {
	t.Parallel()

	type Membership struct {
		GroupID int
		UserID  int
		Role    string
	}
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(schema.For[Membership]().Key("UserID", "GroupID")))
	tbl, err := schema.Lookup[Membership](reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"UserID", "GroupID"}, names(tbl.PrimaryKeys()))
}

func TestRegistryErrors(t *testing.T) {
	t.Parallel()

	t.Run("interface", func(t *testing.T) {
		reg := schema.NewRegistry()
		_, err := schema.Lookup[Shape](reg)
		require.Error(t, err)
		assert.True(t, rowmap.IsMappingError(err))
		assert.True(t, errors.Is(err, rowmap.ErrMapping))
	})

	t.Run("non struct", func(t *testing.T) {
		reg := schema.NewRegistry()
		_, err := schema.Lookup[int](reg)
		assert.True(t, rowmap.IsMappingError(err))
		_, err = reg.Get(nil)
		assert.True(t, rowmap.IsMappingError(err))
	})

	t.Run("unknown column", func(t *testing.T) {
		reg := schema.NewRegistry()
		require.NoError(t, reg.Register(schema.For[Account]().Column("Missing", schema.Nullable())))
		_, err := schema.Lookup[Account](reg)
		assert.True(t, rowmap.IsMappingError(err))
		assert.Contains(t, err.Error(), "Missing")
	})

	t.Run("unknown key", func(t *testing.T) {
		reg := schema.NewRegistry()
		require.NoError(t, reg.Register(schema.For[Account]().Key("Nope")))
		_, err := schema.Lookup[Account](reg)
		assert.True(t, rowmap.IsMappingError(err))
	})

	t.Run("duplicate storage name", func(t *testing.T) {
		reg := schema.NewRegistry()
		require.NoError(t, reg.Register(schema.For[Account]().Column("Email", schema.Name("id"))))
		_, err := schema.Lookup[Account](reg)
		require.Error(t, err)
		assert.True(t, rowmap.IsMappingError(err))
	})

	t.Run("skipped key", func(t *testing.T) {
		reg := schema.NewRegistry()
		require.NoError(t, reg.Register(schema.For[Account]().Key("ID").Skip("ID")))
		_, err := schema.Lookup[Account](reg)
		assert.True(t, rowmap.IsMappingError(err))
	})

	t.Run("register after build", func(t *testing.T) {
		reg := schema.NewRegistry()
		_, err := schema.Lookup[Account](reg)
		require.NoError(t, err)
		err = reg.Register(schema.For[Account]().Table("late"))
		assert.True(t, rowmap.IsMappingError(err))
	})

	t.Run("register non struct", func(t *testing.T) {
		reg := schema.NewRegistry()
		err := reg.Register(schema.Mapping{Type: reflect.TypeFor[string]()})
		assert.True(t, rowmap.IsMappingError(err))
		err = reg.Register(schema.Mapping{})
		assert.True(t, rowmap.IsMappingError(err))
	})
}

func TestRegistryInterfaceSubstitute(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	err := reg.RegisterInterface(reflect.TypeFor[Shape](), reflect.TypeFor[Square]())
	require.NoError(t, err)

	tbl, err := schema.Lookup[Shape](reg)
	require.NoError(t, err)
	assert.Equal(t, "Square", tbl.Name())

	same, err := schema.Lookup[Square](reg)
	require.NoError(t, err)
	assert.Same(t, tbl, same)

	err = reg.RegisterInterface(reflect.TypeFor[Shape](), reflect.TypeFor[Account]())
	assert.True(t, rowmap.IsMappingError(err))
	err = reg.RegisterInterface(reflect.TypeFor[Square](), reflect.TypeFor[Square]())
	assert.True(t, rowmap.IsMappingError(err))
}

func TestRegistryInterfaceFieldProbe(t *testing.T) {
	t.Parallel()

	t.Run("default instance assigns a value", func(t *testing.T) {
		reg := schema.NewRegistry()
		require.NoError(t, reg.Register(schema.For[Drawing]().New(func() *Drawing {
			return &Drawing{Shape: Square{Side: 1}}
		})))
		tbl, err := schema.Lookup[Drawing](reg)
		require.NoError(t, err)

		shape, _ := tbl.Column("Shape")
		assert.Equal(t, reflect.TypeFor[Square](), shape.GoType())
		assert.Equal(t, reflect.TypeFor[Shape](), shape.DeclaredType())
		assert.Equal(t, field.TypeOther, shape.Type())

		// Label is nil on the default instance: the declared type is kept.
		label, _ := tbl.Column("Label")
		assert.Equal(t, reflect.TypeFor[fmt.Stringer](), label.GoType())

		d, ok := tbl.New().(*Drawing)
		require.True(t, ok)
		assert.Equal(t, Square{Side: 1}, d.Shape)
	})

	t.Run("zero instance falls back to declared type", func(t *testing.T) {
		reg := schema.NewRegistry()
		tbl, err := schema.Lookup[Drawing](reg)
		require.NoError(t, err)
		shape, _ := tbl.Column("Shape")
		assert.Equal(t, reflect.TypeFor[Shape](), shape.GoType())
		assert.True(t, shape.Nullable())
	})
}

func TestRegistryTableName(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	tbl, err := schema.Lookup[Account](reg)
	require.NoError(t, err)
	assert.Equal(t, "accounts", tbl.Name())

	snake := schema.NewRegistry(schema.WithNaming(schema.PluralSnakeNaming))
	tbl, err = schema.Lookup[Audit](snake)
	require.NoError(t, err)
	assert.Equal(t, "audits", tbl.Name())
	assert.Equal(t, []string{"created_at", "updated_at"}, names(tbl.Columns()))

	single := schema.NewRegistry(schema.WithNaming(schema.SnakeNaming))
	tbl, err = schema.Lookup[Audit](single)
	require.NoError(t, err)
	assert.Equal(t, "audit", tbl.Name())
}

func TestRegistryConcurrentGet(t *testing.T) {
	t.Parallel()

	const n = 64
	reg := schema.NewRegistry()
	var (
		wg     sync.WaitGroup
		start  = make(chan struct{})
		tables = make([]*schema.Table, n)
		errs   = make([]error, n)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			tables[i], errs[i] = schema.Lookup[User](reg)
		}()
	}
	close(start)
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Same(t, tables[0], tables[i])
	}
	assert.Equal(t, int64(1), reg.Builds())

	// Unrelated types get their own table.
	other, err := schema.Lookup[Account](reg)
	require.NoError(t, err)
	assert.NotSame(t, tables[0], other)
	assert.Equal(t, int64(2), reg.Builds())
}

func TestTableImmutable(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	tbl, err := schema.Lookup[Account](reg)
	require.NoError(t, err)

	cols := tbl.Columns()
	cols[0] = nil
	assert.NotNil(t, tbl.ColumnAt(0))
	assert.Equal(t, 2, tbl.NumColumns())
}

func TestColumnAccessors(t *testing.T) {
	t.Parallel()

	type Inner struct{ Score int }
	type Outer struct {
		*Inner
		Name string
	}
	reg := schema.NewRegistry()
	tbl, err := schema.Lookup[Outer](reg)
	require.NoError(t, err)

	score, ok := tbl.Column("Score")
	require.True(t, ok)
	o := &Outer{}
	assert.Nil(t, score.Get(o), "nil embedded pointer reads as nil")
	require.NoError(t, score.Set(o, 7))
	require.NotNil(t, o.Inner)
	assert.Equal(t, 7, o.Score)
	assert.Equal(t, 7, score.Get(o))

	require.NoError(t, score.Set(o, nil))
	assert.Equal(t, 0, o.Score)

	assert.Error(t, score.Set(o, "seven"))
	assert.Error(t, score.Set(Outer{}, 1), "non-pointer entity")
	assert.Error(t, score.Set(&Account{}, 1), "foreign entity")
}

type Label struct{ Name string }

type Titled struct{ Label }

type Named struct {
	Name  string
	Extra int
}

type Listing struct {
	Titled
	Named
}

type Left struct{ Code string }

type Right struct{ Code string }

type Coded struct {
	Left
	Right
}

func TestRegistryFieldPromotion(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()

	t.Run("ShallowerWins", func(t *testing.T) {
		tbl, err := schema.Lookup[Listing](reg)
		require.NoError(t, err)
		assert.Equal(t, []string{"Name", "Extra"}, names(tbl.Columns()))

		name, ok := tbl.Column("Name")
		require.True(t, ok)
		l := &Listing{}
		l.Name = "promoted"
		assert.Equal(t, "promoted", name.Get(l))

		require.NoError(t, name.Set(l, "set"))
		assert.Equal(t, "set", l.Name)
		assert.Empty(t, l.Titled.Label.Name)
	})

	t.Run("AmbiguousAtSameDepth", func(t *testing.T) {
		_, err := schema.Lookup[Coded](reg)
		require.Error(t, err)
		assert.True(t, rowmap.IsMappingError(err))
		assert.Contains(t, err.Error(), "Code")
	})

	t.Run("RecursiveEmbedding", func(t *testing.T) {
		type Node struct {
			*Node
			Value int
		}
		tbl, err := schema.Lookup[Node](reg)
		require.NoError(t, err)
		assert.Equal(t, []string{"Value"}, names(tbl.Columns()))
	})
}

type Swapped struct {
	Age   int
	Years int
}

func TestTableColumnPrecedence(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(schema.For[Swapped]().
		Column("Age", schema.Name("years")).
		Column("Years", schema.Name("Age"))))
	tbl, err := schema.Lookup[Swapped](reg)
	require.NoError(t, err)

	tests := []struct {
		lookup string
		field  string
	}{
		{"Age", "Age"},     // field name over storage name
		{"Years", "Years"}, // field name over storage name
		{"years", "Age"},   // exact storage name
		{"AGE", "Age"},     // case-insensitive field name
	}
	for _, tt := range tests {
		c, ok := tbl.Column(tt.lookup)
		require.True(t, ok, tt.lookup)
		assert.Equal(t, tt.field, c.Field(), tt.lookup)
	}
}
