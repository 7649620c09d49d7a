package linq_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinclairzx81/linqbox"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

var users = []user{{1, "amy", 31}, {2, "bob", 17}, {3, "cid", 45}}

func exported(t *testing.T, e *linq.Enumerable) []any {
	t.Helper()
	rows, err := e.All()
	require.NoError(t, err)
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = linq.Export(r)
	}
	return out
}

func TestQueryPositional(t *testing.T) {
	t.Parallel()
	q, err := linq.Query(`from u in $1 where u.age >= $2 orderby u.name descending select u.name`, users, 18)
	require.NoError(t, err)
	assert.Equal(t, []any{"cid", "amy"}, exported(t, q))
}

func TestNamed(t *testing.T) {
	t.Parallel()
	orders := []map[string]any{
		{"user": 1, "total": 10},
		{"user": 1, "total": 5},
		{"user": 3, "total": 7},
	}
	q, err := linq.Named(`
		from u in $users
		join o in $orders on u.id equals o.user into placed
		select { name: u.name, orders: placed.length, first: $users[0].name }`,
		map[string]any{"users": users, "orders": orders})
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"name": "amy", "orders": 2.0, "first": "amy"},
		map[string]any{"name": "bob", "orders": 0.0, "first": "amy"},
		map[string]any{"name": "cid", "orders": 1.0, "first": "amy"},
	}, exported(t, q))
}

func TestTemplate(t *testing.T) {
	t.Parallel()
	q, err := linq.Template([]string{"from n in ", " where n > ", " select n * 2"}, []int{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{6.0, 8.0}, exported(t, q))
}

func TestSeqIsLazyAndRerunnable(t *testing.T) {
	t.Parallel()
	calls := 0
	probe := func(x float64) float64 {
		calls++
		return x
	}
	q, err := linq.Query(`from n in $1 select $2(n)`, []int{1, 2, 3}, probe)
	require.NoError(t, err)
	assert.Zero(t, calls)

	for v, err := range q.Seq() {
		require.NoError(t, err)
		assert.Equal(t, 1.0, v)
		break
	}
	assert.Equal(t, 1, calls)

	assert.Len(t, exported(t, q), 3)
	assert.Equal(t, 4, calls)
}

func TestCursor(t *testing.T) {
	t.Parallel()
	q, err := linq.Query(`from n in $1 select n`, []int{1, 2})
	require.NoError(t, err)
	c := q.Cursor(context.Background())
	defer c.Close() //nolint:errcheck

	v, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	rest, err := c.All()
	require.NoError(t, err)
	assert.Equal(t, []linq.Value{2.0}, rest)
	_, err = c.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRebind(t *testing.T) {
	t.Parallel()
	q, err := linq.Query(`from n in $1 where n > $2 select n`, []int{1, 2, 3}, 1)
	require.NoError(t, err)

	r, err := q.Rebind([]int{5, 6}, 5)
	require.NoError(t, err)
	assert.Equal(t, []any{6.0}, exported(t, r))
	assert.Equal(t, []any{2.0, 3.0}, exported(t, q))
	assert.Same(t, q.Expression(), r.Expression())

	_, err = q.Rebind([]int{1})
	var pc *linq.ParamCountError
	require.ErrorAs(t, err, &pc)
	assert.Equal(t, 2, pc.Want)

	_, err = q.Rebind("abc", 1)
	var pk *linq.ParamKindError
	require.ErrorAs(t, err, &pk)
	assert.Equal(t, "parameter $1: expected array, got string", pk.Error())
}

func TestRebindSkipsUnusedSlots(t *testing.T) {
	t.Parallel()
	q, err := linq.Query(`from x in $2 select x`, 1, []int{1, 2})
	require.NoError(t, err)

	r, err := q.Rebind("anything", []int{3})
	require.NoError(t, err)
	assert.Equal(t, []any{3.0}, exported(t, r))

	_, err = q.Rebind(2, "abc")
	var pk *linq.ParamKindError
	require.ErrorAs(t, err, &pk)
	assert.Equal(t, "parameter $2: expected array, got string", pk.Error())

	_, err = q.Rebind([]int{3})
	var pc *linq.ParamCountError
	require.ErrorAs(t, err, &pc)
	assert.Equal(t, 2, pc.Want)
}

func TestString(t *testing.T) {
	t.Parallel()
	q, err := linq.Query(`from   x in $1   where x.a==1 select x`, []int{})
	require.NoError(t, err)
	assert.Equal(t, `from x in $1 where (x.a == 1) select x`, q.String())
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		text   string
		target any
	}{
		{`from x in $1 select #`, new(*linq.InvalidCharacterError)},
		{`from x in $1 select "open`, new(*linq.UnterminatedStringError)},
		{`from x in $3 select x`, new(*linq.UnknownPlaceholderError)},
		{`select x`, new(*linq.GrammarMismatchError)},
		{`from x in $1 select x x`, new(*linq.IncompleteParseError)},
		{`from x in $1 select y`, new(*linq.UnboundIdentifierError)},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()
			_, err := linq.Query(tc.text, []int{1})
			require.Error(t, err)
			assert.ErrorAs(t, err, tc.target)
			assert.True(t, linq.IsCompileError(err))
		})
	}
}

func TestRuntimeError(t *testing.T) {
	t.Parallel()
	q, err := linq.Query(`from x in $1 select x.a.b`, []any{map[string]any{}})
	require.NoError(t, err)
	_, err = q.All()
	var te *linq.TypeError
	require.ErrorAs(t, err, &te)
	assert.False(t, linq.IsCompileError(err))
	assert.True(t, strings.Contains(err.Error(), "reading 'b'"))
	assert.False(t, errors.Is(err, io.EOF))
}
