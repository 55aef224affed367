// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mdhender/lazyconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStatementDecorator_Forwarding checks that every statement operation
// reaches the wrapped statement and its results come back unchanged.
func TestStatementDecorator_Forwarding(t *testing.T) {
	ctx := context.Background()
	fs := &fakeStatement{}
	d := lazyconn.NewStatementDecorator(fs)
	assert.Same(t, fs, d.Statement())

	require.NoError(t, d.Execute(ctx))
	require.NoError(t, d.Execute(ctx, lazyconn.Params{"id": 1}))
	assert.Equal(t, []lazyconn.Params{{"id": 1}}, fs.execParams)

	row, err := d.Fetch(lazyconn.FetchNum)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(1)}, row)
	assert.Equal(t, []lazyconn.FetchMode{lazyconn.FetchNum}, fs.fetchArgs)

	all, err := d.FetchAll()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, all)
	assert.Empty(t, fs.fetchArgs)

	v, err := d.FetchColumn(2)
	require.NoError(t, err)
	assert.Equal(t, "foo", v)

	require.NoError(t, d.FetchObject(&struct{}{}))
	require.NoError(t, d.BindValue(":id", 5))
	assert.EqualValues(t, 3, d.RowCount())
	assert.Equal(t, 2, d.ColumnCount())

	meta, err := d.ColumnMeta(0)
	require.NoError(t, err)
	assert.Equal(t, "id", meta.Name)

	require.NoError(t, d.SetFetchMode(lazyconn.FetchColumn, 1))
	assert.Equal(t, []any{1}, fs.modeArgs)

	more, err := d.NextRowset()
	require.NoError(t, err)
	assert.False(t, more)

	require.NoError(t, d.CloseCursor())
	assert.Equal(t, "00000", d.ErrorCode())
	assert.Equal(t, "00000", d.ErrorInfo().SQLState)

	require.NoError(t, d.SetAttribute("k", "v"))
	got, err := d.GetAttribute("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	var buf bytes.Buffer
	require.NoError(t, d.DebugDumpParams(&buf))
	assert.Equal(t, "SQL: [0] ", buf.String())
	assert.Equal(t, "SELECT 1", d.QueryString())
	require.NoError(t, d.Close())

	assert.Equal(t, []string{
		"Execute(0)",
		"Execute(1)",
		"Fetch(1)",
		"FetchAll(0)",
		"FetchColumn(2)",
		"FetchObject",
		"BindValue(:id,5,0)",
		"RowCount",
		"ColumnCount",
		"ColumnMeta(0)",
		"SetFetchMode(column,1)",
		"NextRowset",
		"CloseCursor",
		"ErrorCode",
		"ErrorInfo",
		"SetAttribute(k,v)",
		"GetAttribute(k)",
		"DebugDumpParams",
		"QueryString",
		"Close",
	}, fs.calls)
}

// TestStatementDecorator_References checks that pointers bound through the
// decorator see the wrapped statement's writes.
func TestStatementDecorator_References(t *testing.T) {
	ctx := context.Background()
	fs := &fakeStatement{}
	d := lazyconn.NewStatementDecorator(fs)

	name := "foo"
	require.NoError(t, d.BindParam(":name", &name, lazyconn.ParamStr))
	require.NoError(t, d.Execute(ctx))
	assert.Equal(t, "foo!", name)

	var id int
	require.NoError(t, d.BindColumn(1, &id))
	_, err := d.Fetch(lazyconn.FetchBound)
	require.NoError(t, err)
	assert.Equal(t, 99, id)
}

// TestStatementDecorator_Stacked checks that decorators wrap decorators.
func TestStatementDecorator_Stacked(t *testing.T) {
	fs := &fakeStatement{err: errors.New("stmt failed")}
	d := lazyconn.NewStatementDecorator(lazyconn.NewStatementDecorator(fs))

	err := d.Execute(context.Background())
	assert.Same(t, fs.err, err)
	assert.Equal(t, []string{"Execute(0)"}, fs.calls)
}
