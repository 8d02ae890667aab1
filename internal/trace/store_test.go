package trace

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jetprop/internal/interp"
	"github.com/roach88/jetprop/internal/jet"
	"github.com/roach88/jetprop/internal/prim"
	"github.com/roach88/jetprop/internal/tensor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_WriteAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	records := []Record{
		{CallToken: "call-a", Seq: 1, Op: "exp", Order: 2, OperandShapes: [][]int{{2}}, OutputShape: []int{2}},
		{CallToken: "call-a", Seq: 2, Op: "mul", Order: 2, OperandShapes: [][]int{{2}, {2}}, OutputShape: []int{2}},
		{CallToken: "call-b", Seq: 1, Op: "neg", Order: 1, OperandShapes: [][]int{{}}, OutputShape: []int{}},
	}
	for _, r := range records {
		require.NoError(t, s.Write(ctx, r))
	}

	got, err := s.ListByCall(ctx, "call-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "exp", got[0].Op)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, [][]int{{2}}, got[0].OperandShapes)
	assert.Equal(t, []int{2}, got[0].OutputShape)
	assert.Equal(t, "mul", got[1].Op)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "call-a", all[0].CallToken)
	assert.Equal(t, "call-b", all[2].CallToken)

	calls, err := s.Calls(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"call-a", "call-b"}, calls)
}

func TestStore_DuplicateSeqRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := Record{CallToken: "call-a", Seq: 1, Op: "exp", Order: 1, OperandShapes: [][]int{{2}}, OutputShape: []int{2}}
	require.NoError(t, s.Write(ctx, r))
	assert.Error(t, s.Write(ctx, r))
}

func TestStore_ReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, Record{
		CallToken: "call-a", Seq: 1, Op: "exp", Order: 1,
		OperandShapes: [][]int{{2}}, OutputShape: []int{2},
	}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.ListByCall(ctx, "call-a")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_EmptyListsAreEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.ListByCall(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)

	calls, err := s.Calls(ctx)
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestRecorder_StampsTokenAndSequence(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(s, NewFixedGenerator("fixed-token"))

	assert.Equal(t, "fixed-token", rec.CallToken())
	require.NoError(t, rec.RecordApply("exp", 2, [][]int{{3}}, []int{3}))
	require.NoError(t, rec.RecordApply("log", 2, [][]int{{3}}, []int{3}))

	got, err := s.ListByCall(context.Background(), "fixed-token")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, "exp", got[0].Op)
	assert.Equal(t, int64(2), got[1].Seq)
	assert.Equal(t, "log", got[1].Op)
}

func TestRecorder_ObservesPropagation(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(s, NewFixedGenerator("call-1"))

	fn := func(m *interp.Machine, args []interp.Value) (any, error) {
		e, err := m.Apply(prim.Exp, nil, args[0])
		if err != nil {
			return nil, err
		}
		return m.Apply(prim.Log, nil, e)
	}
	_, _, err := jet.Jet(fn,
		[]*tensor.Array{tensor.Scalar(1)},
		[][]*tensor.Array{{tensor.Scalar(1)}},
		jet.WithRecorder(rec))
	require.NoError(t, err)

	got, err := s.ListByCall(context.Background(), "call-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "exp", got[0].Op)
	assert.Equal(t, "log", got[1].Op)
	assert.Equal(t, 1, got[0].Order)
}

func TestClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestClock_Concurrent(t *testing.T) {
	c := NewClock()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Next()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800), c.Current())
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator_TokensAreUnique(t *testing.T) {
	g := UUIDv7Generator{}
	a := g.Generate()
	b := g.Generate()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
