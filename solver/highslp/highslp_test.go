// SPDX-License-Identifier: MIT

package highslp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sagecone/cone"
	"github.com/katalvlaran/sagecone/solver"
	"github.com/katalvlaran/sagecone/solver/highslp"
)

func TestSolve_RejectsNonPolyhedralBlocks(t *testing.T) {
	for _, kind := range []cone.Kind{cone.Exp, cone.SecondOrder} {
		t.Run(kind.String(), func(t *testing.T) {
			bk := cone.NewBlock(3, cone.NewCone(kind, 3))
			bk.AddEntry(0, 0, 1)
			prob := &solver.Problem{NumCols: 1, Blocks: []*cone.Block{bk}}

			res, err := highslp.New().Solve(context.Background(), prob)
			require.ErrorIs(t, err, highslp.ErrUnsupportedBlock)
			require.Equal(t, solver.Failed, res.Status)
		})
	}
}

func TestSolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := highslp.New().Solve(ctx, &solver.Problem{NumCols: 1})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, solver.Failed, res.Status)
}
