package orchestrator

import (
	"testing"

	"github.com/blitzen-gpu/blitzen/common"
)

func TestViewForUploadPassesThroughWhenNotFrozen(t *testing.T) {
	o := &Orchestrator{}
	view := common.CameraViewData{LodTarget: 2}
	if got := o.viewForUpload(view); got != view {
		t.Fatalf("viewForUpload = %+v, want unchanged %+v", got, view)
	}
}

// With the frustum frozen, only projectionView follows the camera; the
// cull-time view/frustum data stays at the last unfrozen frame's values.
func TestViewForUploadFreezesCullData(t *testing.T) {
	o := &Orchestrator{}
	o.lastView = common.CameraViewData{
		CameraPosition: [3]float32{1, 2, 3},
		LodTarget:      5,
	}
	o.SetFreezeFrustum(true)

	next := common.CameraViewData{
		CameraPosition: [3]float32{9, 9, 9},
		LodTarget:      7,
	}
	next.ProjectionView[0] = 42

	got := o.viewForUpload(next)
	if got.ProjectionView != next.ProjectionView {
		t.Fatal("projectionView must track the live camera while frozen")
	}
	if got.CameraPosition != o.lastView.CameraPosition || got.LodTarget != o.lastView.LodTarget {
		t.Fatalf("cull data must stay stale while frozen: got %+v", got)
	}
}
